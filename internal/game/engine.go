// Package game implements the flag quiz state machine. An Engine belongs to a
// single caller: it performs no I/O and no locking, and every method runs to
// completion before returning.
package game

import (
	"fmt"
	"math/rand"
	"time"

	"flag-quiz-service/internal/domain"
)

const (
	titleCorrect  = "Correct"
	titleWrong    = "Wrong"
	titleGameOver = "Конец игры!"

	messageCorrect     = "Правильно"
	messageWrongFormat = "Неправильно! Это флаг %s"
)

// Option customizes an Engine.
type Option func(*Engine)

// WithSessionLength sets how many answers make up a session.
func WithSessionLength(n int) Option {
	return func(e *Engine) { e.sessionLength = n }
}

// WithRand injects the random source used for shuffling and picking answers.
func WithRand(rnd *rand.Rand) Option {
	return func(e *Engine) { e.rnd = rnd }
}

// WithReshuffleEachRound reshuffles the whole catalog before every round
// instead of only at construction and restart.
func WithReshuffleEachRound(enabled bool) Option {
	return func(e *Engine) { e.reshuffle = enabled }
}

// WithClock sets the time source for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Observer receives a snapshot after every state change.
type Observer func(domain.Snapshot)

type observerEntry struct {
	id int
	fn Observer
}

// Engine holds one player's quiz.
type Engine struct {
	catalog       *Catalog
	sessionLength int
	reshuffle     bool
	rnd           *rand.Rand
	now           func() time.Time

	order        []string
	roundNumber  int
	correctIndex int

	correctCount int
	wrongCount   int
	attempts     int

	pending *domain.Outcome

	observers []observerEntry
	nextObsID int
}

// New validates countries, shuffles them and starts the first round.
func New(countries []domain.Country, opts ...Option) (*Engine, error) {
	catalog, err := NewCatalog(countries)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		catalog:       catalog,
		sessionLength: domain.DefaultSessionLength,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sessionLength < 1 {
		return nil, fmt.Errorf("%w: session length must be positive, got %d", domain.ErrConfig, e.sessionLength)
	}
	if e.rnd == nil {
		e.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e.order = catalog.IDs()
	e.shuffle()
	e.startRound()
	return e, nil
}

// Catalog exposes the engine's read-only catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// State reports whether the engine waits for an answer or an acknowledgment.
func (e *Engine) State() domain.State {
	if e.pending != nil {
		return domain.StateAwaitingAcknowledgment
	}
	return domain.StateAwaitingAnswer
}

// CurrentRound returns the choices on display and the country to find.
func (e *Engine) CurrentRound() domain.Round {
	choices := make([]domain.Choice, domain.ChoicesPerRound)
	for i := 0; i < domain.ChoicesPerRound; i++ {
		id := e.order[i]
		choices[i] = domain.Choice{ID: id, ImageRef: e.catalog.ImageRef(id)}
	}
	return domain.Round{
		Number:          e.roundNumber,
		Choices:         choices,
		PromptCountryID: e.order[e.correctIndex],
	}
}

// Tally returns the session counters.
func (e *Engine) Tally() domain.Tally {
	return domain.Tally{
		CorrectCount:  e.correctCount,
		WrongCount:    e.wrongCount,
		Attempts:      e.attempts,
		SessionLength: e.sessionLength,
	}
}

// Pending returns the unacknowledged result, if any.
func (e *Engine) Pending() (domain.Outcome, bool) {
	if e.pending == nil {
		return domain.Outcome{}, false
	}
	return *e.pending, true
}

// Snapshot bundles state, round, tally and pending result.
func (e *Engine) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		State:     e.State(),
		Round:     e.CurrentRound(),
		Tally:     e.Tally(),
		UpdatedAt: e.now(),
	}
	if e.pending != nil {
		outcome := *e.pending
		snap.Pending = &outcome
	}
	return snap
}

// SubmitAnswer scores the flag at choice and holds the result until Acknowledge.
func (e *Engine) SubmitAnswer(choice int) (domain.Outcome, error) {
	if choice < 0 || choice >= domain.ChoicesPerRound {
		return domain.Outcome{}, fmt.Errorf("%w: got %d, want 0..%d", domain.ErrInvalidChoice, choice, domain.ChoicesPerRound-1)
	}
	if e.pending != nil {
		return domain.Outcome{}, domain.ErrResultPending
	}

	correctID := e.order[e.correctIndex]
	outcome := domain.Outcome{CorrectID: correctID}
	if choice == e.correctIndex {
		e.correctCount++
		outcome.Kind = domain.OutcomeCorrect
		outcome.Title = titleCorrect
		outcome.Message = messageCorrect
	} else {
		e.wrongCount++
		outcome.Kind = domain.OutcomeWrong
		outcome.Title = titleWrong
		outcome.Message = fmt.Sprintf(messageWrongFormat, e.catalog.Translation(correctID))
	}

	e.attempts = e.correctCount + e.wrongCount
	if e.attempts >= e.sessionLength {
		outcome.GameOver = true
		outcome.Title = titleGameOver
		e.correctCount = 0
		e.wrongCount = 0
	}

	e.pending = &outcome
	e.notify()
	return outcome, nil
}

// Acknowledge dismisses the pending result and starts the next round.
func (e *Engine) Acknowledge() error {
	if e.pending == nil {
		return domain.ErrNoPendingResult
	}
	if e.pending.GameOver {
		e.attempts = 0
	}
	e.pending = nil
	e.startRound()
	e.notify()
	return nil
}

// Restart reshuffles the catalog and begins a fresh session.
func (e *Engine) Restart() {
	e.correctCount = 0
	e.wrongCount = 0
	e.attempts = 0
	e.pending = nil
	e.shuffle()
	e.startRound()
	e.notify()
}

// Subscribe registers fn for state changes and returns a function that removes it.
func (e *Engine) Subscribe(fn Observer) func() {
	id := e.nextObsID
	e.nextObsID++
	e.observers = append(e.observers, observerEntry{id: id, fn: fn})
	return func() {
		// build a new slice; notify may be ranging over the current one
		kept := make([]observerEntry, 0, len(e.observers))
		for _, o := range e.observers {
			if o.id != id {
				kept = append(kept, o)
			}
		}
		e.observers = kept
	}
}

// startRound shows the first three countries of the current order and picks
// which one the player must find.
func (e *Engine) startRound() {
	if e.reshuffle && e.roundNumber > 0 {
		e.shuffle()
	}
	e.roundNumber++
	e.correctIndex = e.rnd.Intn(domain.ChoicesPerRound)
}

func (e *Engine) shuffle() {
	e.rnd.Shuffle(len(e.order), func(i, j int) {
		e.order[i], e.order[j] = e.order[j], e.order[i]
	})
}

func (e *Engine) notify() {
	if len(e.observers) == 0 {
		return
	}
	snap := e.Snapshot()
	for _, o := range e.observers {
		o.fn(snap)
	}
}
