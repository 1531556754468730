package domain

import "time"

// ChoicesPerRound is the number of flags shown in every round.
const ChoicesPerRound = 3

// DefaultSessionLength is the number of answers after which the tally resets.
const DefaultSessionLength = 8

// Country is a catalog entry. ImageRef is an opaque asset key resolved by the client.
type Country struct {
	ID          string `json:"id"`
	Translation string `json:"translation"`
	ImageRef    string `json:"imageRef"`
}

// State is the position of a game in its answer/acknowledge loop.
type State string

const (
	StateAwaitingAnswer         State = "awaiting_answer"
	StateAwaitingAcknowledgment State = "awaiting_acknowledgment"
)

// OutcomeKind tells whether an answer was right.
type OutcomeKind string

const (
	OutcomeCorrect OutcomeKind = "correct"
	OutcomeWrong   OutcomeKind = "wrong"
)

// Outcome is the result of a single answer, shown until acknowledged.
type Outcome struct {
	Kind      OutcomeKind `json:"kind"`
	GameOver  bool        `json:"gameOver"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	CorrectID string      `json:"correctId"`
}

// Choice is one flag button of a round.
type Choice struct {
	ID       string `json:"id"`
	ImageRef string `json:"imageRef"`
}

// Round is the read-only projection of the current question.
type Round struct {
	Number          int      `json:"number"`
	Choices         []Choice `json:"choices"`
	PromptCountryID string   `json:"promptCountryId"`
}

// ChoiceIDs returns the displayed country IDs in button order.
func (r Round) ChoiceIDs() []string {
	ids := make([]string, len(r.Choices))
	for i, c := range r.Choices {
		ids[i] = c.ID
	}
	return ids
}

// Tally holds the per-session counters.
type Tally struct {
	CorrectCount  int `json:"correctCount"`
	WrongCount    int `json:"wrongCount"`
	Attempts      int `json:"attempts"`
	SessionLength int `json:"sessionLength"`
}

// Snapshot is everything a UI needs to render a game.
type Snapshot struct {
	GameID    string    `json:"gameId,omitempty"`
	State     State     `json:"state"`
	Round     Round     `json:"round"`
	Tally     Tally     `json:"tally"`
	Pending   *Outcome  `json:"pending,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
