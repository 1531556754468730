package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flag-quiz-service/internal/domain"
	"flag-quiz-service/internal/game"
)

// SessionRepository abstracts where live games are registered (in-memory, Redis, etc).
type SessionRepository interface {
	Add(session *Session)
	Get(gameID string) (*Session, bool)
	Delete(gameID string)
}

// CatalogRepository loads country catalogs (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, catalogID string) ([]domain.Country, error)
}

// Settings are applied to every game the service creates.
type Settings struct {
	SessionLength      int
	ReshuffleEachRound bool
	DefaultCatalogID   string
}

// GameService contains the flag quiz use cases.
type GameService struct {
	sessions SessionRepository
	catalogs CatalogRepository
	settings Settings
	logger   *zap.Logger
	newID    func() string
}

func NewGameService(store SessionRepository, catalogs CatalogRepository, settings Settings, logger *zap.Logger) *GameService {
	if settings.SessionLength == 0 {
		settings.SessionLength = domain.DefaultSessionLength
	}
	if settings.DefaultCatalogID == "" {
		settings.DefaultCatalogID = game.DefaultCatalogID
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameService{
		sessions: store,
		catalogs: catalogs,
		settings: settings,
		logger:   logger,
		newID:    func() string { return uuid.NewString() },
	}
}

// NewGame loads a catalog and starts a game on it. An empty catalogID selects the default catalog.
func (s *GameService) NewGame(ctx context.Context, catalogID string) (domain.Snapshot, error) {
	if catalogID == "" {
		catalogID = s.settings.DefaultCatalogID
	}
	countries, err := s.catalogs.GetCatalog(ctx, catalogID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("load catalog %q: %w", catalogID, err)
	}

	engine, err := game.New(countries,
		game.WithSessionLength(s.settings.SessionLength),
		game.WithReshuffleEachRound(s.settings.ReshuffleEachRound),
	)
	if err != nil {
		return domain.Snapshot{}, err
	}

	session := NewSession(s.newID(), engine)
	s.sessions.Add(session)
	s.logger.Info("game created",
		zap.String("game_id", session.ID()),
		zap.String("catalog_id", catalogID),
		zap.Int("catalog_size", engine.Catalog().Len()),
	)
	return session.snapshot(), nil
}

// Snapshot returns the current state of a game.
func (s *GameService) Snapshot(_ context.Context, gameID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return domain.Snapshot{}, domain.ErrGameNotFound
	}
	return session.snapshot(), nil
}

// SubmitAnswer scores a tapped flag and returns the outcome with the resulting state.
func (s *GameService) SubmitAnswer(_ context.Context, gameID string, choice int) (domain.Outcome, domain.Snapshot, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return domain.Outcome{}, domain.Snapshot{}, domain.ErrGameNotFound
	}

	outcome, snap, err := session.submit(choice)
	if err != nil {
		return domain.Outcome{}, domain.Snapshot{}, err
	}
	s.logger.Debug("answer submitted",
		zap.String("game_id", gameID),
		zap.Int("choice", choice),
		zap.String("outcome", string(outcome.Kind)),
	)
	if outcome.GameOver {
		s.logger.Info("session finished", zap.String("game_id", gameID))
	}
	return outcome, snap, nil
}

// Acknowledge dismisses the pending result and moves the game to its next round.
func (s *GameService) Acknowledge(_ context.Context, gameID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return domain.Snapshot{}, domain.ErrGameNotFound
	}
	return session.acknowledge()
}

// Restart reshuffles the catalog of a game and zeroes its tally.
func (s *GameService) Restart(_ context.Context, gameID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return domain.Snapshot{}, domain.ErrGameNotFound
	}
	s.logger.Info("game restarted", zap.String("game_id", gameID))
	return session.restart(), nil
}

// Subscribe returns a channel that receives snapshots of a game.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, gameID string) (<-chan domain.Snapshot, func(), error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return nil, nil, domain.ErrGameNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// End drops a game and closes its subscriptions.
func (s *GameService) End(_ context.Context, gameID string) error {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return domain.ErrGameNotFound
	}
	session.Close()
	s.sessions.Delete(gameID)
	s.logger.Info("game ended", zap.String("game_id", gameID))
	return nil
}

// Session guards one engine and fans its state out to subscribers.
type Session struct {
	id          string
	createdAt   time.Time
	mu          sync.Mutex
	engine      *game.Engine
	subscribers map[chan domain.Snapshot]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string, engine *game.Engine) *Session {
	s := &Session{
		id:          id,
		createdAt:   time.Now(),
		engine:      engine,
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
	// Engine observers run inside engine calls, which only happen under s.mu.
	engine.Subscribe(s.broadcastLocked)
	return s
}

// ID returns the game ID.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the game started.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) submit(choice int) (domain.Outcome, domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome, err := s.engine.SubmitAnswer(choice)
	if err != nil {
		return domain.Outcome{}, domain.Snapshot{}, err
	}
	return outcome, s.snapshotLocked(), nil
}

func (s *Session) acknowledge() (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Acknowledge(); err != nil {
		return domain.Snapshot{}, err
	}
	return s.snapshotLocked(), nil
}

func (s *Session) restart() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Restart()
	return s.snapshotLocked()
}

func (s *Session) subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// the buffer is empty, so this cannot block; sending under the lock keeps
	// the initial snapshot ahead of any broadcast and away from Close
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close ends every subscription of the game.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) broadcastLocked(snap domain.Snapshot) {
	snap.GameID = s.id
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the oldest update so a slow reader never blocks the game
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := s.engine.Snapshot()
	snap.GameID = s.id
	return snap
}
