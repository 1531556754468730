package memory

import (
	"sync"
	"time"

	"flag-quiz-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Games untouched for longer than idleTTL are evicted on the next Add or Get.
type SessionStore struct {
	mu       sync.RWMutex
	idleTTL  time.Duration
	clock    func() time.Time
	sessions map[string]*storedSession
}

type storedSession struct {
	session  *app.Session
	lastSeen time.Time
}

// NewSessionStore builds a store; idleTTL <= 0 disables eviction.
func NewSessionStore(idleTTL time.Duration) *SessionStore {
	return &SessionStore{
		idleTTL:  idleTTL,
		clock:    time.Now,
		sessions: make(map[string]*storedSession),
	}
}

func (s *SessionStore) Add(session *app.Session) {
	s.mu.Lock()
	now := s.clock()
	evicted := s.sweepLocked(now)
	s.sessions[session.ID()] = &storedSession{session: session, lastSeen: now}
	s.mu.Unlock()
	closeAll(evicted)
}

func (s *SessionStore) Get(gameID string) (*app.Session, bool) {
	s.mu.Lock()
	now := s.clock()
	evicted := s.sweepLocked(now)
	entry, ok := s.sessions[gameID]
	if ok {
		entry.lastSeen = now
	}
	s.mu.Unlock()
	closeAll(evicted)
	if !ok {
		return nil, false
	}
	return entry.session, true
}

func (s *SessionStore) Delete(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, gameID)
}

// Len reports how many games are live.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) sweepLocked(now time.Time) []*app.Session {
	if s.idleTTL <= 0 {
		return nil
	}
	var evicted []*app.Session
	for id, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > s.idleTTL {
			delete(s.sessions, id)
			evicted = append(evicted, entry.session)
		}
	}
	return evicted
}

// closeAll runs outside the store lock; Session.Close takes the game's own lock.
func closeAll(sessions []*app.Session) {
	for _, session := range sessions {
		session.Close()
	}
}
