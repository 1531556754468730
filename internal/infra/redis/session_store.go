package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"flag-quiz-service/internal/app"
)

// markerTimeout bounds every liveness call so a stalled Redis cannot hold up play.
const markerTimeout = 200 * time.Millisecond

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - Games live in a local map; engines are in-process state and never leave it.
//   - Redis only carries a liveness marker per game, refreshed on every access,
//     so operators can count active games across instances.
//   - A game whose marker expired is dropped locally on its next access, and
//     games idle for longer than the TTL are swept on Add.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	clock    func() time.Time
	mu       sync.RWMutex
	sessions map[string]*storedSession
}

type storedSession struct {
	session  *app.Session
	lastSeen time.Time
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
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

	for _, old := range evicted {
		old.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	// best-effort liveness marker
	_ = s.client.Set(ctx, s.key(session.ID()), session.CreatedAt().Unix(), s.ttl).Err()
}

func (s *SessionStore) Get(gameID string) (*app.Session, bool) {
	s.mu.RLock()
	entry, ok := s.sessions[gameID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl <= 0 {
		return entry.session, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	alive, err := s.client.Expire(ctx, s.key(gameID), s.ttl).Result()
	if err == nil && !alive {
		s.drop(gameID, entry)
		return nil, false
	}

	s.mu.Lock()
	entry.lastSeen = s.clock()
	s.mu.Unlock()
	return entry.session, true
}

func (s *SessionStore) Delete(gameID string) {
	s.mu.Lock()
	_, ok := s.sessions[gameID]
	delete(s.sessions, gameID)
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	_ = s.client.Del(ctx, s.key(gameID)).Err()
}

// Len reports how many games this instance holds.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// drop removes a game whose marker is gone, unless it was replaced meanwhile.
func (s *SessionStore) drop(gameID string, entry *storedSession) {
	s.mu.Lock()
	current, ok := s.sessions[gameID]
	if ok && current == entry {
		delete(s.sessions, gameID)
	}
	s.mu.Unlock()
	if ok && current == entry {
		entry.session.Close()
	}
}

func (s *SessionStore) sweepLocked(now time.Time) []*app.Session {
	if s.ttl <= 0 {
		return nil
	}
	var evicted []*app.Session
	for id, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.sessions, id)
			evicted = append(evicted, entry.session)
		}
	}
	return evicted
}

func (s *SessionStore) key(gameID string) string {
	return "game:session:" + gameID
}
