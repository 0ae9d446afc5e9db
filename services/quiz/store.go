package quiz

import (
	"hash/fnv"
	"sync"
	"time"

	"mentor/models"
)

const storeShards = 16

// sessionStore is the active-session table: a sharded mutex map keyed
// by user ID. Sharding keeps unrelated users fully parallel while a
// shard lock makes each user's read-modify-write atomic. Quiz
// mutations are short and synchronous, so holding the shard lock for
// the whole operation is safe; generative calls never happen under it.
type sessionStore struct {
	shards [storeShards]storeShard
}

type storeShard struct {
	mu       sync.Mutex
	sessions map[string]*models.QuizSession
}

func newSessionStore() *sessionStore {
	store := &sessionStore{}
	for i := range store.shards {
		store.shards[i].sessions = make(map[string]*models.QuizSession)
	}
	return store
}

func (s *sessionStore) shard(userID string) *storeShard {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &s.shards[h.Sum32()%storeShards]
}

// active reports whether the user currently has a session.
func (s *sessionStore) active(userID string) bool {
	sh := s.shard(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, ok := sh.sessions[userID]
	return ok
}

// putIfAbsent installs a new session unless one already exists,
// preserving the one-active-session-per-user invariant.
func (s *sessionStore) putIfAbsent(sess *models.QuizSession) bool {
	sh := s.shard(sess.UserID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.sessions[sess.UserID]; ok {
		return false
	}
	sh.sessions[sess.UserID] = sess
	return true
}

// update runs fn on the user's session under the shard lock. fn's
// second return value requests removal of the session (finalization).
// ok is false when no session exists, in which case fn never ran.
func (s *sessionStore) update(userID string, fn func(*models.QuizSession) (reply string, remove bool)) (reply string, ok bool) {
	sh := s.shard(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[userID]
	if !ok {
		return "", false
	}

	reply, remove := fn(sess)
	if remove {
		delete(sh.sessions, userID)
	}
	return reply, true
}

// expireStale removes and returns every session idle for longer than
// ttl. Reports for the removed sessions are emitted by the caller.
func (s *sessionStore) expireStale(ttl time.Duration) []*models.QuizSession {
	cutoff := time.Now().Add(-ttl)
	var expired []*models.QuizSession

	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for userID, sess := range sh.sessions {
			if sess.LastActivity.Before(cutoff) {
				expired = append(expired, sess)
				delete(sh.sessions, userID)
			}
		}
		sh.mu.Unlock()
	}
	return expired
}
