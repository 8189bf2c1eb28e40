package session

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxSessions bounds the store when no size is configured.
const DefaultMaxSessions = 1024

type Store interface {
	Get(id string) (Session, error)
	Put(s Session)
	Delete(id string)
	Len() int
}

// LRUStore evicts the least recently used session once full.
type LRUStore struct {
	cache *lru.Cache[string, Session]
}

// NewLRUStore builds a store holding at most size sessions. onEvict, when
// non-nil, is called with the id of every evicted or deleted session.
func NewLRUStore(size int, onEvict func(id string)) (*LRUStore, error) {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	var (
		cache *lru.Cache[string, Session]
		err   error
	)
	if onEvict != nil {
		cache, err = lru.NewWithEvict[string, Session](size, func(id string, _ Session) { onEvict(id) })
	} else {
		cache, err = lru.New[string, Session](size)
	}
	if err != nil {
		return nil, err
	}
	return &LRUStore{cache: cache}, nil
}

func (s *LRUStore) Get(id string) (Session, error) {
	v, ok := s.cache.Get(strings.TrimSpace(id))
	if !ok {
		return Session{}, ErrNotFound
	}
	return v.Clone(), nil
}

func (s *LRUStore) Put(sess Session) {
	s.cache.Add(sess.ID, sess.Clone())
}

func (s *LRUStore) Delete(id string) {
	s.cache.Remove(strings.TrimSpace(id))
}

func (s *LRUStore) Len() int { return s.cache.Len() }
