package services

import (
	"sync"
	"time"

	"gallerybot/types"
)

type ConvState int

const (
	StateIdle ConvState = iota
	StateAwaitingDescription
)

// Sessions idle longer than this are evicted silently. There is no reply
// timeout for a pending upload beyond this garbage collection.
const sessionTTL = 30 * time.Minute

type Session struct {
	State   ConvState
	Pending *types.Post
	touched time.Time
}

// Sessions tracks each admin's in-flight upload dialogue, keyed by chat id.
// Nothing here is persisted; a restart drops all pending uploads.
type Sessions struct {
	mu     sync.Mutex
	byChat map[int64]*Session
}

func NewSessions() *Sessions {
	s := &Sessions{byChat: make(map[int64]*Session)}

	go s.janitor()

	return s
}

func (s *Sessions) Get(chatId int64) (ConvState, *types.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ses, ok := s.byChat[chatId]
	if !ok {
		return StateIdle, nil
	}
	ses.touched = time.Now()

	return ses.State, ses.Pending
}

func (s *Sessions) Stage(chatId int64, pending *types.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byChat[chatId] = &Session{
		State:   StateAwaitingDescription,
		Pending: pending,
		touched: time.Now(),
	}
}

func (s *Sessions) Clear(chatId int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byChat, chatId)
}

func (s *Sessions) janitor() {
	tic := time.NewTicker(time.Minute)
	for range tic.C {
		s.evict(time.Now())
	}
}

func (s *Sessions) evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for chatId, ses := range s.byChat {
		if now.Sub(ses.touched) > sessionTTL {
			delete(s.byChat, chatId)
		}
	}
}
