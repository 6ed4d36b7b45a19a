package client

import (
	"context"
	"sync"
	"unicode/utf8"
)

// Hints shown beneath the user search box.
const (
	HintTooShort = "Enter at least 2 characters to search"
	HintNoUsers  = "No users found"
	MinQuery     = 2
)

// SearchResult answers one Search call.
type SearchResult struct {
	Seq   uint64
	Query string
	Users []User
	Hint  string
	Err   error
}

// UserSearcher runs user searches so that only the most recent query is
// ever delivered: each call gets a higher sequence number, cancels the
// request in flight and results for older sequences are dropped.
type UserSearcher struct {
	c       *Client
	deliver func(SearchResult)

	mu     sync.Mutex
	latest uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewUserSearcher creates a searcher. deliver is called with the lock held
// and must not call Search.
func NewUserSearcher(c *Client, deliver func(SearchResult)) *UserSearcher {
	return &UserSearcher{c: c, deliver: deliver}
}

// Search starts a query and returns its sequence number.
func (s *UserSearcher) Search(ctx context.Context, q string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest++
	seq := s.latest
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if utf8.RuneCountInString(q) < MinQuery {
		s.deliver(SearchResult{Seq: seq, Query: q, Users: []User{}, Hint: HintTooShort})
		return seq
	}

	rctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		users, err := s.c.SearchUsers(rctx, q)

		s.mu.Lock()
		defer s.mu.Unlock()
		if seq != s.latest {
			return
		}
		res := SearchResult{Seq: seq, Query: q, Users: users, Err: err}
		if err == nil && len(users) == 0 {
			res.Hint = HintNoUsers
		}
		s.deliver(res)
	}()
	return seq
}

// Close cancels the search in flight and waits for it to finish.
func (s *UserSearcher) Close() {
	s.mu.Lock()
	s.latest++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Wait blocks until the search in flight, if any, has answered or been
// dropped. Unlike Close it lets the latest query deliver.
func (s *UserSearcher) Wait() {
	s.wg.Wait()
}
