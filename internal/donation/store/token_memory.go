package store

import (
	"context"
	"sync"
	"time"

	"galang/pkg/platform/sentinel"
)

type tokenEntry struct {
	externalRef string
	expiresAt   time.Time
}

// InMemoryTokens is the non-Redis fallback for payment tokens. Entries are
// reaped lazily on lookup.
type InMemoryTokens struct {
	mu     sync.Mutex
	tokens map[string]tokenEntry
}

func NewInMemoryTokens() *InMemoryTokens {
	return &InMemoryTokens{tokens: make(map[string]tokenEntry)}
}

func (s *InMemoryTokens) Save(_ context.Context, token, externalRef string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = tokenEntry{externalRef: externalRef, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *InMemoryTokens) Resolve(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.tokens, token)
		return "", sentinel.ErrExpired
	}
	return entry.externalRef, nil
}
