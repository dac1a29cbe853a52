package application

import (
	"context"
	"sync"
)

type executionKey struct{}

// Serializer gives one ledger instance single-writer execution: operations
// from independent callers run one at a time. A call made from inside a
// running operation (an asset or funds transfer calling back into the ledger
// with the ctx it was handed) joins the running execution instead of waiting
// on it, so it observes the writes the outer operation has already made.
type Serializer struct {
	mu sync.Mutex
}

func NewSerializer() *Serializer {
	return &Serializer{}
}

// Do runs fn serialized with every other Do on s. A nil Serializer runs fn
// directly.
func (s *Serializer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if s == nil {
		return fn(ctx)
	}
	if owner, ok := ctx.Value(executionKey{}).(*Serializer); ok && owner == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, executionKey{}, s))
}

// Reentrant reports whether ctx belongs to an operation already running on s.
func (s *Serializer) Reentrant(ctx context.Context) bool {
	owner, ok := ctx.Value(executionKey{}).(*Serializer)
	return ok && s != nil && owner == s
}
