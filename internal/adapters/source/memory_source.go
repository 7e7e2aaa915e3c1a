// Package source provides MessageSource implementations.
package source

import (
	"context"
	"sync"

	"github.com/mikey/mail-priority/internal/core"
)

// MemorySource is an in-memory MessageSource, used by the CLI after parsing
// a mail file and by tests
type MemorySource struct {
	mu       sync.RWMutex
	messages map[string]*core.Email
	threads  map[string]*core.ThreadContext
}

// NewMemorySource creates an empty in-memory message source
func NewMemorySource() *MemorySource {
	return &MemorySource{
		messages: make(map[string]*core.Email),
		threads:  make(map[string]*core.ThreadContext),
	}
}

// Add stores a message, optionally with its thread context
func (s *MemorySource) Add(email *core.Email, thread *core.ThreadContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[email.ID] = email
	if thread != nil {
		s.threads[email.ID] = thread
	}
}

// GetMessage retrieves a message by id
func (s *MemorySource) GetMessage(_ context.Context, messageID string) (*core.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email, ok := s.messages[messageID]
	if !ok {
		return nil, core.ErrMessageNotFound
	}
	return email, nil
}

// GetThread retrieves a message's thread context. Messages without recorded
// thread state report a fresh single-message thread.
func (s *MemorySource) GetThread(_ context.Context, messageID string) (*core.ThreadContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if thread, ok := s.threads[messageID]; ok {
		return thread, nil
	}
	if _, ok := s.messages[messageID]; !ok {
		return nil, core.ErrMessageNotFound
	}
	return &core.ThreadContext{Length: 1}, nil
}
