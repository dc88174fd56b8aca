//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package inmemory provides a map-backed memory storage. Data is lost on
// restart; intended for tests and short-lived sessions.
package inmemory

import (
	"context"
	"sync"

	"github.com/ensembleworks/ensemble/memory"
)

// Storage implements memory.Storage with in-process maps.
type Storage struct {
	mu       sync.RWMutex
	sessions map[string][]memory.Message
	profiles map[string]map[string]any
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{
		sessions: make(map[string][]memory.Message),
		profiles: make(map[string]map[string]any),
	}
}

// SaveMessages implements memory.Storage.
func (s *Storage) SaveMessages(_ context.Context, sessionID string, messages []memory.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append([]memory.Message(nil), messages...)
	return nil
}

// LoadMessages implements memory.Storage.
func (s *Storage) LoadMessages(_ context.Context, sessionID string) ([]memory.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]memory.Message(nil), s.sessions[sessionID]...), nil
}

// SaveProfile implements memory.Storage.
func (s *Storage) SaveProfile(_ context.Context, userID string, profile map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]any, len(profile))
	for k, v := range profile {
		copied[k] = v
	}
	s.profiles[userID] = copied
	return nil
}

// LoadProfile implements memory.Storage.
func (s *Storage) LoadProfile(_ context.Context, userID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return map[string]any{}, nil
	}
	copied := make(map[string]any, len(profile))
	for k, v := range profile {
		copied[k] = v
	}
	return copied, nil
}

// ClearSession implements memory.Storage.
func (s *Storage) ClearSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
