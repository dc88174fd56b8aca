//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package redis provides a Redis-backed memory storage for shared
// persistence across processes.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ensembleworks/ensemble/memory"
)

const (
	sessionKeyPrefix = "ensemble:session:"
	profileKeyPrefix = "ensemble:profile:"
)

// Storage implements memory.Storage on a Redis server. Sessions are lists
// of JSON messages, profiles are JSON strings.
type Storage struct {
	client *redis.Client
}

// New creates a storage from a Redis address, e.g. "localhost:6379".
func New(addr string) *Storage {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr}))
}

// NewWithClient wraps an existing client, e.g. one with auth or TLS
// options.
func NewWithClient(client *redis.Client) *Storage {
	return &Storage{client: client}
}

// Close releases the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}

// SaveMessages implements memory.Storage. The stored session is replaced
// wholesale in one pipeline.
func (s *Storage) SaveMessages(ctx context.Context, sessionID string, messages []memory.Message) error {
	key := sessionKeyPrefix + sessionID
	encoded := make([]any, len(messages))
	for i, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("encode message %d: %w", i, err)
		}
		encoded[i] = data
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(encoded) > 0 {
		pipe.RPush(ctx, key, encoded...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// LoadMessages implements memory.Storage.
func (s *Storage) LoadMessages(ctx context.Context, sessionID string) ([]memory.Message, error) {
	raw, err := s.client.LRange(ctx, sessionKeyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	messages := make([]memory.Message, 0, len(raw))
	for _, item := range raw {
		var msg memory.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// SaveProfile implements memory.Storage.
func (s *Storage) SaveProfile(ctx context.Context, userID string, profile map[string]any) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.client.Set(ctx, profileKeyPrefix+userID, data, 0).Err(); err != nil {
		return fmt.Errorf("save profile %s: %w", userID, err)
	}
	return nil
}

// LoadProfile implements memory.Storage.
func (s *Storage) LoadProfile(ctx context.Context, userID string) (map[string]any, error) {
	data, err := s.client.Get(ctx, profileKeyPrefix+userID).Result()
	if err == redis.Nil {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	var profile map[string]any
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	return profile, nil
}

// ClearSession implements memory.Storage.
func (s *Storage) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionID, err)
	}
	return nil
}
