//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package memory provides conversation history and user profile storage
// for agents.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ensembleworks/ensemble/log"
	"github.com/ensembleworks/ensemble/model"
)

// defaultWindow is the number of recent messages kept in prompt context.
const defaultWindow = 50

// Message is a single remembered conversation turn.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Storage persists conversation messages and user profiles. Messages are
// keyed by session id, profiles by user id.
type Storage interface {
	SaveMessages(ctx context.Context, sessionID string, messages []Message) error
	LoadMessages(ctx context.Context, sessionID string) ([]Message, error)
	SaveProfile(ctx context.Context, userID string, profile map[string]any) error
	LoadProfile(ctx context.Context, userID string) (map[string]any, error)
	ClearSession(ctx context.Context, sessionID string) error
}

// Memory tracks a conversation session backed by a Storage implementation.
// Insertion order of messages is significant and preserved.
type Memory struct {
	storage   Storage
	sessionID string
	userID    string
	window    int
	persist   bool

	messages []Message
	profile  map[string]any
	summary  string
}

// Option configures a Memory.
type Option func(*Memory)

// WithSessionID sets the session identifier; a random one is generated
// when unset.
func WithSessionID(id string) Option {
	return func(m *Memory) {
		m.sessionID = id
	}
}

// WithUserID sets the user identifier enabling cross-session profiles.
func WithUserID(id string) Option {
	return func(m *Memory) {
		m.userID = id
	}
}

// WithWindow bounds how many recent messages enter prompt context.
func WithWindow(n int) Option {
	return func(m *Memory) {
		if n > 0 {
			m.window = n
		}
	}
}

// WithFullSessionPersistence controls whether every AddMessage writes the
// session back to storage. Enabled by default.
func WithFullSessionPersistence(enabled bool) Option {
	return func(m *Memory) {
		m.persist = enabled
	}
}

// New creates a Memory on top of the given storage, loading any messages
// and profile already stored for the session and user.
func New(ctx context.Context, storage Storage, opts ...Option) (*Memory, error) {
	m := &Memory{
		storage: storage,
		window:  defaultWindow,
		persist: true,
		profile: map[string]any{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sessionID == "" {
		m.sessionID = uuid.NewString()
	}

	messages, err := storage.LoadMessages(ctx, m.sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", m.sessionID, err)
	}
	m.messages = messages

	if m.userID != "" {
		profile, err := storage.LoadProfile(ctx, m.userID)
		if err != nil {
			return nil, fmt.Errorf("load profile %s: %w", m.userID, err)
		}
		if profile != nil {
			m.profile = profile
		}
	}
	return m, nil
}

// SessionID returns the session identifier.
func (m *Memory) SessionID() string {
	return m.sessionID
}

// AddMessage appends a conversation turn. When persistence is enabled the
// whole session is written back to storage.
func (m *Memory) AddMessage(ctx context.Context, role, content string, metadata map[string]any) error {
	m.messages = append(m.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	})
	if !m.persist {
		return nil
	}
	if err := m.storage.SaveMessages(ctx, m.sessionID, m.messages); err != nil {
		return fmt.Errorf("save session %s: %w", m.sessionID, err)
	}
	return nil
}

// Messages returns recent messages. A zero limit means the configured
// window.
func (m *Memory) Messages(limit int) []Message {
	if limit <= 0 {
		limit = m.window
	}
	if limit >= len(m.messages) {
		return append([]Message(nil), m.messages...)
	}
	return append([]Message(nil), m.messages[len(m.messages)-limit:]...)
}

// MessagesForPrompt returns recent messages shaped for a model request.
func (m *Memory) MessagesForPrompt(limit int) []model.Message {
	recent := m.Messages(limit)
	result := make([]model.Message, len(recent))
	for i, msg := range recent {
		result[i] = model.Message{Role: model.Role(msg.Role), Content: msg.Content}
	}
	return result
}

// Context combines the running summary and the user profile into a text
// block for the system prompt. It returns the empty string when neither
// exists.
func (m *Memory) Context() string {
	var parts []string
	if m.summary != "" {
		parts = append(parts, "Conversation Summary:\n"+m.summary)
	}
	if len(m.profile) > 0 {
		data, err := json.MarshalIndent(m.profile, "", "  ")
		if err != nil {
			log.Debugf("marshal profile for session %s: %v", m.sessionID, err)
		} else {
			parts = append(parts, "User Profile:\n"+string(data))
		}
	}
	return strings.Join(parts, "\n\n")
}

// UpdateProfile merges updates into the user profile and persists it when
// a user id is configured.
func (m *Memory) UpdateProfile(ctx context.Context, updates map[string]any) error {
	for k, v := range updates {
		m.profile[k] = v
	}
	if m.userID == "" {
		return nil
	}
	if err := m.storage.SaveProfile(ctx, m.userID, m.profile); err != nil {
		return fmt.Errorf("save profile %s: %w", m.userID, err)
	}
	return nil
}

// Profile returns a copy of the current user profile.
func (m *Memory) Profile() map[string]any {
	out := make(map[string]any, len(m.profile))
	for k, v := range m.profile {
		out[k] = v
	}
	return out
}

// Clear drops the conversation history in memory and in storage.
func (m *Memory) Clear(ctx context.Context) error {
	m.messages = nil
	if err := m.storage.ClearSession(ctx, m.sessionID); err != nil {
		return fmt.Errorf("clear session %s: %w", m.sessionID, err)
	}
	return nil
}

// Len returns the number of remembered messages.
func (m *Memory) Len() int {
	return len(m.messages)
}

// Summary returns the current running summary, if any.
func (m *Memory) Summary() string {
	return m.summary
}

// Summarize asks the given model for a compressed summary of the recent
// conversation and stores it as the running summary.
func (m *Memory) Summarize(ctx context.Context, mdl model.Model) (string, error) {
	if len(m.messages) == 0 {
		return "", nil
	}

	var transcript strings.Builder
	for _, msg := range m.Messages(0) {
		transcript.WriteString(msg.Role)
		transcript.WriteString(": ")
		transcript.WriteString(msg.Content)
		transcript.WriteString("\n")
	}

	rsp, err := mdl.Converse(ctx, &model.Request{
		Messages: []model.Message{
			model.NewSystemMessage("Summarize the following conversation in a few sentences. Keep facts the assistant may need later."),
			model.NewUserMessage(transcript.String()),
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize session %s: %w", m.sessionID, err)
	}
	m.summary = rsp.Text()
	return m.summary, nil
}
