//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package sqlite provides a SQLite-backed memory storage for persistence
// across restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ensembleworks/ensemble/memory"
)

// Storage implements memory.Storage on a local SQLite database file.
type Storage struct {
	db *sql.DB
}

// New opens (or creates) the database at path and ensures the schema
// exists.
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %s: %w", path, err)
	}
	// The sqlite driver is not safe for concurrent writers on one file.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id    TEXT NOT NULL,
			message_index INTEGER NOT NULL,
			role          TEXT NOT NULL,
			content       TEXT NOT NULL,
			timestamp     TEXT NOT NULL,
			metadata      TEXT,
			PRIMARY KEY (session_id, message_index)
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id      TEXT PRIMARY KEY,
			profile_data TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveMessages implements memory.Storage. The stored session is replaced
// wholesale so message indices stay dense.
func (s *Storage) SaveMessages(ctx context.Context, sessionID string, messages []memory.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionID, err)
	}
	for i, msg := range messages {
		metadata, err := json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sessions (session_id, message_index, role, content, timestamp, metadata)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sessionID, i, msg.Role, msg.Content, msg.Timestamp.Format(time.RFC3339Nano), string(metadata))
		if err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadMessages implements memory.Storage.
func (s *Storage) LoadMessages(ctx context.Context, sessionID string) ([]memory.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, timestamp, metadata FROM sessions
		 WHERE session_id = ? ORDER BY message_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var messages []memory.Message
	for rows.Next() {
		var (
			msg      memory.Message
			ts       string
			metadata sql.NullString
		)
		if err := rows.Scan(&msg.Role, &msg.Content, &ts, &metadata); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if msg.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		if metadata.Valid && metadata.String != "" && metadata.String != "null" {
			if err := json.Unmarshal([]byte(metadata.String), &msg.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// SaveProfile implements memory.Storage.
func (s *Storage) SaveProfile(ctx context.Context, userID string, profile map[string]any) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO profiles (user_id, profile_data, updated_at) VALUES (?, ?, ?)`,
		userID, string(data), time.Now().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save profile %s: %w", userID, err)
	}
	return nil
}

// LoadProfile implements memory.Storage.
func (s *Storage) LoadProfile(ctx context.Context, userID string) (map[string]any, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile_data FROM profiles WHERE user_id = ?`, userID).Scan(&data)
	if err == sql.ErrNoRows {
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
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionID, err)
	}
	return nil
}
