// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists finished briefs and user accounts in SQLite
// and writes the exportable artifacts.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/meshintel/brief-engine/internal/pipeline"
	"github.com/meshintel/brief-engine/pkg/types"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store manages the briefs SQLite database.
type Store struct {
	db          *sql.DB
	artifactDir string
}

// NewStore opens or creates the database at cfg.DBPath and ensures the
// schema exists.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("database path not configured")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, artifactDir: cfg.ArtifactDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			credits INTEGER NOT NULL DEFAULT 0,
			subscribed INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS briefs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			topic TEXT NOT NULL,
			brief_json TEXT NOT NULL,
			provenance_json TEXT NOT NULL,
			artifact_path TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_briefs_user ON briefs(user_id, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveBrief inserts a finished run, assigning the record ID and
// creation time.
func (s *Store) SaveBrief(ctx context.Context, record *types.BriefRecord) error {
	briefJSON, err := json.Marshal(record.Brief)
	if err != nil {
		return fmt.Errorf("encoding brief: %w", err)
	}
	provJSON, err := json.Marshal(record.Provenance)
	if err != nil {
		return fmt.Errorf("encoding provenance: %w", err)
	}

	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO briefs (id, user_id, topic, brief_json, provenance_json, artifact_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.Topic, string(briefJSON), string(provJSON),
		record.ArtifactPath, record.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting brief: %w", err)
	}
	return nil
}

// SetArtifactPath records where the rendered artifact landed.
func (s *Store) SetArtifactPath(ctx context.Context, id, path string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE briefs SET artifact_path = ? WHERE id = ?`, path, id)
	if err != nil {
		return fmt.Errorf("updating artifact path: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: brief %s", ErrNotFound, id)
	}
	return nil
}

// GetBrief loads one record by ID.
func (s *Store) GetBrief(ctx context.Context, id string) (*types.BriefRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, topic, brief_json, provenance_json, artifact_path, created_at
		 FROM briefs WHERE id = ?`, id)
	return scanBrief(row)
}

// ListBriefs returns a user's records, newest first. An empty userID
// lists everything.
func (s *Store) ListBriefs(ctx context.Context, userID string) ([]*types.BriefRecord, error) {
	query := `SELECT id, user_id, topic, brief_json, provenance_json, artifact_path, created_at
		 FROM briefs`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing briefs: %w", err)
	}
	defer rows.Close()

	var records []*types.BriefRecord
	for rows.Next() {
		record, err := scanBrief(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBrief(row rowScanner) (*types.BriefRecord, error) {
	var (
		record    types.BriefRecord
		briefJSON string
		provJSON  string
		createdAt string
	)
	err := row.Scan(&record.ID, &record.UserID, &record.Topic, &briefJSON, &provJSON,
		&record.ArtifactPath, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning brief: %w", err)
	}

	if err := json.Unmarshal([]byte(briefJSON), &record.Brief); err != nil {
		return nil, fmt.Errorf("decoding brief %s: %w", record.ID, err)
	}
	if err := json.Unmarshal([]byte(provJSON), &record.Provenance); err != nil {
		return nil, fmt.Errorf("decoding provenance %s: %w", record.ID, err)
	}
	if record.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing timestamp for %s: %w", record.ID, err)
	}
	return &record, nil
}

// EnsureUser creates or updates an account with the given standing.
func (s *Store) EnsureUser(ctx context.Context, userID string, credits int, subscribed bool) error {
	sub := 0
	if subscribed {
		sub = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, credits, subscribed, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET credits = excluded.credits, subscribed = excluded.subscribed`,
		userID, credits, sub, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// GetUser returns an account's credits and subscription state.
func (s *Store) GetUser(ctx context.Context, userID string) (credits int, subscribed bool, err error) {
	var sub int
	err = s.db.QueryRowContext(ctx,
		`SELECT credits, subscribed FROM users WHERE id = ?`, userID).Scan(&credits, &sub)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if err != nil {
		return 0, false, fmt.Errorf("loading user: %w", err)
	}
	return credits, sub == 1, nil
}

// CheckAndReserve gates a run on account standing. An unknown or
// unsubscribed user is blocked before any credits are considered.
func (s *Store) CheckAndReserve(ctx context.Context, userID string) error {
	credits, subscribed, err := s.GetUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return pipeline.ErrNoSubscription
	}
	if err != nil {
		return err
	}
	if !subscribed {
		return pipeline.ErrNoSubscription
	}
	if credits <= 0 {
		return pipeline.ErrNoCredits
	}
	return nil
}

// Deduct settles one credit after a successful delivery. The guard in
// the WHERE clause keeps a concurrent run from driving the balance
// negative.
func (s *Store) Deduct(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET credits = credits - 1 WHERE id = ? AND credits > 0`, userID)
	if err != nil {
		return fmt.Errorf("deducting credit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return pipeline.ErrNoCredits
	}
	return nil
}
