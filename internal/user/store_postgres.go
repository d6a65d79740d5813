package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"greensquirrel/pkg/platform/sentinel"
)

// PostgresStore persists user documents in a jsonb column, mirroring the
// partition-key/document-id layout of a document collection.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithPostgresClock injects the clock used for timestamp stamps.
func WithPostgresClock(now func() time.Time) PostgresOption {
	return func(s *PostgresStore) { s.now = now }
}

// NewPostgresStore constructs a store over an open connection pool.
func NewPostgresStore(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM users WHERE partition_key = $1 AND id = $2`,
		PartitionKey, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return decodeUser(raw)
}

func (s *PostgresStore) FindByGoogleID(ctx context.Context, googleUserID string) (*User, error) {
	// Ordered by created_at so "first match" stays deterministic even if the
	// uniqueness invariant were ever violated out-of-band.
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM users
		 WHERE partition_key = $1 AND doc ->> 'googleUserId' = $2
		 ORDER BY created_at
		 LIMIT 1`,
		PartitionKey, googleUserID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user by google id: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user by google id: %w", err)
	}
	return decodeUser(raw)
}

func (s *PostgresStore) Create(ctx context.Context, u *User) (*User, error) {
	created := cloneUser(u)
	created.ID = uuid.NewString()
	created.PartitionKey = PartitionKey
	now := s.now().UTC()
	created.CreatedAt = now
	created.LastLoginAt = now

	raw, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (partition_key, id, doc, created_at) VALUES ($1, $2, $3, $4)`,
		created.PartitionKey, created.ID, raw, created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) Update(ctx context.Context, u *User) (*User, error) {
	updated := cloneUser(u)
	updated.LastLoginAt = s.now().UTC()

	raw, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET doc = $3 WHERE partition_key = $1 AND id = $2`,
		PartitionKey, updated.ID, raw,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update user rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("user %s: %w", updated.ID, sentinel.ErrNotFound)
	}
	return updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM users WHERE partition_key = $1 AND id = $2`,
		PartitionKey, id,
	)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

func decodeUser(raw []byte) (*User, error) {
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user document: %w", err)
	}
	return &u, nil
}

var _ Store = (*PostgresStore)(nil)
