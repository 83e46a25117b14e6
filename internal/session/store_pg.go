package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGStore persists sessions as JSONB rows in assistant_sessions.
type PGStore struct {
	DB  *sql.DB
	now func() time.Time
}

// NewPGStore constructs a PGStore.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db, now: time.Now}
}

// Get loads a session. Expired rows are deleted and reported as ErrExpired.
func (r *PGStore) Get(ctx context.Context, id string) (*State, error) {
	const query = `
SELECT state, expires_at
FROM assistant_sessions
WHERE id = $1`
	var payload []byte
	var expiresAt time.Time
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&payload, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !r.clock().Before(expiresAt) {
		if err := r.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, err
	}
	state.ExpiresAt = expiresAt.UTC()
	return &state, nil
}

// Save upserts the session row.
func (r *PGStore) Save(ctx context.Context, state *State) error {
	if state == nil || state.ID == "" {
		return ErrInvalidState
	}
	const query = `
INSERT INTO assistant_sessions (id, state, created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET state = EXCLUDED.state,
    updated_at = EXCLUDED.updated_at,
    expires_at = EXCLUDED.expires_at`
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		state.ID,
		payload,
		state.CreatedAt,
		state.UpdatedAt,
		state.ExpiresAt,
	)
	return err
}

// Delete removes a session row.
func (r *PGStore) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM assistant_sessions WHERE id = $1`, id)
	return err
}

// PurgeExpired deletes rows expired at now and returns their IDs.
func (r *PGStore) PurgeExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `DELETE FROM assistant_sessions WHERE expires_at <= $1 RETURNING id`, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PGStore) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}
