package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")
	// ErrExpired is returned the first time an expired session is read. It
	// matches ErrNotFound; callers use it to release what the session owned.
	ErrExpired = fmt.Errorf("%w: expired", ErrNotFound)
	// ErrInvalidState is returned when saving a state without an ID.
	ErrInvalidState = errors.New("invalid session state")
)

// Store persists session state.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
	// PurgeExpired removes sessions expired at now and returns their IDs.
	PurgeExpired(ctx context.Context, now time.Time) ([]string, error)
}
