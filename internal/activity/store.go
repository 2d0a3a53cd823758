package activity

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrStore wraps every persistence failure. The caller still holds the
	// record it tried to save and may retry.
	ErrStore = errors.New("activity store error")

	// ErrNotFound is returned when no record exists for an id.
	ErrNotFound = errors.New("activity not found")
)

// Store persists finalized activity records keyed by Record.ID.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	// List returns the owner's records, newest first.
	List(ctx context.Context, ownerID string) ([]Record, error)
	Delete(ctx context.Context, id string) error
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
