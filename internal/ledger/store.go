// Package ledger tracks which private channels each deported user was
// removed from, so reinstatement can put them back.
package ledger

import (
	"context"
	"errors"
)

// Common errors
var (
	// ErrRecordNotFound means the user was never recorded as removed.
	ErrRecordNotFound = errors.New("removal record not found")
)

// Store persists removal records. A repeat removal of the same user
// overwrites the stored channel list; it never merges. That is deliberate:
// the new removal's enumeration is taken as the current truth.
type Store interface {
	// Record writes the channel list for user, replacing any prior row.
	Record(ctx context.Context, user string, channels []string) error

	// RestoreChannels returns the channels user was removed from, or
	// ErrRecordNotFound if there is no row for them.
	RestoreChannels(ctx context.Context, user string) ([]string, error)

	// Get returns the full record for user, or ErrRecordNotFound.
	Get(ctx context.Context, user string) (*RemovalRecord, error)
}
