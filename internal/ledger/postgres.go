package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore keeps the removal ledger in a postgres table with the same
// two-column shape as the spreadsheet.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a postgres-backed store with database dependency injected
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Record upserts the channel list for user. The new list replaces any
// previous value.
func (s *PostgresStore) Record(ctx context.Context, user string, channels []string) error {
	query := `
		INSERT INTO removals (intern, channels)
		VALUES ($1, $2)
		ON CONFLICT (intern) DO UPDATE SET channels = EXCLUDED.channels
	`

	if _, err := s.db.ExecContext(ctx, query, user, joinChannels(channels)); err != nil {
		return fmt.Errorf("failed to record removal: %w", err)
	}
	return nil
}

// RestoreChannels returns the stored channel list for user.
func (s *PostgresStore) RestoreChannels(ctx context.Context, user string) ([]string, error) {
	record, err := s.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	return record.Channels, nil
}

// Get retrieves the removal record for user.
func (s *PostgresStore) Get(ctx context.Context, user string) (*RemovalRecord, error) {
	query := `
		SELECT channels
		FROM removals
		WHERE intern = $1
	`

	var joined string
	err := s.db.QueryRowContext(ctx, query, user).Scan(&joined)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get removal record: %w", err)
	}

	return &RemovalRecord{User: user, Channels: splitChannels(joined)}, nil
}
