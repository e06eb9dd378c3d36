package database

import (
	"context"
	"database/sql"
	"time"
)

const usageRepoTimeout = 2 * time.Second

// Usage is one executed command.
type Usage struct {
	GuildID   string
	ChannelID string
	UserID    string
	Command   string
}

// UsageRepository records executed commands. A repository without a
// database is valid and does nothing.
type UsageRepository struct {
	db *sql.DB
}

func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) Record(u Usage) error {
	if r == nil || r.db == nil {
		return nil
	}
	if u.Command == "" || u.UserID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), usageRepoTimeout)
	defer cancel()

	const query = `
		INSERT INTO command_usage (guild_id, channel_id, user_id, command, used_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := r.db.ExecContext(ctx, query, u.GuildID, u.ChannelID, u.UserID, u.Command)
	return err
}

// Total returns how many commands have been executed. ok is false when no
// database is attached.
func (r *UsageRepository) Total() (total int64, ok bool, err error) {
	if r == nil || r.db == nil {
		return 0, false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), usageRepoTimeout)
	defer cancel()

	const query = `SELECT COUNT(*) FROM command_usage`

	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, true, err
	}
	return total, true, nil
}
