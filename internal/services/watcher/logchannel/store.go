package logchannel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS log_channels (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guild_id TEXT NOT NULL,
	channel_id TEXT NOT NULL,
	webhook_id TEXT NOT NULL,
	webhook_token TEXT NOT NULL,
	thread_id TEXT,
	UNIQUE (guild_id, channel_id)
);`

// Store persists log channels in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at dsn and creates the schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListByGuild returns the log channels of a guild ordered by id.
func (s *Store) ListByGuild(ctx context.Context, guildID string) ([]LogChannel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, guild_id, channel_id, webhook_id, webhook_token, COALESCE(thread_id, '')
		FROM log_channels WHERE guild_id = ? ORDER BY id`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query log channels: %w", err)
	}
	defer rows.Close()

	channels := []LogChannel{}
	for rows.Next() {
		var c LogChannel
		if err := rows.Scan(&c.ID, &c.GuildID, &c.ChannelID, &c.WebhookID, &c.WebhookToken, &c.ThreadID); err != nil {
			return nil, fmt.Errorf("failed to scan log channel: %w", err)
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

// Insert stores c and returns it with its id set.
func (s *Store) Insert(ctx context.Context, c LogChannel) (LogChannel, error) {
	var thread any
	if c.ThreadID != "" {
		thread = c.ThreadID
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO log_channels (guild_id, channel_id, webhook_id, webhook_token, thread_id)
		VALUES (?, ?, ?, ?, ?)`,
		c.GuildID, c.ChannelID, c.WebhookID, c.WebhookToken, thread)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return LogChannel{}, ErrLogChannelExists
		}
		return LogChannel{}, fmt.Errorf("failed to insert log channel: %w", err)
	}

	c.ID, err = res.LastInsertId()
	if err != nil {
		return LogChannel{}, fmt.Errorf("failed to read log channel id: %w", err)
	}
	return c, nil
}

// Get returns the log channel of guildID bound to channelID.
func (s *Store) Get(ctx context.Context, guildID, channelID string) (LogChannel, error) {
	var c LogChannel
	err := s.db.QueryRowContext(ctx,
		`SELECT id, guild_id, channel_id, webhook_id, webhook_token, COALESCE(thread_id, '')
		FROM log_channels WHERE guild_id = ? AND channel_id = ?`, guildID, channelID,
	).Scan(&c.ID, &c.GuildID, &c.ChannelID, &c.WebhookID, &c.WebhookToken, &c.ThreadID)
	if errors.Is(err, sql.ErrNoRows) {
		return LogChannel{}, ErrLogChannelNotFound
	}
	if err != nil {
		return LogChannel{}, fmt.Errorf("failed to query log channel: %w", err)
	}
	return c, nil
}

// Delete removes the log channel with the given id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM log_channels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete log channel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLogChannelNotFound
	}
	return nil
}
