package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/recruitbot/internal/domain"
	"github.com/ashureev/recruitbot/internal/shared"
	_ "modernc.org/sqlite"
)

// MemoryDSN keeps the database inside the process.
const MemoryDSN = ":memory:"

const (
	writeRetries   = 3
	writeBaseDelay = 50 * time.Millisecond
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens the store. In-memory DSNs are pinned to a single
// connection so every query sees the same database.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == MemoryDSN || strings.Contains(dsn, "mode=memory")
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS guild_configs (
		guild_id TEXT PRIMARY KEY,
		voice_creator_channel_id TEXT NOT NULL DEFAULT '',
		summary_channel_id TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS temp_rooms (
		channel_id TEXT PRIMARY KEY,
		guild_id TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_temp_rooms_guild ON temp_rooms(guild_id);

	CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);
	INSERT OR IGNORE INTO counters (name, value) VALUES ('voice_room', 0);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// GetGuildConfig returns the settings for a guild.
func (s *SQLiteStore) GetGuildConfig(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	cfg := domain.GuildConfig{GuildID: guildID}
	row := s.db.QueryRowContext(ctx,
		`SELECT voice_creator_channel_id, summary_channel_id FROM guild_configs WHERE guild_id = ?`, guildID)

	err := row.Scan(&cfg.VoiceCreatorChannelID, &cfg.SummaryChannelID)
	if errors.Is(err, sql.ErrNoRows) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("scan guild config: %w", err)
	}
	return cfg, nil
}

// SetVoiceCreatorChannel sets the voice room creator channel for a guild.
func (s *SQLiteStore) SetVoiceCreatorChannel(ctx context.Context, guildID, channelID string) error {
	return s.upsertGuildColumn(ctx, "voice_creator_channel_id", guildID, channelID)
}

// SetSummaryChannel sets the summary feed channel for a guild.
func (s *SQLiteStore) SetSummaryChannel(ctx context.Context, guildID, channelID string) error {
	return s.upsertGuildColumn(ctx, "summary_channel_id", guildID, channelID)
}

// upsertGuildColumn writes one settings column. column is never user input.
func (s *SQLiteStore) upsertGuildColumn(ctx context.Context, column, guildID, channelID string) error {
	query := fmt.Sprintf(`
	INSERT INTO guild_configs (guild_id, %[1]s, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(guild_id) DO UPDATE SET
		%[1]s = excluded.%[1]s,
		updated_at = excluded.updated_at`, column)

	err := shared.RetryOnConflict(ctx, "upsert guild config", writeRetries, writeBaseDelay, func() error {
		_, err := s.db.ExecContext(ctx, query, guildID, channelID, time.Now().Unix())
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert guild config: %w", err)
	}
	slog.Info("Guild config updated", "guild_id", guildID, "setting", column, "channel_id", channelID)
	return nil
}

// NextRoomNumber increments the voice room counter in one statement.
func (s *SQLiteStore) NextRoomNumber(ctx context.Context) (int, error) {
	var n int
	err := shared.RetryOnConflict(ctx, "next room number", writeRetries, writeBaseDelay, func() error {
		return s.db.QueryRowContext(ctx,
			`UPDATE counters SET value = value + 1 WHERE name = 'voice_room' RETURNING value`).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("increment room counter: %w", err)
	}
	return n, nil
}

// AddTempRoom records a bot-created voice channel.
func (s *SQLiteStore) AddTempRoom(ctx context.Context, guildID, channelID string) error {
	err := shared.RetryOnConflict(ctx, "add temp room", writeRetries, writeBaseDelay, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO temp_rooms (channel_id, guild_id, created_at) VALUES (?, ?, ?)`,
			channelID, guildID, time.Now().Unix())
		return err
	})
	if err != nil {
		return fmt.Errorf("add temp room: %w", err)
	}
	return nil
}

// IsTempRoom reports whether channelID was created by the bot.
func (s *SQLiteStore) IsTempRoom(ctx context.Context, channelID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM temp_rooms WHERE channel_id = ?`, channelID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query temp room: %w", err)
	}
	return true, nil
}

// RemoveTempRoom forgets a temporary voice channel.
func (s *SQLiteStore) RemoveTempRoom(ctx context.Context, channelID string) error {
	err := shared.RetryOnConflict(ctx, "remove temp room", writeRetries, writeBaseDelay, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM temp_rooms WHERE channel_id = ?`, channelID)
		return err
	})
	if err != nil {
		return fmt.Errorf("remove temp room: %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteStore)(nil)
