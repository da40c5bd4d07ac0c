// Package store provides the guild settings and temporary voice room
// registry used by the bot.
package store

import (
	"context"

	"github.com/ashureev/recruitbot/internal/domain"
)

// Repository defines the process-lifetime settings store.
type Repository interface {
	// GetGuildConfig returns the settings for a guild. Unknown guilds yield
	// an empty config, not an error.
	GetGuildConfig(ctx context.Context, guildID string) (domain.GuildConfig, error)

	// SetVoiceCreatorChannel sets the channel that spawns temporary voice rooms.
	SetVoiceCreatorChannel(ctx context.Context, guildID, channelID string) error

	// SetSummaryChannel sets the channel recruitments are mirrored to.
	SetSummaryChannel(ctx context.Context, guildID, channelID string) error

	// NextRoomNumber atomically increments and returns the room counter.
	NextRoomNumber(ctx context.Context) (int, error)

	// AddTempRoom records a voice channel created by the bot.
	AddTempRoom(ctx context.Context, guildID, channelID string) error

	// IsTempRoom reports whether the bot created channelID.
	IsTempRoom(ctx context.Context, channelID string) (bool, error)

	// RemoveTempRoom forgets a temporary voice channel.
	RemoveTempRoom(ctx context.Context, channelID string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
