// Package voiceroom creates a private voice room when a member enters the
// guild's creator channel and removes it once the last member leaves.
package voiceroom

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/ashureev/recruitbot/internal/domain"
	"github.com/ashureev/recruitbot/internal/surface"
)

// DefaultPrefix names created rooms "{prefix}{n}".
const DefaultPrefix = "채널 "

// GuildAPI is the slice of the chat platform the manager drives.
type GuildAPI interface {
	// ChannelParent returns the category id of channelID, empty if none.
	ChannelParent(ctx context.Context, channelID string) (string, error)
	CreateVoiceChannel(ctx context.Context, guildID, name, parentID string) (string, error)
	MoveMember(ctx context.Context, guildID, userID, channelID string) error
	// VoiceMemberCount counts the members currently in channelID.
	VoiceMemberCount(guildID, channelID string) int
	DeleteChannel(ctx context.Context, channelID string) error
}

// Rooms is the registry of rooms the manager created.
type Rooms interface {
	GetGuildConfig(ctx context.Context, guildID string) (domain.GuildConfig, error)
	NextRoomNumber(ctx context.Context) (int, error)
	AddTempRoom(ctx context.Context, guildID, channelID string) error
	IsTempRoom(ctx context.Context, channelID string) (bool, error)
	RemoveTempRoom(ctx context.Context, channelID string) error
}

// Manager reacts to voice state changes.
type Manager struct {
	api    GuildAPI
	rooms  Rooms
	prefix string

	// cleanupLocks prevents concurrent deletes of the same room.
	cleanupLocks sync.Map
}

// NewManager creates a voice room manager.
func NewManager(api GuildAPI, rooms Rooms, prefix string) *Manager {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Manager{api: api, rooms: rooms, prefix: prefix}
}

// OnVoiceStateUpdate spawns a room for a member entering the creator channel
// and removes the room the member left if it is now empty. Failures are
// logged and never returned.
func (m *Manager) OnVoiceStateUpdate(ctx context.Context, ev domain.VoiceEvent) {
	if !ev.Moved() {
		return
	}

	cfg, err := m.rooms.GetGuildConfig(ctx, ev.GuildID)
	if err != nil {
		slog.Error("Failed to read guild config for voice event", "guild_id", ev.GuildID, "error", err)
		return
	}
	if !cfg.HasVoiceCreator() {
		return
	}

	if ev.AfterChannelID != "" && ev.AfterChannelID == cfg.VoiceCreatorChannelID {
		if err := m.spawn(ctx, ev); err != nil {
			slog.Error("Failed to create voice room", "guild_id", ev.GuildID, "user_id", ev.UserID, "error", err)
		}
	}
	if ev.BeforeChannelID != "" {
		m.cleanup(ctx, ev.GuildID, ev.BeforeChannelID)
	}
}

func (m *Manager) spawn(ctx context.Context, ev domain.VoiceEvent) error {
	parentID, err := m.api.ChannelParent(ctx, ev.AfterChannelID)
	if err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}
	n, err := m.rooms.NextRoomNumber(ctx)
	if err != nil {
		return fmt.Errorf("next room number: %w", err)
	}
	name := m.prefix + strconv.Itoa(n)

	channelID, err := m.api.CreateVoiceChannel(ctx, ev.GuildID, name, parentID)
	if err != nil {
		return fmt.Errorf("create channel %q: %w", name, err)
	}
	if err := m.rooms.AddTempRoom(ctx, ev.GuildID, channelID); err != nil {
		return fmt.Errorf("record room: %w", err)
	}
	slog.Info("Voice room created", "guild_id", ev.GuildID, "channel_id", channelID, "name", name, "user_id", ev.UserID)

	if err := m.api.MoveMember(ctx, ev.GuildID, ev.UserID, channelID); err != nil {
		// Member likely dropped out of voice; do not leave the room behind.
		slog.Warn("Failed to move member into voice room", "channel_id", channelID, "user_id", ev.UserID, "error", err)
		m.cleanup(ctx, ev.GuildID, channelID)
	}
	return nil
}

func (m *Manager) cleanup(ctx context.Context, guildID, channelID string) {
	lock, _ := m.cleanupLocks.LoadOrStore(channelID, &sync.Mutex{})
	mutex := lock.(*sync.Mutex)
	if !mutex.TryLock() {
		return
	}
	defer func() {
		mutex.Unlock()
		m.cleanupLocks.Delete(channelID)
	}()

	temp, err := m.rooms.IsTempRoom(ctx, channelID)
	if err != nil {
		slog.Error("Failed to check voice room", "channel_id", channelID, "error", err)
		return
	}
	if !temp || m.api.VoiceMemberCount(guildID, channelID) > 0 {
		return
	}

	if err := m.api.DeleteChannel(ctx, channelID); err != nil && !surface.IsNotFound(err) {
		slog.Error("Failed to delete voice room", "channel_id", channelID, "error", err)
		return
	}
	if err := m.rooms.RemoveTempRoom(ctx, channelID); err != nil {
		slog.Error("Failed to forget voice room", "channel_id", channelID, "error", err)
		return
	}
	slog.Info("Voice room removed", "guild_id", guildID, "channel_id", channelID)
}
