package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Guild answers voice presence from the gateway state cache and performs
// the channel operations behind temporary voice rooms.
type Guild struct {
	s *discordgo.Session
}

// NewGuild creates a guild adapter over s.
func NewGuild(s *discordgo.Session) *Guild {
	return &Guild{s: s}
}

// VoiceChannelOf reports the voice channel userID sits in.
func (g *Guild) VoiceChannelOf(guildID, userID string) (string, bool) {
	vs, err := g.s.State.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", false
	}
	return vs.ChannelID, true
}

// ChannelParent returns the category of channelID.
func (g *Guild) ChannelParent(ctx context.Context, channelID string) (string, error) {
	if ch, err := g.s.State.Channel(channelID); err == nil {
		return ch.ParentID, nil
	}
	ch, err := g.s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError(err)
	}
	return ch.ParentID, nil
}

// CreateVoiceChannel creates a voice channel under parentID.
func (g *Guild) CreateVoiceChannel(ctx context.Context, guildID, name, parentID string) (string, error) {
	ch, err := g.s.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildVoice,
		ParentID: parentID,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError(err)
	}
	return ch.ID, nil
}

// MoveMember moves userID into channelID.
func (g *Guild) MoveMember(ctx context.Context, guildID, userID, channelID string) error {
	return mapError(g.s.GuildMemberMove(guildID, userID, &channelID, discordgo.WithContext(ctx)))
}

// VoiceMemberCount counts cached voice states in channelID.
func (g *Guild) VoiceMemberCount(guildID, channelID string) int {
	guild, err := g.s.State.Guild(guildID)
	if err != nil {
		// Unknown guild counts as occupied.
		return 1
	}
	g.s.State.RLock()
	defer g.s.State.RUnlock()
	n := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID {
			n++
		}
	}
	return n
}

// DeleteChannel deletes channelID.
func (g *Guild) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := g.s.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return mapError(err)
}
