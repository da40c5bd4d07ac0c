// Package discord adapts the recruitment core to the Discord gateway and
// REST API.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ashureev/recruitbot/internal/surface"
	"github.com/bwmarrin/discordgo"
)

// Transport writes surfaces through the Discord REST API.
type Transport struct {
	s *discordgo.Session
}

// NewTransport creates a transport over s.
func NewTransport(s *discordgo.Session) *Transport {
	return &Transport{s: s}
}

var _ surface.Transport = (*Transport)(nil)

// Send posts msg to channelID.
func (t *Transport) Send(ctx context.Context, channelID string, msg surface.Message) (surface.Ref, error) {
	m, err := t.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     embeds(msg.Document),
		Components: components(msg.Controls),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return surface.Ref{}, mapError(err)
	}
	return refOf(m), nil
}

// Edit replaces the content, embed and controls of ref with msg.
func (t *Transport) Edit(ctx context.Context, ref surface.Ref, msg surface.Message) error {
	content := msg.Content
	embedList := embeds(msg.Document)
	if embedList == nil {
		embedList = []*discordgo.MessageEmbed{}
	}
	rows := components(msg.Controls)
	if rows == nil {
		rows = []discordgo.MessageComponent{}
	}
	_, err := t.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         ref.MessageID,
		Channel:    ref.ChannelID,
		Content:    &content,
		Embeds:     &embedList,
		Components: &rows,
	}, discordgo.WithContext(ctx))
	return mapError(err)
}

// Fetch confirms the message still exists and returns its reference.
func (t *Transport) Fetch(ctx context.Context, channelID, messageID string) (surface.Ref, error) {
	m, err := t.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return surface.Ref{}, mapError(err)
	}
	return refOf(m), nil
}

// Delete removes the message at ref.
func (t *Transport) Delete(ctx context.Context, ref surface.Ref) error {
	return mapError(t.s.ChannelMessageDelete(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx)))
}

func refOf(m *discordgo.Message) surface.Ref {
	return surface.Ref{GuildID: m.GuildID, ChannelID: m.ChannelID, MessageID: m.ID}
}

// mapError classifies REST failures into the surface taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}

	code := 0
	if restErr.Message != nil {
		code = restErr.Message.Code
	}
	status := 0
	if restErr.Response != nil {
		status = restErr.Response.StatusCode
	}

	switch {
	case code == discordgo.ErrCodeUnknownMessage,
		code == discordgo.ErrCodeUnknownChannel,
		status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", surface.ErrNotFound, err)
	case code == discordgo.ErrCodeMissingAccess,
		code == discordgo.ErrCodeMissingPermissions,
		status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", surface.ErrForbidden, err)
	default:
		return err
	}
}
