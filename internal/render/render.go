// Package render turns a recruitment session into display documents and
// controls. Everything here is pure: voice presence is injected.
package render

import (
	"fmt"
	"strings"

	"github.com/ashureev/recruitbot/internal/domain"
	"github.com/ashureev/recruitbot/internal/surface"
)

const (
	ColorOpen      = 0x5865F2
	ColorClosed    = 0x99AAB5
	ColorCancelled = 0xED4245
)

// Control actions carried in button custom ids.
const (
	ActionJoin   = "join"
	ActionClose  = "close"
	ActionCancel = "cancel"
)

// CustomIDPrefix namespaces every recruitment control.
const CustomIDPrefix = "recruit"

// VoiceLookup resolves the voice channel a user currently sits in.
type VoiceLookup func(guildID, userID string) (channelID string, ok bool)

// NoVoice is a VoiceLookup that never finds anyone.
func NoVoice(string, string) (string, bool) { return "", false }

// StatusText is the participant count line, with the capacity suffix only
// for bounded sessions.
func StatusText(s *domain.Session) string {
	if s.Capacity.IsUnlimited() {
		return fmt.Sprintf("%d명", s.Count())
	}
	return fmt.Sprintf("%d명 / %d명", s.Count(), int(s.Capacity))
}

// Mention formats a user mention.
func Mention(userID string) string { return "<@" + userID + ">" }

// ChannelMention formats a channel mention.
func ChannelMention(channelID string) string { return "<#" + channelID + ">" }

// Render builds the live document for s. The voice line follows the host.
func Render(s *domain.Session, voice VoiceLookup) surface.Document {
	if voice == nil {
		voice = NoVoice
	}

	header := s.GameName + " 모집 중"
	color := ColorOpen
	if s.Closed {
		header = s.GameName + " 모집 마감"
		color = ColorClosed
	}

	voiceStatus := "-"
	if ch, ok := voice(s.GuildID, s.HostID); ok && ch != "" {
		voiceStatus = ChannelMention(ch)
	}

	lines := []string{
		header,
		"",
		"**현재 인원:** " + StatusText(s),
		"**음성 채널:** " + voiceStatus,
	}
	if len(s.Participants) > 0 {
		mentions := make([]string, 0, len(s.Participants))
		for _, uid := range s.Participants {
			mentions = append(mentions, Mention(uid))
		}
		lines = append(lines, "**참가자:** "+strings.Join(mentions, " "))
	}
	if s.ExtraText != "" {
		lines = append(lines, "", "**설명:** "+s.ExtraText)
	}

	return surface.Document{
		Title:       s.GameName,
		Description: strings.Join(lines, "\n"),
		Color:       color,
	}
}

// RenderCancelled builds the document left on the summary feed after the
// host cancels.
func RenderCancelled(s *domain.Session) surface.Document {
	return surface.Document{
		Title:       s.GameName,
		Description: s.GameName + " 모집 취소\n\n모집자 " + Mention(s.HostID) + "님이 모집을 취소했습니다.",
		Color:       ColorCancelled,
	}
}

// Summary decorates doc for the summary feed with a jump link to origin.
func Summary(doc surface.Document, origin surface.Ref) surface.Document {
	doc.URL = origin.JumpURL()
	doc.Description += "\n\n[모집글로 이동](" + origin.JumpURL() + ")"
	return doc
}

// CancellationNotice is the plain text posted where the origin used to be.
func CancellationNotice(s *domain.Session) string {
	return fmt.Sprintf("❌ %s님이 **%s** 모집을 취소했습니다.", Mention(s.HostID), s.GameName)
}

// CustomID builds the control payload id for action on session id.
func CustomID(action, sessionID string) string {
	return CustomIDPrefix + ":" + action + ":" + sessionID
}

// ParseCustomID splits a control payload id. ok is false for foreign ids.
func ParseCustomID(id string) (action, sessionID string, ok bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != CustomIDPrefix || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// Controls returns the button set attached to the origin message.
func Controls(s *domain.Session) []surface.Button {
	closeLabel := "마감"
	if s.Closed {
		closeLabel = "재개"
	}
	return []surface.Button{
		{Label: "참가 / 나가기", CustomID: CustomID(ActionJoin, s.ID), Style: surface.StylePrimary, Disabled: s.Closed},
		{Label: closeLabel, CustomID: CustomID(ActionClose, s.ID), Style: surface.StyleSecondary},
		{Label: "취소", CustomID: CustomID(ActionCancel, s.ID), Style: surface.StyleDanger},
	}
}
