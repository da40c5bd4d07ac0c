package domain

// VoiceEvent is one member's voice state change. An empty channel id means
// the member is not in voice.
type VoiceEvent struct {
	GuildID         string
	UserID          string
	BeforeChannelID string
	AfterChannelID  string
}

// Moved reports whether the member changed channel, as opposed to a mute or
// deafen update.
func (e VoiceEvent) Moved() bool {
	return e.BeforeChannelID != e.AfterChannelID
}
