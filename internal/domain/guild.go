package domain

// GuildConfig holds the per-guild channel settings. Empty means unset.
type GuildConfig struct {
	GuildID               string
	VoiceCreatorChannelID string
	SummaryChannelID      string
}

// HasSummaryChannel reports whether recruitments should be mirrored.
func (g GuildConfig) HasSummaryChannel() bool { return g.SummaryChannelID != "" }

// HasVoiceCreator reports whether temporary voice rooms are enabled.
func (g GuildConfig) HasVoiceCreator() bool { return g.VoiceCreatorChannelID != "" }
