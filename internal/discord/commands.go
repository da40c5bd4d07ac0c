package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Slash command names.
const (
	cmdSetVoiceCreator = "음성채널지정"
	cmdSetSummary      = "모집채널지정"
	cmdRecruit         = "모집"
)

const gameNameMaxLen = 100

var manageChannels int64 = discordgo.PermissionManageChannels

// Commands returns the slash command set registered for the bot.
func Commands() []*discordgo.ApplicationCommand {
	dm := false
	return []*discordgo.ApplicationCommand{
		{
			Name:                     cmdSetVoiceCreator,
			Description:              "음성채널 생성용 채널을 지정합니다.",
			DefaultMemberPermissions: &manageChannels,
			DMPermission:             &dm,
			Options: []*discordgo.ApplicationCommandOption{{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "음성 채널을 선택하세요.",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice},
			}},
		},
		{
			Name:                     cmdSetSummary,
			Description:              "모집한눈에보기 채널을 지정합니다.",
			DefaultMemberPermissions: &manageChannels,
			DMPermission:             &dm,
			Options: []*discordgo.ApplicationCommandOption{{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "텍스트 채널을 선택하세요.",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			}},
		},
		{
			Name:         cmdRecruit,
			Description:  "게임 모집글을 작성합니다.",
			DMPermission: &dm,
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "game",
				Description: "모집할 게임 이름",
				Required:    true,
				MaxLength:   gameNameMaxLen,
			}},
		},
	}
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}
