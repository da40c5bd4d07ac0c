package discord

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ashureev/recruitbot/internal/domain"
	"github.com/ashureev/recruitbot/internal/recruit"
	"github.com/ashureev/recruitbot/internal/render"
	"github.com/ashureev/recruitbot/internal/surface"
	"github.com/bwmarrin/discordgo"
)

const (
	msgGuildOnly    = "⚠️ 서버에서만 사용할 수 있습니다."
	msgDraftExpired = "⌛ 시간이 초과되었습니다. /모집 을 다시 사용해주세요."
	msgNotFound     = "⚠️ 종료되었거나 찾을 수 없는 모집입니다."
	msgOriginFailed = "⚠️ 모집글을 수정할 수 없어 요청을 처리하지 못했습니다."
	msgEmptyGame    = "⚠️ 게임 이름을 입력해주세요."
	msgSaveFailed   = "⚠️ 설정을 저장하지 못했습니다."
	msgGeneric      = "⚠️ 요청을 처리하지 못했습니다."
	msgJoined       = "✅ 모집에 참가했습니다."
	msgLeft         = "👋 모집에서 나갔습니다."
)

// errorMessage is the private reply for a failed interaction.
func errorMessage(err error) string {
	if msg := domain.UserMessage(err); msg != "" {
		return msg
	}
	switch {
	case errors.Is(err, recruit.ErrSessionNotFound):
		return msgNotFound
	case errors.Is(err, recruit.ErrDraftExpired):
		return msgDraftExpired
	case errors.Is(err, recruit.ErrCapacityNotChosen):
		return msgDraftExpired
	case errors.Is(err, recruit.ErrOriginUnavailable):
		return msgOriginFailed
	case errors.Is(err, recruit.ErrEmptyGameName):
		return msgEmptyGame
	default:
		return msgGeneric
	}
}

func userID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (b *Bot) onInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(b.baseCtx, interactionTimeout)
	defer cancel()
	b.handleInteraction(ctx, ic.Interaction)
}

func (b *Bot) handleInteraction(ctx context.Context, i *discordgo.Interaction) {
	if i.GuildID == "" {
		if i.Type == discordgo.InteractionApplicationCommand {
			b.reply(i, msgGuildOnly)
		}
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(ctx, i)
	case discordgo.InteractionModalSubmit:
		b.handleModal(ctx, i)
	}
}

func (b *Bot) handleCommand(ctx context.Context, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	opts := optionMap(data.Options)

	switch data.Name {
	case cmdSetVoiceCreator, cmdSetSummary:
		opt, ok := opts["channel"]
		if !ok {
			b.reply(i, msgGeneric)
			return
		}
		b.setChannel(ctx, i, data.Name, opt.ChannelValue(nil).ID)
	case cmdRecruit:
		opt, ok := opts["game"]
		if !ok {
			b.reply(i, msgEmptyGame)
			return
		}
		b.startRecruit(i, opt.StringValue())
	default:
		slog.Warn("Unknown command", "name", data.Name)
	}
}

func (b *Bot) setChannel(ctx context.Context, i *discordgo.Interaction, command, channelID string) {
	var (
		err  error
		what string
	)
	if command == cmdSetVoiceCreator {
		err = b.opts.Settings.SetVoiceCreatorChannel(ctx, i.GuildID, channelID)
		what = "음성채널 생성용 채널"
	} else {
		err = b.opts.Settings.SetSummaryChannel(ctx, i.GuildID, channelID)
		what = "모집한눈에보기 채널"
	}
	if err != nil {
		slog.Error("Failed to save guild setting", "guild_id", i.GuildID, "command", command, "error", err)
		b.reply(i, msgSaveFailed)
		return
	}
	slog.Info("Guild setting updated", "guild_id", i.GuildID, "command", command, "channel_id", channelID)
	b.reply(i, "✅ "+what+"이 "+render.ChannelMention(channelID)+" 으로 지정되었습니다.")
}

func (b *Bot) startRecruit(i *discordgo.Interaction, game string) {
	game = strings.TrimSpace(game)
	if game == "" {
		b.reply(i, msgEmptyGame)
		return
	}

	dr := b.opts.Drafts.Begin(i.GuildID, i.ChannelID, userID(i), game)
	err := b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    "**" + game + "** 모집 인원을 선택하세요.",
			Components: capacitySelect(dr.ID, b.opts.Controller.MaxCapacity()),
		},
	})
	if err != nil {
		slog.Error("Failed to post capacity select", "draft_id", dr.ID, "error", err)
	}
}

func (b *Bot) handleComponent(ctx context.Context, i *discordgo.Interaction) {
	data := i.MessageComponentData()
	action, id, ok := render.ParseCustomID(data.CustomID)
	if !ok {
		return
	}

	switch action {
	case actionCapacity:
		b.selectCapacity(i, id, data.Values)
	case render.ActionJoin, render.ActionClose, render.ActionCancel:
		b.control(ctx, i, action, id)
	default:
		slog.Debug("Ignoring unknown control", "custom_id", data.CustomID)
	}
}

func (b *Bot) selectCapacity(i *discordgo.Interaction, draftID string, values []string) {
	if len(values) == 0 {
		return
	}
	c, err := domain.ParseCapacity(values[0], b.opts.Controller.MaxCapacity())
	if err != nil {
		b.reply(i, errorMessage(err))
		return
	}
	dr, err := b.opts.Drafts.SelectCapacity(draftID, userID(i), c)
	if err != nil {
		b.reply(i, errorMessage(err))
		return
	}

	err = b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: detailsModal(dr.ID, dr.GameName),
	})
	if err != nil {
		slog.Error("Failed to open details modal", "draft_id", dr.ID, "error", err)
	}
}

func (b *Bot) handleModal(ctx context.Context, i *discordgo.Interaction) {
	data := i.ModalSubmitData()
	action, draftID, ok := render.ParseCustomID(data.CustomID)
	if !ok || action != actionDetails {
		return
	}

	text := strings.TrimSpace(modalValue(data, detailsInputID))
	if utf8.RuneCountInString(text) > domain.MaxExtraTextLen {
		b.reply(i, errorMessage(domain.ErrExtraTextTooLong))
		return
	}
	if i.Message == nil {
		b.reply(i, msgNotFound)
		return
	}
	dr, err := b.opts.Drafts.Take(draftID, userID(i))
	if err != nil {
		b.reply(i, errorMessage(err))
		return
	}

	if err := b.deferUpdate(i); err != nil {
		return
	}
	channelID := i.Message.ChannelID
	if channelID == "" {
		channelID = i.ChannelID
	}
	_, err = b.opts.Controller.Publish(ctx, recruit.PublishRequest{
		Draft:     dr,
		Origin:    surface.Ref{GuildID: i.GuildID, ChannelID: channelID, MessageID: i.Message.ID},
		ExtraText: text,
	})
	if err != nil {
		slog.Error("Failed to publish recruitment", "draft_id", dr.ID, "error", err)
		b.followup(i, errorMessage(err))
	}
}

func (b *Bot) control(ctx context.Context, i *discordgo.Interaction, action, sessionID string) {
	if err := b.deferUpdate(i); err != nil {
		return
	}

	uid := userID(i)
	var err error
	switch action {
	case render.ActionJoin:
		var joined bool
		joined, err = b.opts.Controller.Toggle(ctx, sessionID, uid)
		if err == nil {
			if joined {
				b.followup(i, msgJoined)
			} else {
				b.followup(i, msgLeft)
			}
		}
	case render.ActionClose:
		_, err = b.opts.Controller.ToggleClosed(ctx, sessionID, uid)
	case render.ActionCancel:
		err = b.opts.Controller.Cancel(ctx, sessionID, uid)
	}

	if err == nil {
		return
	}
	if domain.IsValidation(err) {
		slog.Info("Action rejected", "session_id", sessionID, "action", action, "user_id", uid, "reason", err)
	} else {
		slog.Error("Action failed", "session_id", sessionID, "action", action, "user_id", uid, "error", err)
	}
	b.followup(i, errorMessage(err))
}

func (b *Bot) reply(i *discordgo.Interaction, content string) {
	err := b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Error("Failed to reply to interaction", "interaction_id", i.ID, "error", err)
	}
}

func (b *Bot) deferUpdate(i *discordgo.Interaction) error {
	err := b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		slog.Error("Failed to acknowledge interaction", "interaction_id", i.ID, "error", err)
	}
	return err
}

func (b *Bot) followup(i *discordgo.Interaction, content string) {
	_, err := b.api.FollowupMessageCreate(i, false, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		slog.Error("Failed to send followup", "interaction_id", i.ID, "error", err)
	}
}
