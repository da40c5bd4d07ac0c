package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ashureev/recruitbot/internal/domain"
	"github.com/ashureev/recruitbot/internal/recruit"
	"github.com/ashureev/recruitbot/internal/voiceroom"
	"github.com/bwmarrin/discordgo"
)

const (
	interactionTimeout = 10 * time.Second
	voiceEventTimeout  = 15 * time.Second
)

// Intents the bot needs: guild cache, voice presence and its own messages.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates | discordgo.IntentsGuildMessages

// Settings stores the admin channel choices.
type Settings interface {
	SetVoiceCreatorChannel(ctx context.Context, guildID, channelID string) error
	SetSummaryChannel(ctx context.Context, guildID, channelID string) error
}

// NewSession creates a gateway session for token with state tracking on.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	s.StateEnabled = true
	return s, nil
}

// Options wires a Bot to the recruitment core.
type Options struct {
	GuildID    string // register commands to one guild; empty is global
	Controller *recruit.Controller
	Drafts     *recruit.Drafts
	Watcher    *recruit.Watcher
	Rooms      *voiceroom.Manager
	Settings   Settings
}

// responder is the part of the session interactions are answered through.
type responder interface {
	InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot routes gateway events into the recruitment core.
type Bot struct {
	s        *discordgo.Session
	api      responder
	opts     Options
	ready    atomic.Bool
	handlers []func()

	// baseCtx is set by Run before the gateway opens.
	baseCtx context.Context
}

// NewBot attaches the event handlers to s.
func NewBot(s *discordgo.Session, opts Options) *Bot {
	b := newBot(s, opts)
	b.s = s
	b.handlers = append(b.handlers,
		s.AddHandler(b.onReady),
		s.AddHandler(b.onDisconnect),
		s.AddHandler(b.onResumed),
		s.AddHandler(b.onInteraction),
		s.AddHandler(b.onVoiceStateUpdate),
	)
	return b
}

func newBot(api responder, opts Options) *Bot {
	return &Bot{api: api, opts: opts, baseCtx: context.Background()}
}

// Ready reports whether the gateway session is connected.
func (b *Bot) Ready() bool { return b.ready.Load() }

// Run opens the gateway, registers slash commands and blocks until ctx is
// done.
func (b *Bot) Run(ctx context.Context) error {
	b.baseCtx = ctx

	if err := b.s.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	defer func() {
		for _, remove := range b.handlers {
			remove()
		}
		b.ready.Store(false)
		if err := b.s.Close(); err != nil {
			slog.Error("Failed to close gateway", "error", err)
		}
		slog.Info("Gateway closed")
	}()

	if err := b.registerCommands(); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

func (b *Bot) registerCommands() error {
	if b.s.State == nil || b.s.State.User == nil {
		return fmt.Errorf("register commands: gateway has no application user")
	}
	cmds, err := b.s.ApplicationCommandBulkOverwrite(b.s.State.User.ID, b.opts.GuildID, Commands())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	slog.Info("Slash commands registered", "count", len(cmds), "guild_id", b.opts.GuildID)
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.ready.Store(true)
	slog.Info("Gateway ready", "user", r.User.Username, "guilds", len(r.Guilds))
}

func (b *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	b.ready.Store(false)
	slog.Warn("Gateway disconnected")
}

func (b *Bot) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	b.ready.Store(true)
	slog.Info("Gateway resumed")
}

func (b *Bot) onVoiceStateUpdate(_ *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil {
		return
	}
	ev := domain.VoiceEvent{
		GuildID:        v.GuildID,
		UserID:         v.UserID,
		AfterChannelID: v.ChannelID,
	}
	if v.BeforeUpdate != nil {
		ev.BeforeChannelID = v.BeforeUpdate.ChannelID
	}

	ctx, cancel := context.WithTimeout(b.baseCtx, voiceEventTimeout)
	defer cancel()
	if b.opts.Rooms != nil {
		b.opts.Rooms.OnVoiceStateUpdate(ctx, ev)
	}
	if b.opts.Watcher != nil {
		b.opts.Watcher.OnVoiceStateUpdate(ctx, ev)
	}
}
