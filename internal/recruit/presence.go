package recruit

import (
	"context"
	"log/slog"

	"github.com/ashureev/recruitbot/internal/domain"
	"github.com/ashureev/recruitbot/internal/render"
)

// Watcher refreshes the sessions a member participates in whenever the
// member's voice channel changes.
type Watcher struct {
	ctrl *Controller
}

// NewWatcher creates a presence watcher over ctrl.
func NewWatcher(ctrl *Controller) *Watcher {
	return &Watcher{ctrl: ctrl}
}

// OnVoiceStateUpdate re-renders every affected session using the event's new
// channel for the member, so the display never lags the gateway cache.
func (w *Watcher) OnVoiceStateUpdate(ctx context.Context, ev domain.VoiceEvent) {
	if !ev.Moved() {
		return
	}
	ids := w.ctrl.SessionsOf(ev.UserID)
	if len(ids) == 0 {
		return
	}
	slog.Debug("Voice presence changed", "user_id", ev.UserID, "sessions", len(ids), "channel_id", ev.AfterChannelID)

	voice := w.override(ev)
	for _, id := range ids {
		w.ctrl.Refresh(ctx, id, voice)
	}
}

func (w *Watcher) override(ev domain.VoiceEvent) render.VoiceLookup {
	return func(guildID, userID string) (string, bool) {
		if guildID == ev.GuildID && userID == ev.UserID {
			return ev.AfterChannelID, ev.AfterChannelID != ""
		}
		return w.ctrl.lookupVoice(guildID, userID)
	}
}
