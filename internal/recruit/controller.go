// Package recruit runs the recruitment state machine and keeps the origin
// post and the summary-feed repost of every session in step.
package recruit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/ashureev/recruitbot/internal/domain"
	"github.com/ashureev/recruitbot/internal/render"
	"github.com/ashureev/recruitbot/internal/surface"
)

var (
	// ErrSessionNotFound means no live session is keyed by the control id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrOriginUnavailable means the origin post could not be written, so
	// the action was not applied.
	ErrOriginUnavailable = errors.New("origin surface unavailable")
	// ErrEmptyGameName rejects a recruitment without a game.
	ErrEmptyGameName = errors.New("empty game name")
)

// GuildSettings reads per-guild channel settings.
type GuildSettings interface {
	GetGuildConfig(ctx context.Context, guildID string) (domain.GuildConfig, error)
}

// VoiceLocator reports which voice channel a member currently sits in.
type VoiceLocator interface {
	VoiceChannelOf(guildID, userID string) (channelID string, ok bool)
}

// entry pairs a committed session with the lock that serializes every
// action on it, including the surface writes.
type entry struct {
	mu      sync.Mutex
	session *domain.Session
}

// Controller owns every live session.
type Controller struct {
	transport   surface.Transport
	settings    GuildSettings
	voice       VoiceLocator
	sync        *Syncer
	index       *Index
	maxCapacity int

	mu       sync.RWMutex
	sessions map[string]*entry
}

// Options configures a Controller.
type Options struct {
	Transport   surface.Transport
	Settings    GuildSettings
	Voice       VoiceLocator
	MaxCapacity int
}

// NewController creates a controller.
func NewController(opts Options) *Controller {
	maxCapacity := opts.MaxCapacity
	if maxCapacity <= 0 {
		maxCapacity = domain.DefaultMaxCapacity
	}
	return &Controller{
		transport:   opts.Transport,
		settings:    opts.Settings,
		voice:       opts.Voice,
		sync:        NewSyncer(opts.Transport),
		index:       NewIndex(),
		maxCapacity: maxCapacity,
		sessions:    make(map[string]*entry),
	}
}

// MaxCapacity is the largest bounded capacity accepted.
func (c *Controller) MaxCapacity() int { return c.maxCapacity }

func (c *Controller) lookupVoice(guildID, userID string) (string, bool) {
	if c.voice == nil {
		return "", false
	}
	return c.voice.VoiceChannelOf(guildID, userID)
}

func (c *Controller) lookup(sessionID string) (*entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.sessions[sessionID]
	return e, ok
}

// Get returns a copy of the session keyed by sessionID.
func (c *Controller) Get(sessionID string) (*domain.Session, bool) {
	e, ok := c.lookup(sessionID)
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), true
}

// Len returns the number of live sessions.
func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// PublishRequest turns a finished draft into a posted session.
type PublishRequest struct {
	Draft     Draft
	Origin    surface.Ref
	ExtraText string
}

// Publish creates the session, shows it on the origin post with controls,
// then mirrors it to the guild's summary channel when one is configured.
func (c *Controller) Publish(ctx context.Context, req PublishRequest) (*domain.Session, error) {
	game := strings.TrimSpace(req.Draft.GameName)
	if game == "" {
		return nil, ErrEmptyGameName
	}
	s, err := domain.NewSession(game, req.Draft.Capacity, req.Draft.HostID, c.maxCapacity)
	if err != nil {
		return nil, err
	}
	if err := s.SetExtraText(req.ExtraText); err != nil {
		return nil, err
	}
	s.ID = req.Origin.MessageID
	s.GuildID = req.Draft.GuildID
	s.Origin = req.Origin
	if s.Origin.GuildID == "" {
		s.Origin.GuildID = s.GuildID
	}

	e := &entry{session: s}
	e.mu.Lock()
	defer e.mu.Unlock()

	c.mu.Lock()
	if _, exists := c.sessions[s.ID]; exists {
		c.mu.Unlock()
		return nil, fmt.Errorf("session %s already published", s.ID)
	}
	c.sessions[s.ID] = e
	c.mu.Unlock()

	doc := render.Render(s, c.lookupVoice)
	if err := c.sync.ApplyOrigin(ctx, s, doc); err != nil {
		c.mu.Lock()
		delete(c.sessions, s.ID)
		c.mu.Unlock()
		slog.Error("Failed to publish recruitment", "session_id", s.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrOriginUnavailable, err)
	}
	c.index.Track(s)
	slog.Info("Recruitment published",
		"session_id", s.ID,
		"guild_id", s.GuildID,
		"host_id", s.HostID,
		"game", s.GameName,
		"capacity", s.Capacity.String())

	c.linkSummary(ctx, s, doc)
	return s.Clone(), nil
}

// linkSummary posts the first summary copy. Callers hold the entry lock.
func (c *Controller) linkSummary(ctx context.Context, s *domain.Session, doc surface.Document) {
	if c.settings == nil {
		return
	}
	cfg, err := c.settings.GetGuildConfig(ctx, s.GuildID)
	if err != nil {
		slog.Warn("Failed to read guild config, skipping summary", "guild_id", s.GuildID, "error", err)
		return
	}
	if !cfg.HasSummaryChannel() {
		return
	}
	ref, err := c.sync.PostSummary(ctx, s, cfg.SummaryChannelID, doc)
	if err != nil {
		slog.Warn("Failed to post summary surface", "session_id", s.ID, "channel_id", cfg.SummaryChannelID, "error", err)
		return
	}
	s.Summary = ref
}

// mutate runs one state transition under the session lock. The new state is
// committed only after the origin post shows it.
func (c *Controller) mutate(ctx context.Context, sessionID string, apply func(*domain.Session) error) (*domain.Session, error) {
	e, ok := c.lookup(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.session.Clone()
	if err := apply(next); err != nil {
		return nil, err
	}

	doc := render.Render(next, c.lookupVoice)
	if err := c.sync.ApplyOrigin(ctx, next, doc); err != nil {
		slog.Error("Origin surface update failed, action dropped", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrOriginUnavailable, err)
	}

	prev := e.session
	e.session = next
	c.index.Update(prev, next)
	c.sync.ApplySummary(ctx, next, doc)
	return next.Clone(), nil
}

// Toggle joins userID to the session or removes them. joined reports which.
func (c *Controller) Toggle(ctx context.Context, sessionID, userID string) (joined bool, err error) {
	_, err = c.mutate(ctx, sessionID, func(s *domain.Session) error {
		var terr error
		joined, terr = s.ToggleParticipant(userID)
		return terr
	})
	if err != nil {
		return false, err
	}
	slog.Info("Participant toggled", "session_id", sessionID, "user_id", userID, "joined", joined)
	return joined, nil
}

// ToggleClosed closes or reopens the session on behalf of the host.
func (c *Controller) ToggleClosed(ctx context.Context, sessionID, requesterID string) (closed bool, err error) {
	s, err := c.mutate(ctx, sessionID, func(s *domain.Session) error {
		return s.ToggleClosed(requesterID)
	})
	if err != nil {
		return false, err
	}
	slog.Info("Recruitment close toggled", "session_id", sessionID, "closed", s.Closed)
	return s.Closed, nil
}

// Cancel ends the session: the origin post is replaced by a plain notice and
// the summary copy is switched to the cancelled document.
func (c *Controller) Cancel(ctx context.Context, sessionID, requesterID string) error {
	e, ok := c.lookup(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.session.Clone()
	if err := next.Cancel(requesterID); err != nil {
		return err
	}

	if err := c.transport.Delete(ctx, next.Origin); err != nil {
		if !surface.IsNotFound(err) {
			slog.Error("Failed to delete origin surface, cancel dropped", "session_id", sessionID, "error", err)
			return fmt.Errorf("%w: %w", ErrOriginUnavailable, err)
		}
		slog.Warn("Origin surface already gone", "session_id", sessionID)
	}
	if _, err := c.transport.Send(ctx, next.Origin.ChannelID, surface.Message{Content: render.CancellationNotice(next)}); err != nil {
		slog.Warn("Failed to post cancellation notice", "session_id", sessionID, "error", err)
	}

	c.retire(ctx, e, next)
	slog.Info("Recruitment cancelled", "session_id", sessionID, "host_id", next.HostID)
	return nil
}

// retire commits a cancelled state, drops the session from every lookup and
// switches the summary copy to the cancelled document. Callers hold e.mu.
func (c *Controller) retire(ctx context.Context, e *entry, next *domain.Session) {
	prev := e.session
	e.session = next
	c.index.Untrack(prev)
	c.sync.Forget(next.ID)
	c.mu.Lock()
	delete(c.sessions, next.ID)
	c.mu.Unlock()

	if next.Summary != nil {
		doc := render.RenderCancelled(next)
		if err := c.transport.Edit(ctx, *next.Summary, surface.Message{Document: &doc}); err != nil {
			slog.Warn("Failed to mark summary surface cancelled", "session_id", next.ID, "error", err)
		}
	}
}

// Refresh re-renders the session with voice as the presence source and
// rewrites both surfaces if anything visible changed. It never validates.
func (c *Controller) Refresh(ctx context.Context, sessionID string, voice render.VoiceLookup) {
	e, ok := c.lookup(sessionID)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s.Cancelled {
		return
	}
	doc := render.Render(s, voice)
	if c.sync.Unchanged(s.ID, doc) {
		return
	}
	if err := c.sync.ApplyOrigin(ctx, s, doc); err != nil {
		slog.Warn("Presence refresh of origin failed", "session_id", s.ID, "error", err)
		return
	}
	c.sync.ApplySummary(ctx, s, doc)
}

// SessionsOf returns the ids of live sessions userID participates in.
func (c *Controller) SessionsOf(userID string) []string {
	return c.index.SessionsOf(userID)
}

// Sessions returns copies of every live session ordered by id.
func (c *Controller) Sessions() []*domain.Session {
	c.mu.RLock()
	entries := make([]*entry, 0, len(c.sessions))
	for _, e := range c.sessions {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	out := make([]*domain.Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.session.Clone())
		e.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b *domain.Session) int { return strings.Compare(a.ID, b.ID) })
	return out
}
