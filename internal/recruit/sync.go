package recruit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ashureev/recruitbot/internal/domain"
	"github.com/ashureev/recruitbot/internal/render"
	"github.com/ashureev/recruitbot/internal/surface"
)

// Syncer writes a rendered session to its origin and summary surfaces.
// The origin is the source of truth; the summary is best effort.
type Syncer struct {
	transport surface.Transport

	mu   sync.Mutex
	last map[string]surface.Document
}

// NewSyncer creates a syncer over transport.
func NewSyncer(transport surface.Transport) *Syncer {
	return &Syncer{
		transport: transport,
		last:      make(map[string]surface.Document),
	}
}

// ApplyOrigin edits the origin message to doc with live controls attached.
func (y *Syncer) ApplyOrigin(ctx context.Context, s *domain.Session, doc surface.Document) error {
	msg := surface.Message{Document: &doc, Controls: render.Controls(s)}
	if err := y.transport.Edit(ctx, s.Origin, msg); err != nil {
		return fmt.Errorf("edit origin: %w", err)
	}
	y.mu.Lock()
	y.last[s.ID] = doc
	y.mu.Unlock()
	return nil
}

// ApplySummary mirrors doc to the linked summary message. A missing link is
// skipped; failures are logged and dropped.
func (y *Syncer) ApplySummary(ctx context.Context, s *domain.Session, doc surface.Document) {
	if s.Summary == nil {
		return
	}
	summary := render.Summary(doc, s.Origin)
	if err := y.transport.Edit(ctx, *s.Summary, surface.Message{Document: &summary}); err != nil {
		slog.Warn("Summary surface update failed, leaving it stale",
			"session_id", s.ID,
			"summary_message_id", s.Summary.MessageID,
			"error", err)
	}
}

// PostSummary posts doc to the summary channel and returns the new link.
func (y *Syncer) PostSummary(ctx context.Context, s *domain.Session, channelID string, doc surface.Document) (*surface.Ref, error) {
	summary := render.Summary(doc, s.Origin)
	ref, err := y.transport.Send(ctx, channelID, surface.Message{Document: &summary})
	if err != nil {
		return nil, fmt.Errorf("post summary: %w", err)
	}
	if ref.GuildID == "" {
		ref.GuildID = s.GuildID
	}
	return &ref, nil
}

// Unchanged reports whether doc is what the origin already shows.
func (y *Syncer) Unchanged(sessionID string, doc surface.Document) bool {
	y.mu.Lock()
	defer y.mu.Unlock()
	last, ok := y.last[sessionID]
	return ok && last == doc
}

// Forget drops the remembered document of a finished session.
func (y *Syncer) Forget(sessionID string) {
	y.mu.Lock()
	delete(y.last, sessionID)
	y.mu.Unlock()
}
