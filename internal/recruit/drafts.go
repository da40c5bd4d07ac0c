package recruit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/recruitbot/internal/domain"
	"github.com/google/uuid"
)

// DefaultDraftTTL bounds how long the capacity select stays usable.
const DefaultDraftTTL = 180 * time.Second

var (
	ErrDraftExpired      = errors.New("draft expired")
	ErrCapacityNotChosen = errors.New("capacity not chosen")
)

// Draft is a recruitment between the /recruit command and the description
// modal submission.
type Draft struct {
	ID        string
	GuildID   string
	ChannelID string
	HostID    string
	GameName  string
	Capacity  domain.Capacity
	ExpiresAt time.Time
}

// Drafts holds pending recruitments until their TTL runs out.
type Drafts struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]*Draft
}

// NewDrafts creates a draft store with the given TTL.
func NewDrafts(ttl time.Duration) *Drafts {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &Drafts{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]*Draft),
	}
}

// Begin opens a draft for hostID and returns it.
func (d *Drafts) Begin(guildID, channelID, hostID, gameName string) Draft {
	dr := &Draft{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		ChannelID: channelID,
		HostID:    hostID,
		GameName:  gameName,
		ExpiresAt: d.now().Add(d.ttl),
	}
	d.mu.Lock()
	d.items[dr.ID] = dr
	d.mu.Unlock()
	return *dr
}

// get returns the live draft owned by userID. Callers hold d.mu.
func (d *Drafts) get(id, userID string) (*Draft, error) {
	dr, ok := d.items[id]
	if !ok {
		return nil, ErrDraftExpired
	}
	if !d.now().Before(dr.ExpiresAt) {
		delete(d.items, id)
		return nil, ErrDraftExpired
	}
	if dr.HostID != userID {
		return nil, domain.ErrNotHost
	}
	return dr, nil
}

// SelectCapacity records the host's capacity choice and restarts the TTL
// for the description step.
func (d *Drafts) SelectCapacity(id, userID string, c domain.Capacity) (Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dr, err := d.get(id, userID)
	if err != nil {
		return Draft{}, err
	}
	dr.Capacity = c
	dr.ExpiresAt = d.now().Add(d.ttl)
	return *dr, nil
}

// Take removes and returns a draft whose capacity was chosen.
func (d *Drafts) Take(id, userID string) (Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dr, err := d.get(id, userID)
	if err != nil {
		return Draft{}, err
	}
	if dr.Capacity == 0 {
		return Draft{}, ErrCapacityNotChosen
	}
	delete(d.items, id)
	return *dr, nil
}

// Len returns the number of pending drafts.
func (d *Drafts) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

// Sweep drops expired drafts and returns how many were removed.
func (d *Drafts) Sweep() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	n := 0
	for id, dr := range d.items {
		if !now.Before(dr.ExpiresAt) {
			delete(d.items, id)
			n++
		}
	}
	return n
}

// Run sweeps expired drafts every interval until ctx is done.
func (d *Drafts) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	slog.Info("Draft janitor started", "interval", interval, "ttl", d.ttl)

	for {
		select {
		case <-ticker.C:
			if n := d.Sweep(); n > 0 {
				slog.Debug("Expired drafts removed", "count", n)
			}
		case <-ctx.Done():
			slog.Info("Draft janitor shutting down", "reason", ctx.Err())
			return
		}
	}
}
