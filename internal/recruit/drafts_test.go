package recruit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ashureev/recruitbot/internal/domain"
)

var errGone = errors.New("gone")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDrafts(ttl time.Duration) (*Drafts, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	d := NewDrafts(ttl)
	d.now = clock.now
	return d, clock
}

func TestDrafts_Lifecycle(t *testing.T) {
	d, _ := newTestDrafts(time.Minute)

	dr := d.Begin("G1", "C1", "U1", "Catan")
	if dr.ID == "" {
		t.Fatal("draft id not assigned")
	}

	if _, err := d.Take(dr.ID, "U1"); !errors.Is(err, ErrCapacityNotChosen) {
		t.Fatalf("expected ErrCapacityNotChosen, got %v", err)
	}
	if _, err := d.SelectCapacity(dr.ID, "U2", 4); !errors.Is(err, domain.ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
	if _, err := d.SelectCapacity(dr.ID, "U1", 4); err != nil {
		t.Fatalf("SelectCapacity: %v", err)
	}

	got, err := d.Take(dr.ID, "U1")
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if got.Capacity != 4 || got.GameName != "Catan" || got.ChannelID != "C1" {
		t.Errorf("unexpected draft %+v", got)
	}
	if d.Len() != 0 {
		t.Errorf("draft not removed after Take")
	}
	if _, err := d.Take(dr.ID, "U1"); !errors.Is(err, ErrDraftExpired) {
		t.Errorf("second Take should fail, got %v", err)
	}
}

func TestDrafts_Expiry(t *testing.T) {
	d, clock := newTestDrafts(time.Minute)
	dr := d.Begin("G1", "C1", "U1", "Catan")

	clock.advance(time.Minute)

	if _, err := d.SelectCapacity(dr.ID, "U1", 4); !errors.Is(err, ErrDraftExpired) {
		t.Fatalf("expected ErrDraftExpired, got %v", err)
	}
	if d.Len() != 0 {
		t.Error("expired draft kept")
	}
}

func TestDrafts_SelectRefreshesTTL(t *testing.T) {
	d, clock := newTestDrafts(time.Minute)
	dr := d.Begin("G1", "C1", "U1", "Catan")

	clock.advance(50 * time.Second)
	if _, err := d.SelectCapacity(dr.ID, "U1", domain.Unlimited); err != nil {
		t.Fatal(err)
	}
	clock.advance(50 * time.Second)

	got, err := d.Take(dr.ID, "U1")
	if err != nil {
		t.Fatalf("Take after refresh: %v", err)
	}
	if !got.Capacity.IsUnlimited() {
		t.Errorf("Expected unlimited capacity, got %v", got.Capacity)
	}
}

func TestDrafts_Sweep(t *testing.T) {
	d, clock := newTestDrafts(time.Minute)
	d.Begin("G1", "C1", "U1", "Catan")
	clock.advance(30 * time.Second)
	d.Begin("G1", "C1", "U2", "Chess")
	clock.advance(40 * time.Second)

	if n := d.Sweep(); n != 1 {
		t.Errorf("Expected 1 swept, got %d", n)
	}
	if d.Len() != 1 {
		t.Errorf("Expected 1 remaining, got %d", d.Len())
	}
}

func TestDrafts_RunStopsOnCancel(t *testing.T) {
	d := NewDrafts(time.Millisecond)
	d.Begin("G1", "C1", "U1", "Catan")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		d.Run(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for d.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("janitor never swept the draft")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}
