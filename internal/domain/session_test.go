package domain

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func newTestSession(t *testing.T, capacity Capacity) *Session {
	t.Helper()
	s, err := NewSession("Catan", capacity, "U1", DefaultMaxCapacity)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestNewSession_HostIsParticipant(t *testing.T) {
	s := newTestSession(t, 4)

	if !s.Has("U1") {
		t.Fatal("expected host to be a participant")
	}
	if s.Count() != 1 {
		t.Errorf("Expected count 1, got %d", s.Count())
	}
	if s.State() != StateOpen {
		t.Errorf("Expected open state, got %s", s.State())
	}
}

func TestNewSession_InvalidCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity Capacity
		wantErr  bool
	}{
		{"zero", 0, true},
		{"negative", -5, true},
		{"above max", DefaultMaxCapacity + 1, true},
		{"one", 1, false},
		{"max", DefaultMaxCapacity, false},
		{"unlimited", Unlimited, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession("Catan", tt.capacity, "U1", DefaultMaxCapacity)
			if tt.wantErr && !errors.Is(err, ErrInvalidCapacity) {
				t.Fatalf("expected ErrInvalidCapacity, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseCapacity(t *testing.T) {
	tests := []struct {
		in      string
		want    Capacity
		wantErr bool
	}{
		{"4", 4, false},
		{" 8 ", 8, false},
		{"무제한", Unlimited, false},
		{"unlimited", Unlimited, false},
		{"9", 0, true},
		{"0", 0, true},
		{"-1", 0, true},
		{"-5", 0, true},
		{"many", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCapacity(tt.in, DefaultMaxCapacity)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCapacity) {
				t.Errorf("ParseCapacity(%q): expected ErrInvalidCapacity, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseCapacity(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestToggleParticipant_CatanScenario(t *testing.T) {
	s := newTestSession(t, 4)

	for _, u := range []string{"U2", "U3", "U4"} {
		joined, err := s.ToggleParticipant(u)
		if err != nil || !joined {
			t.Fatalf("join %s: joined=%v err=%v", u, joined, err)
		}
	}
	if s.Count() != 4 {
		t.Fatalf("Expected count 4, got %d", s.Count())
	}

	_, err := s.ToggleParticipant("U5")
	if !errors.Is(err, ErrCapacityReached) {
		t.Fatalf("expected ErrCapacityReached, got %v", err)
	}
	if s.Count() != 4 || s.Has("U5") {
		t.Errorf("rejected join mutated state: %v", s.Participants)
	}
}

func TestToggleParticipant_TwiceRestoresState(t *testing.T) {
	s := newTestSession(t, 4)
	_, _ = s.ToggleParticipant("U2")
	before := slices.Clone(s.Participants)

	if _, err := s.ToggleParticipant("U3"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := s.ToggleParticipant("U3"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	if !slices.Equal(before, s.Participants) {
		t.Errorf("Expected %v, got %v", before, s.Participants)
	}
}

func TestToggleParticipant_HostCannotLeave(t *testing.T) {
	s := newTestSession(t, 4)

	_, err := s.ToggleParticipant("U1")
	if !errors.Is(err, ErrHostCannotLeave) {
		t.Fatalf("expected ErrHostCannotLeave, got %v", err)
	}
	if !s.Has("U1") || s.Count() != 1 {
		t.Errorf("host leave attempt changed participants: %v", s.Participants)
	}
}

func TestToggleParticipant_Unlimited(t *testing.T) {
	s := newTestSession(t, Unlimited)

	for i := 2; i <= 10; i++ {
		if _, err := s.ToggleParticipant(fmt.Sprintf("U%d", i)); err != nil {
			t.Fatalf("join U%d: %v", i, err)
		}
	}
	if s.Count() != 10 {
		t.Errorf("Expected 10 participants, got %d", s.Count())
	}
}

func TestToggleParticipant_InvariantsUnderRandomSequence(t *testing.T) {
	for capacity := Capacity(1); capacity <= DefaultMaxCapacity; capacity++ {
		s := newTestSession(t, capacity)
		// Deterministic pseudo-random walk over 12 users.
		x := uint32(capacity) * 2654435761
		for step := 0; step < 500; step++ {
			x = x*1664525 + 1013904223
			_, _ = s.ToggleParticipant(fmt.Sprintf("U%d", x%12+1))

			if s.Count() > int(capacity) {
				t.Fatalf("capacity %d exceeded: %v", capacity, s.Participants)
			}
			if !s.Has(s.HostID) {
				t.Fatalf("host dropped from participants: %v", s.Participants)
			}
		}
	}
}

func TestClosedSessionRejectsJoin(t *testing.T) {
	s := newTestSession(t, 4)

	if err := s.ToggleClosed("U1"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := s.ToggleParticipant("U2"); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if err := s.ToggleClosed("U1"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if joined, err := s.ToggleParticipant("U2"); err != nil || !joined {
		t.Fatalf("join after reopen: joined=%v err=%v", joined, err)
	}
}

func TestHostOnlyActions(t *testing.T) {
	s := newTestSession(t, 4)

	if err := s.ToggleClosed("U2"); !errors.Is(err, ErrNotHost) {
		t.Errorf("ToggleClosed: expected ErrNotHost, got %v", err)
	}
	if err := s.Cancel("U2"); !errors.Is(err, ErrNotHost) {
		t.Errorf("Cancel: expected ErrNotHost, got %v", err)
	}
	if s.State() != StateOpen {
		t.Errorf("Expected open state, got %s", s.State())
	}
}

func TestCancelIsTerminal(t *testing.T) {
	s := newTestSession(t, 4)
	_, _ = s.ToggleParticipant("U2")

	if err := s.Cancel("U1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	snapshot := s.Clone()

	if _, err := s.ToggleParticipant("U3"); !errors.Is(err, ErrSessionCancelled) {
		t.Errorf("toggle: expected ErrSessionCancelled, got %v", err)
	}
	if _, err := s.ToggleParticipant("U3"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("cancelled error should match ErrSessionClosed, got %v", err)
	}
	if err := s.ToggleClosed("U1"); !errors.Is(err, ErrSessionCancelled) {
		t.Errorf("close: expected ErrSessionCancelled, got %v", err)
	}
	if err := s.Cancel("U1"); !errors.Is(err, ErrSessionCancelled) {
		t.Errorf("cancel: expected ErrSessionCancelled, got %v", err)
	}

	if !slices.Equal(snapshot.Participants, s.Participants) || s.Closed != snapshot.Closed {
		t.Errorf("state changed after cancel: %+v", s)
	}
}

func TestSetExtraText(t *testing.T) {
	s := newTestSession(t, 4)

	long := make([]rune, MaxExtraTextLen+1)
	for i := range long {
		long[i] = '가'
	}
	if err := s.SetExtraText(string(long)); !errors.Is(err, ErrExtraTextTooLong) {
		t.Fatalf("expected ErrExtraTextTooLong, got %v", err)
	}
	if err := s.SetExtraText("  초보 환영  "); err != nil {
		t.Fatalf("SetExtraText: %v", err)
	}
	if s.ExtraText != "초보 환영" {
		t.Errorf("Expected trimmed text, got %q", s.ExtraText)
	}
	if err := s.SetExtraText("again"); !errors.Is(err, ErrExtraTextAlreadySet) {
		t.Errorf("expected ErrExtraTextAlreadySet, got %v", err)
	}
}

func TestSetExtraTextEmptyStillCountsAsSet(t *testing.T) {
	s := newTestSession(t, 4)

	if err := s.SetExtraText(""); err != nil {
		t.Fatalf("SetExtraText: %v", err)
	}
	if err := s.SetExtraText("later"); !errors.Is(err, ErrExtraTextAlreadySet) {
		t.Fatalf("expected ErrExtraTextAlreadySet, got %v", err)
	}
	if s.ExtraText != "" {
		t.Errorf("Expected empty text, got %q", s.ExtraText)
	}

	c := s.Clone()
	if err := c.SetExtraText("later"); !errors.Is(err, ErrExtraTextAlreadySet) {
		t.Errorf("clone should keep the set marker, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := newTestSession(t, 4)
	c := s.Clone()

	_, _ = c.ToggleParticipant("U2")
	if s.Has("U2") {
		t.Error("mutating clone leaked into original")
	}
}

func TestUserMessage(t *testing.T) {
	for _, err := range []error{
		ErrInvalidCapacity, ErrSessionClosed, ErrSessionCancelled, ErrHostCannotLeave,
		ErrCapacityReached, ErrNotHost, ErrExtraTextTooLong, ErrExtraTextAlreadySet,
	} {
		if UserMessage(fmt.Errorf("wrapped: %w", err)) == "" {
			t.Errorf("missing user message for %v", err)
		}
	}
	if IsValidation(errors.New("network down")) {
		t.Error("network error classified as validation error")
	}
}
