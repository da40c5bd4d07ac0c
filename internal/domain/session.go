// Package domain contains the recruitment session entity and its invariants.
package domain

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ashureev/recruitbot/internal/surface"
)

const (
	// DefaultMaxCapacity is the largest bounded capacity a host may pick.
	DefaultMaxCapacity = 8
	// MaxExtraTextLen is the rune limit of the host-authored description.
	MaxExtraTextLen = 200
)

var (
	ErrInvalidCapacity     = errors.New("invalid capacity")
	ErrSessionClosed       = errors.New("session closed")
	ErrHostCannotLeave     = errors.New("host cannot leave")
	ErrCapacityReached     = errors.New("capacity reached")
	ErrNotHost             = errors.New("not host")
	ErrExtraTextTooLong    = errors.New("extra text too long")
	ErrExtraTextAlreadySet = errors.New("extra text already set")
)

// ErrSessionCancelled is terminal. It also matches ErrSessionClosed so
// callers that only care about "no longer accepting actions" can check one
// sentinel.
var ErrSessionCancelled error = &cancelledError{}

type cancelledError struct{}

func (*cancelledError) Error() string { return "session cancelled" }

func (*cancelledError) Is(target error) bool { return target == ErrSessionClosed }

// Capacity is a positive participant limit or Unlimited.
type Capacity int

// Unlimited removes the upper bound on participants.
const Unlimited Capacity = -1

// UnlimitedLabel is the display and select value of Unlimited.
const UnlimitedLabel = "무제한"

// IsUnlimited reports whether c has no upper bound.
func (c Capacity) IsUnlimited() bool { return c == Unlimited }

// Valid reports whether c is Unlimited or within 1..max.
func (c Capacity) Valid(max int) bool {
	return c == Unlimited || (c >= 1 && int(c) <= max)
}

func (c Capacity) String() string {
	if c.IsUnlimited() {
		return UnlimitedLabel
	}
	return strconv.Itoa(int(c))
}

// ParseCapacity reads a select-menu value.
func ParseCapacity(v string, max int) (Capacity, error) {
	v = strings.TrimSpace(v)
	if v == UnlimitedLabel || strings.EqualFold(v, "unlimited") {
		return Unlimited, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, ErrInvalidCapacity
	}
	c := Capacity(n)
	if !c.Valid(max) {
		return 0, ErrInvalidCapacity
	}
	return c, nil
}

// State is the lifecycle position of a session.
type State int

const (
	StateOpen State = iota
	StateClosed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Session is one recruitment. The zero value is not usable; build it with
// NewSession. Methods never perform I/O and leave the receiver untouched
// when they return an error.
type Session struct {
	ID           string
	GuildID      string
	GameName     string
	Capacity     Capacity
	HostID       string
	Participants []string
	ExtraText    string
	Closed       bool
	Cancelled    bool
	Origin       surface.Ref
	Summary      *surface.Ref
	CreatedAt    time.Time

	extraTextSet bool
}

// NewSession creates an open session whose only participant is the host.
func NewSession(gameName string, capacity Capacity, hostID string, maxCapacity int) (*Session, error) {
	if !capacity.Valid(maxCapacity) {
		return nil, ErrInvalidCapacity
	}
	return &Session{
		GameName:     gameName,
		Capacity:     capacity,
		HostID:       hostID,
		Participants: []string{hostID},
		CreatedAt:    time.Now(),
	}, nil
}

// Count is the current number of participants.
func (s *Session) Count() int { return len(s.Participants) }

// Has reports whether userID is a participant.
func (s *Session) Has(userID string) bool {
	return slices.Contains(s.Participants, userID)
}

// Full reports whether a bounded session has no free slot.
func (s *Session) Full() bool {
	return !s.Capacity.IsUnlimited() && s.Count() >= int(s.Capacity)
}

// State derives the lifecycle state from the flags.
func (s *Session) State() State {
	switch {
	case s.Cancelled:
		return StateCancelled
	case s.Closed:
		return StateClosed
	default:
		return StateOpen
	}
}

// ToggleParticipant adds userID if absent or removes it if present.
// It returns true when the user joined.
func (s *Session) ToggleParticipant(userID string) (bool, error) {
	if s.Cancelled {
		return false, ErrSessionCancelled
	}
	if s.Closed {
		return false, ErrSessionClosed
	}
	if i := slices.Index(s.Participants, userID); i >= 0 {
		if userID == s.HostID {
			return false, ErrHostCannotLeave
		}
		s.Participants = slices.Delete(s.Participants, i, i+1)
		return false, nil
	}
	if s.Full() {
		return false, ErrCapacityReached
	}
	s.Participants = append(s.Participants, userID)
	return true, nil
}

// SetExtraText sets the description once, at creation time.
func (s *Session) SetExtraText(text string) error {
	if s.Cancelled {
		return ErrSessionCancelled
	}
	if s.extraTextSet || s.ExtraText != "" {
		return ErrExtraTextAlreadySet
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > MaxExtraTextLen {
		return ErrExtraTextTooLong
	}
	s.ExtraText = text
	s.extraTextSet = true
	return nil
}

// ToggleClosed flips the closed flag. Only the host may do it.
func (s *Session) ToggleClosed(requesterID string) error {
	if s.Cancelled {
		return ErrSessionCancelled
	}
	if requesterID != s.HostID {
		return ErrNotHost
	}
	s.Closed = !s.Closed
	return nil
}

// Cancel ends the session for good. Only the host may do it.
func (s *Session) Cancel(requesterID string) error {
	if s.Cancelled {
		return ErrSessionCancelled
	}
	if requesterID != s.HostID {
		return ErrNotHost
	}
	s.Cancelled = true
	return nil
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.Participants = slices.Clone(s.Participants)
	if s.Summary != nil {
		ref := *s.Summary
		c.Summary = &ref
	}
	return &c
}
