// Package surface describes the message surfaces a recruitment is shown on
// and the messaging transport used to write to them.
package surface

import (
	"context"
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	// ErrNotFound is returned when the target message or channel no longer exists.
	ErrNotFound = fmt.Errorf("surface not found: %w", errdefs.ErrNotFound)
	// ErrForbidden is returned when the bot lost permission on the target.
	ErrForbidden = fmt.Errorf("surface forbidden: %w", errdefs.ErrPermissionDenied)
)

// Ref identifies one posted message.
type Ref struct {
	GuildID   string
	ChannelID string
	MessageID string
}

// IsZero reports whether the ref points nowhere.
func (r Ref) IsZero() bool {
	return r.ChannelID == "" || r.MessageID == ""
}

// JumpURL returns the client link to the message.
func (r Ref) JumpURL() string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", r.GuildID, r.ChannelID, r.MessageID)
}

// Document is a rendered display card.
type Document struct {
	Title       string
	Description string
	Color       int
	URL         string
}

// ButtonStyle selects the visual weight of a control.
type ButtonStyle int

const (
	StylePrimary ButtonStyle = iota + 1
	StyleSecondary
	StyleSuccess
	StyleDanger
)

// Button is one interactive control. CustomID carries the action and the
// session it targets.
type Button struct {
	Label    string
	CustomID string
	Style    ButtonStyle
	Disabled bool
}

// Message is the payload for a send or edit. A nil Document or Controls
// clears that part on edit.
type Message struct {
	Content  string
	Document *Document
	Controls []Button
}

// Transport is the messaging capability the recruitment core depends on.
// Implementations must map missing targets to ErrNotFound and permission
// failures to ErrForbidden.
type Transport interface {
	Send(ctx context.Context, channelID string, msg Message) (Ref, error)
	Edit(ctx context.Context, ref Ref, msg Message) error
	Fetch(ctx context.Context, channelID, messageID string) (Ref, error)
	Delete(ctx context.Context, ref Ref) error
}

// IsNotFound reports whether err means the surface is gone.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errdefs.IsNotFound(err)
}

// IsForbidden reports whether err is a permission failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || errdefs.IsPermissionDenied(err)
}
