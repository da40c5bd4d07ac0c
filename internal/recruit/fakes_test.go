package recruit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/recruitbot/internal/domain"
	"github.com/ashureev/recruitbot/internal/surface"
)

type transportCall struct {
	Op        string
	Ref       surface.Ref
	ChannelID string
	Msg       surface.Message
}

type fakeTransport struct {
	mu        sync.Mutex
	calls     []transportCall
	nextID    int
	editErr   map[string]error
	sendErr   map[string]error
	deleteErr error
	fetchErr  map[string]error
	delay     time.Duration
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		editErr:  make(map[string]error),
		sendErr:  make(map[string]error),
		fetchErr: make(map[string]error),
	}
}

func (f *fakeTransport) record(c transportCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeTransport) Send(_ context.Context, channelID string, msg surface.Message) (surface.Ref, error) {
	f.record(transportCall{Op: "send", ChannelID: channelID, Msg: msg})
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErr[channelID]; err != nil {
		return surface.Ref{}, err
	}
	f.nextID++
	return surface.Ref{ChannelID: channelID, MessageID: fmt.Sprintf("sent-%d", f.nextID)}, nil
}

func (f *fakeTransport) Edit(_ context.Context, ref surface.Ref, msg surface.Message) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.record(transportCall{Op: "edit", Ref: ref, Msg: msg})
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editErr[ref.MessageID]
}

func (f *fakeTransport) Fetch(_ context.Context, channelID, messageID string) (surface.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fetchErr[messageID]; err != nil {
		return surface.Ref{}, err
	}
	return surface.Ref{ChannelID: channelID, MessageID: messageID}, nil
}

func (f *fakeTransport) Delete(_ context.Context, ref surface.Ref) error {
	f.record(transportCall{Op: "delete", Ref: ref})
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeTransport) setEditErr(messageID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.editErr[messageID] = err
}

func (f *fakeTransport) snapshot() []transportCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]transportCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeTransport) editsTo(messageID string) []transportCall {
	var out []transportCall
	for _, c := range f.snapshot() {
		if c.Op == "edit" && c.Ref.MessageID == messageID {
			out = append(out, c)
		}
	}
	return out
}

type fakeSettings map[string]domain.GuildConfig

func (f fakeSettings) GetGuildConfig(_ context.Context, guildID string) (domain.GuildConfig, error) {
	cfg, ok := f[guildID]
	if !ok {
		return domain.GuildConfig{GuildID: guildID}, nil
	}
	return cfg, nil
}

type fakeVoice struct {
	mu       sync.Mutex
	channels map[string]string
}

func (f *fakeVoice) VoiceChannelOf(_, userID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[userID]
	return ch, ok
}

func (f *fakeVoice) set(userID, channelID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.channels == nil {
		f.channels = make(map[string]string)
	}
	if channelID == "" {
		delete(f.channels, userID)
		return
	}
	f.channels[userID] = channelID
}

var origin = surface.Ref{GuildID: "G1", ChannelID: "C1", MessageID: "M1"}

type harness struct {
	transport *fakeTransport
	voice     *fakeVoice
	ctrl      *Controller
}

func newHarness(t *testing.T, summaryChannel string) *harness {
	t.Helper()
	h := &harness{transport: newFakeTransport(), voice: &fakeVoice{}}
	settings := fakeSettings{}
	if summaryChannel != "" {
		settings["G1"] = domain.GuildConfig{GuildID: "G1", SummaryChannelID: summaryChannel}
	}
	h.ctrl = NewController(Options{
		Transport:   h.transport,
		Settings:    settings,
		Voice:       h.voice,
		MaxCapacity: domain.DefaultMaxCapacity,
	})
	return h
}

func (h *harness) publish(t *testing.T, capacity domain.Capacity) *domain.Session {
	t.Helper()
	s, err := h.ctrl.Publish(context.Background(), PublishRequest{
		Draft: Draft{
			GuildID:   "G1",
			ChannelID: "C1",
			HostID:    "U1",
			GameName:  "Catan",
			Capacity:  capacity,
		},
		Origin: origin,
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	return s
}
