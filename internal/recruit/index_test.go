package recruit

import (
	"slices"
	"testing"

	"github.com/ashureev/recruitbot/internal/domain"
)

func indexed(id string, participants ...string) *domain.Session {
	return &domain.Session{ID: id, Participants: participants}
}

func TestIndex(t *testing.T) {
	x := NewIndex()
	a := indexed("A", "U1", "U2")
	b := indexed("B", "U2")
	x.Track(a)
	x.Track(b)

	if got := x.SessionsOf("U2"); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("SessionsOf(U2) = %v", got)
	}

	x.Update(a, indexed("A", "U1", "U3"))
	if got := x.SessionsOf("U2"); !slices.Equal(got, []string{"B"}) {
		t.Errorf("after leave SessionsOf(U2) = %v", got)
	}
	if got := x.SessionsOf("U3"); !slices.Equal(got, []string{"A"}) {
		t.Errorf("after join SessionsOf(U3) = %v", got)
	}

	x.Untrack(b)
	if got := x.SessionsOf("U2"); len(got) != 0 {
		t.Errorf("after untrack SessionsOf(U2) = %v", got)
	}
	if got := x.SessionsOf("nobody"); got == nil || len(got) != 0 {
		t.Errorf("unknown user should yield empty slice, got %#v", got)
	}
}
