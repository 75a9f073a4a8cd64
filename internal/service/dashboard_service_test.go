package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"moovyzoo/internal/model"
	"moovyzoo/internal/pkg"
)

type denyAccess struct{ err error }

func (d denyAccess) ValidateAccess(ctx context.Context, habitatID, userID string) error {
	return d.err
}

func newDashboardWorld(t *testing.T) (*testWorld, *fakeDiscussionStore, *fakePollStore, *fakeWatchPartyStore, *DashboardService) {
	t.Helper()
	w := newTestWorld()
	discussions := newFakeDiscussionStore()
	polls := newFakePollStore()
	parties := newFakeWatchPartyStore()
	svc := NewDashboardService(w.svc, w.habitats, w.members, discussions, polls, parties)
	return w, discussions, polls, parties, svc
}

func TestDashboardDeniedFetchesNothing(t *testing.T) {
	w := newTestWorld()
	discussions := newFakeDiscussionStore()
	polls := newFakePollStore()
	parties := newFakeWatchPartyStore()
	svc := NewDashboardService(denyAccess{err: pkg.ErrAccessDenied}, w.habitats, w.members, discussions, polls, parties)

	if _, err := svc.GetDashboard(context.Background(), "h-1", "user-1"); !errors.Is(err, pkg.ErrAccessDenied) {
		t.Fatalf("got %v, want ErrAccessDenied", err)
	}
	if w.habitats.findCalls != 0 || discussions.listCalls != 0 || polls.listCalls != 0 ||
		parties.listCalls != 0 || w.members.listCalls != 0 {
		t.Fatalf("collaborators were fetched on denial: habitat=%d discussions=%d polls=%d parties=%d members=%d",
			w.habitats.findCalls, discussions.listCalls, polls.listCalls, parties.listCalls, w.members.listCalls)
	}
}

func TestDashboardPresenceWindow(t *testing.T) {
	w, _, _, _, svc := newDashboardWorld(t)
	h := w.seedHabitat("owner-1", true)

	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ages := map[string]time.Duration{
		"user-10m": 10 * time.Minute,
		"user-14m": 14 * time.Minute,
		"user-15m": 15 * time.Minute,
		"user-20m": 20 * time.Minute,
	}
	for userID, age := range ages {
		m := memberRow(h.ID, userID)
		m.LastActive = now.Add(-age)
		if err := w.members.Insert(context.Background(), m); err != nil {
			t.Fatalf("seed member: %v", err)
		}
	}

	data, err := svc.GetDashboard(context.Background(), h.ID, "owner-1")
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}

	wantOnline := map[string]bool{
		"user-10m": true,
		"user-14m": true,
		"user-15m": false, // window is strict
		"user-20m": false,
	}
	for _, m := range data.Members {
		want, tracked := wantOnline[m.UserID]
		if !tracked {
			continue
		}
		if m.Online != want {
			t.Fatalf("member %s online = %v, want %v", m.UserID, m.Online, want)
		}
	}
}

func TestDashboardRole(t *testing.T) {
	w, _, _, _, svc := newDashboardWorld(t)
	h := w.seedHabitat("owner-1", true)
	if err := w.members.Insert(context.Background(), memberRow(h.ID, "user-member")); err != nil {
		t.Fatalf("seed member: %v", err)
	}

	cases := []struct {
		userID string
		want   model.Role
	}{
		{"owner-1", model.RoleOwner},
		{"user-member", model.RoleMember},
		{"user-stranger", model.RoleNonMember},
	}
	for _, tc := range cases {
		data, err := svc.GetDashboard(context.Background(), h.ID, tc.userID)
		if err != nil {
			t.Fatalf("GetDashboard(%s): %v", tc.userID, err)
		}
		if data.Role != tc.want {
			t.Fatalf("role for %s = %s, want %s", tc.userID, data.Role, tc.want)
		}
	}
}

func TestDashboardSubFetchErrorAborts(t *testing.T) {
	w, discussions, _, _, svc := newDashboardWorld(t)
	h := w.seedHabitat("owner-1", true)
	discussions.listErr = errors.New("db went away")

	data, err := svc.GetDashboard(context.Background(), h.ID, "owner-1")
	if !errors.Is(err, pkg.ErrUnexpected) {
		t.Fatalf("got %v, want ErrUnexpected", err)
	}
	if data != nil {
		t.Fatalf("partial dashboard returned on failure: %+v", data)
	}
}

func TestDashboardParticipantFlags(t *testing.T) {
	w, _, _, parties, svc := newDashboardWorld(t)
	h := w.seedHabitat("owner-1", true)

	now := time.Now()
	joined := &model.WatchParty{HabitatID: h.ID, Title: "joined", ScheduledTime: now.Add(time.Hour), CreatedBy: "owner-1"}
	other := &model.WatchParty{HabitatID: h.ID, Title: "other", ScheduledTime: now.Add(2 * time.Hour), CreatedBy: "user-x"}
	if err := parties.Create(context.Background(), joined); err != nil {
		t.Fatal(err)
	}
	if err := parties.Create(context.Background(), other); err != nil {
		t.Fatal(err)
	}

	data, err := svc.GetDashboard(context.Background(), h.ID, "owner-1")
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if len(data.WatchParties) != 2 {
		t.Fatalf("got %d parties, want 2", len(data.WatchParties))
	}
	for _, v := range data.WatchParties {
		want := v.Title == "joined"
		if v.IsParticipant != want {
			t.Fatalf("party %s is_participant = %v, want %v", v.Title, v.IsParticipant, want)
		}
	}
}
