package service

import (
	"context"
	"errors"
	"testing"

	"moovyzoo/internal/pkg"
)

func TestJoinPublicHabitat(t *testing.T) {
	w := newTestWorld()
	h := w.seedHabitat("owner-1", true)

	member, err := w.svc.Join(context.Background(), h.ID, "user-2")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if member.HabitatID != h.ID || member.UserID != "user-2" {
		t.Fatalf("wrong member row: %+v", member)
	}
	if h.MemberCount != 2 {
		t.Fatalf("member_count = %d, want 2 after recount", h.MemberCount)
	}
	if w.counts.deletes != 1 {
		t.Fatalf("cache deletes = %d, want 1", w.counts.deletes)
	}
}

func TestJoinMissingHabitat(t *testing.T) {
	w := newTestWorld()
	if _, err := w.svc.Join(context.Background(), "nope", "user-2"); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestJoinPrivateHabitatDenied(t *testing.T) {
	w := newTestWorld()
	h := w.seedHabitat("owner-1", false)

	if _, err := w.svc.Join(context.Background(), h.ID, "user-2"); !errors.Is(err, pkg.ErrAccessDenied) {
		t.Fatalf("got %v, want ErrAccessDenied", err)
	}
	// Privacy wins even for the owner: the private check runs first.
	if _, err := w.svc.Join(context.Background(), h.ID, "owner-1"); !errors.Is(err, pkg.ErrAccessDenied) {
		t.Fatalf("owner join on private: got %v, want ErrAccessDenied", err)
	}
}

func TestJoinOwnerIsAlreadyMember(t *testing.T) {
	w := newTestWorld()
	h := w.seedHabitat("owner-1", true)

	if _, err := w.svc.Join(context.Background(), h.ID, "owner-1"); !errors.Is(err, pkg.ErrAlreadyMember) {
		t.Fatalf("got %v, want ErrAlreadyMember", err)
	}
}

func TestJoinTwice(t *testing.T) {
	w := newTestWorld()
	h := w.seedHabitat("owner-1", true)

	if _, err := w.svc.Join(context.Background(), h.ID, "user-2"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := w.svc.Join(context.Background(), h.ID, "user-2"); !errors.Is(err, pkg.ErrAlreadyMember) {
		t.Fatalf("second join: got %v, want ErrAlreadyMember", err)
	}
}

func TestLeave(t *testing.T) {
	w := newTestWorld()
	h := w.seedHabitat("owner-1", true)
	if _, err := w.svc.Join(context.Background(), h.ID, "user-2"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := w.svc.Leave(context.Background(), h.ID, "user-2"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if h.MemberCount != 1 {
		t.Fatalf("member_count = %d, want 1 after leave", h.MemberCount)
	}
}

func TestLeaveOwnerDenied(t *testing.T) {
	w := newTestWorld()
	h := w.seedHabitat("owner-1", true)

	if err := w.svc.Leave(context.Background(), h.ID, "owner-1"); !errors.Is(err, pkg.ErrAccessDenied) {
		t.Fatalf("got %v, want ErrAccessDenied", err)
	}
}

func TestLeaveWithoutMembership(t *testing.T) {
	w := newTestWorld()
	h := w.seedHabitat("owner-1", true)

	if err := w.svc.Leave(context.Background(), h.ID, "user-2"); !errors.Is(err, pkg.ErrNotMember) {
		t.Fatalf("got %v, want ErrNotMember", err)
	}
}

func TestValidateAccess(t *testing.T) {
	w := newTestWorld()
	pub := w.seedHabitat("owner-1", true)
	priv := w.seedHabitat("owner-1", false)
	if err := w.members.Insert(context.Background(), memberRow(priv.ID, "user-member")); err != nil {
		t.Fatalf("seed member: %v", err)
	}

	cases := []struct {
		name      string
		habitatID string
		userID    string
		want      error
	}{
		{"public stranger", pub.ID, "anyone", nil},
		{"private owner", priv.ID, "owner-1", nil},
		{"private member", priv.ID, "user-member", nil},
		{"private stranger", priv.ID, "user-x", pkg.ErrAccessDenied},
		{"missing habitat", "nope", "anyone", pkg.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := w.svc.ValidateAccess(context.Background(), tc.habitatID, tc.userID)
			if !errors.Is(err, tc.want) && !(err == nil && tc.want == nil) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestMemberCountCaching(t *testing.T) {
	w := newTestWorld()
	h := w.seedHabitat("owner-1", true)

	// Miss: recount and backfill.
	cnt, err := w.svc.MemberCount(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("MemberCount: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("count = %d, want 1", cnt)
	}
	if w.counts.sets != 1 {
		t.Fatalf("cache sets = %d, want 1 backfill", w.counts.sets)
	}

	// Hit: no further recount.
	before := w.habitats.recountCalls
	if _, err := w.svc.MemberCount(context.Background(), h.ID); err != nil {
		t.Fatalf("MemberCount (cached): %v", err)
	}
	if w.habitats.recountCalls != before {
		t.Fatalf("recount ran on a cache hit")
	}
}

func TestCreateHabitatValidation(t *testing.T) {
	w := newTestWorld()
	ctx := context.Background()
	tags := []string{"drama"}

	if _, err := w.svc.Create(ctx, "u1", "ab", "a long enough description", tags, true, ""); !errors.Is(err, pkg.ErrInvalidInput) {
		t.Fatalf("short name: got %v", err)
	}
	if _, err := w.svc.Create(ctx, "u1", "Movie Club", "too short", tags, true, ""); !errors.Is(err, pkg.ErrInvalidInput) {
		t.Fatalf("short description: got %v", err)
	}
	if _, err := w.svc.Create(ctx, "u1", "Movie Club", "a long enough description", nil, true, ""); !errors.Is(err, pkg.ErrInvalidInput) {
		t.Fatalf("no tags: got %v", err)
	}

	h, err := w.svc.Create(ctx, "u1", "Movie Club", "a long enough description", []string{"Drama", "DRAMA", " Space "}, true, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h.Tags != `["drama","space"]` {
		t.Fatalf("tags = %s, want normalized JSON", h.Tags)
	}
	if h.MemberCount != 1 || h.CreatedBy != "u1" {
		t.Fatalf("creator not seeded as first member: %+v", h)
	}
}

func TestUpdateHabitatOwnerOnly(t *testing.T) {
	w := newTestWorld()
	h := w.seedHabitat("owner-1", true)

	_, err := w.svc.Update(context.Background(), h.ID, "user-2", "New Name", "a long enough description", []string{"x"}, true, "")
	if !errors.Is(err, pkg.ErrAccessDenied) {
		t.Fatalf("non-owner update: got %v, want ErrAccessDenied", err)
	}

	got, err := w.svc.Update(context.Background(), h.ID, "owner-1", "New Name", "a long enough description", []string{"x"}, false, "")
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if got.Name != "New Name" || got.IsPublic {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestListClampsPaging(t *testing.T) {
	w := newTestWorld()
	for i := 0; i < 3; i++ {
		w.seedHabitat("owner-1", true)
	}

	list, err := w.svc.List(context.Background(), -5, 9999)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d habitats, want 3", len(list))
	}
}
