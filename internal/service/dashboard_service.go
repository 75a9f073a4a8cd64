package service

import (
	"context"
	"errors"
	"log"
	"time"

	"moovyzoo/internal/model"
	"moovyzoo/internal/pkg"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// PresenceWindow bounds the online classification: a member active strictly
// within the window counts as online.
const PresenceWindow = 15 * time.Minute

type AccessChecker interface {
	ValidateAccess(ctx context.Context, habitatID, userID string) error
}

type MemberPresence struct {
	model.HabitatMember
	Online bool `json:"online"`
}

type WatchPartyView struct {
	model.WatchParty
	IsParticipant bool `json:"is_participant"`
}

type DashboardData struct {
	Habitat      *model.Habitat          `json:"habitat"`
	Role         model.Role              `json:"role"`
	Discussions  []model.DiscussionStats `json:"discussions"`
	Polls        []PollView              `json:"polls"`
	WatchParties []WatchPartyView        `json:"watch_parties"`
	Members      []MemberPresence        `json:"members"`
}

// DashboardService assembles the habitat read-model. No partial results: the
// first failing sub-fetch aborts the whole call.
type DashboardService struct {
	access      AccessChecker
	habitats    HabitatStore
	members     MemberStore
	discussions DiscussionStore
	polls       PollStore
	parties     WatchPartyStore
	now         func() time.Time
}

func NewDashboardService(access AccessChecker, habitats HabitatStore, members MemberStore, discussions DiscussionStore, polls PollStore, parties WatchPartyStore) *DashboardService {
	return &DashboardService{
		access:      access,
		habitats:    habitats,
		members:     members,
		discussions: discussions,
		polls:       polls,
		parties:     parties,
		now:         time.Now,
	}
}

// GetDashboard validates access first; on denial nothing is fetched. The
// five sub-fetches then run concurrently and join on the slowest.
func (s *DashboardService) GetDashboard(ctx context.Context, habitatID, userID string) (*DashboardData, error) {
	if err := s.access.ValidateAccess(ctx, habitatID, userID); err != nil {
		return nil, err
	}

	var (
		habitat     *model.Habitat
		discussions []model.DiscussionStats
		polls       []model.Poll
		parties     []model.WatchParty
		joined      []string
		roster      []model.HabitatMember
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		habitat, err = s.habitats.FindByID(gctx, habitatID)
		return err
	})
	g.Go(func() (err error) {
		discussions, err = s.discussions.ListWithStats(gctx, habitatID)
		return err
	})
	g.Go(func() (err error) {
		polls, err = s.polls.ListActive(gctx, habitatID)
		return err
	})
	g.Go(func() (err error) {
		now := s.now()
		parties, err = s.parties.ListUpcoming(gctx, habitatID, now)
		if err != nil {
			return err
		}
		joined, err = s.parties.ListJoinedStreamIDs(gctx, habitatID, userID)
		return err
	})
	g.Go(func() (err error) {
		roster, err = s.members.ListByHabitat(gctx, habitatID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("dashboard: fetch failed habitat=%s: %v", habitatID, err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.ErrNotFound
		}
		return nil, pkg.Unexpected(err)
	}

	now := s.now()
	members := make([]MemberPresence, 0, len(roster))
	isMember := false
	for _, m := range roster {
		if m.UserID == userID {
			isMember = true
		}
		members = append(members, MemberPresence{
			HabitatMember: m,
			Online:        now.Sub(m.LastActive) < PresenceWindow,
		})
	}

	joinedSet := make(map[string]struct{}, len(joined))
	for _, id := range joined {
		joinedSet[id] = struct{}{}
	}
	partyViews := make([]WatchPartyView, 0, len(parties))
	for _, p := range parties {
		_, in := joinedSet[p.ID]
		partyViews = append(partyViews, WatchPartyView{WatchParty: p, IsParticipant: in})
	}

	pollViews := make([]PollView, 0, len(polls))
	for _, p := range polls {
		pollViews = append(pollViews, newPollView(p))
	}

	role := model.RoleNonMember
	switch {
	case habitat.CreatedBy == userID:
		role = model.RoleOwner
	case isMember:
		role = model.RoleMember
	}

	return &DashboardData{
		Habitat:      habitat,
		Role:         role,
		Discussions:  discussions,
		Polls:        pollViews,
		WatchParties: partyViews,
		Members:      members,
	}, nil
}
