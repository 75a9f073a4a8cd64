package service

import (
	"context"
	"encoding/json"
	"errors"

	"moovyzoo/internal/model"
	"moovyzoo/internal/pkg"
	"moovyzoo/internal/repository/mysql"

	"gorm.io/gorm"
)

type PollStore interface {
	Create(ctx context.Context, p *model.Poll, options []string) error
	FindByID(ctx context.Context, id string) (*model.Poll, error)
	ListActive(ctx context.Context, habitatID string) ([]model.Poll, error)
	Vote(ctx context.Context, pollID, userID, option string) error
	SoftDelete(ctx context.Context, id, habitatID string) error
}

type PollView struct {
	model.Poll
	Counts     map[string]int64 `json:"counts"`
	TotalVotes int64            `json:"total_votes"`
}

func newPollView(p model.Poll) PollView {
	counts := map[string]int64{}
	_ = json.Unmarshal([]byte(p.Options), &counts)
	var total int64
	for _, n := range counts {
		total += n
	}
	return PollView{Poll: p, Counts: counts, TotalVotes: total}
}

type PollService struct {
	repo     PollStore
	habitats *HabitatService
}

func NewPollService(repo PollStore, habitats *HabitatService) *PollService {
	return &PollService{repo: repo, habitats: habitats}
}

// Create validates the title and 2-6 options, members only.
func (s *PollService) Create(ctx context.Context, habitatID, userID, title string, options []string) (*PollView, error) {
	title, err := pkg.ValidatePollTitle(title)
	if err != nil {
		return nil, err
	}
	options, err = pkg.ValidatePollOptions(options)
	if err != nil {
		return nil, err
	}
	habitat, err := s.habitats.Get(ctx, habitatID)
	if err != nil {
		return nil, err
	}
	role, err := s.habitats.RoleOf(ctx, habitat, userID)
	if err != nil {
		return nil, err
	}
	if role == model.RoleNonMember {
		return nil, pkg.ErrNotMember
	}

	p := &model.Poll{HabitatID: habitatID, Title: title, CreatedBy: userID}
	if err := s.repo.Create(ctx, p, options); err != nil {
		return nil, pkg.Unexpected(err)
	}
	view := newPollView(*p)
	return &view, nil
}

// Vote records a single vote per user per poll.
func (s *PollService) Vote(ctx context.Context, pollID, userID, option string) (*PollView, error) {
	poll, err := s.repo.FindByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.ErrNotFound
		}
		return nil, pkg.Unexpected(err)
	}
	ok, err := s.habitats.IsMember(ctx, poll.HabitatID, userID)
	if err != nil {
		return nil, err
	}
	if !ok && poll.CreatedBy != userID {
		return nil, pkg.ErrNotMember
	}

	if err := s.repo.Vote(ctx, pollID, userID, option); err != nil {
		switch {
		case errors.Is(err, mysql.ErrAlreadyVoted):
			return nil, pkg.Invalid("already voted on this poll")
		case errors.Is(err, mysql.ErrUnknownOption):
			return nil, pkg.Invalid("unknown poll option")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, pkg.ErrNotFound
		}
		return nil, pkg.Unexpected(err)
	}

	poll, err = s.repo.FindByID(ctx, pollID)
	if err != nil {
		return nil, pkg.Unexpected(err)
	}
	view := newPollView(*poll)
	return &view, nil
}

func (s *PollService) List(ctx context.Context, habitatID, userID string) ([]PollView, error) {
	if err := s.habitats.ValidateAccess(ctx, habitatID, userID); err != nil {
		return nil, err
	}
	polls, err := s.repo.ListActive(ctx, habitatID)
	if err != nil {
		return nil, pkg.Unexpected(err)
	}
	views := make([]PollView, 0, len(polls))
	for _, p := range polls {
		views = append(views, newPollView(p))
	}
	return views, nil
}

func (s *PollService) Delete(ctx context.Context, pollID, userID string) error {
	p, err := s.repo.FindByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg.ErrNotFound
		}
		return pkg.Unexpected(err)
	}
	habitat, err := s.habitats.Get(ctx, p.HabitatID)
	if err != nil {
		return err
	}
	if p.CreatedBy != userID && habitat.CreatedBy != userID {
		return pkg.ErrAccessDenied
	}
	if err := s.repo.SoftDelete(ctx, pollID, p.HabitatID); err != nil {
		return pkg.Unexpected(err)
	}
	return nil
}
