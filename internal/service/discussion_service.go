package service

import (
	"context"
	"errors"

	"moovyzoo/internal/model"
	"moovyzoo/internal/pkg"

	"gorm.io/gorm"
)

type DiscussionStore interface {
	Create(ctx context.Context, d *model.Discussion) error
	FindByID(ctx context.Context, id string) (*model.Discussion, error)
	ListWithStats(ctx context.Context, habitatID string) ([]model.DiscussionStats, error)
	SoftDelete(ctx context.Context, id, habitatID string) error
}

type DiscussionService struct {
	repo     DiscussionStore
	habitats *HabitatService
}

func NewDiscussionService(repo DiscussionStore, habitats *HabitatService) *DiscussionService {
	return &DiscussionService{repo: repo, habitats: habitats}
}

// Create opens a thread; members only.
func (s *DiscussionService) Create(ctx context.Context, habitatID, userID, name, description string) (*model.Discussion, error) {
	name, err := pkg.ValidateDiscussionTitle(name)
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

	d := &model.Discussion{
		HabitatID:   habitatID,
		Name:        name,
		Description: pkg.SanitizeText(description),
		CreatedBy:   userID,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, pkg.Unexpected(err)
	}
	return d, nil
}

func (s *DiscussionService) List(ctx context.Context, habitatID, userID string) ([]model.DiscussionStats, error) {
	if err := s.habitats.ValidateAccess(ctx, habitatID, userID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListWithStats(ctx, habitatID)
	if err != nil {
		return nil, pkg.Unexpected(err)
	}
	return list, nil
}

// Delete soft-disables a thread; the thread creator or the habitat owner may
// do it.
func (s *DiscussionService) Delete(ctx context.Context, discussionID, userID string) error {
	d, err := s.repo.FindByID(ctx, discussionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg.ErrNotFound
		}
		return pkg.Unexpected(err)
	}
	habitat, err := s.habitats.Get(ctx, d.HabitatID)
	if err != nil {
		return err
	}
	if d.CreatedBy != userID && habitat.CreatedBy != userID {
		return pkg.ErrAccessDenied
	}
	if err := s.repo.SoftDelete(ctx, discussionID, d.HabitatID); err != nil {
		return pkg.Unexpected(err)
	}
	return nil
}
