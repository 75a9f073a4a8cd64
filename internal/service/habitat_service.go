package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"moovyzoo/internal/model"
	"moovyzoo/internal/pkg"

	"gorm.io/gorm"
)

// HabitatStore is the persistence surface the membership core needs.
type HabitatStore interface {
	Create(ctx context.Context, h *model.Habitat) error
	FindByID(ctx context.Context, id string) (*model.Habitat, error)
	ListPublic(ctx context.Context, offset, limit int) ([]model.Habitat, error)
	Update(ctx context.Context, h *model.Habitat) error
	RecountMembers(ctx context.Context, habitatID string) (int64, error)
}

type MemberStore interface {
	Insert(ctx context.Context, member *model.HabitatMember) error
	Delete(ctx context.Context, habitatID, userID string) error
	Exists(ctx context.Context, habitatID, userID string) (bool, error)
	ListByHabitat(ctx context.Context, habitatID string) ([]model.HabitatMember, error)
	TouchLastActive(ctx context.Context, habitatID, userID string) error
}

type CountCache interface {
	GetCached(ctx context.Context, habitatID string) (int64, bool, error)
	Set(ctx context.Context, habitatID string, count int64) error
	DeleteCount(ctx context.Context, habitatID string, delay ...time.Duration) error
}

type HabitatService struct {
	repo    HabitatStore
	members MemberStore
	counts  CountCache
}

func NewHabitatService(repo HabitatStore, members MemberStore, counts CountCache) *HabitatService {
	return &HabitatService{repo: repo, members: members, counts: counts}
}

// Create validates and stores a new habitat; the creator becomes owner and
// first member in one transaction.
func (s *HabitatService) Create(ctx context.Context, userID, name, description string, tags []string, isPublic bool, bannerURL string) (*model.Habitat, error) {
	name, err := pkg.ValidateHabitatName(name)
	if err != nil {
		return nil, err
	}
	description, err = pkg.ValidateHabitatDescription(description)
	if err != nil {
		return nil, err
	}
	tags, err = pkg.ValidateTags(tags)
	if err != nil {
		return nil, err
	}
	rawTags, _ := json.Marshal(tags)

	habitat := &model.Habitat{
		Name:        name,
		Description: description,
		Tags:        string(rawTags),
		IsPublic:    isPublic,
		CreatedBy:   userID,
		BannerURL:   bannerURL,
	}
	if err := s.repo.Create(ctx, habitat); err != nil {
		return nil, pkg.Unexpected(err)
	}
	return habitat, nil
}

func (s *HabitatService) Get(ctx context.Context, habitatID string) (*model.Habitat, error) {
	habitat, err := s.repo.FindByID(ctx, habitatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.ErrNotFound
		}
		return nil, pkg.Unexpected(err)
	}
	return habitat, nil
}

func (s *HabitatService) IsMember(ctx context.Context, habitatID, userID string) (bool, error) {
	ok, err := s.members.Exists(ctx, habitatID, userID)
	if err != nil {
		return false, pkg.Unexpected(err)
	}
	return ok, nil
}

// RoleOf classifies the user against a habitat. Owner is derived from
// created_by, never stored.
func (s *HabitatService) RoleOf(ctx context.Context, habitat *model.Habitat, userID string) (model.Role, error) {
	if habitat.CreatedBy == userID {
		return model.RoleOwner, nil
	}
	ok, err := s.IsMember(ctx, habitat.ID, userID)
	if err != nil {
		return model.RoleNonMember, err
	}
	if ok {
		return model.RoleMember, nil
	}
	return model.RoleNonMember, nil
}

// Join adds the user to a public habitat, then recounts member_count from
// the membership relation. The recount is outside the membership
// transaction: a crash in between leaves the count stale until the next
// recount or the reconciler sweep, which is accepted.
func (s *HabitatService) Join(ctx context.Context, habitatID, userID string) (*model.HabitatMember, error) {
	habitat, err := s.Get(ctx, habitatID)
	if err != nil {
		return nil, err
	}
	if !habitat.IsPublic {
		return nil, pkg.ErrAccessDenied
	}
	if habitat.CreatedBy == userID {
		return nil, pkg.ErrAlreadyMember
	}
	exists, err := s.members.Exists(ctx, habitatID, userID)
	if err != nil {
		return nil, pkg.Unexpected(err)
	}
	if exists {
		return nil, pkg.ErrAlreadyMember
	}

	member := &model.HabitatMember{HabitatID: habitatID, UserID: userID}
	if err := s.members.Insert(ctx, member); err != nil {
		return nil, pkg.Unexpected(err)
	}
	if _, err := s.repo.RecountMembers(ctx, habitatID); err != nil {
		log.Printf("habitat: recount after join failed habitat=%s: %v", habitatID, err)
	}
	_ = s.counts.DeleteCount(ctx, habitatID)
	return member, nil
}

// Leave removes a membership. The owner can never leave their own habitat.
func (s *HabitatService) Leave(ctx context.Context, habitatID, userID string) error {
	habitat, err := s.Get(ctx, habitatID)
	if err != nil {
		return err
	}
	if habitat.CreatedBy == userID {
		return pkg.ErrAccessDenied
	}
	exists, err := s.members.Exists(ctx, habitatID, userID)
	if err != nil {
		return pkg.Unexpected(err)
	}
	if !exists {
		return pkg.ErrNotMember
	}

	if err := s.members.Delete(ctx, habitatID, userID); err != nil {
		return pkg.Unexpected(err)
	}
	if _, err := s.repo.RecountMembers(ctx, habitatID); err != nil {
		log.Printf("habitat: recount after leave failed habitat=%s: %v", habitatID, err)
	}
	_ = s.counts.DeleteCount(ctx, habitatID)
	return nil
}

// ValidateAccess gates reads: a habitat is readable when it is public or the
// user holds a membership row.
func (s *HabitatService) ValidateAccess(ctx context.Context, habitatID, userID string) error {
	habitat, err := s.Get(ctx, habitatID)
	if err != nil {
		return err
	}
	if habitat.IsPublic {
		return nil
	}
	if habitat.CreatedBy == userID {
		return nil
	}
	exists, err := s.members.Exists(ctx, habitatID, userID)
	if err != nil {
		return pkg.Unexpected(err)
	}
	if !exists {
		return pkg.ErrAccessDenied
	}
	return nil
}

// MemberCount serves the cached count, re-deriving and backfilling on miss.
func (s *HabitatService) MemberCount(ctx context.Context, habitatID string) (int64, error) {
	if cnt, hit, err := s.counts.GetCached(ctx, habitatID); err == nil && hit {
		return cnt, nil
	}
	cnt, err := s.repo.RecountMembers(ctx, habitatID)
	if err != nil {
		return 0, pkg.Unexpected(err)
	}
	if err := s.counts.Set(ctx, habitatID, cnt); err != nil {
		log.Printf("habitat: count cache backfill failed habitat=%s: %v", habitatID, err)
	}
	return cnt, nil
}

func (s *HabitatService) List(ctx context.Context, page, size int) ([]model.Habitat, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	offset := (page - 1) * size
	list, err := s.repo.ListPublic(ctx, offset, size)
	if err != nil {
		return nil, pkg.Unexpected(err)
	}
	return list, nil
}

// Update applies owner-only edits after the same validation as Create.
func (s *HabitatService) Update(ctx context.Context, habitatID, userID, name, description string, tags []string, isPublic bool, bannerURL string) (*model.Habitat, error) {
	habitat, err := s.Get(ctx, habitatID)
	if err != nil {
		return nil, err
	}
	if habitat.CreatedBy != userID {
		return nil, pkg.ErrAccessDenied
	}
	name, err = pkg.ValidateHabitatName(name)
	if err != nil {
		return nil, err
	}
	description, err = pkg.ValidateHabitatDescription(description)
	if err != nil {
		return nil, err
	}
	tags, err = pkg.ValidateTags(tags)
	if err != nil {
		return nil, err
	}
	rawTags, _ := json.Marshal(tags)

	habitat.Name = name
	habitat.Description = description
	habitat.Tags = string(rawTags)
	habitat.IsPublic = isPublic
	habitat.BannerURL = bannerURL
	if err := s.repo.Update(ctx, habitat); err != nil {
		return nil, pkg.Unexpected(err)
	}
	return habitat, nil
}
