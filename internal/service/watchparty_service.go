package service

import (
	"context"
	"errors"
	"log"
	"time"

	"moovyzoo/internal/model"
	"moovyzoo/internal/pkg"

	"gorm.io/gorm"
)

type WatchPartyStore interface {
	Create(ctx context.Context, wp *model.WatchParty) error
	FindByID(ctx context.Context, id string) (*model.WatchParty, error)
	ListUpcoming(ctx context.Context, habitatID string, now time.Time) ([]model.WatchParty, error)
	ParticipantExists(ctx context.Context, streamID, userID string) (bool, error)
	AddParticipant(ctx context.Context, streamID, habitatID, userID string) error
	RemoveParticipant(ctx context.Context, streamID, habitatID, userID string) error
	RecountParticipants(ctx context.Context, streamID string) (int64, error)
	ListJoinedStreamIDs(ctx context.Context, habitatID, userID string) ([]string, error)
	ListParticipantEmails(ctx context.Context, streamID string) ([]string, error)
}

// ScheduleParams carries the denormalized media metadata along with the
// event itself; no catalog lookups happen server-side.
type ScheduleParams struct {
	Title           string
	Description     string
	ScheduledTime   time.Time
	MaxParticipants int64
	TMDBID          *int64
	MediaType       *string
	MediaTitle      *string
	PosterPath      *string
	ReleaseDate     *string
	RuntimeMinutes  *int
}

type WatchPartyService struct {
	repo     WatchPartyStore
	habitats *HabitatService
	smtp     pkg.SMTPConfig
	now      func() time.Time
}

func NewWatchPartyService(repo WatchPartyStore, habitats *HabitatService, smtp pkg.SMTPConfig) *WatchPartyService {
	return &WatchPartyService{repo: repo, habitats: habitats, smtp: smtp, now: time.Now}
}

func (p ScheduleParams) hasMedia() bool {
	return p.TMDBID != nil || p.MediaType != nil || p.MediaTitle != nil ||
		p.PosterPath != nil || p.ReleaseDate != nil || p.RuntimeMinutes != nil
}

// Schedule creates a watch party; members only, future-dated, and if any
// media field is present the TMDB id and media type must both be set.
func (s *WatchPartyService) Schedule(ctx context.Context, habitatID, userID string, params ScheduleParams) (*model.WatchParty, error) {
	title := pkg.SanitizeText(params.Title)
	if title == "" {
		return nil, pkg.Invalid("watch party title is empty")
	}
	if !params.ScheduledTime.After(s.now()) {
		return nil, pkg.Invalid("scheduled time must be in the future")
	}
	if params.MaxParticipants < 0 {
		return nil, pkg.Invalid("max participants cannot be negative")
	}
	if params.hasMedia() {
		if params.TMDBID == nil || params.MediaType == nil {
			return nil, pkg.Invalid("media reference requires both a catalog id and a media type")
		}
		if mt := *params.MediaType; mt != model.MediaTypeMovie && mt != model.MediaTypeTV {
			return nil, pkg.Invalid("media type must be movie or tv")
		}
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

	wp := &model.WatchParty{
		HabitatID:       habitatID,
		Title:           title,
		Description:     pkg.SanitizeText(params.Description),
		ScheduledTime:   params.ScheduledTime,
		MaxParticipants: params.MaxParticipants,
		CreatedBy:       userID,
		TMDBID:          params.TMDBID,
		MediaType:       params.MediaType,
		MediaTitle:      params.MediaTitle,
		PosterPath:      params.PosterPath,
		ReleaseDate:     params.ReleaseDate,
		RuntimeMinutes:  params.RuntimeMinutes,
	}
	if err := s.repo.Create(ctx, wp); err != nil {
		return nil, pkg.Unexpected(err)
	}
	return wp, nil
}

func (s *WatchPartyService) get(ctx context.Context, streamID string) (*model.WatchParty, error) {
	wp, err := s.repo.FindByID(ctx, streamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.ErrNotFound
		}
		return nil, pkg.Unexpected(err)
	}
	return wp, nil
}

// Join adds the caller as a participant, bounded by max_participants;
// participant_count is recounted afterwards like member_count.
func (s *WatchPartyService) Join(ctx context.Context, streamID, userID string) error {
	wp, err := s.get(ctx, streamID)
	if err != nil {
		return err
	}
	ok, err := s.habitats.IsMember(ctx, wp.HabitatID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.ErrNotMember
	}
	exists, err := s.repo.ParticipantExists(ctx, streamID, userID)
	if err != nil {
		return pkg.Unexpected(err)
	}
	if exists {
		return pkg.ErrAlreadyMember
	}
	if wp.MaxParticipants > 0 && wp.ParticipantCount >= wp.MaxParticipants {
		return pkg.Invalid("watch party is full")
	}

	if err := s.repo.AddParticipant(ctx, streamID, wp.HabitatID, userID); err != nil {
		return pkg.Unexpected(err)
	}
	if _, err := s.repo.RecountParticipants(ctx, streamID); err != nil {
		log.Printf("watchparty: recount after join failed stream=%s: %v", streamID, err)
	}
	return nil
}

func (s *WatchPartyService) Leave(ctx context.Context, streamID, userID string) error {
	wp, err := s.get(ctx, streamID)
	if err != nil {
		return err
	}
	exists, err := s.repo.ParticipantExists(ctx, streamID, userID)
	if err != nil {
		return pkg.Unexpected(err)
	}
	if !exists {
		return pkg.ErrNotMember
	}
	if err := s.repo.RemoveParticipant(ctx, streamID, wp.HabitatID, userID); err != nil {
		return pkg.Unexpected(err)
	}
	if _, err := s.repo.RecountParticipants(ctx, streamID); err != nil {
		log.Printf("watchparty: recount after leave failed stream=%s: %v", streamID, err)
	}
	return nil
}

func (s *WatchPartyService) ListUpcoming(ctx context.Context, habitatID, userID string) ([]WatchPartyView, error) {
	if err := s.habitats.ValidateAccess(ctx, habitatID, userID); err != nil {
		return nil, err
	}
	parties, err := s.repo.ListUpcoming(ctx, habitatID, s.now())
	if err != nil {
		return nil, pkg.Unexpected(err)
	}
	joined, err := s.repo.ListJoinedStreamIDs(ctx, habitatID, userID)
	if err != nil {
		return nil, pkg.Unexpected(err)
	}
	joinedSet := make(map[string]struct{}, len(joined))
	for _, id := range joined {
		joinedSet[id] = struct{}{}
	}
	views := make([]WatchPartyView, 0, len(parties))
	for _, p := range parties {
		_, in := joinedSet[p.ID]
		views = append(views, WatchPartyView{WatchParty: p, IsParticipant: in})
	}
	return views, nil
}

// SendReminders emails every participant; only the scheduler may trigger it.
func (s *WatchPartyService) SendReminders(ctx context.Context, streamID, userID string) error {
	wp, err := s.get(ctx, streamID)
	if err != nil {
		return err
	}
	if wp.CreatedBy != userID {
		return pkg.ErrAccessDenied
	}
	emails, err := s.repo.ListParticipantEmails(ctx, streamID)
	if err != nil {
		return pkg.Unexpected(err)
	}
	html := pkg.WatchPartyReminderHTML(wp.Title, wp.ScheduledTime)
	for _, to := range emails {
		if err := pkg.SendEmail(s.smtp, to, "Your watch party is coming up", html); err != nil {
			log.Printf("watchparty: reminder to %s failed: %v", to, err)
		}
	}
	return nil
}
