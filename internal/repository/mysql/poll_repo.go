package mysql

import (
	"context"
	"encoding/json"
	"errors"

	"moovyzoo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyVoted  = errors.New("already voted")
	ErrUnknownOption = errors.New("unknown poll option")
)

type PollRepository struct {
	DB *gorm.DB
}

func NewPollRepository() *PollRepository {
	return &PollRepository{DB: DB}
}

// Create stores the poll with every option at zero votes.
func (r *PollRepository) Create(ctx context.Context, p *model.Poll, options []string) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.IsActive = true
	counts := make(map[string]int64, len(options))
	for _, o := range options {
		counts[o] = 0
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	p.Options = string(raw)
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventInsert, "habitat_polls", p.ID, p.HabitatID, map[string]any{
			"title": p.Title,
		})
	})
}

func (r *PollRepository) FindByID(ctx context.Context, id string) (*model.Poll, error) {
	var p model.Poll
	err := r.DB.WithContext(ctx).First(&p, "id = ? AND is_active = 1", id).Error
	return &p, err
}

func (r *PollRepository) ListActive(ctx context.Context, habitatID string) ([]model.Poll, error) {
	var list []model.Poll
	err := r.DB.WithContext(ctx).
		Where("habitat_id = ? AND is_active = 1", habitatID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// Vote records one vote per (poll, user) and bumps the chosen label's count
// under a row lock. Returns ErrAlreadyVoted on a repeat, ErrUnknownOption if
// the label is not part of the poll.
func (r *PollRepository) Vote(ctx context.Context, pollID, userID, option string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var poll model.Poll
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&poll, "id = ? AND is_active = 1", pollID).Error; err != nil {
			return err
		}

		var prior model.PollVote
		err := tx.Where("poll_id = ? AND user_id = ?", pollID, userID).First(&prior).Error
		if err == nil {
			return ErrAlreadyVoted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		counts := map[string]int64{}
		if err := json.Unmarshal([]byte(poll.Options), &counts); err != nil {
			return err
		}
		if _, ok := counts[option]; !ok {
			return ErrUnknownOption
		}
		counts[option]++
		raw, err := json.Marshal(counts)
		if err != nil {
			return err
		}

		if err := tx.Model(&model.Poll{}).Where("id = ?", pollID).
			UpdateColumn("options", string(raw)).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.PollVote{
			ID:     uuid.NewString(),
			PollID: pollID,
			UserID: userID,
			Option: option,
		}).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventUpdate, "habitat_polls", pollID, poll.HabitatID, map[string]any{
			"option": option,
		})
	})
}

func (r *PollRepository) SoftDelete(ctx context.Context, id, habitatID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Poll{}).
			Where("id = ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventDelete, "habitat_polls", id, habitatID, nil)
	})
}
