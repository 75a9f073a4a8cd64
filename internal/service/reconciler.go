package service

import (
	"context"
	"log"
	"time"

	"moovyzoo/internal/repository/mysql"
)

// MemberCountReconciler sweeps habitats in batches and fixes member_count
// drift against the membership relation. It is the backstop for the
// recount-after-mutation window.
type MemberCountReconciler struct {
	repo      *mysql.MemberCountReconcilerRepo
	batchSize int
	interval  time.Duration
}

func NewMemberCountReconciler() *MemberCountReconciler {
	return &MemberCountReconciler{
		repo:      mysql.NewMemberCountReconcilerRepo(),
		batchSize: 500,
		interval:  5 * time.Minute,
	}
}

func (r *MemberCountReconciler) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.reconcileOnce(ctx)
		}
	}
}

// reconcileOnce walks every habitat once, keyset-paged by id.
func (r *MemberCountReconciler) reconcileOnce(ctx context.Context) {
	lastID := ""
	for {
		batch, next, err := r.repo.ListBatch(ctx, r.batchSize, lastID)
		if err != nil {
			log.Printf("reconcile list err: %v", err)
			return
		}
		if len(batch) == 0 {
			return
		}
		for _, h := range batch {
			real, err := r.repo.RealCount(ctx, h.ID)
			if err != nil {
				continue
			}
			if real != h.MemberCount {
				if err := r.repo.FixCount(ctx, h.ID, real); err != nil {
					log.Printf("reconcile fix err habitat=%s: %v", h.ID, err)
				}
			}
		}
		lastID = next
	}
}
