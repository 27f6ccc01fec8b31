package postgres

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/pulsepoll-api/internal/domain/vote"
	"github.com/gravadigital/pulsepoll-api/internal/logger"
)

// VoteRepository implements storage.VoteRepository using GORM. The
// (poll_id, voter_id) unique index plus ON CONFLICT DO UPDATE makes the
// upsert atomic: concurrent resubmissions never create duplicate rows.
type VoteRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewVoteRepository creates a new PostgreSQL vote repository
func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{
		db:  db,
		log: logger.Repository("vote"),
	}
}

func (r *VoteRepository) Upsert(ctx context.Context, v *vote.Vote) error {
	r.log.Debug("upserting vote", "poll_id", v.PollID, "voter_id", v.VoterID)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "poll_id"}, {Name: "voter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "recorded_at"}),
	}).Create(v).Error
	if err != nil {
		r.log.Error("failed to upsert vote", "error", err, "poll_id", v.PollID, "voter_id", v.VoterID)
		return fmt.Errorf("failed to upsert vote: %w", err)
	}

	return nil
}

func (r *VoteRepository) ListByPoll(ctx context.Context, pollID string) ([]vote.Vote, error) {
	r.log.Debug("listing votes", "poll_id", pollID)

	var votes []vote.Vote
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order("recorded_at ASC").
		Order("id ASC").
		Find(&votes).Error
	if err != nil {
		r.log.Error("failed to list votes", "error", err, "poll_id", pollID)
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	return votes, nil
}

func (r *VoteRepository) ClearAll(ctx context.Context) error {
	r.log.Warn("wiping all votes")

	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&vote.Vote{}).Error
	if err != nil {
		r.log.Error("failed to wipe votes", "error", err)
		return fmt.Errorf("failed to wipe votes: %w", err)
	}

	return nil
}
