// Package services holds the ingestion coordinator: the synchronous
// pipeline that validates a submission, persists it, recomputes the poll's
// aggregate and fans the update out before acknowledging the voter.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/pulsepoll-api/internal/broadcast"
	"github.com/gravadigital/pulsepoll-api/internal/domain/poll"
	"github.com/gravadigital/pulsepoll-api/internal/domain/results"
	"github.com/gravadigital/pulsepoll-api/internal/domain/vote"
	"github.com/gravadigital/pulsepoll-api/internal/logger"
	"github.com/gravadigital/pulsepoll-api/internal/storage"
	"github.com/gravadigital/pulsepoll-api/internal/validation"
)

// ErrPollNotFound is returned when a poll id resolves to no known poll
var ErrPollNotFound = errors.New("unknown poll id")

// ValidationError marks caller-supplied bad input. It never reaches the
// store and never triggers a broadcast.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Archiver persists an aggregate snapshot outside the vote store. Used to
// preserve the final tallies right before a reset wipe.
type Archiver interface {
	ArchiveSnapshot(ctx context.Context, snapshots []*results.AggregateResult) error
}

// Ingestion coordinates vote submissions, result queries and the full
// reset across the catalog, store and hub.
type Ingestion struct {
	catalog   *poll.Catalog
	votes     storage.VoteRepository
	hub       *broadcast.Hub
	archive   Archiver
	validator validation.VoteValidation
	log       *log.Logger
}

// NewIngestion creates the coordinator. archive may be nil when no
// snapshot archive is configured.
func NewIngestion(catalog *poll.Catalog, votes storage.VoteRepository, hub *broadcast.Hub, archive Archiver) *Ingestion {
	return &Ingestion{
		catalog:   catalog,
		votes:     votes,
		hub:       hub,
		archive:   archive,
		validator: validation.VoteValidation{},
		log:       logger.Service("ingestion"),
	}
}

// SubmitVote runs the full pipeline for one submission: validate, persist,
// re-aggregate, publish, acknowledge. The returned aggregate reflects the
// submission and is what every live subscriber just received.
func (s *Ingestion) SubmitVote(ctx context.Context, pollID, voterID string, value vote.Value) (*results.AggregateResult, error) {
	p, ok := s.catalog.Get(pollID)
	if !ok {
		return nil, &ValidationError{Reason: "unknown poll id: " + pollID}
	}
	if err := s.validator.ValidateVoterID(voterID); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if err := s.validateValue(value); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	canonical, err := value.Canonical()
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	if err := s.votes.Upsert(ctx, vote.New(pollID, voterID, canonical)); err != nil {
		return nil, fmt.Errorf("failed to store vote: %w", err)
	}

	result, err := s.aggregate(ctx, p)
	if err != nil {
		return nil, err
	}

	s.hub.Publish(broadcast.VoteUpdate(result))

	s.log.Info("vote recorded", "poll_id", pollID, "voter_id", voterID, "total_responses", result.TotalResponses)
	return result, nil
}

// Results recomputes the aggregate for one poll from the current store
// contents.
func (s *Ingestion) Results(ctx context.Context, pollID string) (*results.AggregateResult, error) {
	p, ok := s.catalog.Get(pollID)
	if !ok {
		return nil, ErrPollNotFound
	}
	return s.aggregate(ctx, p)
}

// AllResults recomputes the aggregate for every poll in catalog order
func (s *Ingestion) AllResults(ctx context.Context) ([]*results.AggregateResult, error) {
	polls := s.catalog.All()
	out := make([]*results.AggregateResult, 0, len(polls))
	for i := range polls {
		result, err := s.aggregate(ctx, &polls[i])
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}

// ResetAll wipes every vote and publishes one reset event per poll so all
// live dashboards immediately show emptied results. When an archiver is
// configured the pre-wipe aggregates are preserved first; an archive
// failure is logged but does not block the reset.
func (s *Ingestion) ResetAll(ctx context.Context) error {
	if s.archive != nil {
		snapshots, err := s.AllResults(ctx)
		if err != nil {
			return err
		}
		if err := s.archive.ArchiveSnapshot(ctx, snapshots); err != nil {
			s.log.Error("failed to archive pre-reset snapshot", "error", err)
		}
	}

	if err := s.votes.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to reset votes: %w", err)
	}

	polls := s.catalog.All()
	for i := range polls {
		result, err := s.aggregate(ctx, &polls[i])
		if err != nil {
			return err
		}
		s.hub.Publish(broadcast.Reset(result))
	}

	s.log.Info("all votes reset", "polls", len(polls))
	return nil
}

// Polls returns the full static catalog
func (s *Ingestion) Polls() []poll.Poll {
	return s.catalog.All()
}

func (s *Ingestion) validateValue(value vote.Value) error {
	if value.IsMulti() {
		return s.validator.ValidateSelections(value.Labels())
	}
	return s.validator.ValidateScalarValue(value.Raw())
}

func (s *Ingestion) aggregate(ctx context.Context, p *poll.Poll) (*results.AggregateResult, error) {
	votes, err := s.votes.ListByPoll(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	return results.Aggregate(p, votes), nil
}
