package storage

import (
	"context"

	"github.com/gravadigital/pulsepoll-api/internal/domain/vote"
)

// VoteRepository defines the methods for interacting with stored votes.
// Implementations guarantee at most one row per (poll, voter): Upsert is
// atomic with respect to that constraint and the later write wins.
type VoteRepository interface {
	// Upsert stores the vote, overwriting any previous vote by the same
	// voter for the same poll.
	Upsert(ctx context.Context, v *vote.Vote) error

	// ListByPoll returns every stored vote for the poll in storage order.
	ListByPoll(ctx context.Context, pollID string) ([]vote.Vote, error)

	// ClearAll unconditionally wipes every vote for every poll.
	ClearAll(ctx context.Context) error
}
