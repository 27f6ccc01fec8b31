package memory

import (
	"context"
	"sync"

	"github.com/gravadigital/pulsepoll-api/internal/domain/vote"
)

// VoteRepository is an in-memory vote store used for development and
// tests. Votes keep their insertion position: a resubmission overwrites
// the existing entry in place, so storage order is stable.
type VoteRepository struct {
	mu    sync.RWMutex
	votes map[string][]vote.Vote       // poll_id -> votes in insertion order
	index map[string]map[string]int    // poll_id -> voter_id -> slice position
}

// NewVoteRepository creates an empty in-memory vote store
func NewVoteRepository() *VoteRepository {
	return &VoteRepository{
		votes: make(map[string][]vote.Vote),
		index: make(map[string]map[string]int),
	}
}

func (r *VoteRepository) Upsert(ctx context.Context, v *vote.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	voters, ok := r.index[v.PollID]
	if !ok {
		voters = make(map[string]int)
		r.index[v.PollID] = voters
	}

	if pos, exists := voters[v.VoterID]; exists {
		r.votes[v.PollID][pos] = *v
		return nil
	}

	voters[v.VoterID] = len(r.votes[v.PollID])
	r.votes[v.PollID] = append(r.votes[v.PollID], *v)
	return nil
}

func (r *VoteRepository) ListByPoll(ctx context.Context, pollID string) ([]vote.Vote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]vote.Vote, len(r.votes[pollID]))
	copy(out, r.votes[pollID])
	return out, nil
}

func (r *VoteRepository) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.votes = make(map[string][]vote.Vote)
	r.index = make(map[string]map[string]int)
	return nil
}
