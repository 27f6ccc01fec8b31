package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/gravadigital/pulsepoll-api/internal/config"
	"github.com/gravadigital/pulsepoll-api/internal/domain/vote"
	"github.com/gravadigital/pulsepoll-api/internal/logger"
)

const voteKeyPrefix = "votes:"

// Connect creates and pings a Redis client
func Connect(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Database().Info("Successfully connected to Redis", "addr", cfg.Redis.Addr)
	return client, nil
}

// storedVote is the hash field payload for one voter's latest vote
type storedVote struct {
	ID         string    `json:"id"`
	Value      string    `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// VoteRepository implements storage.VoteRepository on a Redis hash per
// poll, keyed by voter. HSET overwrites the field atomically, which gives
// the one-vote-per-voter upsert for free.
type VoteRepository struct {
	client *redis.Client
	log    *log.Logger
}

// NewVoteRepository creates a new Redis vote repository
func NewVoteRepository(client *redis.Client) *VoteRepository {
	return &VoteRepository{
		client: client,
		log:    logger.Repository("vote"),
	}
}

func voteKey(pollID string) string {
	return voteKeyPrefix + pollID
}

func (r *VoteRepository) Upsert(ctx context.Context, v *vote.Vote) error {
	r.log.Debug("upserting vote", "poll_id", v.PollID, "voter_id", v.VoterID)

	payload, err := json.Marshal(storedVote{
		ID:         v.ID.String(),
		Value:      v.Value,
		RecordedAt: v.RecordedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode vote: %w", err)
	}

	if err := r.client.HSet(ctx, voteKey(v.PollID), v.VoterID, payload).Err(); err != nil {
		r.log.Error("failed to upsert vote", "error", err, "poll_id", v.PollID, "voter_id", v.VoterID)
		return fmt.Errorf("failed to upsert vote: %w", err)
	}

	return nil
}

func (r *VoteRepository) ListByPoll(ctx context.Context, pollID string) ([]vote.Vote, error) {
	r.log.Debug("listing votes", "poll_id", pollID)

	fields, err := r.client.HGetAll(ctx, voteKey(pollID)).Result()
	if err != nil {
		r.log.Error("failed to list votes", "error", err, "poll_id", pollID)
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	votes := make([]vote.Vote, 0, len(fields))
	for voterID, payload := range fields {
		var sv storedVote
		if err := json.Unmarshal([]byte(payload), &sv); err != nil {
			// Skip corrupt fields; the aggregate must stay available
			r.log.Warn("skipping corrupt vote field", "poll_id", pollID, "voter_id", voterID)
			continue
		}
		v := vote.Vote{
			PollID:     pollID,
			VoterID:    voterID,
			Value:      sv.Value,
			RecordedAt: sv.RecordedAt,
		}
		votes = append(votes, v)
	}

	// Hash fields carry no order; recorded_at is the closest stable proxy
	// for storage order.
	sort.Slice(votes, func(i, j int) bool {
		if votes[i].RecordedAt.Equal(votes[j].RecordedAt) {
			return votes[i].VoterID < votes[j].VoterID
		}
		return votes[i].RecordedAt.Before(votes[j].RecordedAt)
	})

	return votes, nil
}

func (r *VoteRepository) ClearAll(ctx context.Context) error {
	r.log.Warn("wiping all votes")

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, voteKeyPrefix+"*", 100).Result()
		if err != nil {
			r.log.Error("failed to scan vote keys", "error", err)
			return fmt.Errorf("failed to wipe votes: %w", err)
		}

		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				r.log.Error("failed to delete vote keys", "error", err)
				return fmt.Errorf("failed to wipe votes: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return nil
}
