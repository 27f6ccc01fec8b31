// Package results computes live aggregates from the stored vote set. All
// functions are pure: the aggregate holds no state of its own and is
// recomputed from the store on every query.
package results

import (
	"fmt"
	"strconv"

	"github.com/gravadigital/pulsepoll-api/internal/domain/poll"
	"github.com/gravadigital/pulsepoll-api/internal/domain/vote"
)

// WriteInBucket is the synthetic option collecting answers that do not
// match any declared option of a write-in poll.
const WriteInBucket = "Other"

// OptionCount is one (option label, count) pair of an aggregate
type OptionCount struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

// AggregateResult is the derived tally for one poll
type AggregateResult struct {
	PollID         string          `json:"poll_id"`
	Question       string          `json:"question"`
	AnswerType     poll.AnswerType `json:"answer_type"`
	TotalResponses int             `json:"total_responses"`
	Options        []OptionCount   `json:"options,omitempty"`
	Responses      []string        `json:"responses,omitempty"`
	WriteIns       []string        `json:"write_ins,omitempty"`
	Average        string          `json:"average,omitempty"`
}

// Aggregate tallies the stored votes of a poll. Votes must be in storage
// order; free-text responses and write-ins come back newest first.
// Malformed stored values are skipped or bucketed, never an error.
func Aggregate(p *poll.Poll, votes []vote.Vote) *AggregateResult {
	result := &AggregateResult{
		PollID:         p.ID,
		Question:       p.Question,
		AnswerType:     p.AnswerType,
		TotalResponses: len(votes),
	}

	switch p.AnswerType {
	case poll.AnswerSingleChoice:
		result.Options = countChoices(p, votes)
	case poll.AnswerRating:
		result.Options = countChoices(p, votes)
		result.Average = ratingAverage(votes)
	case poll.AnswerMultiSelect:
		result.Options = countSelections(p, votes)
	case poll.AnswerWriteIn:
		result.Options, result.WriteIns = countWithWriteIns(p, votes)
	case poll.AnswerFreeText:
		result.Responses = newestFirst(votes)
	}

	return result
}

// zeroCounts initializes one zero-count bucket per declared option so the
// aggregate always covers the full option list in declared order.
func zeroCounts(p *poll.Poll) ([]OptionCount, map[string]int) {
	counts := make([]OptionCount, len(p.Options))
	index := make(map[string]int, len(p.Options))
	for i, opt := range p.Options {
		counts[i] = OptionCount{Option: opt}
		index[opt] = i
	}
	return counts, index
}

// countChoices tallies one choice per voter. Values that match no declared
// option are left out of the counts; the write-in answer type is the home
// for out-of-list answers.
func countChoices(p *poll.Poll, votes []vote.Vote) []OptionCount {
	counts, index := zeroCounts(p)
	for _, v := range votes {
		if i, ok := index[v.Value]; ok {
			counts[i].Count++
		}
	}
	return counts
}

// countSelections tallies multi-select contributions: every voter's
// selected subset adds one to each chosen option, so counts are not
// mutually exclusive. Votes whose stored value fails to parse are skipped.
func countSelections(p *poll.Poll, votes []vote.Vote) []OptionCount {
	counts, index := zeroCounts(p)
	for _, v := range votes {
		labels, ok := v.Selections()
		if !ok {
			continue
		}
		seen := make(map[string]bool, len(labels))
		for _, label := range labels {
			if seen[label] {
				continue
			}
			seen[label] = true
			if i, ok := index[label]; ok {
				counts[i].Count++
			}
		}
	}
	return counts
}

// countWithWriteIns tallies exact option matches and routes everything
// else into the synthetic write-in bucket, keeping the raw strings.
func countWithWriteIns(p *poll.Poll, votes []vote.Vote) ([]OptionCount, []string) {
	counts, index := zeroCounts(p)
	counts = append(counts, OptionCount{Option: WriteInBucket})
	other := len(counts) - 1

	raw := make([]string, 0)
	for _, v := range votes {
		if i, ok := index[v.Value]; ok {
			counts[i].Count++
			continue
		}
		counts[other].Count++
		raw = append(raw, v.Value)
	}

	return counts, reverse(raw)
}

// ratingAverage computes the arithmetic mean of the integer-parseable
// values, rounded to one decimal place. Unparseable values are excluded
// from both numerator and denominator.
func ratingAverage(votes []vote.Vote) string {
	sum, n := 0, 0
	for _, v := range votes {
		rating, err := strconv.Atoi(v.Value)
		if err != nil {
			continue
		}
		sum += rating
		n++
	}
	if n == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(n))
}

// newestFirst collects raw values in reverse storage order
func newestFirst(votes []vote.Vote) []string {
	values := make([]string, 0, len(votes))
	for _, v := range votes {
		values = append(values, v.Value)
	}
	return reverse(values)
}

func reverse(s []string) []string {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	return s
}
