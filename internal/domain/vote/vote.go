package vote

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote represents the latest submission by one voter for one poll. The
// (PollID, VoterID) pair is unique; resubmitting overwrites Value and
// RecordedAt in place.
type Vote struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PollID     string    `json:"poll_id" gorm:"not null;uniqueIndex:idx_votes_poll_voter,priority:1"`
	VoterID    string    `json:"voter_id" gorm:"not null;uniqueIndex:idx_votes_poll_voter,priority:2"`
	Value      string    `json:"value" gorm:"type:text;not null"`
	RecordedAt time.Time `json:"recorded_at" gorm:"not null"`
}

// TableName overrides the table name
func (Vote) TableName() string {
	return "votes"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// New creates a vote record with the canonical value string
func New(pollID, voterID, value string) *Vote {
	return &Vote{
		ID:         uuid.New(),
		PollID:     pollID,
		VoterID:    voterID,
		Value:      value,
		RecordedAt: time.Now().UTC(),
	}
}

// Selections parses the canonical multi-select value back into its labels.
// Returns false when the stored value is not a valid label array; callers
// must skip such votes rather than fail.
func (v *Vote) Selections() ([]string, bool) {
	var labels []string
	if err := json.Unmarshal([]byte(v.Value), &labels); err != nil {
		return nil, false
	}
	return labels, true
}

// Value is the submitted payload, classified at ingestion time as either a
// plain scalar or a set of selected labels. Classification happens in the
// validation step, never by speculative parsing during aggregation.
type Value struct {
	scalar string
	labels []string
	multi  bool
}

// Scalar wraps a plain string submission
func Scalar(s string) Value {
	return Value{scalar: s}
}

// MultiSet wraps a multi-select submission
func MultiSet(labels []string) Value {
	return Value{labels: labels, multi: true}
}

// IsMulti reports whether the value is a multi-select set
func (v Value) IsMulti() bool {
	return v.multi
}

// IsEmpty reports whether the value carries no answer at all
func (v Value) IsEmpty() bool {
	if v.multi {
		return len(v.labels) == 0
	}
	return v.scalar == ""
}

// Labels returns the selected labels of a multi-select value
func (v Value) Labels() []string {
	return v.labels
}

// Raw returns the plain string of a scalar value
func (v Value) Raw() string {
	return v.scalar
}

// Canonical serializes the value to the string form stored in the vote
// table: the raw string for scalars, a JSON label array for multi-selects.
func (v Value) Canonical() (string, error) {
	if !v.multi {
		return v.scalar, nil
	}
	data, err := json.Marshal(v.labels)
	if err != nil {
		return "", fmt.Errorf("failed to serialize selections: %w", err)
	}
	return string(data), nil
}

// UnmarshalJSON accepts either a JSON string or a JSON array of strings,
// matching the submit payload contract.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Scalar(s)
		return nil
	}

	var labels []string
	if err := json.Unmarshal(data, &labels); err == nil {
		*v = MultiSet(labels)
		return nil
	}

	return fmt.Errorf("value must be a string or an array of strings")
}

// MarshalJSON implements the json.Marshaler interface
func (v Value) MarshalJSON() ([]byte, error) {
	if v.multi {
		return json.Marshal(v.labels)
	}
	return json.Marshal(v.scalar)
}
