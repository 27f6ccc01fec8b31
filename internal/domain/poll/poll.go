package poll

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"os"
)

// Poll describes a single audience question. Polls are loaded once at
// startup and never mutated afterwards.
type Poll struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	AnswerType AnswerType `json:"answer_type"`
	Options    []string   `json:"options,omitempty"`
}

// Validate checks if the poll definition is valid
func (p *Poll) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if p.Question == "" {
		return fmt.Errorf("question is required")
	}
	if p.AnswerType.RequiresOptions() && len(p.Options) == 0 {
		return fmt.Errorf("poll %q: answer type %s requires options", p.ID, p.AnswerType)
	}
	if p.AnswerType == AnswerFreeText && len(p.Options) > 0 {
		return fmt.Errorf("poll %q: free text polls must not declare options", p.ID)
	}
	return nil
}

// HasOption reports whether label exactly matches one of the declared options
func (p *Poll) HasOption(label string) bool {
	for _, opt := range p.Options {
		if opt == label {
			return true
		}
	}
	return false
}

// AnswerType represents how a poll's answers are collected and aggregated
type AnswerType byte

const (
	AnswerSingleChoice AnswerType = iota
	AnswerFreeText
	AnswerRating
	AnswerMultiSelect
	AnswerWriteIn // single choice plus a free-form "Other" bucket
)

func (t AnswerType) String() string {
	switch t {
	case AnswerSingleChoice:
		return "single_choice"
	case AnswerFreeText:
		return "free_text"
	case AnswerRating:
		return "rating"
	case AnswerMultiSelect:
		return "multi_select"
	case AnswerWriteIn:
		return "single_choice_other"
	default:
		return "unknown"
	}
}

// RequiresOptions reports whether the answer type needs a declared option list
func (t AnswerType) RequiresOptions() bool {
	return t != AnswerFreeText
}

// MarshalJSON implements the json.Marshaler interface
func (t AnswerType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *AnswerType) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	answerType, valid := AnswerTypeFromString(str)
	if !valid {
		return fmt.Errorf("invalid answer type: %s", str)
	}
	*t = answerType
	return nil
}

// AnswerTypeFromString converts a string to an AnswerType
func AnswerTypeFromString(s string) (AnswerType, bool) {
	switch s {
	case "single_choice":
		return AnswerSingleChoice, true
	case "free_text":
		return AnswerFreeText, true
	case "rating":
		return AnswerRating, true
	case "multi_select":
		return AnswerMultiSelect, true
	case "single_choice_other":
		return AnswerWriteIn, true
	default:
		return AnswerSingleChoice, false
	}
}

// Scan implements the sql.Scanner interface for database deserialization
func (t *AnswerType) Scan(value interface{}) error {
	if value == nil {
		*t = AnswerSingleChoice
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("cannot scan %T into AnswerType", value)
	}

	answerType, valid := AnswerTypeFromString(str)
	if !valid {
		return fmt.Errorf("invalid answer type value: %s", str)
	}
	*t = answerType
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (t AnswerType) Value() (driver.Value, error) {
	return t.String(), nil
}

// Catalog is the static registry of polls, keyed by poll ID while keeping
// the declaration order for listing.
type Catalog struct {
	polls []Poll
	index map[string]*Poll
}

// NewCatalog builds a catalog from a fixed set of poll definitions
func NewCatalog(polls []Poll) (*Catalog, error) {
	c := &Catalog{
		polls: make([]Poll, len(polls)),
		index: make(map[string]*Poll, len(polls)),
	}
	copy(c.polls, polls)

	for i := range c.polls {
		p := &c.polls[i]
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid poll definition: %w", err)
		}
		if _, exists := c.index[p.ID]; exists {
			return nil, fmt.Errorf("duplicate poll id: %s", p.ID)
		}
		c.index[p.ID] = p
	}

	return c, nil
}

// LoadCatalog reads poll definitions from a JSON file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read poll catalog: %w", err)
	}

	var polls []Poll
	if err := json.Unmarshal(data, &polls); err != nil {
		return nil, fmt.Errorf("failed to parse poll catalog: %w", err)
	}

	return NewCatalog(polls)
}

// Get returns the poll with the given ID
func (c *Catalog) Get(id string) (*Poll, bool) {
	p, ok := c.index[id]
	return p, ok
}

// All returns every poll in declaration order
func (c *Catalog) All() []Poll {
	out := make([]Poll, len(c.polls))
	copy(out, c.polls)
	return out
}

// Len returns the number of registered polls
func (c *Catalog) Len() int {
	return len(c.polls)
}

// DefaultCatalog returns the built-in poll set used when no catalog file
// is configured.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]Poll{
		{
			ID:         "session_rating",
			Question:   "How would you rate this session?",
			AnswerType: AnswerRating,
			Options:    []string{"1", "2", "3", "4", "5"},
		},
		{
			ID:         "favorite_topic",
			Question:   "Which topic did you enjoy the most?",
			AnswerType: AnswerSingleChoice,
			Options:    []string{"Architecture", "Tooling", "Testing", "Deployment"},
		},
		{
			ID:         "next_topics",
			Question:   "Which topics should we cover next? (pick any)",
			AnswerType: AnswerMultiSelect,
			Options:    []string{"Observability", "Security", "Performance", "Databases"},
		},
		{
			ID:         "heard_from",
			Question:   "How did you hear about us?",
			AnswerType: AnswerWriteIn,
			Options:    []string{"Newsletter", "Social media", "A colleague"},
		},
		{
			ID:         "feedback",
			Question:   "Any other feedback?",
			AnswerType: AnswerFreeText,
		},
	})
	if err != nil {
		// The built-in definitions are fixed at compile time.
		panic(err)
	}
	return c
}
