package migrations

import (
	"github.com/lib/pq"

	"github.com/gravadigital/pulsepoll-api/internal/domain/poll"
	"github.com/gravadigital/pulsepoll-api/internal/domain/vote"
)

// PollRecord mirrors the static poll catalog into the database so
// operational tooling can join votes against poll metadata. The running
// service never reads this table; the in-process catalog is the source
// of truth.
type PollRecord struct {
	ID         string          `gorm:"primaryKey"`
	Question   string          `gorm:"not null"`
	AnswerType poll.AnswerType `gorm:"type:varchar(32);not null"`
	Options    pq.StringArray  `gorm:"type:text[]"`
}

// TableName overrides the table name
func (PollRecord) TableName() string {
	return "polls"
}

// AllModels returns every model managed by the migrations
func AllModels() []interface{} {
	return []interface{}{
		&vote.Vote{},
		&PollRecord{},
	}
}
