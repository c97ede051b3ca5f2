package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttemptModel records one completed scrape attempt
type AttemptModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind         string    `gorm:"not null"`
	Label        string    `gorm:"not null"`
	IMDbID       string    `gorm:"index"`
	StartedAt    time.Time `gorm:"not null"`
	FinishedAt   time.Time `gorm:"not null;index"`
	Offered      int       `gorm:"not null;default:0"`
	Merged       int       `gorm:"not null;default:0"`
	Duplicates   int       `gorm:"not null;default:0"`
	Ranked       int       `gorm:"not null;default:0"`
	Added        int       `gorm:"not null;default:0"`
	StreamsTotal int       `gorm:"not null;default:0"`
	ScrapedTimes int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`

	Backends []BackendAttemptModel `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name
func (AttemptModel) TableName() string {
	return "scrape_attempts"
}

// BeforeCreate assigns an ID when none is set
func (m *AttemptModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BackendAttemptModel records how one backend fared during an attempt
type BackendAttemptModel struct {
	ID        uint      `gorm:"primaryKey"`
	AttemptID uuid.UUID `gorm:"type:uuid;not null;index"`
	Position  int       `gorm:"not null"`
	Backend   string    `gorm:"not null;index"`
	Outcome   string    `gorm:"not null"`
	Results   int       `gorm:"not null;default:0"`
	ElapsedMS int64     `gorm:"not null;default:0"`
	Error     string
}

// TableName overrides the table name
func (BackendAttemptModel) TableName() string {
	return "scrape_backend_attempts"
}

// BackendStat aggregates backend outcomes over a period
type BackendStat struct {
	Backend      string
	Outcome      string
	Count        int64
	AvgElapsedMS float64
}
