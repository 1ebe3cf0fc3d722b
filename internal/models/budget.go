package models

import "time"

type PeriodType string

const (
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
)

func (p PeriodType) Valid() bool {
	return p == PeriodWeekly || p == PeriodMonthly
}

// Days: budget cycle length (7 for weekly, 30 for monthly)
func (p PeriodType) Days() int {
	if p == PeriodMonthly {
		return 30
	}
	return 7
}

// Budget rows are insert-only: setting a new budget creates a new row,
// the newest row per user is the current one.
type Budget struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"index;not null"`
	User       User
	Amount     float64    `gorm:"not null"`
	PeriodType PeriodType `gorm:"size:20;not null"`
	Categories string     `gorm:"size:512;not null"` // category split serialized as JSON
	StartDate  time.Time  `gorm:"not null"`
	EndDate    time.Time  `gorm:"not null"`
	CreatedAt  time.Time
}
