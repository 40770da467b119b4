package model

import "time"

// RepeatKind is the recurrence granularity of a reminder.
type RepeatKind string

const (
	RepeatNone    RepeatKind = "none"
	RepeatDaily   RepeatKind = "daily"
	RepeatWeekly  RepeatKind = "weekly"
	RepeatMonthly RepeatKind = "monthly"
	RepeatYearly  RepeatKind = "yearly"
)

// Valid reports whether k is one of the known repeat kinds.
func (k RepeatKind) Valid() bool {
	switch k {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

// Repeats reports whether the reminder should be re-armed after firing.
func (k RepeatKind) Repeats() bool {
	return k.Valid() && k != RepeatNone
}

// Reminder pairs a message with a delivery time and an optional repetition rule.
// The dispatcher advances ReminderTime on each firing of a repeating reminder
// and clears IsActive for one-shot ones; it never deletes rows.
type Reminder struct {
	ID             uint  `gorm:"primaryKey"`
	UserID         uint  `gorm:"index"`
	ChatID         int64 `gorm:"index"`
	NoteID         *uint `gorm:"index"`
	Title          string
	Content        string
	ReminderTime   time.Time  `gorm:"index"`
	IsActive       bool       `gorm:"default:true"`
	RepeatKind     RepeatKind `gorm:"default:none"`
	RepeatInterval int        `gorm:"default:1"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
