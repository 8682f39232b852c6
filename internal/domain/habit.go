package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNotFound  = errors.New("habit not found")
	ErrEmptyHabitName = errors.New("habit name cannot be empty")
)

// Habit — авторитетная запись привычки.
// LastCompletedDate хранит ключ дня "YYYY-MM-DD"; nil до первого выполнения.
type Habit struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index"`
	Name              string    `gorm:"not null;size:100"`
	Description       string    `gorm:"size:500"`
	IsDoneToday       bool      `gorm:"not null;default:false"`
	StreakDays        int64     `gorm:"not null;default:0"`
	LastCompletedDate *string   `gorm:"size:10"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
