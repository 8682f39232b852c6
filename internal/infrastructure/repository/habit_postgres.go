package repository

import (
	"context"
	"errors"

	"habithive/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HabitRepository struct {
	db *gorm.DB
}

func NewHabitRepository(db *gorm.DB) *HabitRepository {
	return &HabitRepository{db: db}
}

func (r *HabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	return r.db.WithContext(ctx).Create(habit).Error
}

func (r *HabitRepository) GetByID(ctx context.Context, userID, habitID uuid.UUID) (*domain.Habit, error) {
	var habit domain.Habit
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", habitID, userID).
		First(&habit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrHabitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

func (r *HabitRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Habit, error) {
	var habits []domain.Habit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&habits).Error
	return habits, err
}

// UpdateFields обновляет только перечисленные поля, остальные не трогает.
func (r *HabitRepository) UpdateFields(ctx context.Context, userID, habitID uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&domain.Habit{}).
		Where("id = ? AND user_id = ?", habitID, userID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Привычку успели удалить с другого устройства
		return domain.ErrHabitNotFound
	}
	return nil
}

func (r *HabitRepository) Delete(ctx context.Context, userID, habitID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", habitID, userID).
		Delete(&domain.Habit{}).Error
}
