package handlers

import "habithive/internal/domain"

// Проекции для отображения. Логики здесь нет — только чтение полей.

type HabitView struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	IsDoneToday       bool   `json:"isDoneToday"`
	StreakDays        int64  `json:"streakDays"`
	LastCompletedDate string `json:"lastCompletedDate,omitempty"`
}

// TodayView — список на сегодня плюс прогресс "сделано/всего".
type TodayView struct {
	Completed int         `json:"completed"`
	Total     int         `json:"total"`
	Habits    []HabitView `json:"habits"`
}

type HistoryEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	StreakDays int64  `json:"streakDays"`
	LastDone   string `json:"lastDone,omitempty"`
}

func toHabitView(h domain.Habit) HabitView {
	view := HabitView{
		ID:          h.ID.String(),
		Name:        h.Name,
		Description: h.Description,
		IsDoneToday: h.IsDoneToday,
		StreakDays:  h.StreakDays,
	}
	if h.LastCompletedDate != nil {
		view.LastCompletedDate = *h.LastCompletedDate
	}
	return view
}

func toTodayView(habits []domain.Habit) TodayView {
	view := TodayView{
		Total:  len(habits),
		Habits: make([]HabitView, 0, len(habits)),
	}
	for _, h := range habits {
		if h.IsDoneToday {
			view.Completed++
		}
		view.Habits = append(view.Habits, toHabitView(h))
	}
	return view
}

func toHistory(habits []domain.Habit) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(habits))
	for _, h := range habits {
		entry := HistoryEntry{
			ID:         h.ID.String(),
			Name:       h.Name,
			StreakDays: h.StreakDays,
		}
		if h.LastCompletedDate != nil {
			entry.LastDone = *h.LastCompletedDate
		}
		entries = append(entries, entry)
	}
	return entries
}
