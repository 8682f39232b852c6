package streak

import "habithive/internal/domain"

// ApplyToggle возвращает следующее состояние привычки при переключении
// отметки "выполнено сегодня". Функция чистая: никаких обращений к часам
// или хранилищу, ошибок не бывает.
func ApplyToggle(h domain.Habit, today, yesterday string) domain.Habit {
	if h.IsDoneToday {
		// Снятие отметки за сегодня: серию и дату последнего выполнения
		// не трогаем. Повторная отметка в тот же день попадёт в ветку
		// last == today и счётчик не задвоится.
		h.IsDoneToday = false
		return h
	}

	newStreak := int64(1)
	if h.LastCompletedDate != nil {
		switch *h.LastCompletedDate {
		case today:
			// Уже засчитано сегодня другим путём
			newStreak = h.StreakDays
		case yesterday:
			newStreak = h.StreakDays + 1
		}
		// Пропуск в два дня и больше — серия начинается заново с 1
	}

	h.IsDoneToday = true
	h.StreakDays = newStreak
	h.LastCompletedDate = &today
	return h
}

// ToggleFields — набор полей для частичного обновления в хранилище:
// три поля при отметке, только is_done_today при снятии.
func ToggleFields(h domain.Habit) map[string]interface{} {
	if !h.IsDoneToday {
		return map[string]interface{}{
			"is_done_today": false,
		}
	}
	return map[string]interface{}{
		"is_done_today":       true,
		"streak_days":         h.StreakDays,
		"last_completed_date": h.LastCompletedDate,
	}
}
