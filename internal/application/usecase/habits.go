package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"habithive/internal/dateutil"
	"habithive/internal/domain"
	"habithive/internal/streak"

	"github.com/google/uuid"
)

// HabitStore — контракт авторитетного хранилища привычек.
// Реализуется repository.HabitRepository; в тестах подменяется фейком.
type HabitStore interface {
	Create(ctx context.Context, habit *domain.Habit) error
	GetByID(ctx context.Context, userID, habitID uuid.UUID) (*domain.Habit, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Habit, error)
	UpdateFields(ctx context.Context, userID, habitID uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, userID, habitID uuid.UUID) error
}

// SnapshotBroker — канал уведомлений "коллекция пользователя изменилась".
type SnapshotBroker interface {
	Publish(ctx context.Context, userID uuid.UUID) error
	Subscribe(ctx context.Context, userID uuid.UUID) (Notifications, error)
}

type Notifications interface {
	C() <-chan struct{}
	Close() error
}

type HabitSync struct {
	store  HabitStore
	broker SnapshotBroker
	clock  dateutil.Clock
}

func NewHabitSync(store HabitStore, broker SnapshotBroker, clock dateutil.Clock) *HabitSync {
	return &HabitSync{store: store, broker: broker, clock: clock}
}

// Create заводит привычку с нулевой серией. Пустое после обрезки имя —
// ошибка валидации, записи в хранилище не будет.
func (s *HabitSync) Create(ctx context.Context, userID uuid.UUID, name, description string) (uuid.UUID, error) {
	if strings.TrimSpace(name) == "" {
		return uuid.Nil, domain.ErrEmptyHabitName
	}

	habit := &domain.Habit{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
		IsDoneToday: false,
		StreakDays:  0,
	}

	if err := s.store.Create(ctx, habit); err != nil {
		return uuid.Nil, fmt.Errorf("failed to add habit: %w", err)
	}

	s.publish(ctx, userID)
	return habit.ID, nil
}

// Toggle — переключение отметки по состоянию из хранилища.
// Используется stateless HTTP-хендлером; подписчики получат результат
// со следующим снапшотом.
func (s *HabitSync) Toggle(ctx context.Context, userID, habitID uuid.UUID) error {
	habit, err := s.store.GetByID(ctx, userID, habitID)
	if errors.Is(err, domain.ErrHabitNotFound) {
		// Уже удалили — считаем состояние согласованным
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	return s.toggleFrom(ctx, *habit)
}

func (s *HabitSync) Delete(ctx context.Context, userID, habitID uuid.UUID) error {
	if err := s.store.Delete(ctx, userID, habitID); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	s.publish(ctx, userID)
	return nil
}

func (s *HabitSync) List(ctx context.Context, userID uuid.UUID) ([]domain.Habit, error) {
	return s.store.ListByUser(ctx, userID)
}

// toggleFrom применяет чистый пересчёт серии и пишет в хранилище только
// изменившиеся поля. Сам локальное состояние не меняет: авторитетный
// результат придёт подписчикам следующим снапшотом.
func (s *HabitSync) toggleFrom(ctx context.Context, habit domain.Habit) error {
	next := streak.ApplyToggle(habit, s.clock.Today(), s.clock.Yesterday())

	err := s.store.UpdateFields(ctx, habit.UserID, habit.ID, streak.ToggleFields(next))
	if errors.Is(err, domain.ErrHabitNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	s.publish(ctx, habit.UserID)
	return nil
}

func (s *HabitSync) publish(ctx context.Context, userID uuid.UUID) {
	if err := s.broker.Publish(ctx, userID); err != nil {
		// Запись уже закоммичена, терять её из-за брокера нельзя
		log.Printf("Failed to publish habits change for %s: %v", userID, err)
	}
}

// Session — локальное представление коллекции привычек одной подписки.
// Список целиком заменяется каждым снапшотом, частичные локальные правки
// не задерживаются: последний снапшот всегда побеждает.
type Session struct {
	userID uuid.UUID
	owner  *HabitSync
	notes  Notifications

	mu     sync.RWMutex
	habits []domain.Habit

	snapshots chan []domain.Habit
	errs      chan error
	done      chan struct{}
	closeOnce sync.Once
}

// Subscribe открывает подписку на коллекцию пользователя: сразу отдаёт
// текущий снапшот, дальше пересчитывает его на каждое уведомление брокера.
func (s *HabitSync) Subscribe(ctx context.Context, userID uuid.UUID) (*Session, error) {
	notes, err := s.broker.Subscribe(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	sess := &Session{
		userID:    userID,
		owner:     s,
		notes:     notes,
		snapshots: make(chan []domain.Habit, 1),
		errs:      make(chan error, 1),
		done:      make(chan struct{}),
	}

	if err := sess.reload(ctx); err != nil {
		_ = notes.Close()
		return nil, err
	}

	go sess.run(ctx)
	return sess, nil
}

func (sess *Session) run(ctx context.Context) {
	for {
		select {
		case <-sess.done:
			return
		case <-ctx.Done():
			return
		case _, ok := <-sess.notes.C():
			if !ok {
				return
			}
			if err := sess.reload(ctx); err != nil {
				// Список устарел до следующего удачного снапшота,
				// но сессию не роняем
				select {
				case sess.errs <- err:
				default:
				}
			}
		}
	}
}

// reload перечитывает закоммиченное состояние и замещает локальный список.
func (sess *Session) reload(ctx context.Context) error {
	habits, err := sess.owner.store.ListByUser(ctx, sess.userID)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	sess.mu.Lock()
	select {
	case <-sess.done:
		// Закрытую сессию не трогаем, даже если чтение успело завершиться
		sess.mu.Unlock()
		return nil
	default:
	}
	sess.habits = habits
	sess.mu.Unlock()

	// Недоставленный старый снапшот вытесняется свежим
	for {
		select {
		case sess.snapshots <- habits:
			return nil
		default:
			select {
			case <-sess.snapshots:
			default:
			}
		}
	}
}

// Toggle переключает отметку "выполнено сегодня" по локальному снапшоту.
// Привычки нет в списке — значит её уже удалили, молча выходим.
func (sess *Session) Toggle(ctx context.Context, habitID uuid.UUID) error {
	sess.mu.RLock()
	var current *domain.Habit
	for i := range sess.habits {
		if sess.habits[i].ID == habitID {
			h := sess.habits[i]
			current = &h
			break
		}
	}
	sess.mu.RUnlock()

	if current == nil {
		return nil
	}
	return sess.owner.toggleFrom(ctx, *current)
}

// Habits — копия последнего снапшота.
func (sess *Session) Habits() []domain.Habit {
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	out := make([]domain.Habit, len(sess.habits))
	copy(out, sess.habits)
	return out
}

func (sess *Session) Snapshots() <-chan []domain.Habit {
	return sess.snapshots
}

func (sess *Session) Errs() <-chan error {
	return sess.errs
}

// Close останавливает доставку снапшотов. Повторные вызовы безопасны.
func (sess *Session) Close() {
	sess.closeOnce.Do(func() {
		close(sess.done)
		_ = sess.notes.Close()
	})
}
