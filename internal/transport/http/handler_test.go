package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"habithive/internal/application/usecase"
	"habithive/internal/dateutil"
	"habithive/internal/domain"
	"habithive/internal/infrastructure/security"
	handlers "habithive/internal/transport/http"
	"habithive/internal/transport/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// Минимальные фейки поверх контрактов usecase — тестируем HTTP-слой
// без Postgres и Redis.

type memHabits struct {
	mu     sync.Mutex
	habits []domain.Habit
}

func (s *memHabits) Create(ctx context.Context, habit *domain.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = append(s.habits, *habit)
	return nil
}

func (s *memHabits) GetByID(ctx context.Context, userID, habitID uuid.UUID) (*domain.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.habits {
		if h.ID == habitID && h.UserID == userID {
			copied := h
			return &copied, nil
		}
	}
	return nil, domain.ErrHabitNotFound
}

func (s *memHabits) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Habit
	for _, h := range s.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *memHabits) UpdateFields(ctx context.Context, userID, habitID uuid.UUID, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.habits {
		if s.habits[i].ID != habitID || s.habits[i].UserID != userID {
			continue
		}
		if done, ok := fields["is_done_today"].(bool); ok {
			s.habits[i].IsDoneToday = done
		}
		if streakDays, ok := fields["streak_days"].(int64); ok {
			s.habits[i].StreakDays = streakDays
		}
		if last, ok := fields["last_completed_date"].(*string); ok {
			s.habits[i].LastCompletedDate = last
		}
		return nil
	}
	return domain.ErrHabitNotFound
}

func (s *memHabits) Delete(ctx context.Context, userID, habitID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.habits {
		if s.habits[i].ID == habitID && s.habits[i].UserID == userID {
			s.habits = append(s.habits[:i], s.habits[i+1:]...)
			return nil
		}
	}
	return nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (s *memUsers) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return domain.ErrUserAlreadyExists
	}
	s.users[user.Email] = *user
	return nil
}

func (s *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.users[email]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (c *memTokens) SaveRefresh(ctx context.Context, userID, refreshToken string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[refreshToken] = userID
	return nil
}

func (c *memTokens) CheckRefresh(ctx context.Context, refreshToken string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	userID, exists := c.tokens[refreshToken]
	if !exists {
		return "", domain.ErrUserNotFound
	}
	return userID, nil
}

func (c *memTokens) DeleteRefresh(ctx context.Context, refreshToken string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, refreshToken)
	return nil
}

type noopNotes struct{ ch chan struct{} }

func (n *noopNotes) C() <-chan struct{} { return n.ch }
func (n *noopNotes) Close() error       { return nil }

type noopBroker struct{}

func (noopBroker) Publish(ctx context.Context, userID uuid.UUID) error { return nil }
func (noopBroker) Subscribe(ctx context.Context, userID uuid.UUID) (usecase.Notifications, error) {
	return &noopNotes{ch: make(chan struct{}, 1)}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	auth := usecase.NewAuthUseCase(
		&memUsers{users: make(map[string]domain.User)},
		&memTokens{tokens: make(map[string]string)},
		security.NewPasswordHasher(),
		security.NewTokenManager("test-access", "test-refresh"),
	)
	habits := usecase.NewHabitSync(
		&memHabits{},
		noopBroker{},
		dateutil.FixedClock{Date: time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC)},
	)

	// Redis недоступен — лимитер пропускает запросы
	limiter := middleware.NewRateLimiter(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 10 * time.Millisecond,
		MaxRetries:  -1,
	}))

	return handlers.NewRouter("http://localhost", auth, handlers.NewAuthHandler(auth), handlers.NewHabitHandler(habits), limiter)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func obtainToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    "bee@hive.dev",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "bee@hive.dev",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.AccessToken)
	return res.AccessToken
}

func TestHabitsAPI_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/habits", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHabitsAPI_CreateRejectsBlankName(t *testing.T) {
	router := newTestRouter(t)
	token := obtainToken(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/habits", token, gin.H{
		"name":        "   ",
		"description": "irrelevant",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "habit name cannot be empty")

	// Никакой записи не произошло
	rec = doJSON(t, router, http.MethodGet, "/api/v1/habits", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 0, view.Total)
}

func TestHabitsAPI_CreateToggleAndProgress(t *testing.T) {
	router := newTestRouter(t)
	token := obtainToken(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/habits", token, gin.H{
		"name":        "Читать",
		"description": "20 страниц",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/habits/%s/toggle", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/habits", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Completed int `json:"completed"`
		Total     int `json:"total"`
		Habits    []struct {
			Name              string `json:"name"`
			IsDoneToday       bool   `json:"isDoneToday"`
			StreakDays        int64  `json:"streakDays"`
			LastCompletedDate string `json:"lastCompletedDate"`
		} `json:"habits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 1, view.Completed)
	assert.Equal(t, 1, view.Total)
	require.Len(t, view.Habits, 1)
	assert.True(t, view.Habits[0].IsDoneToday)
	assert.Equal(t, int64(1), view.Habits[0].StreakDays)
	assert.Equal(t, "2024-03-11", view.Habits[0].LastCompletedDate)
}

func TestHabitsAPI_ToggleUnknownHabitIsNoop(t *testing.T) {
	router := newTestRouter(t)
	token := obtainToken(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/habits/"+uuid.NewString()+"/toggle", token, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHabitsAPI_History(t *testing.T) {
	router := newTestRouter(t)
	token := obtainToken(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/habits", token, gin.H{"name": "Бег"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/habits/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Habits []struct {
			Name       string `json:"name"`
			StreakDays int64  `json:"streakDays"`
			LastDone   string `json:"lastDone"`
		} `json:"habits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Habits, 1)
	assert.Equal(t, "Бег", res.Habits[0].Name)
	assert.Equal(t, int64(0), res.Habits[0].StreakDays)
	assert.Empty(t, res.Habits[0].LastDone)
}
