package usecase

import (
	"context"
	"errors"

	"habithive/internal/domain"
	"habithive/internal/infrastructure/security"

	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type TokenCache interface {
	SaveRefresh(ctx context.Context, userID, refreshToken string) error
	CheckRefresh(ctx context.Context, refreshToken string) (string, error)
	DeleteRefresh(ctx context.Context, refreshToken string) error
}

type AuthUseCase struct {
	users        UserStore
	tokens       TokenCache
	hasher       *security.PasswordHasher
	tokenManager *security.TokenManager
}

func NewAuthUseCase(users UserStore, tokens TokenCache, h *security.PasswordHasher, tm *security.TokenManager) *AuthUseCase {
	return &AuthUseCase{
		users:        users,
		tokens:       tokens,
		hasher:       h,
		tokenManager: tm,
	}
}

func (uc *AuthUseCase) Register(ctx context.Context, email, password string) (string, error) {
	if len(password) < 6 {
		return "", errors.New("password must be at least 6 characters")
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	user := &domain.User{
		ID:       uuid.New(),
		Email:    email,
		Password: hash,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return "", err
	}
	return user.ID.String(), nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := uc.hasher.Compare(user.Password, password); err != nil {
		return "", "", ErrInvalidCredentials
	}
	return uc.generateAndSaveTokens(ctx, user.ID.String())
}

func (uc *AuthUseCase) Refresh(ctx context.Context, oldRefreshToken string) (string, string, error) {
	userID, err := uc.tokenManager.ValidateRefreshToken(oldRefreshToken)
	if err != nil {
		return "", "", err
	}

	cachedID, err := uc.tokens.CheckRefresh(ctx, oldRefreshToken)
	if err != nil || cachedID != userID {
		return "", "", errors.New("token revoked")
	}
	// Ротация: старый токен больше не действует
	_ = uc.tokens.DeleteRefresh(ctx, oldRefreshToken)

	return uc.generateAndSaveTokens(ctx, userID)
}

func (uc *AuthUseCase) Logout(ctx context.Context, refreshToken string) error {
	return uc.tokens.DeleteRefresh(ctx, refreshToken)
}

func (uc *AuthUseCase) ValidateAccess(token string) (string, error) {
	return uc.tokenManager.ValidateAccessToken(token)
}

func (uc *AuthUseCase) generateAndSaveTokens(ctx context.Context, userID string) (string, string, error) {
	access, refresh, err := uc.tokenManager.Generate(userID)
	if err != nil {
		return "", "", err
	}
	if err := uc.tokens.SaveRefresh(ctx, userID, refresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
