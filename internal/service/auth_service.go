package service

import (
	"context"
	"fmt"

	"user_manager/internal/apperr"
	"user_manager/internal/model"
	"user_manager/internal/queue"
	"user_manager/internal/repository"
	"user_manager/internal/utils"

	"go.uber.org/zap"
)

// AuthService provides registration, login and token lifecycle operations.
type AuthService interface {
	Register(ctx context.Context, req *model.CreateUserRequest) (*model.UserDTO, error)
	Login(ctx context.Context, email, password string) (string, error)
	Refresh(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	users    UserService
	jwtUtil  *utils.JWTUtil
	denylist repository.TokenDenylist
	events   queue.Publisher
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserService, jwtUtil *utils.JWTUtil, denylist repository.TokenDenylist, events queue.Publisher) AuthService {
	return &authService{
		users:    users,
		jwtUtil:  jwtUtil,
		denylist: denylist,
		events:   events,
	}
}

// Register creates a credentials-provider account with the "user" role.
func (s *authService) Register(ctx context.Context, req *model.CreateUserRequest) (*model.UserDTO, error) {
	dto, err := s.users.Create(ctx, req, model.RoleUser)
	if err != nil {
		return nil, err
	}

	s.publish(queue.KeyUserRegistered, queue.UserRegistered{UserID: dto.ID, Email: dto.Email})
	return dto, nil
}

// Login verifies credentials and issues a bearer token. A missing account, a
// deactivated account, an account without a password (external provider) and
// a wrong password all collapse into the same invalid-credentials error.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetUserWithPassword(ctx, email)
	if err != nil {
		return "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil || !user.IsActive || user.PasswordHash == nil {
		return "", apperr.ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, *user.PasswordHash) {
		return "", apperr.ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.publish(queue.KeyUserLoggedIn, queue.UserLoggedIn{UserID: user.ID, Email: user.Email})
	return token, nil
}

// Refresh validates an existing token, revokes it, and issues a fresh one
// with the same identity claims. The revocation means the old token cannot be
// replayed after rotation.
func (s *authService) Refresh(ctx context.Context, token string) (string, error) {
	claims, err := s.jwtUtil.ValidateToken(token)
	if err != nil {
		return "", err
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return "", apperr.ErrInvalidToken
	}

	newToken, err := s.jwtUtil.GenerateToken(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.denylist.Revoke(ctx, claims.ID, utils.RemainingTTL(token)); err != nil {
		return "", fmt.Errorf("failed to revoke old token: %w", err)
	}
	return newToken, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtUtil.ValidateToken(token)
	if err != nil {
		return err
	}
	return s.denylist.Revoke(ctx, claims.ID, utils.RemainingTTL(token))
}

// publish emits an event off the request path; delivery is best effort.
func (s *authService) publish(key string, event any) {
	go func() {
		if err := s.events.Publish(context.Background(), key, event); err != nil {
			zap.L().Warn("event publish failed", zap.String("key", key), zap.Error(err))
		}
	}()
}
