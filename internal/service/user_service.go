package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"user_manager/internal/apperr"
	"user_manager/internal/model"
	"user_manager/internal/repository"
	"user_manager/internal/utils"
)

// UserService orchestrates repository calls and enforces business rules.
// Every method returns public DTOs; the persisted entity, with its password
// hash, never leaves this layer except through GetUserWithPassword, which
// exists solely for the login flow.
type UserService interface {
	Create(ctx context.Context, req *model.CreateUserRequest, role string) (*model.UserDTO, error)
	Update(ctx context.Context, id string, req *model.UpdateUserRequest) (*model.UserDTO, error)
	Delete(ctx context.Context, id string) (*model.UserDTO, error)
	GetByID(ctx context.Context, id string) (*model.UserDTO, error)
	GetByEmail(ctx context.Context, email string) (*model.UserDTO, error)
	GetByPhoneNumber(ctx context.Context, phone string) (*model.UserDTO, error)
	GetByProviderID(ctx context.Context, providerID, provider string) (*model.UserDTO, error)
	GetUserWithPassword(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, filters model.UserFilters, p model.Pagination) (*model.UserPage, error)
	ListByDateRange(ctx context.Context, from, to time.Time, p model.Pagination) (*model.UserPage, error)
	CountByRole(ctx context.Context) ([]model.RoleCount, error)
	ChangeRole(ctx context.Context, id, role string) (*model.UserDTO, error)
	SetActiveStatus(ctx context.Context, id string, active bool) (*model.UserDTO, error)
	ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error
	VerifyEmail(ctx context.Context, id string) error
	VerifyPhone(ctx context.Context, id string) error
	SetTwoFactor(ctx context.Context, id string, enabled bool, secret *string) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Create registers a new user with the given role. Fails with a Conflict
// error when the email (or phone number, when present) is already taken.
// The uniqueness check and the insert run in one transaction.
func (s *userService) Create(ctx context.Context, req *model.CreateUserRequest, role string) (*model.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:            email,
		PasswordHash:     &passwordHash,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		PhoneCountryCode: req.PhoneCountryCode,
		DateOfBirth:      req.DateOfBirth,
		ProfileImageURL:  req.ProfileImageURL,
		Provider:         model.ProviderCredentials,
		Role:             role,
		IsActive:         true,
	}
	if req.PhoneNumber != nil {
		phone := strings.ToLower(strings.TrimSpace(*req.PhoneNumber))
		user.PhoneNumber = &phone
	}

	err = s.repo.WithinTransaction(ctx, func(tx repository.UserRepository) error {
		existing, err := tx.FindByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing != nil {
			return apperr.ErrEmailExists
		}
		if user.PhoneNumber != nil {
			existing, err = tx.FindByPhoneNumber(ctx, *user.PhoneNumber)
			if err != nil {
				return fmt.Errorf("failed to check existing phone: %w", err)
			}
			if existing != nil {
				return apperr.ErrPhoneExists
			}
		}
		return tx.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	return user.ToDTO(), nil
}

// Update applies a partial profile update; returns nil when the user does not
// exist.
func (s *userService) Update(ctx context.Context, id string, req *model.UpdateUserRequest) (*model.UserDTO, error) {
	user, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if err == apperr.ErrUserNotFound {
			return nil, nil
		}
		return nil, err
	}
	return user.ToDTO(), nil
}

// Delete removes the user permanently and returns the removed record, or nil
// when it does not exist.
func (s *userService) Delete(ctx context.Context, id string) (*model.UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == apperr.ErrUserNotFound {
			return nil, nil
		}
		return nil, err
	}
	return user.ToDTO(), nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.UserDTO, error) {
	return s.toDTO(s.repo.FindByID(ctx, id))
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*model.UserDTO, error) {
	return s.toDTO(s.repo.FindByEmail(ctx, strings.TrimSpace(email)))
}

func (s *userService) GetByPhoneNumber(ctx context.Context, phone string) (*model.UserDTO, error) {
	return s.toDTO(s.repo.FindByPhoneNumber(ctx, strings.TrimSpace(phone)))
}

func (s *userService) GetByProviderID(ctx context.Context, providerID, provider string) (*model.UserDTO, error) {
	return s.toDTO(s.repo.FindByProviderID(ctx, providerID, provider))
}

// GetUserWithPassword returns the persisted entity including the password
// hash. Only the login flow may call this; the hash must not travel further.
func (s *userService) GetUserWithPassword(ctx context.Context, email string) (*model.User, error) {
	return s.repo.FindByEmail(ctx, strings.TrimSpace(email))
}

func (s *userService) List(ctx context.Context, filters model.UserFilters, p model.Pagination) (*model.UserPage, error) {
	p.Normalize()
	users, total, err := s.repo.FindAll(ctx, filters, p)
	if err != nil {
		return nil, err
	}
	return s.toPage(users, total, p), nil
}

func (s *userService) ListByDateRange(ctx context.Context, from, to time.Time, p model.Pagination) (*model.UserPage, error) {
	p.Normalize()
	users, total, err := s.repo.FindByDateRange(ctx, from, to, p)
	if err != nil {
		return nil, err
	}
	return s.toPage(users, total, p), nil
}

func (s *userService) CountByRole(ctx context.Context) ([]model.RoleCount, error) {
	return s.repo.CountByRole(ctx)
}

func (s *userService) ChangeRole(ctx context.Context, id, role string) (*model.UserDTO, error) {
	if !model.ValidRole(role) {
		return nil, apperr.New(400, "unknown role: "+role)
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		if err == apperr.ErrUserNotFound {
			return nil, nil
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *userService) SetActiveStatus(ctx context.Context, id string, active bool) (*model.UserDTO, error) {
	if err := s.repo.SetActiveStatus(ctx, id, active); err != nil {
		if err == apperr.ErrUserNotFound {
			return nil, nil
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ChangePassword verifies the current password before storing a new hash.
func (s *userService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.ErrUserNotFound
	}
	if user.PasswordHash == nil || !utils.CheckPasswordHash(currentPassword, *user.PasswordHash) {
		return apperr.ErrInvalidCredentials
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

func (s *userService) VerifyEmail(ctx context.Context, id string) error {
	return s.repo.VerifyEmail(ctx, id)
}

func (s *userService) VerifyPhone(ctx context.Context, id string) error {
	return s.repo.VerifyPhone(ctx, id)
}

// SetTwoFactor enables or disables two-factor auth. Enabling requires a
// secret; disabling always clears it.
func (s *userService) SetTwoFactor(ctx context.Context, id string, enabled bool, secret *string) error {
	if enabled && (secret == nil || *secret == "") {
		return apperr.New(400, "a secret is required to enable two-factor authentication")
	}
	return s.repo.SetTwoFactorEnabled(ctx, id, enabled, secret)
}

func (s *userService) toDTO(user *model.User, err error) (*model.UserDTO, error) {
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return user.ToDTO(), nil
}

func (s *userService) toPage(users []model.User, total int64, p model.Pagination) *model.UserPage {
	items := make([]model.UserDTO, 0, len(users))
	for i := range users {
		items = append(items, *users[i].ToDTO())
	}
	return &model.UserPage{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: repository.TotalPages(total, p.Limit),
	}
}
