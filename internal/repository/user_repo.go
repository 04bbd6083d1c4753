package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"user_manager/internal/apperr"
	"user_manager/internal/model"

	"gorm.io/gorm"
)

// UserRepository defines operations for user data.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByPhoneNumber(ctx context.Context, phone string) (*model.User, error)
	FindByProviderID(ctx context.Context, providerID, provider string) (*model.User, error)
	Update(ctx context.Context, id string, req *model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	VerifyEmail(ctx context.Context, id string) error
	VerifyPhone(ctx context.Context, id string) error
	SetTwoFactorEnabled(ctx context.Context, id string, enabled bool, secret *string) error
	UpdateRole(ctx context.Context, id, role string) error
	SetActiveStatus(ctx context.Context, id string, active bool) error
	CountByRole(ctx context.Context) ([]model.RoleCount, error)
	FindByDateRange(ctx context.Context, from, to time.Time, p model.Pagination) ([]model.User, int64, error)
	FindAll(ctx context.Context, filters model.UserFilters, p model.Pagination) ([]model.User, int64, error)
	WithinTransaction(ctx context.Context, fn func(UserRepository) error) error
}

// Columns the API is allowed to sort by; anything else falls back to created_at.
var sortableColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"email":      true,
	"first_name": true,
	"last_name":  true,
	"role":       true,
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	user := &model.User{}
	err := r.db.WithContext(ctx).Where(query, args...).First(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found is not an error for lookups; the service layer handles it
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by id.
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail retrieves a user by email, case-insensitively.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "LOWER(email) = LOWER(?)", email)
}

// FindByPhoneNumber retrieves a user by phone number, case-insensitively.
func (r *userRepository) FindByPhoneNumber(ctx context.Context, phone string) (*model.User, error) {
	return r.findOne(ctx, "LOWER(phone_number) = LOWER(?)", phone)
}

// FindByProviderID retrieves a user by its id at an external provider.
func (r *userRepository) FindByProviderID(ctx context.Context, providerID, provider string) (*model.User, error) {
	return r.findOne(ctx, "provider_id = ? AND provider = ?", providerID, provider)
}

// Update applies a partial profile update and returns the updated record.
func (r *userRepository) Update(ctx context.Context, id string, req *model.UpdateUserRequest) (*model.User, error) {
	values := map[string]interface{}{}
	if req.FirstName != nil {
		values["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		values["last_name"] = *req.LastName
	}
	if req.PhoneNumber != nil {
		phone := strings.ToLower(*req.PhoneNumber)
		other, err := r.FindByPhoneNumber(ctx, phone)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, apperr.ErrPhoneExists
		}
		values["phone_number"] = phone
	}
	if req.PhoneCountryCode != nil {
		values["phone_country_code"] = *req.PhoneCountryCode
	}
	if req.DateOfBirth != nil {
		values["date_of_birth"] = *req.DateOfBirth
	}
	if req.ProfileImageURL != nil {
		values["profile_image_url"] = *req.ProfileImageURL
	}

	if len(values) > 0 {
		if err := r.mutate(ctx, id, values); err != nil {
			return nil, err
		}
	}
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrUserNotFound
	}
	return user, nil
}

// Delete removes a user permanently.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

// mutate applies a column update to one user, stamping updated_at.
func (r *userRepository) mutate(ctx context.Context, id string, values map[string]interface{}) error {
	values["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.mutate(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

// VerifyEmail marks the user's email address as verified.
func (r *userRepository) VerifyEmail(ctx context.Context, id string) error {
	return r.mutate(ctx, id, map[string]interface{}{"is_email_verified": true})
}

// VerifyPhone marks the user's phone number as verified.
func (r *userRepository) VerifyPhone(ctx context.Context, id string) error {
	return r.mutate(ctx, id, map[string]interface{}{"is_phone_verified": true})
}

// SetTwoFactorEnabled toggles two-factor authentication. The secret is stored
// only while enabled and cleared on disable.
func (r *userRepository) SetTwoFactorEnabled(ctx context.Context, id string, enabled bool, secret *string) error {
	values := map[string]interface{}{"two_factor_enabled": enabled}
	if enabled {
		values["two_factor_secret"] = secret
	} else {
		values["two_factor_secret"] = nil
	}
	return r.mutate(ctx, id, values)
}

// UpdateRole changes the user's role.
func (r *userRepository) UpdateRole(ctx context.Context, id, role string) error {
	return r.mutate(ctx, id, map[string]interface{}{"role": role})
}

// SetActiveStatus toggles the account's active flag.
func (r *userRepository) SetActiveStatus(ctx context.Context, id string, active bool) error {
	return r.mutate(ctx, id, map[string]interface{}{"is_active": active})
}

// CountByRole returns the number of users grouped by role.
func (r *userRepository) CountByRole(ctx context.Context) ([]model.RoleCount, error) {
	var counts []model.RoleCount
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("role, COUNT(*) as count").
		Group("role").
		Order("role").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}
	return counts, nil
}

// FindByDateRange returns users created within [from, to], paginated.
func (r *userRepository) FindByDateRange(ctx context.Context, from, to time.Time, p model.Pagination) ([]model.User, int64, error) {
	p.Normalize()
	q := r.db.WithContext(ctx).Model(&model.User{}).
		Where("created_at >= ? AND created_at <= ?", from, to)
	return r.paginate(q, p)
}

// FindAll returns users matching the composed filters, paginated.
func (r *userRepository) FindAll(ctx context.Context, filters model.UserFilters, p model.Pagination) ([]model.User, int64, error) {
	p.Normalize()
	q := r.db.WithContext(ctx).Model(&model.User{})

	if filters.Role != nil {
		q = q.Where("role = ?", *filters.Role)
	}
	if filters.IsActive != nil {
		q = q.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Provider != nil {
		q = q.Where("provider = ?", *filters.Provider)
	}
	if filters.IsEmailVerified != nil {
		q = q.Where("is_email_verified = ?", *filters.IsEmailVerified)
	}
	if filters.IsPhoneVerified != nil {
		q = q.Where("is_phone_verified = ?", *filters.IsPhoneVerified)
	}
	if filters.TwoFactorEnabled != nil {
		q = q.Where("two_factor_enabled = ?", *filters.TwoFactorEnabled)
	}
	// LOWER(...) LIKE keeps substring matching case-insensitive on both
	// postgres and sqlite.
	if filters.Email != nil {
		q = q.Where("LOWER(email) LIKE LOWER(?)", contains(*filters.Email))
	}
	if filters.PhoneNumber != nil {
		q = q.Where("LOWER(phone_number) LIKE LOWER(?)", contains(*filters.PhoneNumber))
	}
	if filters.FirstName != nil {
		q = q.Where("LOWER(first_name) LIKE LOWER(?)", contains(*filters.FirstName))
	}
	if filters.LastName != nil {
		q = q.Where("LOWER(last_name) LIKE LOWER(?)", contains(*filters.LastName))
	}
	if filters.Search != nil {
		term := contains(*filters.Search)
		q = q.Where(
			"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)",
			term, term, term,
		)
	}

	return r.paginate(q, p)
}

func (r *userRepository) paginate(q *gorm.DB, p model.Pagination) ([]model.User, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	sortBy := p.SortBy
	if !sortableColumns[sortBy] {
		sortBy = "created_at"
	}
	order := sortBy + " " + p.SortOrder

	var users []model.User
	err := q.Order(order).Limit(p.Limit).Offset(p.Offset()).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	return users, total, nil
}

// WithinTransaction runs fn against a repository bound to a single database
// transaction; any error rolls the whole unit back.
func (r *userRepository) WithinTransaction(ctx context.Context, fn func(UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&userRepository{db: tx})
	})
}

func contains(s string) string {
	return "%" + s + "%"
}

// TotalPages computes ceil(total/limit) for a page envelope.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
