package service

import (
	"context"
	"fmt"
	"testing"

	"user_manager/internal/apperr"
	"user_manager/internal/model"
	"user_manager/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestUserService(t *testing.T) UserService {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))
	return NewUserService(repository.NewUserRepository(db))
}

func createUser(t *testing.T, svc UserService, email, password string) *model.UserDTO {
	t.Helper()
	dto, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Email:    email,
		Password: password,
	}, model.RoleUser)
	require.NoError(t, err)
	require.NotNil(t, dto)
	return dto
}

func TestUserService_Create(t *testing.T) {
	svc := newTestUserService(t)

	phone := "+998901234567"
	first := "Alisher"
	dto, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Email:       "  Alice@Example.COM ",
		Password:    "Str0ng!pass",
		FirstName:   &first,
		PhoneNumber: &phone,
	}, model.RoleUser)
	require.NoError(t, err)

	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "alice@example.com", dto.Email)
	assert.Equal(t, model.ProviderCredentials, dto.Provider)
	assert.Equal(t, model.RoleUser, dto.Role)
	assert.True(t, dto.IsActive)
	assert.False(t, dto.IsEmailVerified)
	assert.Equal(t, "Alisher", *dto.FirstName)
	assert.Equal(t, phone, *dto.PhoneNumber)
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	svc := newTestUserService(t)
	createUser(t, svc, "alice@example.com", "Str0ng!pass")

	_, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Email:    "ALICE@example.com",
		Password: "Str0ng!pass",
	}, model.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrEmailExists)
}

func TestUserService_Create_DuplicatePhone(t *testing.T) {
	svc := newTestUserService(t)
	phone := "+998901234567"
	_, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Email:       "alice@example.com",
		Password:    "Str0ng!pass",
		PhoneNumber: &phone,
	}, model.RoleUser)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &model.CreateUserRequest{
		Email:       "bob@example.com",
		Password:    "Str0ng!pass",
		PhoneNumber: &phone,
	}, model.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrPhoneExists)
}

func TestUserService_GetByEmail_MissingIsNil(t *testing.T) {
	svc := newTestUserService(t)

	dto, err := svc.GetByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, dto)
}

func TestUserService_Update(t *testing.T) {
	svc := newTestUserService(t)
	dto := createUser(t, svc, "alice@example.com", "Str0ng!pass")

	last := "Karimov"
	updated, err := svc.Update(context.Background(), dto.ID, &model.UpdateUserRequest{LastName: &last})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Karimov", *updated.LastName)
	assert.NotNil(t, updated.UpdatedAt)
}

func TestUserService_Update_Missing(t *testing.T) {
	svc := newTestUserService(t)

	last := "Karimov"
	updated, err := svc.Update(context.Background(), "missing", &model.UpdateUserRequest{LastName: &last})
	assert.NoError(t, err)
	assert.Nil(t, updated)
}

func TestUserService_Delete(t *testing.T) {
	svc := newTestUserService(t)
	dto := createUser(t, svc, "alice@example.com", "Str0ng!pass")

	removed, err := svc.Delete(context.Background(), dto.ID)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, dto.ID, removed.ID)

	// Second delete reports missing, not an error
	removed, err = svc.Delete(context.Background(), dto.ID)
	assert.NoError(t, err)
	assert.Nil(t, removed)
}

func TestUserService_ChangeRole(t *testing.T) {
	svc := newTestUserService(t)
	dto := createUser(t, svc, "alice@example.com", "Str0ng!pass")

	updated, err := svc.ChangeRole(context.Background(), dto.ID, model.RoleStaff)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.RoleStaff, updated.Role)
}

func TestUserService_ChangeRole_Unknown(t *testing.T) {
	svc := newTestUserService(t)
	dto := createUser(t, svc, "alice@example.com", "Str0ng!pass")

	_, err := svc.ChangeRole(context.Background(), dto.ID, "superuser")
	require.Error(t, err)
	assert.Equal(t, 400, apperr.FromError(err).Status)
}

func TestUserService_SetActiveStatus(t *testing.T) {
	svc := newTestUserService(t)
	dto := createUser(t, svc, "alice@example.com", "Str0ng!pass")

	updated, err := svc.SetActiveStatus(context.Background(), dto.ID, false)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.False(t, updated.IsActive)

	missing, err := svc.SetActiveStatus(context.Background(), "missing", false)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserService_ChangePassword(t *testing.T) {
	svc := newTestUserService(t)
	dto := createUser(t, svc, "alice@example.com", "Str0ng!pass")

	err := svc.ChangePassword(context.Background(), dto.ID, "wrong", "N3w!passw0rd")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), dto.ID, "Str0ng!pass", "N3w!passw0rd")
	require.NoError(t, err)

	// Old credentials no longer verify against the stored hash
	err = svc.ChangePassword(context.Background(), dto.ID, "Str0ng!pass", "An0ther!pass")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), dto.ID, "N3w!passw0rd", "An0ther!pass")
	assert.NoError(t, err)
}

func TestUserService_ChangePassword_Missing(t *testing.T) {
	svc := newTestUserService(t)

	err := svc.ChangePassword(context.Background(), "missing", "a", "b")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestUserService_SetTwoFactor(t *testing.T) {
	svc := newTestUserService(t)
	dto := createUser(t, svc, "alice@example.com", "Str0ng!pass")

	err := svc.SetTwoFactor(context.Background(), dto.ID, true, nil)
	require.Error(t, err)
	assert.Equal(t, 400, apperr.FromError(err).Status)

	secret := "JBSWY3DPEHPK3PXP"
	require.NoError(t, svc.SetTwoFactor(context.Background(), dto.ID, true, &secret))

	updated, err := svc.GetByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.True(t, updated.TwoFactorEnabled)
}

func TestUserService_VerifyEmailAndPhone(t *testing.T) {
	svc := newTestUserService(t)
	dto := createUser(t, svc, "alice@example.com", "Str0ng!pass")

	require.NoError(t, svc.VerifyEmail(context.Background(), dto.ID))
	require.NoError(t, svc.VerifyPhone(context.Background(), dto.ID))

	updated, err := svc.GetByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsEmailVerified)
	assert.True(t, updated.IsPhoneVerified)
}

func TestUserService_List(t *testing.T) {
	svc := newTestUserService(t)
	for i := 0; i < 12; i++ {
		createUser(t, svc, fmt.Sprintf("user%02d@example.com", i), "Str0ng!pass")
	}

	page, err := svc.List(context.Background(), model.UserFilters{}, model.Pagination{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.Limit)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 5)
}

func TestUserService_CountByRole(t *testing.T) {
	svc := newTestUserService(t)
	createUser(t, svc, "a@example.com", "Str0ng!pass")
	createUser(t, svc, "b@example.com", "Str0ng!pass")

	counts, err := svc.CountByRole(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.RoleCount{{Role: model.RoleUser, Count: 2}}, counts)
}
