package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"user_manager/internal/middleware"
	"user_manager/internal/model"
	"user_manager/internal/queue"
	"user_manager/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles user CRUD and administration requests.
type UserHandler struct {
	users  service.UserService
	events queue.Publisher
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, events queue.Publisher) *UserHandler {
	return &UserHandler{users: users, events: events}
}

// Me returns the authenticated user's own record.
func (h *UserHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.AuthUserKey)
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondNotFound(c, "user not found")
		return
	}
	c.JSON(http.StatusOK, model.OK(user))
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, model.Fail("email query parameter is required"))
		return
	}
	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondNotFound(c, "user not found")
		return
	}
	c.JSON(http.StatusOK, model.OK(user))
}

func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondNotFound(c, "user not found")
		return
	}
	c.JSON(http.StatusOK, model.OK(user))
}

func (h *UserHandler) Update(c *gin.Context) {
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondNotFound(c, "user not found")
		return
	}
	c.JSON(http.StatusOK, model.OKMessage("user updated", user))
}

// Delete removes a user permanently and returns the removed record.
func (h *UserHandler) Delete(c *gin.Context) {
	user, err := h.users.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondNotFound(c, "user not found")
		return
	}

	go func(id, email string) {
		if err := h.events.Publish(context.Background(), queue.KeyUserDeleted,
			queue.UserDeleted{UserID: id, Email: email}); err != nil {
			zap.L().Warn("event publish failed", zap.String("key", queue.KeyUserDeleted), zap.Error(err))
		}
	}(user.ID, user.Email)

	c.JSON(http.StatusOK, model.OKMessage("user deleted", user))
}

// List returns a filtered, paginated page of users.
func (h *UserHandler) List(c *gin.Context) {
	filters := model.UserFilters{
		Role:             queryString(c, "role"),
		IsActive:         queryBool(c, "is_active"),
		Provider:         queryString(c, "provider"),
		IsEmailVerified:  queryBool(c, "is_email_verified"),
		IsPhoneVerified:  queryBool(c, "is_phone_verified"),
		TwoFactorEnabled: queryBool(c, "two_factor_enabled"),
		Email:            queryString(c, "email"),
		PhoneNumber:      queryString(c, "phone_number"),
		FirstName:        queryString(c, "first_name"),
		LastName:         queryString(c, "last_name"),
		Search:           queryString(c, "search"),
	}

	page, err := h.users.List(c.Request.Context(), filters, pagination(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.OK(page))
}

// ByDateRange returns users created within [from, to], paginated.
func (h *UserHandler) ByDateRange(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("from must be an RFC3339 timestamp"))
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("to must be an RFC3339 timestamp"))
		return
	}

	page, err := h.users.ListByDateRange(c.Request.Context(), from, to, pagination(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.OK(page))
}

func (h *UserHandler) RoleStats(c *gin.Context) {
	counts, err := h.users.CountByRole(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.OK(counts))
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.users.ChangeRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondNotFound(c, "user not found")
		return
	}
	c.JSON(http.StatusOK, model.OKMessage("role updated", user))
}

func (h *UserHandler) SetStatus(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.users.SetActiveStatus(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondNotFound(c, "user not found")
		return
	}
	c.JSON(http.StatusOK, model.OKMessage("status updated", user))
}

// ChangePassword updates the authenticated user's own password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	userID := c.GetString(middleware.AuthUserKey)
	if err := h.users.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.OKMessage("password updated", nil))
}

// RegisterUserRoutes registers user routes. Admin routes stack the role
// middleware behind authentication.
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.GET("/getbyemail", h.GetByEmail)
		users.GET("/me", authMW, h.Me)
		users.PUT("/me/password", authMW, h.ChangePassword)
		users.GET("", authMW, adminMW, h.List)
		users.GET("/bydaterange", authMW, adminMW, h.ByDateRange)
		users.GET("/stats/roles", authMW, adminMW, h.RoleStats)
		users.GET("/:id", h.GetByID)
		users.PUT("/:id", authMW, h.Update)
		users.DELETE("/:id", authMW, adminMW, h.Delete)
		users.PATCH("/:id/role", authMW, adminMW, h.ChangeRole)
		users.PATCH("/:id/status", authMW, adminMW, h.SetStatus)
	}
}

func queryString(c *gin.Context, key string) *string {
	if v, ok := c.GetQuery(key); ok && v != "" {
		return &v
	}
	return nil
}

func queryBool(c *gin.Context, key string) *bool {
	if v, ok := c.GetQuery(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return &b
		}
	}
	return nil
}

func pagination(c *gin.Context) model.Pagination {
	p := model.Pagination{
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		p.Limit = v
	}
	return p
}
