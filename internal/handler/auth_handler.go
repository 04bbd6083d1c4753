package handler

import (
	"net/http"

	"user_manager/internal/middleware"
	"user_manager/internal/model"
	"user_manager/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration, login and token lifecycle requests.
type AuthHandler struct {
	auth service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.OKMessage("user registered successfully", user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	// req.RememberMe is accepted but has no effect: the token lifetime is fixed
	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.OKMessage("login successful", token))
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	token, err := h.auth.Refresh(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.OK(token))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.AuthTokenKey)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.OKMessage("logged out", nil))
}

// RegisterAuthRoutes registers auth routes; refresh and logout require a
// valid bearer token.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh-token", authMW, h.RefreshToken)
		authGroup.POST("/logout", authMW, h.Logout)
	}
}
