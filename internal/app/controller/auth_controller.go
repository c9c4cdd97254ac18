package controller

import (
	"net/http"

	"github.com/e4rthen/storefront-backend/internal/app/service"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenRequest accepts a username or an email address as username.
type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Register handles user registration
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "username, email and password are required")
		return
	}

	user, err := ctrl.authService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, log, "Registration failed", err, map[string]interface{}{
			"username": req.Username,
		})
		return
	}

	log.Info("User registered successfully", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})

	c.JSON(http.StatusCreated, user)
}

// Token exchanges credentials for an access/refresh token pair
// POST /api/v1/auth/token
func (ctrl *AuthController) Token(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid token request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "username and password are required")
		return
	}

	user, tokens, err := ctrl.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, log, "Login failed", err, nil)
		return
	}

	log.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusOK, tokens)
}

// Refresh issues a new access token
// POST /api/v1/auth/token/refresh
func (ctrl *AuthController) Refresh(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "refresh is required")
		return
	}

	access, err := ctrl.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		fail(c, log, "Token refresh failed", err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

// Logout revokes a refresh token
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "refresh is required")
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), req.Refresh); err != nil {
		fail(c, log, "Logout failed", err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user's profile
// GET /api/v1/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	user, err := ctrl.authService.GetMe(c.Request.Context(), identity)
	if err != nil {
		fail(c, log, "Failed to fetch profile", err, map[string]interface{}{
			"user_id": identity.UserID,
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
