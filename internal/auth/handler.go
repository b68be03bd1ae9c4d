package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brewbuddy/backend/internal/models"
	"github.com/brewbuddy/backend/pkg/response"
	"github.com/brewbuddy/backend/pkg/utils"
)

// Handler handles authentication HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the token + user payload returned after login/register.
type AuthResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var body RegisterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "email, password (min 8 chars) and full_name required")
		return
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	hash, err := utils.HashPassword(body.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	user, err := h.repo.Create(c.Request.Context(), body.Email, hash, strings.TrimSpace(body.FullName), models.RoleMember)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique") {
			response.Conflict(c, "an account with this email already exists")
			return
		}
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}
	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to issue token")
		return
	}
	response.Created(c, AuthResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var body LoginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "email and password required")
		return
	}
	user, err := h.repo.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(body.Email)))
	if err != nil || !utils.CheckPassword(body.Password, user.Password) {
		response.Unauthorized(c, "invalid credentials")
		return
	}
	if !user.IsActive {
		response.Forbidden(c, "account is deactivated")
		return
	}
	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to issue token")
		return
	}
	response.OK(c, AuthResponse{Token: token, User: user.ToPublic()})
}

// List handles GET /users (admin only).
func (h *Handler) List(c *gin.Context) {
	users, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, users)
}
