package settings

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brewbuddy/backend/internal/middleware"
	"github.com/brewbuddy/backend/internal/models"
	"github.com/brewbuddy/backend/pkg/response"
)

// Handler handles algorithm settings HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a settings handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UpdateSettingsRequest is the body for PUT /organizations/:id/settings.
type UpdateSettingsRequest struct {
	PeriodLengthDays *int   `json:"period_length_days"`
	RandomSeed       *int64 `json:"random_seed"`
}

// Get handles GET /organizations/:id/settings.
func (h *Handler) Get(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	s, err := h.service.GetOrCreate(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load settings")
		return
	}
	response.OK(c, s)
}

// Update handles PUT /organizations/:id/settings.
func (h *Handler) Update(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	var body UpdateSettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	caller := Identity{
		UserID: c.MustGet(middleware.ContextUserID).(uuid.UUID),
		Role:   models.Role(c.MustGet(middleware.ContextUserRole).(string)),
	}
	result, err := h.service.Update(c.Request.Context(), orgID, UpdateParams{
		PeriodLengthDays: body.PeriodLengthDays,
		RandomSeed:       body.RandomSeed,
	}, caller)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Forbidden(c, "organization admin required")
		case errors.Is(err, ErrInvalidPeriodLength), errors.Is(err, ErrInvalidSeed):
			response.BadRequest(c, err.Error())
		default:
			response.Internal(c, "failed to update settings")
		}
		return
	}
	response.OK(c, result)
}
