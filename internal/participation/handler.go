package participation

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brewbuddy/backend/internal/middleware"
	"github.com/brewbuddy/backend/pkg/response"
)

// Handler handles participation HTTP endpoints.
type Handler struct {
	tracker *Tracker
}

// NewHandler creates a participation handler.
func NewHandler(tracker *Tracker) *Handler {
	return &Handler{tracker: tracker}
}

// GetMine handles GET /organizations/:id/participation. Returns the
// caller's current consecutive-cycle streak.
func (h *Handler) GetMine(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	count, err := h.tracker.ConsecutiveCount(c.Request.Context(), userID, orgID)
	if err != nil {
		response.Internal(c, "failed to load participation")
		return
	}
	response.OK(c, gin.H{"consecutive_count": count})
}
