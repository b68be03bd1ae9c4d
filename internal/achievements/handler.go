package achievements

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brewbuddy/backend/internal/middleware"
	"github.com/brewbuddy/backend/pkg/response"
)

// Handler handles achievement HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an achievements handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ListMine handles GET /achievements. Returns the caller's unlocked
// achievements.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list achievements")
		return
	}
	response.OK(c, list)
}
