package blocks

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brewbuddy/backend/internal/middleware"
	"github.com/brewbuddy/backend/internal/models"
	"github.com/brewbuddy/backend/internal/organizations"
	"github.com/brewbuddy/backend/pkg/response"
)

// Handler handles user block HTTP endpoints.
type Handler struct {
	repo    *Repository
	orgRepo *organizations.Repository
}

// NewHandler creates a blocks handler.
func NewHandler(repo *Repository, orgRepo *organizations.Repository) *Handler {
	return &Handler{repo: repo, orgRepo: orgRepo}
}

// CreateBlockRequest is the body for POST /organizations/:id/blocks.
type CreateBlockRequest struct {
	BlockedID uuid.UUID `json:"blocked_id" binding:"required"`
}

// Create handles POST /organizations/:id/blocks. The caller blocks another member.
func (h *Handler) Create(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var body CreateBlockRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "blocked_id required")
		return
	}
	if body.BlockedID == userID {
		response.BadRequest(c, "cannot block yourself")
		return
	}
	role, err := h.orgRepo.GetUserRole(c.Request.Context(), orgID, userID)
	if err != nil || role == "" {
		response.Forbidden(c, "not a member of this organization")
		return
	}
	if target, err := h.orgRepo.GetUserRole(c.Request.Context(), orgID, body.BlockedID); err != nil || target == "" {
		response.NotFound(c, "blocked user is not a member of this organization")
		return
	}
	block := &models.UserBlock{OrganizationID: orgID, BlockerID: userID, BlockedID: body.BlockedID}
	if err := h.repo.Create(c.Request.Context(), block); err != nil {
		response.Internal(c, "failed to create block")
		return
	}
	response.Created(c, block)
}

// Delete handles DELETE /organizations/:id/blocks/:blockedId.
func (h *Handler) Delete(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	blockedID, err := uuid.Parse(c.Param("blockedId"))
	if err != nil {
		response.BadRequest(c, "invalid blocked user id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.repo.Delete(c.Request.Context(), orgID, userID, blockedID); err != nil {
		response.Internal(c, "failed to remove block")
		return
	}
	response.NoContent(c)
}

// ListMine handles GET /organizations/:id/blocks. Returns the caller's blocks.
func (h *Handler) ListMine(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.FindByBlocker(c.Request.Context(), orgID, userID)
	if err != nil {
		response.Internal(c, "failed to list blocks")
		return
	}
	response.OK(c, list)
}
