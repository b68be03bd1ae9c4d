package pairing

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brewbuddy/backend/internal/middleware"
	"github.com/brewbuddy/backend/internal/models"
	"github.com/brewbuddy/backend/internal/organizations"
	"github.com/brewbuddy/backend/pkg/response"
)

// Handler handles pairing HTTP endpoints.
type Handler struct {
	engine  *Engine
	periods *PeriodRepository
	orgRepo *organizations.Repository
}

// NewHandler creates a pairing handler.
func NewHandler(engine *Engine, periods *PeriodRepository, orgRepo *organizations.Repository) *Handler {
	return &Handler{engine: engine, periods: periods, orgRepo: orgRepo}
}

// requireOrgAdmin resolves the org ID and checks the caller is a platform
// admin or an admin of the organization. Returns uuid.Nil when it already
// wrote a response.
func (h *Handler) requireOrgAdmin(c *gin.Context) uuid.UUID {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return uuid.Nil
	}
	role := c.MustGet(middleware.ContextUserRole).(string)
	if role == string(models.RoleAdmin) {
		return orgID
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ok, err := h.orgRepo.IsOrgAdmin(c.Request.Context(), orgID, userID)
	if err != nil || !ok {
		response.Forbidden(c, "organization admin required")
		return uuid.Nil
	}
	return orgID
}

// Run handles POST /organizations/:id/pairing/run. Triggers one pairing
// cycle; the scheduler hits the same engine path on its own ticks.
func (h *Handler) Run(c *gin.Context) {
	orgID := h.requireOrgAdmin(c)
	if orgID == uuid.Nil {
		return
	}
	// Failures surface through the result (success=false plus message), so
	// an admin or scheduler can log and retry on a later tick.
	result, _ := h.engine.ExecutePairing(c.Request.Context(), orgID)
	response.OK(c, result)
}

// ListPeriods handles GET /organizations/:id/periods.
func (h *Handler) ListPeriods(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, err := h.orgRepo.GetUserRole(c.Request.Context(), orgID, userID)
	if err != nil || role == "" {
		response.Forbidden(c, "not a member of this organization")
		return
	}
	periods, err := h.periods.ListPeriods(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to list periods")
		return
	}
	response.OK(c, periods)
}

// ListPairings handles GET /periods/:id/pairings.
func (h *Handler) ListPairings(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid period id")
		return
	}
	period, err := h.periods.GetPeriod(c.Request.Context(), periodID)
	if err != nil {
		response.NotFound(c, "period not found")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, err := h.orgRepo.GetUserRole(c.Request.Context(), period.OrganizationID, userID)
	if err != nil || role == "" {
		response.Forbidden(c, "not a member of this organization")
		return
	}
	pairings, err := h.periods.ListPairings(c.Request.Context(), periodID)
	if err != nil {
		response.Internal(c, "failed to list pairings")
		return
	}
	response.OK(c, pairings)
}
