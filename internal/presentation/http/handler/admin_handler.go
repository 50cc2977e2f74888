package handler

import (
	"time"

	"github.com/billoapp/tabz/internal/application/service"
	infraRepo "github.com/billoapp/tabz/internal/infrastructure/repository"
	"github.com/billoapp/tabz/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler exposes the operational endpoints: the overdue sweep and the
// ledger reconciliation routine
type AdminHandler struct {
	tabService            *service.TabService
	reconciliationService *service.ReconciliationService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(tabService *service.TabService, reconciliationService *service.ReconciliationService) *AdminHandler {
	return &AdminHandler{
		tabService:            tabService,
		reconciliationService: reconciliationService,
	}
}

// RunSweep handles triggering an overdue sweep, optionally restricted to one
// venue via the venue_id query parameter
func (h *AdminHandler) RunSweep(c *gin.Context) {
	venueID, err := optionalVenueID(c)
	if err != nil {
		response.BadRequest(c, "Invalid venue ID")
		return
	}

	report, err := h.tabService.RunOverdueSweep(c.Request.Context(), venueID, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sweep completed", report)
}

// RunReconciliation handles triggering the ledger reconciliation routine.
// Corrections may span tenants, so the tenant scope is skipped when no venue
// filter narrows the run.
func (h *AdminHandler) RunReconciliation(c *gin.Context) {
	venueID, err := optionalVenueID(c)
	if err != nil {
		response.BadRequest(c, "Invalid venue ID")
		return
	}

	ctx := c.Request.Context()
	if venueID == nil {
		ctx = infraRepo.WithSkipTenantScope(ctx, true)
	}

	report, err := h.reconciliationService.Run(ctx, venueID, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Reconciliation completed", report)
}

func optionalVenueID(c *gin.Context) (*uuid.UUID, error) {
	venueIDStr := c.Query("venue_id")
	if venueIDStr == "" {
		return nil, nil
	}
	venueID, err := uuid.Parse(venueIDStr)
	if err != nil {
		return nil, err
	}
	return &venueID, nil
}
