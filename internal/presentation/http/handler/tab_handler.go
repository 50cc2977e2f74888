package handler

import (
	"strconv"
	"time"

	"github.com/billoapp/tabz/internal/application/service"
	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/billoapp/tabz/internal/domain/repository"
	"github.com/billoapp/tabz/internal/presentation/http/dto/request"
	"github.com/billoapp/tabz/internal/presentation/http/dto/response"
	"github.com/billoapp/tabz/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TabHandler handles tab-related HTTP requests
type TabHandler struct {
	tabService *service.TabService
}

// NewTabHandler creates a new tab handler
func NewTabHandler(tabService *service.TabService) *TabHandler {
	return &TabHandler{tabService: tabService}
}

// Open handles opening a new tab at a venue
func (h *TabHandler) Open(c *gin.Context) {
	venueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid venue ID")
		return
	}

	var req request.OpenTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	tab, err := h.tabService.Open(c.Request.Context(), venueID, req.CustomerName, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Tab opened successfully", tab)
}

// Get handles getting a single tab
func (h *TabHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tab ID")
		return
	}

	tab, err := h.tabService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tab retrieved successfully", tab)
}

// List handles listing tabs for a venue with optional status filtering
func (h *TabHandler) List(c *gin.Context) {
	venueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid venue ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.TabFilterParams{
		Pagination: &pagination.PaginationParams{Page: page, PerPage: perPage},
		VenueID:    &venueID,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status, ok := parseTabStatus(statusStr)
		if !ok {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		params.Status = &status
	}

	result, err := h.tabService.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Tabs retrieved successfully", result)
}

// Balance handles retrieving a tab's live balance
func (h *TabHandler) Balance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tab ID")
		return
	}

	balance, err := h.tabService.Balance(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Balance retrieved successfully", gin.H{
		"tab_id":  id,
		"balance": float64(balance) / 100,
	})
}

// Status handles retrieving a tab's semantic status
func (h *TabHandler) Status(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tab ID")
		return
	}

	status, err := h.tabService.Status(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Status retrieved successfully", status)
}

// CanOrder handles checking whether a tab may accept new orders
func (h *TabHandler) CanOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tab ID")
		return
	}

	gate, err := h.tabService.CanAcceptOrders(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order gate retrieved successfully", gate)
}

// Close handles manual tab closure by staff
func (h *TabHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tab ID")
		return
	}

	var req request.CloseTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	tab, err := h.tabService.Close(c.Request.Context(), id, req.ClosedBy, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tab closed successfully", tab)
}

// AuditTrail handles retrieving a tab's status transition history
func (h *TabHandler) AuditTrail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tab ID")
		return
	}

	records, err := h.tabService.AuditTrail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Audit trail retrieved successfully", records)
}

func parseTabStatus(s string) (enum.TabStatus, bool) {
	switch s {
	case "open", "Open":
		return enum.TabStatusOpen, true
	case "overdue", "Overdue":
		return enum.TabStatusOverdue, true
	case "closed", "Closed":
		return enum.TabStatusClosed, true
	default:
		return enum.TabStatusOpen, false
	}
}
