package handler

import (
	"strconv"
	"time"

	"github.com/billoapp/tabz/internal/application/service"
	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/billoapp/tabz/internal/presentation/http/dto/request"
	"github.com/billoapp/tabz/internal/presentation/http/dto/response"
	"github.com/billoapp/tabz/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VenueHandler handles venue-related HTTP requests
type VenueHandler struct {
	venueService *service.VenueService
}

// NewVenueHandler creates a new venue handler
func NewVenueHandler(venueService *service.VenueService) *VenueHandler {
	return &VenueHandler{venueService: venueService}
}

// Create handles creating a venue
func (h *VenueHandler) Create(c *gin.Context) {
	var req request.CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	venue, err := h.venueService.Create(c.Request.Context(), service.VenueInput{
		Name:     req.Name,
		Timezone: req.Timezone,
		Hours:    hoursFromRequest(req.Hours),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Venue created successfully", venue)
}

// Get handles getting a single venue
func (h *VenueHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid venue ID")
		return
	}

	venue, err := h.venueService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Venue retrieved successfully", venue)
}

// Update handles updating a venue's configuration
func (h *VenueHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid venue ID")
		return
	}

	var req request.UpdateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	venue, err := h.venueService.Update(c.Request.Context(), id, service.VenueInput{
		Name:     req.Name,
		Timezone: req.Timezone,
		Hours:    hoursFromRequest(req.Hours),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Venue updated successfully", venue)
}

// List handles listing venues
func (h *VenueHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	}

	result, err := h.venueService.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Venues retrieved successfully", result)
}

// OpenNow handles checking whether a venue is currently open
func (h *VenueHandler) OpenNow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid venue ID")
		return
	}

	open, err := h.venueService.IsOpenNow(c.Request.Context(), id, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Venue open state retrieved successfully", gin.H{"open": open})
}

func hoursFromRequest(req request.HoursRequest) entity.HoursConfig {
	mode := enum.HoursModeAlwaysOpen
	switch req.Mode {
	case "simple":
		mode = enum.HoursModeSimple
	case "advanced":
		mode = enum.HoursModeAdvanced
	}

	hours := entity.HoursConfig{
		Mode:          mode,
		Open:          req.Open,
		Close:         req.Close,
		ClosesNextDay: req.ClosesNextDay,
	}

	if len(req.Weekdays) > 0 {
		hours.Weekdays = make(map[string]entity.DayWindow, len(req.Weekdays))
		for day, window := range req.Weekdays {
			hours.Weekdays[day] = entity.DayWindow{
				Open:          window.Open,
				Close:         window.Close,
				ClosesNextDay: window.ClosesNextDay,
			}
		}
	}

	return hours
}
