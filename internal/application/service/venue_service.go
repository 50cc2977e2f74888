package service

import (
	"context"
	"time"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/repository"
	"github.com/billoapp/tabz/internal/domain/schedule"
	infraRepo "github.com/billoapp/tabz/internal/infrastructure/repository"
	"github.com/billoapp/tabz/pkg/apperror"
	"github.com/billoapp/tabz/pkg/pagination"
	"github.com/google/uuid"
)

// VenueService manages venue configuration. Time zones and hours windows are
// validated here, at write time, so the schedule evaluator never meets a bad
// configuration at read time.
type VenueService struct {
	venueRepo repository.VenueRepository
	zones     *schedule.Resolver
	evaluator *schedule.Evaluator
}

// NewVenueService creates a new venue service
func NewVenueService(venueRepo repository.VenueRepository, zones *schedule.Resolver, evaluator *schedule.Evaluator) *VenueService {
	return &VenueService{
		venueRepo: venueRepo,
		zones:     zones,
		evaluator: evaluator,
	}
}

// VenueInput carries the writable venue fields
type VenueInput struct {
	Name     string
	Timezone string
	Hours    entity.HoursConfig
}

// Create validates and persists a new venue
func (s *VenueService) Create(ctx context.Context, input VenueInput) (*entity.Venue, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	if err := s.validate(input); err != nil {
		return nil, err
	}

	venue := &entity.Venue{
		TenantID: tenantID,
		Name:     input.Name,
		Timezone: input.Timezone,
		Hours:    input.Hours,
	}

	if err := s.venueRepo.Create(ctx, venue); err != nil {
		return nil, err
	}
	return venue, nil
}

// Get retrieves a venue by ID
func (s *VenueService) Get(ctx context.Context, venueID uuid.UUID) (*entity.Venue, error) {
	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, apperror.NewNotFoundError("Venue")
	}
	return venue, nil
}

// Update validates and applies changes to a venue's configuration
func (s *VenueService) Update(ctx context.Context, venueID uuid.UUID, input VenueInput) (*entity.Venue, error) {
	venue, err := s.Get(ctx, venueID)
	if err != nil {
		return nil, err
	}

	if err := s.validate(input); err != nil {
		return nil, err
	}

	venue.Name = input.Name
	venue.Timezone = input.Timezone
	venue.Hours = input.Hours

	if err := s.venueRepo.Update(ctx, venue); err != nil {
		return nil, err
	}
	return venue, nil
}

// List lists venues for the current tenant
func (s *VenueService) List(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Venue], error) {
	venues, total, err := s.venueRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(venues, pag), nil
}

// IsOpenNow reports whether the venue is currently open
func (s *VenueService) IsOpenNow(ctx context.Context, venueID uuid.UUID, now time.Time) (bool, error) {
	venue, err := s.Get(ctx, venueID)
	if err != nil {
		return false, err
	}
	return s.evaluator.IsOpenAt(venue.Hours, venue.Timezone, now)
}

func (s *VenueService) validate(input VenueInput) error {
	if input.Name == "" {
		return apperror.NewBadRequestError("Venue name is required")
	}
	// Rejecting an unknown zone here means evaluation never has to decide
	// between failing and silently falling back to UTC.
	if _, err := s.zones.Location(input.Timezone); err != nil {
		return apperror.NewBadRequestError("Unknown IANA time zone: " + input.Timezone)
	}
	if err := schedule.ValidateHours(input.Hours); err != nil {
		return apperror.NewBadRequestError(err.Error())
	}
	return nil
}
