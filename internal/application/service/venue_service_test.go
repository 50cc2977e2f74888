package service

import (
	"context"
	"sync"
	"testing"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/billoapp/tabz/internal/domain/schedule"
	infraRepo "github.com/billoapp/tabz/internal/infrastructure/repository"
	"github.com/billoapp/tabz/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memVenueRepo struct {
	mu     sync.Mutex
	venues map[uuid.UUID]*entity.Venue
}

func newMemVenueRepo() *memVenueRepo {
	return &memVenueRepo{venues: make(map[uuid.UUID]*entity.Venue)}
}

func (r *memVenueRepo) Create(_ context.Context, venue *entity.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if venue.ID == uuid.Nil {
		venue.ID = uuid.New()
	}
	cp := *venue
	r.venues[venue.ID] = &cp
	return nil
}

func (r *memVenueRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	venue, ok := r.venues[id]
	if !ok {
		return nil, nil
	}
	cp := *venue
	return &cp, nil
}

func (r *memVenueRepo) Update(_ context.Context, venue *entity.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *venue
	r.venues[venue.ID] = &cp
	return nil
}

func (r *memVenueRepo) List(_ context.Context, _ *pagination.PaginationParams) ([]entity.Venue, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Venue
	for _, venue := range r.venues {
		out = append(out, *venue)
	}
	return out, int64(len(out)), nil
}

func newVenueService() (*VenueService, *memVenueRepo) {
	repo := newMemVenueRepo()
	zones := schedule.NewResolver()
	return NewVenueService(repo, zones, schedule.NewEvaluator(zones)), repo
}

func tenantCtx() context.Context {
	return infraRepo.WithTenant(context.Background(), uuid.New())
}

func TestCreateVenueValidatesTimezone(t *testing.T) {
	svc, _ := newVenueService()

	venue, err := svc.Create(tenantCtx(), VenueInput{
		Name:     "Mama Tess Bar",
		Timezone: "Africa/Nairobi",
		Hours:    overnightHours(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Africa/Nairobi", venue.Timezone)

	_, err = svc.Create(tenantCtx(), VenueInput{
		Name:     "Nowhere Bar",
		Timezone: "Mars/Olympus",
		Hours:    overnightHours(),
	})
	require.Error(t, err, "an unresolvable zone is rejected at write time")
}

func TestCreateVenueValidatesHours(t *testing.T) {
	svc, _ := newVenueService()

	_, err := svc.Create(tenantCtx(), VenueInput{
		Name:     "Mama Tess Bar",
		Timezone: "Africa/Nairobi",
		Hours: entity.HoursConfig{
			Mode: enum.HoursModeSimple,
			Open: "half past nine", Close: "02:00",
		},
	})
	require.Error(t, err)
}

func TestUpdateVenueHours(t *testing.T) {
	svc, _ := newVenueService()
	ctx := tenantCtx()

	venue, err := svc.Create(ctx, VenueInput{
		Name:     "Mama Tess Bar",
		Timezone: "Africa/Nairobi",
		Hours:    entity.HoursConfig{Mode: enum.HoursModeAlwaysOpen},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, venue.ID, VenueInput{
		Name:     "Mama Tess Bar & Grill",
		Timezone: "Africa/Nairobi",
		Hours:    overnightHours(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Mama Tess Bar & Grill", updated.Name)
	assert.Equal(t, enum.HoursModeSimple, updated.Hours.Mode)
	assert.True(t, updated.Hours.ClosesNextDay)
}

func TestIsOpenNow(t *testing.T) {
	svc, _ := newVenueService()
	ctx := tenantCtx()

	venue, err := svc.Create(ctx, VenueInput{
		Name:     "Mama Tess Bar",
		Timezone: "Africa/Nairobi",
		Hours:    overnightHours(),
	})
	require.NoError(t, err)

	open, err := svc.IsOpenNow(ctx, venue.ID, nairobiTime(23, 0))
	require.NoError(t, err)
	assert.True(t, open)

	open, err = svc.IsOpenNow(ctx, venue.ID, nairobiTime(5, 0))
	require.NoError(t, err)
	assert.False(t, open)
}
