package repository

import (
	"context"
	"errors"

	"github.com/billoapp/tabz/internal/domain/entity"
	domainRepo "github.com/billoapp/tabz/internal/domain/repository"
	"github.com/billoapp/tabz/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type venueRepository struct {
	db *gorm.DB
}

// NewVenueRepository creates a new venue repository
func NewVenueRepository(db *gorm.DB) domainRepo.VenueRepository {
	return &venueRepository{db: db}
}

func (r *venueRepository) Create(ctx context.Context, venue *entity.Venue) error {
	return r.db.WithContext(ctx).Create(venue).Error
}

func (r *venueRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Venue, error) {
	var venue entity.Venue
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		First(&venue, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &venue, err
}

func (r *venueRepository) Update(ctx context.Context, venue *entity.Venue) error {
	return r.db.WithContext(ctx).Save(venue).Error
}

func (r *venueRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Venue, int64, error) {
	var venues []entity.Venue
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Venue{}).Scopes(TenantScope(ctx))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&venues).Error

	return venues, total, err
}
