package repository

import (
	"context"
	"errors"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
	domainRepo "github.com/billoapp/tabz/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tabRepository struct {
	db *gorm.DB
}

// NewTabRepository creates a new tab repository
func NewTabRepository(db *gorm.DB) domainRepo.TabRepository {
	return &tabRepository{db: db}
}

func (r *tabRepository) Create(ctx context.Context, tab *entity.Tab) error {
	return r.db.WithContext(ctx).Create(tab).Error
}

func (r *tabRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Tab, error) {
	var tab entity.Tab
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		First(&tab, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tab, err
}

func (r *tabRepository) GetWithVenue(ctx context.Context, id uuid.UUID) (*entity.Tab, error) {
	var tab entity.Tab
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Venue").
		First(&tab, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tab, err
}

func (r *tabRepository) List(ctx context.Context, params *domainRepo.TabFilterParams) ([]entity.Tab, int64, error) {
	var tabs []entity.Tab
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Tab{}).Scopes(TenantScope(ctx))

	if params.VenueID != nil {
		query = query.Where("venue_id = ?", *params.VenueID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("opened_at DESC").
		Find(&tabs).Error

	return tabs, total, err
}

func (r *tabRepository) ListActive(ctx context.Context, venueID *uuid.UUID) ([]entity.Tab, error) {
	var tabs []entity.Tab

	query := r.db.WithContext(ctx).Scopes(TenantScope(ctx)).
		Where("status IN ?", []enum.TabStatus{enum.TabStatusOpen, enum.TabStatusOverdue})
	if venueID != nil {
		query = query.Where("venue_id = ?", *venueID)
	}

	err := query.Order("opened_at ASC").Find(&tabs).Error
	return tabs, err
}

func (r *tabRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected enum.TabStatus, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Tab{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
