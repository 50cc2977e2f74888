package repository

import (
	"context"

	"github.com/billoapp/tabz/internal/domain/entity"
	domainRepo "github.com/billoapp/tabz/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit record repository
func NewAuditRepository(db *gorm.DB) domainRepo.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, record *entity.AuditRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *auditRepository) ListByTab(ctx context.Context, tabID uuid.UUID) ([]entity.AuditRecord, error) {
	var records []entity.AuditRecord
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Where("tab_id = ?", tabID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}
