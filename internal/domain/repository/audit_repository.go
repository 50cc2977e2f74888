package repository

import (
	"context"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/google/uuid"
)

// AuditRepository defines the interface for audit record operations
type AuditRepository interface {
	Create(ctx context.Context, record *entity.AuditRecord) error
	ListByTab(ctx context.Context, tabID uuid.UUID) ([]entity.AuditRecord, error)
}
