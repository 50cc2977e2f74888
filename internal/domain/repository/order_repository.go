package repository

import (
	"context"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/google/uuid"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateItems(ctx context.Context, items []entity.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	ListByTab(ctx context.Context, tabID uuid.UUID) ([]entity.Order, error)
	// UpdateStatusIf moves the order from the expected status, applying any
	// extra updates atomically. Returns false when the order was not in the
	// expected status.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, target enum.OrderStatus, updates map[string]interface{}) (bool, error)
	// SumTotals returns the sum of order totals in the given status for a tab
	SumTotals(ctx context.Context, tabID uuid.UUID, status enum.OrderStatus) (int64, error)
	CountByStatus(ctx context.Context, tabID uuid.UUID, status enum.OrderStatus) (int64, error)
}
