package repository

import (
	"context"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/billoapp/tabz/pkg/pagination"
	"github.com/google/uuid"
)

// TabRepository defines the interface for tab data operations
type TabRepository interface {
	Create(ctx context.Context, tab *entity.Tab) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Tab, error)
	// GetWithVenue loads the tab along with the venue snapshot the status
	// engine evaluates against.
	GetWithVenue(ctx context.Context, id uuid.UUID) (*entity.Tab, error)
	List(ctx context.Context, params *TabFilterParams) ([]entity.Tab, int64, error)
	// ListActive returns Open and Overdue tabs, optionally restricted to one
	// venue. Used by the overdue sweep and the reconciliation routine.
	ListActive(ctx context.Context, venueID *uuid.UUID) ([]entity.Tab, error)
	// UpdateStatusIf applies updates only when the tab still holds the
	// expected status (compare-and-set). Returns false when another writer
	// transitioned the tab first.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected enum.TabStatus, updates map[string]interface{}) (bool, error)
}

// TabFilterParams contains filtering parameters for tab queries
type TabFilterParams struct {
	Pagination *pagination.PaginationParams
	VenueID    *uuid.UUID
	Status     *enum.TabStatus
}
