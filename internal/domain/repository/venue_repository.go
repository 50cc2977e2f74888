package repository

import (
	"context"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/pkg/pagination"
	"github.com/google/uuid"
)

// VenueRepository defines the interface for venue data operations
type VenueRepository interface {
	Create(ctx context.Context, venue *entity.Venue) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Venue, error)
	Update(ctx context.Context, venue *entity.Venue) error
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Venue, int64, error)
}
