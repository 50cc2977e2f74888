package repository

import (
	"context"
	"time"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/google/uuid"
)

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	ListByTab(ctx context.Context, tabID uuid.UUID) ([]entity.Payment, error)
	// SettleIf moves a Pending payment to the terminal status exactly once.
	// Returns false when the payment was already terminal, which the caller
	// maps to AlreadySettled or an idempotent no-op.
	SettleIf(ctx context.Context, id uuid.UUID, target enum.PaymentStatus, providerRef *string, settledAt time.Time) (bool, error)
	// SumAmounts returns the sum of payment amounts in the given status for a tab
	SumAmounts(ctx context.Context, tabID uuid.UUID, status enum.PaymentStatus) (int64, error)
	// DeleteByReference removes payments carrying the given reference tag,
	// optionally restricted to one venue's tabs. Used by reconciliation to
	// strip synthetic correction rows.
	DeleteByReference(ctx context.Context, reference string, venueID *uuid.UUID) (int64, error)
}
