package repository

import (
	"context"
	"errors"
	"time"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
	domainRepo "github.com/billoapp/tabz/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &payment, err
}

func (r *paymentRepository) ListByTab(ctx context.Context, tabID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Where("tab_id = ?", tabID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

// SettleIf relies on a conditional UPDATE against the Pending status so two
// concurrent settlement attempts cannot both apply.
func (r *paymentRepository) SettleIf(ctx context.Context, id uuid.UUID, target enum.PaymentStatus, providerRef *string, settledAt time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     target,
		"settled_at": settledAt,
	}
	if providerRef != nil {
		updates["provider_ref"] = *providerRef
	}

	result := r.db.WithContext(ctx).Model(&entity.Payment{}).
		Where("id = ? AND status = ?", id, enum.PaymentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) SumAmounts(ctx context.Context, tabID uuid.UUID, status enum.PaymentStatus) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Payment{}).
		Where("tab_id = ? AND status = ?", tabID, status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *paymentRepository) DeleteByReference(ctx context.Context, reference string, venueID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).Where("reference = ?", reference)
	if venueID != nil {
		query = query.Where("tab_id IN (?)",
			r.db.Model(&entity.Tab{}).Select("id").Where("venue_id = ?", *venueID))
	}

	result := query.Delete(&entity.Payment{})
	return result.RowsAffected, result.Error
}
