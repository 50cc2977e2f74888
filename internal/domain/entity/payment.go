package entity

import (
	"encoding/json"
	"time"

	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LegacyCorrectionRef tags synthetic "negative payment" rows that an earlier
// backfill inserted to patch wrong balances. Reconciliation removes them;
// nothing may ever create new ones.
const LegacyCorrectionRef = "auto-balance-correction"

// Payment represents a payment attempt against a tab. Amounts are stored in
// cents and are always positive; corrections are done by recomputation, not
// by negative payment rows.
type Payment struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	TabID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"tab_id"`
	Amount      int64              `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Method      enum.PaymentMethod `gorm:"size:50;not null" json:"method"`
	Status      enum.PaymentStatus `gorm:"default:0;index" json:"status"`
	Reference   string             `gorm:"size:255;index" json:"reference,omitempty"`
	ProviderRef *string            `gorm:"size:255" json:"provider_ref,omitempty"`
	SettledAt   *time.Time         `json:"settled_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	DeletedAt   gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Tab Tab `gorm:"foreignKey:TabID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: float64(p.Amount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
