package entity

import (
	"time"

	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/google/uuid"
)

// AuditRecord captures a tab status or balance change made by the status
// engine, a staff member, or the reconciliation routine.
type AuditRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	VenueID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"venue_id"`
	TabID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"tab_id"`
	Source     string         `gorm:"size:50;not null" json:"source"` // ledger, sweep, manual, reconciliation
	OldStatus  enum.TabStatus `json:"old_status"`
	NewStatus  enum.TabStatus `json:"new_status"`
	OldBalance int64          `json:"old_balance"`
	NewBalance int64          `json:"new_balance"`
	Note       string         `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for AuditRecord
func (AuditRecord) TableName() string {
	return "audit_records"
}
