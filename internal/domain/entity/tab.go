package entity

import (
	"time"

	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClosedBySystem is the actor tag recorded when a tab is auto-closed by the
// status engine rather than by a staff member.
const ClosedBySystem = "system"

// Tab represents a running customer account at a venue, accumulating orders
// until settled. Balance is always derived from the ledger, never stored.
type Tab struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	VenueID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"venue_id"`
	TabNo            string         `gorm:"size:100;unique;not null" json:"tab_no"`
	CustomerName     string         `gorm:"size:255" json:"customer_name,omitempty"`
	Status           enum.TabStatus `gorm:"default:0;index" json:"status"`
	OpenedAt         time.Time      `gorm:"not null" json:"opened_at"`
	MovedToOverdueAt *time.Time     `json:"moved_to_overdue_at,omitempty"`
	OverdueReason    *string        `gorm:"type:text" json:"overdue_reason,omitempty"`
	ClosedAt         *time.Time     `json:"closed_at,omitempty"`
	ClosedBy         *string        `gorm:"size:100" json:"closed_by,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Venue    Venue     `gorm:"foreignKey:VenueID" json:"-"`
	Orders   []Order   `gorm:"foreignKey:TabID" json:"orders,omitempty"`
	Payments []Payment `gorm:"foreignKey:TabID" json:"payments,omitempty"`
}

// BeforeCreate generates a UUID before creating a new tab
func (t *Tab) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Tab model
func (Tab) TableName() string {
	return "tabs"
}

// CanTransitionTo reports whether the tab status state machine permits the
// move. Open -> Overdue -> Closed, plus Open -> Closed directly and the
// Overdue -> Open revert when an overdue mark no longer applies.
func (t *Tab) CanTransitionTo(target enum.TabStatus) bool {
	switch t.Status {
	case enum.TabStatusOpen:
		return target == enum.TabStatusOverdue || target == enum.TabStatusClosed
	case enum.TabStatusOverdue:
		return target == enum.TabStatusOpen || target == enum.TabStatusClosed
	default:
		return false
	}
}
