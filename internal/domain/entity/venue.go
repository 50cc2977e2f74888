package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Venue represents a bar/restaurant location. The time zone and hours
// configuration are read as an immutable snapshot per evaluation; the ledger
// core never mutates them.
type Venue struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Timezone  string         `gorm:"size:64;not null;default:'Africa/Nairobi'" json:"timezone"`
	Hours     HoursConfig    `gorm:"type:jsonb;serializer:json" json:"hours"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Tenant Tenant `gorm:"foreignKey:TenantID" json:"-"`
	Tabs   []Tab  `gorm:"foreignKey:VenueID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new venue
func (v *Venue) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Venue model
func (Venue) TableName() string {
	return "venues"
}

// HoursConfig describes when a venue is open. Exactly one mode is active at
// a time; the zero value means always open.
type HoursConfig struct {
	Mode enum.HoursMode `json:"mode"`

	// Simple mode: one fixed daily window in local wall-clock time ("HH:MM").
	// ClosesNextDay marks a window that crosses midnight, e.g. open 09:30,
	// close 02:00 the following local day.
	Open          string `json:"open,omitempty"`
	Close         string `json:"close,omitempty"`
	ClosesNextDay bool   `json:"closes_next_day,omitempty"`

	// Advanced mode: per-weekday windows keyed by lowercase weekday name.
	// A missing weekday means closed that day.
	Weekdays map[string]DayWindow `json:"weekdays,omitempty"`
}

// DayWindow is one open/close window on a specific weekday
type DayWindow struct {
	Open          string `json:"open"`
	Close         string `json:"close"`
	ClosesNextDay bool   `json:"closes_next_day,omitempty"`
}

// Scan implements the sql.Scanner interface for HoursConfig
func (h *HoursConfig) Scan(value interface{}) error {
	if value == nil {
		*h = HoursConfig{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan HoursConfig: unsupported type")
	}

	return json.Unmarshal(bytes, h)
}

// Value implements the driver.Valuer interface for HoursConfig
func (h HoursConfig) Value() (driver.Value, error) {
	return json.Marshal(h)
}
