package request

// HoursRequest represents a venue hours configuration in a request body
type HoursRequest struct {
	Mode          string                       `json:"mode" binding:"omitempty,oneof=always_open simple advanced"`
	Open          string                       `json:"open"`
	Close         string                       `json:"close"`
	ClosesNextDay bool                         `json:"closes_next_day"`
	Weekdays      map[string]DayWindowRequest  `json:"weekdays"`
}

// DayWindowRequest represents one weekday window in a request body
type DayWindowRequest struct {
	Open          string `json:"open" binding:"required"`
	Close         string `json:"close" binding:"required"`
	ClosesNextDay bool   `json:"closes_next_day"`
}

// CreateVenueRequest represents a venue creation request
type CreateVenueRequest struct {
	Name     string       `json:"name" binding:"required,min=2,max=255"`
	Timezone string       `json:"timezone" binding:"required"`
	Hours    HoursRequest `json:"hours"`
}

// UpdateVenueRequest represents a venue update request
type UpdateVenueRequest struct {
	Name     string       `json:"name" binding:"required,min=2,max=255"`
	Timezone string       `json:"timezone" binding:"required"`
	Hours    HoursRequest `json:"hours"`
}
