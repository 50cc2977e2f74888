package request

// OpenTabRequest represents a tab opening request
type OpenTabRequest struct {
	CustomerName string `json:"customer_name" binding:"required,min=1,max=255"`
}

// CloseTabRequest represents a manual tab closure request
type CloseTabRequest struct {
	ClosedBy string `json:"closed_by" binding:"required,min=1,max=255"`
}

// TabFilterRequest represents tab list filter parameters
type TabFilterRequest struct {
	Status  string `form:"status"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
