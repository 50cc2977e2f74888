package request

// OrderItemRequest represents one line item in an order placement
type OrderItemRequest struct {
	Name      string  `json:"name" binding:"required,min=1,max=255"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	UnitPrice float64 `json:"unit_price" binding:"min=0"`
}

// CreateOrderRequest represents an order placement request
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}
