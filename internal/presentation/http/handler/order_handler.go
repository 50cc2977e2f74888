package handler

import (
	"time"

	"github.com/billoapp/tabz/internal/application/service"
	"github.com/billoapp/tabz/internal/presentation/http/dto/request"
	"github.com/billoapp/tabz/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	ledgerService *service.LedgerService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(ledgerService *service.LedgerService) *OrderHandler {
	return &OrderHandler{ledgerService: ledgerService}
}

// Create handles placing an order on a tab
func (h *OrderHandler) Create(c *gin.Context) {
	tabID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tab ID")
		return
	}

	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.OrderItemInput{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order, err := h.ledgerService.RecordOrder(c.Request.Context(), tabID, GetUserID(c), items)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order placed successfully", order)
}

// List handles listing a tab's orders
func (h *OrderHandler) List(c *gin.Context) {
	tabID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tab ID")
		return
	}

	orders, err := h.ledgerService.OrdersForTab(c.Request.Context(), tabID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Orders retrieved successfully", orders)
}

// Confirm handles accepting a pending order into the bill
func (h *OrderHandler) Confirm(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.ledgerService.ConfirmOrder(c.Request.Context(), orderID, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order confirmed successfully", order)
}

// Cancel handles rejecting a pending order
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.ledgerService.CancelOrder(c.Request.Context(), orderID, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order cancelled successfully", order)
}
