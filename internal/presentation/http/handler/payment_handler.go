package handler

import (
	"time"

	"github.com/billoapp/tabz/internal/application/service"
	"github.com/billoapp/tabz/internal/domain/enum"
	infraRepo "github.com/billoapp/tabz/internal/infrastructure/repository"
	"github.com/billoapp/tabz/internal/presentation/http/dto/request"
	"github.com/billoapp/tabz/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	ledgerService *service.LedgerService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(ledgerService *service.LedgerService) *PaymentHandler {
	return &PaymentHandler{ledgerService: ledgerService}
}

// Create handles initiating a payment against a tab
func (h *PaymentHandler) Create(c *gin.Context) {
	tabID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tab ID")
		return
	}

	var req request.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	payment, err := h.ledgerService.RecordPayment(c.Request.Context(), tabID, req.Amount, enum.PaymentMethod(req.Method))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded successfully", payment)
}

// List handles listing a tab's payments
func (h *PaymentHandler) List(c *gin.Context) {
	tabID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tab ID")
		return
	}

	payments, err := h.ledgerService.PaymentsForTab(c.Request.Context(), tabID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payments retrieved successfully", payments)
}

// Settle handles manual settlement of a payment by staff (cash handed over)
func (h *PaymentHandler) Settle(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("payment_id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	var req request.SettlePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	payment, err := h.ledgerService.SettlePayment(c.Request.Context(), paymentID, req.Success, req.ProviderRef, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment settled successfully", payment)
}

// Webhook handles asynchronous payment outcomes from the mobile-money
// gateway. The gateway carries no tenant credentials, so the tenant scope is
// skipped; the payment ID alone identifies the record.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var req request.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	paymentID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	ctx := infraRepo.WithSkipTenantScope(c.Request.Context(), true)
	if err := h.ledgerService.ApplyPaymentOutcome(ctx, paymentID, req.Success, req.ProviderRef, time.Now()); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment outcome applied successfully", nil)
}
