package service

import (
	"context"
	"time"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/billoapp/tabz/internal/domain/repository"
	"github.com/billoapp/tabz/pkg/apperror"
	"github.com/billoapp/tabz/pkg/keylock"
	"github.com/billoapp/tabz/pkg/utils"
	"github.com/google/uuid"
)

// LedgerService maintains the append-only record of orders and payments
// against tabs. Every mutation that can affect the owed amount re-evaluates
// the tab status synchronously before returning, so there is no eventual
// consistency window for balance-sensitive decisions.
type LedgerService struct {
	tabRepo     repository.TabRepository
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	tabs        *TabService
	locks       *keylock.Registry
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	tabRepo repository.TabRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	tabs *TabService,
	locks *keylock.Registry,
) *LedgerService {
	return &LedgerService{
		tabRepo:     tabRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		tabs:        tabs,
		locks:       locks,
	}
}

// OrderItemInput represents a line item in an order placement
type OrderItemInput struct {
	Name      string
	Quantity  int
	UnitPrice float64
}

// RecordOrder places a new Pending order on a tab. Pending orders do not
// contribute to the balance until confirmed.
func (s *LedgerService) RecordOrder(ctx context.Context, tabID uuid.UUID, placedBy *uuid.UUID, items []OrderItemInput) (*entity.Order, error) {
	if len(items) == 0 {
		return nil, apperror.NewBadRequestError("Order must contain at least one item")
	}

	s.locks.Lock(tabID)
	defer s.locks.Unlock(tabID)

	tab, err := s.tabRepo.GetByID(ctx, tabID)
	if err != nil {
		return nil, err
	}
	if tab == nil {
		return nil, apperror.NewNotFoundError("Tab")
	}
	if gate := orderGateFor(tab); !gate.Allowed {
		return nil, apperror.NewConflictError(gate.Reason)
	}

	var total int64
	orderItems := make([]entity.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("Item quantity must be positive")
		}
		unitPriceCents := int64(item.UnitPrice * 100)
		if unitPriceCents < 0 {
			return nil, apperror.NewBadRequestError("Item price must not be negative")
		}
		itemTotal := unitPriceCents * int64(item.Quantity)
		total += itemTotal

		orderItems = append(orderItems, entity.OrderItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: unitPriceCents,
			Total:     itemTotal,
		})
	}

	order := &entity.Order{
		TenantID: tab.TenantID,
		TabID:    tabID,
		Status:   enum.OrderStatusPending,
		Total:    total,
		PlacedBy: placedBy,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}
	if err := s.orderRepo.CreateItems(ctx, orderItems); err != nil {
		return nil, err
	}

	return s.orderRepo.GetByID(ctx, order.ID)
}

// ConfirmOrder accepts a Pending order into the bill. Confirming an already
// Confirmed order is an idempotent no-op; confirming a Cancelled order is an
// InvalidTransition.
func (s *LedgerService) ConfirmOrder(ctx context.Context, orderID uuid.UUID, now time.Time) (*entity.Order, error) {
	return s.transitionOrder(ctx, orderID, enum.OrderStatusConfirmed, now)
}

// CancelOrder rejects a Pending order. Cancelling an already Cancelled order
// is an idempotent no-op; cancelling a Confirmed order is an
// InvalidTransition.
func (s *LedgerService) CancelOrder(ctx context.Context, orderID uuid.UUID, now time.Time) (*entity.Order, error) {
	return s.transitionOrder(ctx, orderID, enum.OrderStatusCancelled, now)
}

func (s *LedgerService) transitionOrder(ctx context.Context, orderID uuid.UUID, target enum.OrderStatus, now time.Time) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	s.locks.Lock(order.TabID)
	defer s.locks.Unlock(order.TabID)

	if order.Status == target {
		return order, nil
	}
	if order.Status.IsTerminal() {
		return nil, apperror.NewInvalidTransition("order", order.Status.String(), target.String())
	}

	updates := map[string]interface{}{}
	if target == enum.OrderStatusConfirmed {
		updates["confirmed_at"] = now
	} else {
		updates["cancelled_at"] = now
	}

	ok, err := s.orderRepo.UpdateStatusIf(ctx, orderID, enum.OrderStatusPending, target, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another writer settled the order between the read and the update.
		order, err = s.orderRepo.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, apperror.NewNotFoundError("Order")
		}
		if order.Status == target {
			return order, nil
		}
		return nil, apperror.NewInvalidTransition("order", order.Status.String(), target.String())
	}

	// Both confirm and cancel can change what the tab owes; the status
	// engine must see the new balance before this call returns.
	if err := s.reevaluateLocked(ctx, order.TabID, now); err != nil {
		return nil, err
	}

	return s.orderRepo.GetByID(ctx, orderID)
}

// RecordPayment starts a payment attempt against a tab. The payment stays
// Pending until cash-handling staff or the mobile-money provider settles it.
func (s *LedgerService) RecordPayment(ctx context.Context, tabID uuid.UUID, amount float64, method enum.PaymentMethod) (*entity.Payment, error) {
	amountCents := int64(amount * 100)
	if amountCents <= 0 {
		return nil, apperror.NewBadRequestError("Payment amount must be positive")
	}
	if !method.Valid() {
		return nil, apperror.NewBadRequestError("Unknown payment method")
	}

	s.locks.Lock(tabID)
	defer s.locks.Unlock(tabID)

	tab, err := s.tabRepo.GetByID(ctx, tabID)
	if err != nil {
		return nil, err
	}
	if tab == nil {
		return nil, apperror.NewNotFoundError("Tab")
	}
	if tab.Status == enum.TabStatusClosed {
		return nil, apperror.NewConflictError("tab is closed")
	}

	payment := &entity.Payment{
		TenantID:  tab.TenantID,
		TabID:     tabID,
		Amount:    amountCents,
		Method:    method,
		Status:    enum.PaymentStatusPending,
		Reference: utils.GeneratePaymentRef(),
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// SettlePayment moves a payment to its terminal state exactly once. A second
// settlement attempt fails with AlreadySettled rather than double-applying.
func (s *LedgerService) SettlePayment(ctx context.Context, paymentID uuid.UUID, success bool, providerRef *string, now time.Time) (*entity.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}

	s.locks.Lock(payment.TabID)
	defer s.locks.Unlock(payment.TabID)

	if payment.Status.IsTerminal() {
		return nil, apperror.NewAlreadySettled(paymentID)
	}

	target := enum.PaymentStatusFailed
	if success {
		target = enum.PaymentStatusSuccess
	}

	ok, err := s.paymentRepo.SettleIf(ctx, paymentID, target, providerRef, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewAlreadySettled(paymentID)
	}

	// Only a successful settlement changes the owed amount.
	if success {
		if err := s.reevaluateLocked(ctx, payment.TabID, now); err != nil {
			return nil, err
		}
	}

	return s.paymentRepo.GetByID(ctx, paymentID)
}

// ApplyPaymentOutcome is the entry point for the payment gateway
// collaborator. Redelivery of the same outcome is an idempotent no-op;
// delivery of a conflicting outcome for an already-settled payment is an
// AlreadySettled error.
func (s *LedgerService) ApplyPaymentOutcome(ctx context.Context, paymentID uuid.UUID, success bool, providerRef string, now time.Time) error {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return apperror.NewNotFoundError("Payment")
	}

	target := enum.PaymentStatusFailed
	if success {
		target = enum.PaymentStatusSuccess
	}
	if payment.Status == target {
		return nil
	}

	_, err = s.SettlePayment(ctx, paymentID, success, &providerRef, now)
	return err
}

// OrdersForTab lists a tab's orders
func (s *LedgerService) OrdersForTab(ctx context.Context, tabID uuid.UUID) ([]entity.Order, error) {
	return s.orderRepo.ListByTab(ctx, tabID)
}

// PaymentsForTab lists a tab's payments
func (s *LedgerService) PaymentsForTab(ctx context.Context, tabID uuid.UUID) ([]entity.Payment, error) {
	return s.paymentRepo.ListByTab(ctx, tabID)
}

// reevaluateLocked delegates to the tab state machine while the tab lock is
// already held by the ledger mutation.
func (s *LedgerService) reevaluateLocked(ctx context.Context, tabID uuid.UUID, now time.Time) error {
	_, err := s.tabs.reevaluateLocked(ctx, tabID, now, "ledger")
	return err
}
