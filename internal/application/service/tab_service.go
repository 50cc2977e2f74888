package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/billoapp/tabz/internal/domain/repository"
	"github.com/billoapp/tabz/internal/domain/schedule"
	infraRepo "github.com/billoapp/tabz/internal/infrastructure/repository"
	"github.com/billoapp/tabz/pkg/apperror"
	"github.com/billoapp/tabz/pkg/keylock"
	"github.com/billoapp/tabz/pkg/pagination"
	"github.com/billoapp/tabz/pkg/utils"
	"github.com/google/uuid"
)

// TabService owns the tab lifecycle: Open -> Overdue -> Closed. It is the
// single balance/status computation entry point, so staff-facing and
// customer-facing views can never drift apart.
type TabService struct {
	tabRepo     repository.TabRepository
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	auditRepo   repository.AuditRepository
	evaluator   *schedule.Evaluator
	locks       *keylock.Registry
}

// NewTabService creates a new tab service
func NewTabService(
	tabRepo repository.TabRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	auditRepo repository.AuditRepository,
	evaluator *schedule.Evaluator,
	locks *keylock.Registry,
) *TabService {
	return &TabService{
		tabRepo:     tabRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		evaluator:   evaluator,
		locks:       locks,
	}
}

// TabStatusResult is the semantic status view exposed to collaborators
type TabStatusResult struct {
	TabID            uuid.UUID      `json:"tab_id"`
	Status           enum.TabStatus `json:"status"`
	Balance          int64          `json:"-"` // Stored in cents, excluded from JSON
	MovedToOverdueAt *time.Time     `json:"moved_to_overdue_at,omitempty"`
	OverdueReason    *string        `json:"overdue_reason,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (r TabStatusResult) MarshalJSON() ([]byte, error) {
	type Alias TabStatusResult
	return json.Marshal(&struct {
		Alias
		Balance float64 `json:"balance"`
	}{
		Alias:   Alias(r),
		Balance: float64(r.Balance) / 100,
	})
}

// OrderGate says whether a tab may accept new orders, and why not
type OrderGate struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Open creates a new tab at a venue
func (s *TabService) Open(ctx context.Context, venueID uuid.UUID, customerName string, openedAt time.Time) (*entity.Tab, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	tab := &entity.Tab{
		TenantID:     tenantID,
		VenueID:      venueID,
		TabNo:        utils.GenerateTabNo(),
		CustomerName: customerName,
		Status:       enum.TabStatusOpen,
		OpenedAt:     openedAt,
	}

	if err := s.tabRepo.Create(ctx, tab); err != nil {
		return nil, err
	}
	return tab, nil
}

// Get retrieves a tab by ID
func (s *TabService) Get(ctx context.Context, tabID uuid.UUID) (*entity.Tab, error) {
	tab, err := s.tabRepo.GetByID(ctx, tabID)
	if err != nil {
		return nil, err
	}
	if tab == nil {
		return nil, apperror.NewNotFoundError("Tab")
	}
	return tab, nil
}

// List lists tabs with filtering
func (s *TabService) List(ctx context.Context, params *repository.TabFilterParams) (*pagination.PaginatedResult[entity.Tab], error) {
	tabs, total, err := s.tabRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(tabs, pag), nil
}

// Balance computes the authoritative outstanding balance live from Confirmed
// orders and Success payments only. It is never cached. A negative result is
// an invariant violation and is surfaced, never clamped.
func (s *TabService) Balance(ctx context.Context, tabID uuid.UUID) (int64, error) {
	balance, _, _, err := s.balanceDetail(ctx, tabID)
	return balance, err
}

func (s *TabService) balanceDetail(ctx context.Context, tabID uuid.UUID) (balance, orders, payments int64, err error) {
	orders, err = s.orderRepo.SumTotals(ctx, tabID, enum.OrderStatusConfirmed)
	if err != nil {
		return 0, 0, 0, err
	}
	payments, err = s.paymentRepo.SumAmounts(ctx, tabID, enum.PaymentStatusSuccess)
	if err != nil {
		return 0, 0, 0, err
	}

	balance = orders - payments
	if balance < 0 {
		return balance, orders, payments, apperror.NewNegativeBalance(tabID, balance, orders, payments)
	}
	return balance, orders, payments, nil
}

// Status returns the tab's status together with its live balance
func (s *TabService) Status(ctx context.Context, tabID uuid.UUID) (*TabStatusResult, error) {
	tab, err := s.Get(ctx, tabID)
	if err != nil {
		return nil, err
	}

	balance, err := s.Balance(ctx, tabID)
	if err != nil {
		return nil, err
	}

	return &TabStatusResult{
		TabID:            tab.ID,
		Status:           tab.Status,
		Balance:          balance,
		MovedToOverdueAt: tab.MovedToOverdueAt,
		OverdueReason:    tab.OverdueReason,
	}, nil
}

// CanAcceptOrders reports whether new orders may be placed on the tab
func (s *TabService) CanAcceptOrders(ctx context.Context, tabID uuid.UUID) (*OrderGate, error) {
	tab, err := s.Get(ctx, tabID)
	if err != nil {
		return nil, err
	}
	gate := orderGateFor(tab)
	return &gate, nil
}

func orderGateFor(tab *entity.Tab) OrderGate {
	switch tab.Status {
	case enum.TabStatusOverdue:
		return OrderGate{Allowed: false, Reason: "outstanding balance must be settled first"}
	case enum.TabStatusClosed:
		return OrderGate{Allowed: false, Reason: "tab is closed"}
	default:
		return OrderGate{Allowed: true}
	}
}

// Close manually closes a tab on behalf of a staff member. Closure is
// permitted regardless of balance, but the outstanding balance is recorded
// for audit. Closing an already-closed tab is an InvalidTransition.
func (s *TabService) Close(ctx context.Context, tabID uuid.UUID, closedBy string, now time.Time) (*entity.Tab, error) {
	s.locks.Lock(tabID)
	defer s.locks.Unlock(tabID)

	tab, err := s.Get(ctx, tabID)
	if err != nil {
		return nil, err
	}
	if tab.Status == enum.TabStatusClosed {
		return nil, apperror.NewInvalidTransition("tab", tab.Status.String(), enum.TabStatusClosed.String())
	}

	// Balance is recorded even when negative; closure must not hide a
	// corrupted ledger.
	balance, _, _, balErr := s.balanceDetail(ctx, tabID)
	if balErr != nil && !apperror.IsAppError(balErr) {
		return nil, balErr
	}

	ok, err := s.tabRepo.UpdateStatusIf(ctx, tabID, tab.Status, map[string]interface{}{
		"status":    enum.TabStatusClosed,
		"closed_at": now,
		"closed_by": closedBy,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewInvalidTransition("tab", tab.Status.String(), enum.TabStatusClosed.String())
	}

	s.audit(ctx, tab, "manual", tab.Status, enum.TabStatusClosed, balance, balance,
		fmt.Sprintf("closed by %s with outstanding balance of %d cents", closedBy, balance))

	return s.Get(ctx, tabID)
}

// Reevaluate re-runs the status transition rules for one tab at the given
// instant. Called synchronously after every balance-affecting ledger event
// and by the periodic sweep.
func (s *TabService) Reevaluate(ctx context.Context, tabID uuid.UUID, now time.Time, source string) error {
	s.locks.Lock(tabID)
	defer s.locks.Unlock(tabID)

	_, err := s.reevaluateLocked(ctx, tabID, now, source)
	return err
}

// reevaluateLocked applies the transition rules; the caller must hold the
// tab lock. Returns whether a transition was applied.
//
// Rules, in order:
//   - Open, balance > 0, venue closed      -> Overdue (Confirmed balance
//     only; Pending orders never trigger overdue)
//   - Open/Overdue, balance <= 0, no Pending orders, venue closed -> Closed
//     by "system" (Pending orders may still become billable, so they block
//     auto-close)
//   - Overdue, balance <= 0 otherwise      -> Open (the overdue mark no
//     longer applies; partial payment alone never clears it)
func (s *TabService) reevaluateLocked(ctx context.Context, tabID uuid.UUID, now time.Time, source string) (bool, error) {
	tab, err := s.tabRepo.GetWithVenue(ctx, tabID)
	if err != nil {
		return false, err
	}
	if tab == nil {
		return false, apperror.NewNotFoundError("Tab")
	}
	if tab.Status == enum.TabStatusClosed {
		return false, nil
	}

	balance, _, _, err := s.balanceDetail(ctx, tabID)
	if err != nil {
		return false, err
	}

	pending, err := s.orderRepo.CountByStatus(ctx, tabID, enum.OrderStatusPending)
	if err != nil {
		return false, err
	}

	open, err := s.evaluator.IsOpenAt(tab.Venue.Hours, tab.Venue.Timezone, now)
	if err != nil {
		return false, err
	}

	switch tab.Status {
	case enum.TabStatusOpen:
		if balance > 0 && !open {
			reason := overdueReasonFor(balance, tab.Venue.Name)
			ok, err := s.tabRepo.UpdateStatusIf(ctx, tabID, enum.TabStatusOpen, map[string]interface{}{
				"status":              enum.TabStatusOverdue,
				"moved_to_overdue_at": now,
				"overdue_reason":      reason,
			})
			if err != nil || !ok {
				return false, err
			}
			s.audit(ctx, tab, source, enum.TabStatusOpen, enum.TabStatusOverdue, balance, balance, reason)
			return true, nil
		}
		if balance <= 0 && pending == 0 && !open {
			return s.autoClose(ctx, tab, source, balance, now)
		}

	case enum.TabStatusOverdue:
		if balance <= 0 {
			if pending == 0 && !open {
				return s.autoClose(ctx, tab, source, balance, now)
			}
			ok, err := s.tabRepo.UpdateStatusIf(ctx, tabID, enum.TabStatusOverdue, map[string]interface{}{
				"status":              enum.TabStatusOpen,
				"moved_to_overdue_at": nil,
				"overdue_reason":      nil,
			})
			if err != nil || !ok {
				return false, err
			}
			s.audit(ctx, tab, source, enum.TabStatusOverdue, enum.TabStatusOpen, balance, balance,
				"overdue mark no longer applies, balance settled")
			return true, nil
		}
	}

	return false, nil
}

func (s *TabService) autoClose(ctx context.Context, tab *entity.Tab, source string, balance int64, now time.Time) (bool, error) {
	ok, err := s.tabRepo.UpdateStatusIf(ctx, tab.ID, tab.Status, map[string]interface{}{
		"status":    enum.TabStatusClosed,
		"closed_at": now,
		"closed_by": entity.ClosedBySystem,
	})
	if err != nil || !ok {
		return false, err
	}
	s.audit(ctx, tab, source, tab.Status, enum.TabStatusClosed, balance, balance,
		"auto-closed, settled and outside business hours")
	return true, nil
}

func overdueReasonFor(balance int64, venueName string) string {
	return fmt.Sprintf("outstanding balance of %d cents past closing time at %s", balance, venueName)
}

func (s *TabService) audit(ctx context.Context, tab *entity.Tab, source string, from, to enum.TabStatus, oldBalance, newBalance int64, note string) {
	record := &entity.AuditRecord{
		TenantID:   tab.TenantID,
		VenueID:    tab.VenueID,
		TabID:      tab.ID,
		Source:     source,
		OldStatus:  from,
		NewStatus:  to,
		OldBalance: oldBalance,
		NewBalance: newBalance,
		Note:       note,
	}
	if err := s.auditRepo.Create(ctx, record); err != nil {
		log.Printf("Warning: failed to write audit record for tab %s: %v", tab.ID, err)
	}
}

// AuditTrail returns the audit records for a tab
func (s *TabService) AuditTrail(ctx context.Context, tabID uuid.UUID) ([]entity.AuditRecord, error) {
	return s.auditRepo.ListByTab(ctx, tabID)
}

// SweepReport summarizes one overdue sweep run
type SweepReport struct {
	TabsExamined int      `json:"tabs_examined"`
	Transitions  int      `json:"transitions"`
	Errors       []string `json:"errors,omitempty"`
}

// RunOverdueSweep re-evaluates every Open/Overdue tab, optionally restricted
// to one venue. Each tab is locked individually; no lock ever spans more
// than one tab, so unrelated venues are never serialized.
func (s *TabService) RunOverdueSweep(ctx context.Context, venueID *uuid.UUID, now time.Time) (*SweepReport, error) {
	tabs, err := s.tabRepo.ListActive(ctx, venueID)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{TabsExamined: len(tabs)}
	for i := range tabs {
		tabID := tabs[i].ID

		s.locks.Lock(tabID)
		changed, err := s.reevaluateLocked(ctx, tabID, now, "sweep")
		s.locks.Unlock(tabID)

		if err != nil {
			// Invariant violations on one tab must not stop the fleet-wide
			// sweep; they are reported for the operator instead.
			report.Errors = append(report.Errors, fmt.Sprintf("tab %s: %v", tabID, err))
			continue
		}
		if changed {
			report.Transitions++
		}
	}

	if len(report.Errors) > 0 {
		log.Printf("Overdue sweep finished with %d errors over %d tabs", len(report.Errors), report.TabsExamined)
	}
	return report, nil
}
