package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/repository"
	"github.com/billoapp/tabz/pkg/keylock"
	"github.com/google/uuid"
)

// ReconciliationService repairs ledgers polluted by the legacy balance
// correction mechanism, which inserted synthetic payments instead of keeping
// the balance purely derived. Running it twice in a row is safe: the second
// run finds nothing to remove and changes nothing.
type ReconciliationService struct {
	tabRepo     repository.TabRepository
	paymentRepo repository.PaymentRepository
	tabs        *TabService
	locks       *keylock.Registry
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	tabRepo repository.TabRepository,
	paymentRepo repository.PaymentRepository,
	tabs *TabService,
	locks *keylock.Registry,
) *ReconciliationService {
	return &ReconciliationService{
		tabRepo:     tabRepo,
		paymentRepo: paymentRepo,
		tabs:        tabs,
		locks:       locks,
	}
}

// ReconciliationReport summarizes one reconciliation run
type ReconciliationReport struct {
	TabsExamined       int      `json:"tabs_examined"`
	CorrectionsRemoved int64    `json:"corrections_removed"`
	StatusChanges      int      `json:"status_changes"`
	NegativeBalances   []string `json:"negative_balances,omitempty"`
}

// Run removes synthetic correction payments and re-derives every active
// tab's status from the cleaned ledger. Order and payment terminal statuses
// are never modified; only the derived tab status can change.
func (s *ReconciliationService) Run(ctx context.Context, venueID *uuid.UUID, now time.Time) (*ReconciliationReport, error) {
	removed, err := s.paymentRepo.DeleteByReference(ctx, entity.LegacyCorrectionRef, venueID)
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		log.Printf("Reconciliation removed %d legacy correction payments", removed)
	}

	tabs, err := s.tabRepo.ListActive(ctx, venueID)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TabsExamined:       len(tabs),
		CorrectionsRemoved: removed,
	}

	for i := range tabs {
		tabID := tabs[i].ID

		s.locks.Lock(tabID)
		changed, err := s.tabs.reevaluateLocked(ctx, tabID, now, "reconciliation")
		s.locks.Unlock(tabID)

		if err != nil {
			// A negative balance after corrections are stripped means real
			// ledger damage; record it for the operator and keep going.
			report.NegativeBalances = append(report.NegativeBalances, fmt.Sprintf("tab %s: %v", tabID, err))
			continue
		}
		if changed {
			report.StatusChanges++
		}
	}

	return report, nil
}
