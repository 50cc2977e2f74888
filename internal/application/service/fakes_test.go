package service

import (
	"context"
	"sync"
	"time"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/billoapp/tabz/internal/domain/repository"
	"github.com/billoapp/tabz/internal/domain/schedule"
	"github.com/billoapp/tabz/pkg/keylock"
	"github.com/google/uuid"
)

// In-memory repository fakes. They mirror the conditional-update semantics of
// the GORM implementations so the services exercise the same compare-and-set
// paths they use in production.

type memTabRepo struct {
	mu     sync.Mutex
	tabs   map[uuid.UUID]*entity.Tab
	venues map[uuid.UUID]*entity.Venue
}

func newMemTabRepo() *memTabRepo {
	return &memTabRepo{
		tabs:   make(map[uuid.UUID]*entity.Tab),
		venues: make(map[uuid.UUID]*entity.Venue),
	}
}

func (r *memTabRepo) Create(_ context.Context, tab *entity.Tab) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tab.ID == uuid.Nil {
		tab.ID = uuid.New()
	}
	cp := *tab
	r.tabs[tab.ID] = &cp
	return nil
}

func (r *memTabRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tab, ok := r.tabs[id]
	if !ok {
		return nil, nil
	}
	cp := *tab
	return &cp, nil
}

func (r *memTabRepo) GetWithVenue(_ context.Context, id uuid.UUID) (*entity.Tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tab, ok := r.tabs[id]
	if !ok {
		return nil, nil
	}
	cp := *tab
	if venue, ok := r.venues[tab.VenueID]; ok {
		cp.Venue = *venue
	}
	return &cp, nil
}

func (r *memTabRepo) List(_ context.Context, params *repository.TabFilterParams) ([]entity.Tab, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Tab
	for _, tab := range r.tabs {
		if params.VenueID != nil && tab.VenueID != *params.VenueID {
			continue
		}
		if params.Status != nil && tab.Status != *params.Status {
			continue
		}
		out = append(out, *tab)
	}
	return out, int64(len(out)), nil
}

func (r *memTabRepo) ListActive(_ context.Context, venueID *uuid.UUID) ([]entity.Tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Tab
	for _, tab := range r.tabs {
		if tab.Status == enum.TabStatusClosed {
			continue
		}
		if venueID != nil && tab.VenueID != *venueID {
			continue
		}
		out = append(out, *tab)
	}
	return out, nil
}

func (r *memTabRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, expected enum.TabStatus, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tab, ok := r.tabs[id]
	if !ok || tab.Status != expected {
		return false, nil
	}
	for col, val := range updates {
		switch col {
		case "status":
			tab.Status = val.(enum.TabStatus)
		case "moved_to_overdue_at":
			tab.MovedToOverdueAt = timePtrOf(val)
		case "overdue_reason":
			tab.OverdueReason = stringPtrOf(val)
		case "closed_at":
			tab.ClosedAt = timePtrOf(val)
		case "closed_by":
			tab.ClosedBy = stringPtrOf(val)
		}
	}
	return true, nil
}

func (r *memTabRepo) addVenue(venue *entity.Venue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if venue.ID == uuid.Nil {
		venue.ID = uuid.New()
	}
	r.venues[venue.ID] = venue
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*entity.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*entity.Order)}
}

func (r *memOrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *memOrderRepo) CreateItems(_ context.Context, _ []entity.OrderItem) error {
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

func (r *memOrderRepo) ListByTab(_ context.Context, tabID uuid.UUID) ([]entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Order
	for _, order := range r.orders {
		if order.TabID == tabID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *memOrderRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, expected, target enum.OrderStatus, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.Status != expected {
		return false, nil
	}
	order.Status = target
	for col, val := range updates {
		switch col {
		case "confirmed_at":
			order.ConfirmedAt = timePtrOf(val)
		case "cancelled_at":
			order.CancelledAt = timePtrOf(val)
		}
	}
	return true, nil
}

func (r *memOrderRepo) SumTotals(_ context.Context, tabID uuid.UUID, status enum.OrderStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, order := range r.orders {
		if order.TabID == tabID && order.Status == status {
			total += order.Total
		}
	}
	return total, nil
}

func (r *memOrderRepo) CountByStatus(_ context.Context, tabID uuid.UUID, status enum.OrderStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, order := range r.orders {
		if order.TabID == tabID && order.Status == status {
			count++
		}
	}
	return count, nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*entity.Payment
	tabs     *memTabRepo
}

func newMemPaymentRepo(tabs *memTabRepo) *memPaymentRepo {
	return &memPaymentRepo{
		payments: make(map[uuid.UUID]*entity.Payment),
		tabs:     tabs,
	}
}

func (r *memPaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	cp := *payment
	r.payments[payment.ID] = &cp
	return nil
}

func (r *memPaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *payment
	return &cp, nil
}

func (r *memPaymentRepo) ListByTab(_ context.Context, tabID uuid.UUID) ([]entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Payment
	for _, payment := range r.payments {
		if payment.TabID == tabID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) SettleIf(_ context.Context, id uuid.UUID, target enum.PaymentStatus, providerRef *string, settledAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok || payment.Status != enum.PaymentStatusPending {
		return false, nil
	}
	payment.Status = target
	payment.ProviderRef = providerRef
	payment.SettledAt = &settledAt
	return true, nil
}

func (r *memPaymentRepo) SumAmounts(_ context.Context, tabID uuid.UUID, status enum.PaymentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, payment := range r.payments {
		if payment.TabID == tabID && payment.Status == status {
			total += payment.Amount
		}
	}
	return total, nil
}

func (r *memPaymentRepo) DeleteByReference(_ context.Context, reference string, venueID *uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, payment := range r.payments {
		if payment.Reference != reference {
			continue
		}
		if venueID != nil {
			r.tabs.mu.Lock()
			tab, ok := r.tabs.tabs[payment.TabID]
			r.tabs.mu.Unlock()
			if !ok || tab.VenueID != *venueID {
				continue
			}
		}
		delete(r.payments, id)
		removed++
	}
	return removed, nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	records []entity.AuditRecord
}

func newMemAuditRepo() *memAuditRepo {
	return &memAuditRepo{}
}

func (r *memAuditRepo) Create(_ context.Context, record *entity.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *record)
	return nil
}

func (r *memAuditRepo) ListByTab(_ context.Context, tabID uuid.UUID) ([]entity.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.AuditRecord
	for _, record := range r.records {
		if record.TabID == tabID {
			out = append(out, record)
		}
	}
	return out, nil
}

func timePtrOf(val interface{}) *time.Time {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	}
	return nil
}

func stringPtrOf(val interface{}) *string {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case string:
		return &v
	case *string:
		return v
	}
	return nil
}

// testEnv wires the fakes into real services the way main does
type testEnv struct {
	tabRepo     *memTabRepo
	orderRepo   *memOrderRepo
	paymentRepo *memPaymentRepo
	auditRepo   *memAuditRepo
	tabs        *TabService
	ledger      *LedgerService
	recon       *ReconciliationService
}

func newTestEnv() *testEnv {
	tabRepo := newMemTabRepo()
	orderRepo := newMemOrderRepo()
	paymentRepo := newMemPaymentRepo(tabRepo)
	auditRepo := newMemAuditRepo()

	evaluator := schedule.NewEvaluator(schedule.NewResolver())
	locks := keylock.NewRegistry()

	tabs := NewTabService(tabRepo, orderRepo, paymentRepo, auditRepo, evaluator, locks)
	ledger := NewLedgerService(tabRepo, orderRepo, paymentRepo, tabs, locks)
	recon := NewReconciliationService(tabRepo, paymentRepo, tabs, locks)

	return &testEnv{
		tabRepo:     tabRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		tabs:        tabs,
		ledger:      ledger,
		recon:       recon,
	}
}

// seedVenue registers a venue with a simple overnight bar schedule unless
// hours are supplied
func (e *testEnv) seedVenue(hours entity.HoursConfig) *entity.Venue {
	venue := &entity.Venue{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Name:     "Mama Tess Bar",
		Timezone: "Africa/Nairobi",
		Hours:    hours,
	}
	e.tabRepo.addVenue(venue)
	return venue
}

func (e *testEnv) seedTab(venue *entity.Venue, status enum.TabStatus) *entity.Tab {
	tab := &entity.Tab{
		ID:           uuid.New(),
		TenantID:     venue.TenantID,
		VenueID:      venue.ID,
		TabNo:        "TAB-" + uuid.New().String()[:8],
		CustomerName: "Wanjiku",
		Status:       status,
		OpenedAt:     time.Now(),
	}
	_ = e.tabRepo.Create(context.Background(), tab)
	return tab
}

func overnightHours() entity.HoursConfig {
	return entity.HoursConfig{
		Mode:          enum.HoursModeSimple,
		Open:          "09:30",
		Close:         "02:00",
		ClosesNextDay: true,
	}
}

// nairobiTime builds an instant at Nairobi wall-clock time
func nairobiTime(hour, minute int) time.Time {
	loc, _ := time.LoadLocation("Africa/Nairobi")
	return time.Date(2026, time.March, 10, hour, minute, 0, 0, loc)
}
