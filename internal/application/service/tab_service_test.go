package service

import (
	"context"
	"testing"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/billoapp/tabz/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedOrder(tab *entity.Tab, total int64) *entity.Order {
	return &entity.Order{
		TenantID: tab.TenantID,
		TabID:    tab.ID,
		Status:   enum.OrderStatusConfirmed,
		Total:    total,
	}
}

func successPayment(tab *entity.Tab, amount int64) *entity.Payment {
	return &entity.Payment{
		TenantID: tab.TenantID,
		TabID:    tab.ID,
		Amount:   amount,
		Method:   enum.PaymentMethodCash,
		Status:   enum.PaymentStatusSuccess,
	}
}

func TestBalanceCountsOnlyConfirmedAndSuccessful(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusOpen)
	ctx := context.Background()

	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(tab, 1800)))
	require.NoError(t, env.orderRepo.Create(ctx, &entity.Order{
		TabID: tab.ID, Status: enum.OrderStatusPending, Total: 5000,
	}))
	require.NoError(t, env.orderRepo.Create(ctx, &entity.Order{
		TabID: tab.ID, Status: enum.OrderStatusCancelled, Total: 1400,
	}))

	require.NoError(t, env.paymentRepo.Create(ctx, successPayment(tab, 300)))
	require.NoError(t, env.paymentRepo.Create(ctx, &entity.Payment{
		TabID: tab.ID, Amount: 9999, Status: enum.PaymentStatusPending,
	}))
	require.NoError(t, env.paymentRepo.Create(ctx, &entity.Payment{
		TabID: tab.ID, Amount: 9999, Status: enum.PaymentStatusFailed,
	}))

	balance, err := env.tabs.Balance(ctx, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), balance)
}

func TestNegativeBalanceSurfacedNotClamped(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusOpen)
	ctx := context.Background()

	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(tab, 1000)))
	require.NoError(t, env.paymentRepo.Create(ctx, successPayment(tab, 1500)))

	balance, err := env.tabs.Balance(ctx, tab.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
	assert.Equal(t, int64(-500), balance, "the computed value must be reported, not zeroed")
}

func TestManualCloseAlwaysPermitted(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusOverdue)
	ctx := context.Background()

	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(tab, 2500)))

	closed, err := env.tabs.Close(ctx, tab.ID, "jane", nairobiTime(23, 0))
	require.NoError(t, err)
	assert.Equal(t, enum.TabStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, "jane", *closed.ClosedBy)

	records, err := env.tabs.AuditTrail(ctx, tab.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2500), records[0].NewBalance, "outstanding balance is recorded on closure")
}

func TestCloseClosedTabIsInvalidTransition(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusClosed)

	_, err := env.tabs.Close(context.Background(), tab.ID, "jane", nairobiTime(23, 0))
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, 409, appErr.Code)
}

func TestOpenTabWithDebtGoesOverdueAfterClose(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusOpen)
	ctx := context.Background()

	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(tab, 1800)))

	// 05:00 is outside the 09:30-02:00 overnight window
	require.NoError(t, env.tabs.Reevaluate(ctx, tab.ID, nairobiTime(5, 0), "sweep"))

	got, err := env.tabs.Get(ctx, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TabStatusOverdue, got.Status)
	assert.NotNil(t, got.MovedToOverdueAt)
	assert.NotNil(t, got.OverdueReason)
}

func TestOpenTabWithDebtStaysOpenDuringBusinessHours(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusOpen)
	ctx := context.Background()

	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(tab, 1800)))

	for _, at := range []struct {
		hour, minute int
	}{
		{23, 0}, // late evening, before midnight
		{1, 30}, // past midnight but before the 02:00 close
		{10, 0}, // mid-morning
	} {
		require.NoError(t, env.tabs.Reevaluate(ctx, tab.ID, nairobiTime(at.hour, at.minute), "sweep"))

		got, err := env.tabs.Get(ctx, tab.ID)
		require.NoError(t, err)
		assert.Equal(t, enum.TabStatusOpen, got.Status, "tab must stay open at %02d:%02d", at.hour, at.minute)
	}
}

func TestPendingOrdersNeverTriggerOverdue(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusOpen)
	ctx := context.Background()

	require.NoError(t, env.orderRepo.Create(ctx, &entity.Order{
		TabID: tab.ID, Status: enum.OrderStatusPending, Total: 5000,
	}))

	require.NoError(t, env.tabs.Reevaluate(ctx, tab.ID, nairobiTime(5, 0), "sweep"))

	got, err := env.tabs.Get(ctx, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TabStatusOpen, got.Status, "pending orders carry no confirmed balance")
}

func TestSettledTabAutoClosesOutsideHours(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusOpen)
	ctx := context.Background()

	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(tab, 1800)))
	require.NoError(t, env.paymentRepo.Create(ctx, successPayment(tab, 1800)))

	require.NoError(t, env.tabs.Reevaluate(ctx, tab.ID, nairobiTime(5, 0), "sweep"))

	got, err := env.tabs.Get(ctx, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TabStatusClosed, got.Status)
	require.NotNil(t, got.ClosedBy)
	assert.Equal(t, entity.ClosedBySystem, *got.ClosedBy)
}

func TestSettledTabWithPendingOrdersIsNotAutoClosed(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusOpen)
	ctx := context.Background()

	require.NoError(t, env.orderRepo.Create(ctx, &entity.Order{
		TabID: tab.ID, Status: enum.OrderStatusPending, Total: 700,
	}))

	require.NoError(t, env.tabs.Reevaluate(ctx, tab.ID, nairobiTime(5, 0), "sweep"))

	got, err := env.tabs.Get(ctx, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TabStatusOpen, got.Status, "pending orders may still become billable")
}

func TestOverdueRevertsToOpenOnceSettled(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusOverdue)
	ctx := context.Background()

	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(tab, 1800)))
	require.NoError(t, env.paymentRepo.Create(ctx, successPayment(tab, 1800)))

	// During business hours the tab reverts to Open instead of closing
	require.NoError(t, env.tabs.Reevaluate(ctx, tab.ID, nairobiTime(20, 0), "ledger"))

	got, err := env.tabs.Get(ctx, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TabStatusOpen, got.Status)
	assert.Nil(t, got.MovedToOverdueAt)
	assert.Nil(t, got.OverdueReason)
}

func TestPartialPaymentDoesNotClearOverdue(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusOverdue)
	ctx := context.Background()

	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(tab, 1800)))
	require.NoError(t, env.paymentRepo.Create(ctx, successPayment(tab, 1000)))

	require.NoError(t, env.tabs.Reevaluate(ctx, tab.ID, nairobiTime(20, 0), "ledger"))

	got, err := env.tabs.Get(ctx, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TabStatusOverdue, got.Status)
}

func TestOrderGateReasons(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	ctx := context.Background()

	open := env.seedTab(venue, enum.TabStatusOpen)
	overdue := env.seedTab(venue, enum.TabStatusOverdue)
	closed := env.seedTab(venue, enum.TabStatusClosed)

	gate, err := env.tabs.CanAcceptOrders(ctx, open.ID)
	require.NoError(t, err)
	assert.True(t, gate.Allowed)

	gate, err = env.tabs.CanAcceptOrders(ctx, overdue.ID)
	require.NoError(t, err)
	assert.False(t, gate.Allowed)
	assert.Contains(t, gate.Reason, "settled")

	gate, err = env.tabs.CanAcceptOrders(ctx, closed.ID)
	require.NoError(t, err)
	assert.False(t, gate.Allowed)
	assert.Contains(t, gate.Reason, "closed")
}

func TestOverdueSweepReport(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	ctx := context.Background()

	indebted := env.seedTab(venue, enum.TabStatusOpen)
	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(indebted, 1800)))

	settled := env.seedTab(venue, enum.TabStatusOpen)
	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(settled, 500)))
	require.NoError(t, env.paymentRepo.Create(ctx, successPayment(settled, 500)))

	env.seedTab(venue, enum.TabStatusClosed) // excluded from the sweep

	report, err := env.tabs.RunOverdueSweep(ctx, nil, nairobiTime(5, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, report.TabsExamined)
	assert.Equal(t, 2, report.Transitions)
	assert.Empty(t, report.Errors)

	got, _ := env.tabs.Get(ctx, indebted.ID)
	assert.Equal(t, enum.TabStatusOverdue, got.Status)
	got, _ = env.tabs.Get(ctx, settled.ID)
	assert.Equal(t, enum.TabStatusClosed, got.Status)
}

func TestSweepCollectsPerTabErrors(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	ctx := context.Background()

	corrupted := env.seedTab(venue, enum.TabStatusOpen)
	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(corrupted, 100)))
	require.NoError(t, env.paymentRepo.Create(ctx, successPayment(corrupted, 900)))

	healthy := env.seedTab(venue, enum.TabStatusOpen)
	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(healthy, 1800)))

	report, err := env.tabs.RunOverdueSweep(ctx, nil, nairobiTime(5, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, report.TabsExamined)
	assert.Equal(t, 1, report.Transitions, "healthy tab still transitions")
	assert.Len(t, report.Errors, 1, "corrupted tab is reported, not fatal")

	got, _ := env.tabs.Get(ctx, healthy.ID)
	assert.Equal(t, enum.TabStatusOverdue, got.Status)
}
