package service

import (
	"context"
	"testing"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyCorrection(tab *entity.Tab, amount int64) *entity.Payment {
	return &entity.Payment{
		TenantID:  tab.TenantID,
		TabID:     tab.ID,
		Amount:    amount,
		Method:    enum.PaymentMethodOther,
		Status:    enum.PaymentStatusSuccess,
		Reference: entity.LegacyCorrectionRef,
	}
}

func TestReconciliationRemovesCorrectionsAndRederivesStatus(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusClosed)
	ctx := context.Background()

	// The legacy backfill "settled" this tab with a synthetic payment and it
	// was auto-closed on that false zero balance. The real payment never came.
	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(tab, 1800)))
	require.NoError(t, env.paymentRepo.Create(ctx, legacyCorrection(tab, 1800)))

	// An open tab with the same pollution, still active
	active := env.seedTab(venue, enum.TabStatusOpen)
	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(active, 2500)))
	require.NoError(t, env.paymentRepo.Create(ctx, legacyCorrection(active, 2500)))

	report, err := env.recon.Run(ctx, nil, nairobiTime(5, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.CorrectionsRemoved)
	assert.Equal(t, 1, report.TabsExamined, "closed tabs are not re-evaluated")
	assert.Equal(t, 1, report.StatusChanges)

	// With the correction stripped, the active tab owes its full bill and the
	// venue is shut, so it is now Overdue.
	got, err := env.tabs.Get(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TabStatusOverdue, got.Status)

	balance, err := env.tabs.Balance(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), balance)
}

func TestReconciliationIsIdempotent(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusOpen)
	ctx := context.Background()

	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(tab, 1800)))
	require.NoError(t, env.paymentRepo.Create(ctx, legacyCorrection(tab, 500)))

	first, err := env.recon.Run(ctx, nil, nairobiTime(5, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.CorrectionsRemoved)
	assert.Equal(t, 1, first.StatusChanges)

	second, err := env.recon.Run(ctx, nil, nairobiTime(5, 0))
	require.NoError(t, err)
	assert.Zero(t, second.CorrectionsRemoved, "second run finds nothing to remove")
	assert.Zero(t, second.StatusChanges, "second run is a fixed point")
}

func TestReconciliationScopedToVenue(t *testing.T) {
	env := newTestEnv()
	venueA := env.seedVenue(overnightHours())
	venueB := env.seedVenue(overnightHours())
	ctx := context.Background()

	tabA := env.seedTab(venueA, enum.TabStatusOpen)
	require.NoError(t, env.paymentRepo.Create(ctx, legacyCorrection(tabA, 500)))

	tabB := env.seedTab(venueB, enum.TabStatusOpen)
	require.NoError(t, env.paymentRepo.Create(ctx, legacyCorrection(tabB, 700)))

	report, err := env.recon.Run(ctx, &venueA.ID, nairobiTime(20, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.CorrectionsRemoved, "only venue A's corrections are touched")
	assert.Equal(t, 1, report.TabsExamined)

	payments, err := env.ledger.PaymentsForTab(ctx, tabB.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1, "venue B's ledger is untouched")
}

func TestReconciliationReportsRealNegativeBalances(t *testing.T) {
	env := newTestEnv()
	venue := env.seedVenue(overnightHours())
	tab := env.seedTab(venue, enum.TabStatusOpen)
	ctx := context.Background()

	// Genuine damage: a real successful payment exceeds the confirmed orders
	require.NoError(t, env.orderRepo.Create(ctx, confirmedOrder(tab, 1000)))
	require.NoError(t, env.paymentRepo.Create(ctx, successPayment(tab, 1500)))

	report, err := env.recon.Run(ctx, nil, nairobiTime(20, 0))
	require.NoError(t, err)
	assert.Len(t, report.NegativeBalances, 1)
	assert.Zero(t, report.StatusChanges)

	// Terminal ledger statuses are never rewritten by reconciliation
	payments, err := env.ledger.PaymentsForTab(ctx, tab.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, enum.PaymentStatusSuccess, payments[0].Status)
}
