package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"it-inventory/internal/model"
)

func TestDashboard(t *testing.T) {
	store := newMemStore()
	ledger := NewLedgerService(store, store.txRepo(), &fakeNotifier{}, &fakeHub{}, LedgerPolicy{}, zap.NewNop())
	mouse := store.seed("Mouse Sem Fio Logitech", "Periféricos", 12, 5)
	store.seed("Teclado Mecânico Redragon", "Periféricos", 4, 5)
	ctx := context.Background()

	if _, err := ledger.ApplyTransaction(ctx, out(mouse.ID, 2), model.DefaultSettings(), admin); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := ledger.ApplyTransaction(ctx, in(mouse.ID, 5), model.DefaultSettings(), admin); err != nil {
		t.Fatalf("apply: %v", err)
	}

	svc := NewDashboardService(store.txRepo()).(*dashboardService)
	svc.now = func() time.Time { return store.now.Add(time.Hour) }

	stats, err := svc.GetDashboardStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalItems != 2 || stats.TotalUnits != 19 || stats.LowStockCount != 1 || stats.TotalTransactions != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	movement, err := svc.GetStockMovement(ctx, 7)
	if err != nil {
		t.Fatalf("movement: %v", err)
	}
	if len(movement) != 1 || movement[0].Inbound != 5 || movement[0].Outbound != 2 {
		t.Fatalf("unexpected movement: %+v", movement)
	}
}
