package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"it-inventory/internal/model"
	"it-inventory/internal/repository"
	"it-inventory/internal/ws"
)

// memStore is an in-memory Transactor with repository views.
// A unit of work holds the store lock and rolls back to a snapshot on error.
type memStore struct {
	mu         sync.Mutex
	items      map[uint]*model.Item
	txs        []model.Transaction
	nextItemID uint
	nextTxID   uint
	now        time.Time

	// vanishOnAdjust removes the item right before its stock is adjusted.
	vanishOnAdjust bool
}

func newMemStore() *memStore {
	return &memStore{
		items: make(map[uint]*model.Item),
		now:   time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) itemRepo() repository.ItemRepository      { return &memItems{s: s, lock: true} }
func (s *memStore) txRepo() repository.TransactionRepository { return &memTxs{s: s, lock: true} }

func (s *memStore) WithinTransaction(ctx context.Context, fn func(items repository.ItemRepository, txs repository.TransactionRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[uint]*model.Item, len(s.items))
	for id, it := range s.items {
		cp := *it
		items[id] = &cp
	}
	txs := append([]model.Transaction(nil), s.txs...)
	nextItemID, nextTxID := s.nextItemID, s.nextTxID

	if err := fn(&memItems{s: s}, &memTxs{s: s}); err != nil {
		s.items, s.txs = items, txs
		s.nextItemID, s.nextTxID = nextItemID, nextTxID
		return err
	}
	return nil
}

// seed inserts an item directly, bypassing services.
func (s *memStore) seed(name, category string, stock, minStock int) *model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextItemID++
	it := &model.Item{Name: name, Category: category, Stock: stock, MinStock: minStock}
	it.ID = s.nextItemID
	it.CreatedAt = s.now
	s.items[it.ID] = it
	cp := *it
	return &cp
}

func (s *memStore) stock(id uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[id]; ok {
		return it.Stock
	}
	return -1
}

func (s *memStore) txCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

type memItems struct {
	s    *memStore
	lock bool
}

func (r *memItems) guard() func() {
	if r.lock {
		r.s.mu.Lock()
		return r.s.mu.Unlock
	}
	return func() {}
}

func (r *memItems) Create(_ context.Context, item *model.Item) error {
	defer r.guard()()
	r.s.nextItemID++
	item.ID = r.s.nextItemID
	item.CreatedAt = r.s.now
	item.UpdatedAt = r.s.now
	cp := *item
	r.s.items[item.ID] = &cp
	return nil
}

func (r *memItems) FindAll(_ context.Context) ([]model.Item, error) {
	defer r.guard()()
	out := make([]model.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memItems) FindByID(_ context.Context, id uint) (*model.Item, error) {
	defer r.guard()()
	it, ok := r.s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *memItems) FindLowStock(_ context.Context) ([]model.Item, error) {
	defer r.guard()()
	var out []model.Item
	for _, it := range r.s.items {
		if it.IsLowStock() {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *memItems) Update(_ context.Context, id uint, fields map[string]interface{}) (*model.Item, error) {
	defer r.guard()()
	it, ok := r.s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			it.Name = v.(string)
		case "category":
			it.Category = v.(string)
		case "min_stock":
			it.MinStock = v.(int)
		}
	}
	cp := *it
	return &cp, nil
}

func (r *memItems) Delete(_ context.Context, id uint) error {
	defer r.guard()()
	if _, ok := r.s.items[id]; !ok {
		return repository.ErrNotFound
	}
	for _, tx := range r.s.txs {
		if tx.ItemID == id {
			return repository.ErrInUse
		}
	}
	delete(r.s.items, id)
	return nil
}

func (r *memItems) AdjustStock(_ context.Context, id uint, delta int, clamp bool) (*model.Item, bool, error) {
	defer r.guard()()
	if r.s.vanishOnAdjust {
		delete(r.s.items, id)
	}
	it, ok := r.s.items[id]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	next := int64(it.Stock) + int64(delta)
	if next > model.MaxStock {
		return nil, false, repository.ErrStockOverflow
	}
	clamped := next < 0
	if clamped {
		if !clamp {
			return nil, false, repository.ErrInsufficientStock
		}
		next = 0
	}
	it.Stock = int(next)
	cp := *it
	return &cp, clamped, nil
}

type memTxs struct {
	s    *memStore
	lock bool
}

func (r *memTxs) guard() func() {
	if r.lock {
		r.s.mu.Lock()
		return r.s.mu.Unlock
	}
	return func() {}
}

func (r *memTxs) Create(_ context.Context, tx *model.Transaction) error {
	defer r.guard()()
	r.s.nextTxID++
	tx.ID = r.s.nextTxID
	tx.CreatedAt = r.s.now
	cp := *tx
	cp.Item = nil
	r.s.txs = append(r.s.txs, cp)
	return nil
}

func (r *memTxs) withItem(tx model.Transaction) model.Transaction {
	if it, ok := r.s.items[tx.ItemID]; ok {
		cp := *it
		tx.Item = &cp
	}
	return tx
}

func (r *memTxs) FindAll(_ context.Context) ([]model.Transaction, error) {
	defer r.guard()()
	out := make([]model.Transaction, 0, len(r.s.txs))
	for _, tx := range r.s.txs {
		out = append(out, r.withItem(tx))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memTxs) FindByID(_ context.Context, id uint) (*model.Transaction, error) {
	defer r.guard()()
	for _, tx := range r.s.txs {
		if tx.ID == id {
			out := r.withItem(tx)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTxs) CountByItem(_ context.Context, itemID uint) (int64, error) {
	defer r.guard()()
	var n int64
	for _, tx := range r.s.txs {
		if tx.ItemID == itemID {
			n++
		}
	}
	return n, nil
}

func (r *memTxs) GetStockMovement(_ context.Context, startDate, endDate time.Time) ([]repository.StockMovementData, error) {
	defer r.guard()()
	byDay := map[string]*repository.StockMovementData{}
	var days []string
	for _, tx := range r.s.txs {
		if tx.CreatedAt.Before(startDate) || tx.CreatedAt.After(endDate) {
			continue
		}
		day := tx.CreatedAt.Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &repository.StockMovementData{Date: day}
			byDay[day] = d
			days = append(days, day)
		}
		if tx.Type == model.TxIn {
			d.Inbound += tx.Quantity
		} else {
			d.Outbound += tx.Quantity
		}
	}
	sort.Strings(days)
	out := make([]repository.StockMovementData, 0, len(days))
	for _, day := range days {
		out = append(out, *byDay[day])
	}
	return out, nil
}

func (r *memTxs) GetDashboardStats(_ context.Context) (*repository.DashboardStats, error) {
	defer r.guard()()
	stats := &repository.DashboardStats{TotalTransactions: int64(len(r.s.txs))}
	for _, it := range r.s.items {
		stats.TotalItems++
		stats.TotalUnits += int64(it.Stock)
		if it.IsLowStock() {
			stats.LowStockCount++
		}
	}
	return stats, nil
}

type notifyCall struct {
	event    model.LowStockEvent
	settings model.Settings
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (n *fakeNotifier) Notify(_ context.Context, event model.LowStockEvent, settings model.Settings) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{event: event, settings: settings})
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type fakeHub struct {
	mu       sync.Mutex
	messages []ws.Message
}

func (h *fakeHub) Publish(msg ws.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

func (h *fakeHub) actions() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.messages))
	for _, m := range h.messages {
		out = append(out, m.Action)
	}
	return out
}
