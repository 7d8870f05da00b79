package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type levelRepo struct{ s *Store }

func (r *levelRepo) Get(_ context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lvl, ok := r.s.data.levels[levelKey{productID, warehouseID}]
	if !ok {
		return nil, nil
	}
	return &lvl, nil
}

func (r *levelRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	return r.Get(ctx, productID, warehouseID)
}

func (r *levelRepo) Update(_ context.Context, level *entity.StockLevel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := levelKey{level.ProductID, level.WarehouseID}
	if _, ok := r.s.data.levels[k]; !ok {
		return fmt.Errorf("update stock level: %w", domain.ErrNotFound)
	}
	r.s.data.levels[k] = *level
	return nil
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.movements = append(r.s.data.movements, *m)
	return nil
}

func (r *movementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMovement
	for i := len(r.s.data.movements) - 1; i >= 0; i-- {
		m := r.s.data.movements[i]
		switch {
		case f.CompanyID != "" && m.CompanyID != f.CompanyID,
			f.ProductID != "" && m.ProductID != f.ProductID,
			f.WarehouseID != "" && m.WarehouseID != f.WarehouseID,
			f.Kind != "" && m.Kind != f.Kind,
			f.ReferenceID != "" && m.ReferenceID != f.ReferenceID,
			f.ReferenceType != "" && m.ReferenceType != f.ReferenceType,
			f.From != nil && m.CreatedAt.Before(*f.From),
			f.To != nil && m.CreatedAt.After(*f.To):
			continue
		}
		out = append(out, &m)
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r *movementRepo) SumQuantity(_ context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, m := range r.s.data.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

type adjustmentRepo struct{ s *Store }

func (r *adjustmentRepo) Create(_ context.Context, a *entity.StockAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.adjustments[a.ID]; ok {
		return fmt.Errorf("insert stock adjustment: %w", repository.ErrUniqueViolation)
	}
	r.s.data.adjustments[a.ID] = *a
	return nil
}

func (r *adjustmentRepo) GetByID(_ context.Context, id string) (*entity.StockAdjustment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.adjustments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *adjustmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockAdjustment, error) {
	return r.GetByID(ctx, id)
}

func (r *adjustmentRepo) Update(_ context.Context, a *entity.StockAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.adjustments[a.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.data.adjustments[a.ID] = *a
	return nil
}

func (r *adjustmentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.adjustments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.data.adjustments, id)
	return nil
}

func (r *adjustmentRepo) List(_ context.Context, f entity.AdjustmentFilter) ([]*entity.StockAdjustment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockAdjustment
	for _, a := range r.s.data.adjustments {
		switch {
		case f.CompanyID != "" && a.CompanyID != f.CompanyID,
			f.WarehouseID != "" && a.WarehouseID != f.WarehouseID,
			f.ProductID != "" && a.ProductID != f.ProductID:
			continue
		}
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

type transferRepo struct{ s *Store }

func (r *transferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.data.transfers {
		if e.ReferenceNumber == t.ReferenceNumber {
			return fmt.Errorf("insert stock transfer: %w", repository.ErrUniqueViolation)
		}
	}
	c := *t
	c.Items = append([]entity.StockTransferItem(nil), t.Items...)
	r.s.data.transfers = append(r.s.data.transfers, c)
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.data.transfers {
		if t.ID == id {
			t.Items = append([]entity.StockTransferItem(nil), t.Items...)
			return &t, nil
		}
	}
	return nil, nil
}

func (r *transferRepo) List(_ context.Context, f entity.TransferFilter) ([]*entity.StockTransfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockTransfer
	for i := len(r.s.data.transfers) - 1; i >= 0; i-- {
		t := r.s.data.transfers[i]
		switch {
		case f.CompanyID != "" && t.CompanyID != f.CompanyID,
			f.WarehouseID != "" && t.FromWarehouseID != f.WarehouseID && t.ToWarehouseID != f.WarehouseID,
			f.From != nil && t.TransferDate.Before(*f.From),
			f.To != nil && t.TransferDate.After(*f.To):
			continue
		}
		t.Items = append([]entity.StockTransferItem(nil), t.Items...)
		out = append(out, &t)
	}
	return page(out, f.Limit, f.Offset), nil
}

type sequenceRepo struct{ s *Store }

// LockSeries no bloquea (Store.Run ya serializa las transacciones); solo propaga el fallo simulado.
func (r *sequenceRepo) LockSeries(context.Context, string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sequenceErr
}

func (r *sequenceRepo) LastNumber(_ context.Context, scope repository.SequenceScope, prefix string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.sequenceErr != nil {
		return "", r.s.sequenceErr
	}
	var numbers []string
	switch scope {
	case repository.SequencePayments:
		for _, p := range r.s.data.payments {
			numbers = append(numbers, p.Number)
		}
	case repository.SequenceTransfers:
		for _, t := range r.s.data.transfers {
			numbers = append(numbers, t.ReferenceNumber)
		}
	default:
		return "", fmt.Errorf("serie desconocida %q", scope)
	}
	last, lastSeq := "", -1
	for _, n := range numbers {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimPrefix(n, prefix))
		if err != nil {
			continue
		}
		if seq > lastSeq {
			last, lastSeq = n, seq
		}
	}
	return last, nil
}

type warehouseRepo struct{ s *Store }

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.data.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

type productRepo struct{ s *Store }

func (r *productRepo) GetActive(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.products[id]
	if !ok || !p.Usable() {
		return nil, nil
	}
	return &p, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
