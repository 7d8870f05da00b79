package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.data.payments {
		if e.Number == p.Number {
			return fmt.Errorf("insert payment: %w", repository.ErrUniqueViolation)
		}
		if p.IdempotencyKey != "" && e.CompanyID == p.CompanyID && e.IdempotencyKey == p.IdempotencyKey {
			return fmt.Errorf("insert payment: %w", repository.ErrUniqueViolation)
		}
	}
	r.s.data.payments = append(r.s.data.payments, *p)
	return nil
}

func (r *paymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.data.payments {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *paymentRepo) FindByIdempotencyKey(_ context.Context, companyID, key string) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.missingKeyColumn {
		return nil, fmt.Errorf("find payment by idempotency key: %w", domain.ErrSchemaMismatch)
	}
	for _, p := range r.s.data.payments {
		if p.CompanyID == companyID && p.IdempotencyKey == key {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *paymentRepo) FindSimilar(_ context.Context, q repository.SimilarPaymentQuery) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *entity.Payment
	for i := range r.s.data.payments {
		p := r.s.data.payments[i]
		if p.CompanyID != q.CompanyID || p.WarehouseID != q.WarehouseID || p.Direction != q.Direction ||
			p.UserID != q.UserID || p.PaymentModeID != q.PaymentModeID {
			continue
		}
		if !sameDay(p.Date, q.Date) || p.Amount.Sub(q.Amount).Abs().GreaterThan(q.Tolerance) {
			continue
		}
		if p.CreatedAt.Before(q.CreatedAfter) {
			continue
		}
		if best == nil || !p.CreatedAt.Before(best.CreatedAt) {
			best = &p
		}
	}
	return best, nil
}

func (r *paymentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, p := range r.s.data.payments {
		if p.ID == id {
			r.s.data.payments = append(r.s.data.payments[:i:i], r.s.data.payments[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *paymentRepo) List(_ context.Context, f entity.PaymentFilter) ([]*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.filterLocked(f)
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.After(items[j].Date)
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return page(items, f.Limit, f.Offset), nil
}

func (r *paymentRepo) Count(_ context.Context, f entity.PaymentFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.filterLocked(f)), nil
}

func (r *paymentRepo) Totals(_ context.Context, f entity.PaymentFilter) (entity.PaymentTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := entity.PaymentTotals{TotalIn: decimal.Zero, TotalOut: decimal.Zero}
	for _, p := range r.filterLocked(f) {
		t.Count++
		if p.Direction == entity.PaymentDirectionIn {
			t.TotalIn = t.TotalIn.Add(p.Amount)
		} else {
			t.TotalOut = t.TotalOut.Add(p.Amount)
		}
	}
	return t, nil
}

func (r *paymentRepo) filterLocked(f entity.PaymentFilter) []*entity.Payment {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*entity.Payment
	for i := range r.s.data.payments {
		p := r.s.data.payments[i]
		switch {
		case f.CompanyID != "" && p.CompanyID != f.CompanyID,
			f.WarehouseID != "" && p.WarehouseID != f.WarehouseID,
			f.UserID != "" && p.UserID != f.UserID,
			f.PaymentModeID != "" && p.PaymentModeID != f.PaymentModeID,
			f.Direction != "" && p.Direction != f.Direction,
			f.From != nil && p.Date.Before(*f.From),
			f.To != nil && p.Date.After(*f.To):
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Number), search) &&
			!strings.Contains(strings.ToLower(p.Notes), search) {
			continue
		}
		if f.OrderID != "" && !r.linkedLocked(p.ID, f.OrderID) {
			continue
		}
		out = append(out, &p)
	}
	return out
}

func (r *paymentRepo) linkedLocked(paymentID, orderID string) bool {
	for _, l := range r.s.data.links {
		if l.PaymentID == paymentID && l.OrderID == orderID {
			return true
		}
	}
	return false
}

type linkRepo struct{ s *Store }

func (r *linkRepo) Exists(_ context.Context, orderID, paymentID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.data.links {
		if l.OrderID == orderID && l.PaymentID == paymentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *linkRepo) Create(_ context.Context, l *entity.OrderPaymentLink) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.data.links {
		if e.OrderID == l.OrderID && e.PaymentID == l.PaymentID {
			return fmt.Errorf("insert order payment link: %w", repository.ErrUniqueViolation)
		}
	}
	r.s.data.links = append(r.s.data.links, *l)
	return nil
}

func (r *linkRepo) ListByPayment(_ context.Context, paymentID string) ([]*entity.OrderPaymentLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.OrderPaymentLink
	for i := range r.s.data.links {
		if l := r.s.data.links[i]; l.PaymentID == paymentID {
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r *linkRepo) DeleteByPayment(_ context.Context, paymentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.data.links[:0:0]
	for _, l := range r.s.data.links {
		if l.PaymentID != paymentID {
			kept = append(kept, l)
		}
	}
	r.s.data.links = kept
	return nil
}

func (r *linkRepo) SumByOrder(_ context.Context, orderID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, l := range r.s.data.links {
		if l.OrderID == orderID {
			sum = sum.Add(l.Amount)
		}
	}
	return sum, nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) UpdateBalance(_ context.Context, id string, b entity.OrderBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.PaidAmount = b.PaidAmount
	o.DueAmount = b.DueAmount
	o.PaymentStatus = b.PaymentStatus
	o.IsDeletable = b.IsDeletable
	r.s.data.orders[id] = o
	return nil
}

func (r *orderRepo) ListUnpaid(_ context.Context, companyID, userID, warehouseID string) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Order
	for _, o := range r.s.data.orders {
		if o.CompanyID != companyID || o.PaymentStatus == entity.PaymentStatusPaid {
			continue
		}
		if userID != "" && o.UserID != userID {
			continue
		}
		if warehouseID != "" && o.WarehouseID != warehouseID {
			continue
		}
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.Before(out[j].OrderDate)
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}
