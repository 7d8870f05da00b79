// Package memory implementa los puertos de repository en memoria, con transacciones
// serializadas y rollback por snapshot. Respalda las pruebas de aplicación y HTTP.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.TxRunner = (*Store)(nil)

type levelKey struct {
	productID   string
	warehouseID string
}

type state struct {
	payments    []entity.Payment
	links       []entity.OrderPaymentLink
	orders      map[string]entity.Order
	levels      map[levelKey]entity.StockLevel
	movements   []entity.StockMovement
	adjustments map[string]entity.StockAdjustment
	transfers   []entity.StockTransfer
	warehouses  map[string]entity.Warehouse
	products    map[string]entity.Product
}

func newState() *state {
	return &state{
		orders:      make(map[string]entity.Order),
		levels:      make(map[levelKey]entity.StockLevel),
		adjustments: make(map[string]entity.StockAdjustment),
		warehouses:  make(map[string]entity.Warehouse),
		products:    make(map[string]entity.Product),
	}
}

func (s *state) clone() *state {
	c := newState()
	c.payments = append([]entity.Payment(nil), s.payments...)
	c.links = append([]entity.OrderPaymentLink(nil), s.links...)
	c.movements = append([]entity.StockMovement(nil), s.movements...)
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.levels {
		c.levels[k] = v
	}
	for k, v := range s.adjustments {
		c.adjustments[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	c.transfers = make([]entity.StockTransfer, len(s.transfers))
	for i, t := range s.transfers {
		t.Items = append([]entity.StockTransferItem(nil), t.Items...)
		c.transfers[i] = t
	}
	return c
}

// Store almacén en memoria. Run serializa las transacciones; las lecturas fuera de
// Run no están aisladas de una transacción en curso.
type Store struct {
	txMu sync.Mutex // una transacción a la vez
	mu   sync.Mutex // protege data y los fallos simulados
	data *state

	sequenceErr      error
	missingKeyColumn bool
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn en una transacción simulada: si fn falla se restaura el snapshot previo.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx, s.Repos()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Repos devuelve los repositorios sobre el almacén (uso fuera de transacción o dentro de Run).
func (s *Store) Repos() repository.Repos {
	return repository.Repos{
		Payments:    &paymentRepo{s: s},
		Links:       &linkRepo{s: s},
		Orders:      &orderRepo{s: s},
		Levels:      &levelRepo{s: s},
		Movements:   &movementRepo{s: s},
		Adjustments: &adjustmentRepo{s: s},
		Transfers:   &transferRepo{s: s},
		Sequences:   &sequenceRepo{s: s},
		Warehouses:  &warehouseRepo{s: s},
		Products:    &productRepo{s: s},
	}
}

// FailSequences hace que la numeración falle con err (nil la restablece).
func (s *Store) FailSequences(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequenceErr = err
}

// DropIdempotencyKeyColumn simula un esquema sin la columna idempotency_key.
func (s *Store) DropIdempotencyKeyColumn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missingKeyColumn = true
}

// ── Datos de colaboradores externos (catálogo, bodegas, órdenes) ────────────

// AddWarehouse registra una bodega.
func (s *Store) AddWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.warehouses[w.ID] = w
}

// AddProduct registra un producto del catálogo.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.ID] = p
}

// AddOrder registra una orden creada por el módulo de órdenes.
func (s *Store) AddOrder(o entity.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.orders[o.ID] = o
}

// SeedStock aprovisiona la fila de stock con una compra inicial, de modo que
// el agregado coincida con el libro de movimientos.
func (s *Store) SeedStock(companyID, productID, warehouseID string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	k := levelKey{productID, warehouseID}
	lvl, ok := s.data.levels[k]
	if !ok {
		lvl = entity.StockLevel{ProductID: productID, WarehouseID: warehouseID, CurrentStock: decimal.Zero}
	}
	lvl.CurrentStock = lvl.CurrentStock.Add(qty)
	lvl.UpdatedAt = now
	s.data.levels[k] = lvl
	if qty.IsZero() {
		return
	}
	s.data.movements = append(s.data.movements, entity.StockMovement{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    qty,
		Kind:        entity.MovementKindPurchase,
		Remarks:     "saldo inicial",
		CreatedAt:   now,
	})
}

// Order devuelve la orden confirmada (para aserciones).
func (s *Store) Order(id string) (entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data.orders[id]
	if !ok {
		return entity.Order{}, domain.ErrNotFound
	}
	return o, nil
}

// Stock devuelve el stock confirmado de producto+bodega.
func (s *Store) Stock(productID, warehouseID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lvl, ok := s.data.levels[levelKey{productID, warehouseID}]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	return lvl.CurrentStock, nil
}

// Movements devuelve todos los movimientos en orden de inserción.
func (s *Store) Movements() []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.StockMovement(nil), s.data.movements...)
}

// PaymentCount número de pagos persistidos.
func (s *Store) PaymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.payments)
}
