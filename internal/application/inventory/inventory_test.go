package inventory_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/application/numbering"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/retail-ledger/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	companyID = "company-1"
	userID    = "user-1"
	product   = "prod-1"
	whA       = "wh-a"
	whB       = "wh-b"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store       *memory.Store
	adjustments *inventory.AdjustmentUseCase
	transfers   *inventory.TransferUseCase
	audit       *inventory.AuditUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddWarehouse(entity.Warehouse{ID: whA, CompanyID: companyID, Code: "BOG", Name: "Bogotá"})
	store.AddWarehouse(entity.Warehouse{ID: whB, CompanyID: companyID, Code: "MED", Name: "Medellín"})
	store.AddWarehouse(entity.Warehouse{ID: "wh-empty", CompanyID: companyID, Code: "CAL"})
	store.AddWarehouse(entity.Warehouse{ID: "wh-other", CompanyID: "company-2", Code: "OTR"})
	store.AddProduct(entity.Product{ID: product, CompanyID: companyID, SKU: "SKU-1", Active: true})
	store.AddProduct(entity.Product{ID: "prod-2", CompanyID: companyID, SKU: "SKU-2", Active: true})
	deleted := time.Now()
	store.AddProduct(entity.Product{ID: "prod-deleted", CompanyID: companyID, Active: true, DeletedAt: &deleted})
	store.SeedStock(companyID, product, whA, dec("50"))
	store.SeedStock(companyID, product, whB, dec("5"))
	store.SeedStock(companyID, "prod-2", whA, dec("10"))
	store.SeedStock(companyID, "prod-2", whB, dec("0"))
	store.SeedStock(companyID, "prod-deleted", whA, dec("1"))
	store.SeedStock("company-2", product, "wh-other", dec("1"))

	engine := inventory.NewMovementEngine()
	repos := store.Repos()
	return &fixture{
		store:       store,
		adjustments: inventory.NewAdjustmentUseCase(store, repos, engine, logger.Nop()),
		transfers:   inventory.NewTransferUseCase(store, repos, engine, numbering.NewGenerator(logger.Nop()), logger.Nop()),
		audit:       inventory.NewAuditUseCase(repos),
	}
}

func (f *fixture) stock(t *testing.T, productID, warehouseID string) decimal.Decimal {
	t.Helper()
	q, err := f.store.Stock(productID, warehouseID)
	require.NoError(t, err)
	return q
}

// assertConsistent current_stock == Σ movimientos.
func (f *fixture) assertConsistent(t *testing.T, productID, warehouseID string) {
	t.Helper()
	rec, err := f.audit.ReconcileStock(context.Background(), companyID, productID, warehouseID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "stock %s != Σ movimientos %s", rec.CurrentStock, rec.MovementTotal)
}

func movementsFor(f *fixture, refID string) []entity.StockMovement {
	var out []entity.StockMovement
	for _, m := range f.store.Movements() {
		if m.ReferenceID == refID {
			out = append(out, m)
		}
	}
	return out
}

func addReq(qty string) dto.CreateAdjustmentRequest {
	return dto.CreateAdjustmentRequest{WarehouseID: whA, ProductID: product, Direction: "add", Quantity: dec(qty)}
}

func TestAdjustment_CrearYEliminarVuelveAlSaldoBase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := f.stock(t, product, whA)

	adj, err := f.adjustments.Create(ctx, companyID, userID, addReq("10"))
	require.NoError(t, err)
	assert.True(t, base.Add(dec("10")).Equal(f.stock(t, product, whA)))
	assert.True(t, adj.IsDeletable)

	require.NoError(t, f.adjustments.Delete(ctx, companyID, userID, adj.ID))
	assert.True(t, base.Equal(f.stock(t, product, whA)))
	f.assertConsistent(t, product, whA)

	movs := movementsFor(f, adj.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementKindAdjustment, movs[0].Kind)
	assert.True(t, dec("10").Equal(movs[0].Quantity))
	assert.Equal(t, entity.MovementKindAdjustmentReversal, movs[1].Kind)
	assert.True(t, dec("-10").Equal(movs[1].Quantity))
	assert.Equal(t, entity.ReferenceTypeStockAdjustment, movs[1].ReferenceType)

	_, err = f.adjustments.Get(ctx, companyID, adj.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustment_EdicionAplicaDeltaNeto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := f.stock(t, product, whA)

	adj, err := f.adjustments.Create(ctx, companyID, userID, addReq("10"))
	require.NoError(t, err)
	assert.True(t, base.Add(dec("10")).Equal(f.stock(t, product, whA)))

	dir, qty := "subtract", dec("5")
	updated, err := f.adjustments.Update(ctx, companyID, userID, adj.ID, dto.UpdateAdjustmentRequest{Direction: &dir, Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "subtract", updated.Direction)
	assert.True(t, base.Sub(dec("5")).Equal(f.stock(t, product, whA)), "S-5, no S-15 ni S+5")

	movs := movementsFor(f, adj.ID)
	require.Len(t, movs, 2, "la edición escribe un único movimiento neto")
	assert.True(t, dec("-15").Equal(movs[1].Quantity))
	f.assertConsistent(t, product, whA)

	// borrar tras editar revierte el efecto vigente (+5)
	require.NoError(t, f.adjustments.Delete(ctx, companyID, userID, adj.ID))
	assert.True(t, base.Equal(f.stock(t, product, whA)))
	f.assertConsistent(t, product, whA)
}

func TestAdjustment_EdicionSinDeltaNoEscribeMovimiento(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	adj, err := f.adjustments.Create(ctx, companyID, userID, addReq("4"))
	require.NoError(t, err)

	notes := "conteo físico"
	updated, err := f.adjustments.Update(ctx, companyID, userID, adj.ID, dto.UpdateAdjustmentRequest{Notes: dto.NewOptionalString(notes)})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Len(t, movementsFor(f, adj.ID), 1)

	qty := dec("4")
	updated, err = f.adjustments.Update(ctx, companyID, userID, adj.ID, dto.UpdateAdjustmentRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes, "notas omitidas no cambian")

	updated, err = f.adjustments.Update(ctx, companyID, userID, adj.ID, dto.UpdateAdjustmentRequest{Notes: dto.OptionalString{Set: true}})
	require.NoError(t, err)
	assert.Empty(t, updated.Notes, "null explícito limpia el campo")

	_, err = f.adjustments.Update(ctx, companyID, userID, adj.ID,
		dto.UpdateAdjustmentRequest{Notes: dto.NewOptionalString(strings.Repeat("x", 1001))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Len(t, movementsFor(f, adj.ID), 1)
}

func TestAdjustment_NoEliminable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	adj, err := f.adjustments.Create(ctx, companyID, userID, addReq("3"))
	require.NoError(t, err)
	require.NoError(t, f.adjustments.Lock(ctx, companyID, adj.ID))
	before := f.stock(t, product, whA)

	err = f.adjustments.Delete(ctx, companyID, userID, adj.ID)
	assert.ErrorIs(t, err, domain.ErrNotDeletable)

	qty := dec("1")
	_, err = f.adjustments.Update(ctx, companyID, userID, adj.ID, dto.UpdateAdjustmentRequest{Quantity: &qty})
	assert.ErrorIs(t, err, domain.ErrNotDeletable)
	assert.True(t, before.Equal(f.stock(t, product, whA)))

	got, err := f.adjustments.Get(ctx, companyID, adj.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDeletable)
}

func TestAdjustment_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.CreateAdjustmentRequest
		err  error
	}{
		{"cantidad cero", addReq("0"), domain.ErrInvalidInput},
		{"cantidad negativa", addReq("-2"), domain.ErrInvalidInput},
		{"sentido inválido", dto.CreateAdjustmentRequest{WarehouseID: whA, ProductID: product, Direction: "double", Quantity: dec("1")}, domain.ErrInvalidInput},
		{"producto eliminado", dto.CreateAdjustmentRequest{WarehouseID: whA, ProductID: "prod-deleted", Direction: "add", Quantity: dec("1")}, domain.ErrNotFound},
		{"bodega de otra empresa", dto.CreateAdjustmentRequest{WarehouseID: "wh-other", ProductID: product, Direction: "add", Quantity: dec("1")}, domain.ErrForbidden},
		{"sin fila de stock", dto.CreateAdjustmentRequest{WarehouseID: "wh-empty", ProductID: product, Direction: "add", Quantity: dec("1")}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.adjustments.Create(ctx, companyID, userID, tc.req)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	list, err := f.adjustments.List(ctx, companyID, "", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items, "ningún intento fallido dejó registro")
	_, err = f.store.Stock(product, "wh-empty")
	assert.ErrorIs(t, err, domain.ErrNotFound, "el motor no aprovisiona stock")
}

func TestTransfer_MueveStockEntreBodegas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tr, err := f.transfers.Create(ctx, companyID, userID, dto.CreateTransferRequest{
		FromWarehouseID: whA,
		ToWarehouseID:   whB,
		Date:            "2026-10-18",
		Items:           []dto.TransferItemRequest{{ProductID: product, Quantity: dec("20")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "TRF-BOG-202610-0001", tr.ReferenceNumber)

	assert.True(t, dec("30").Equal(f.stock(t, product, whA)))
	assert.True(t, dec("25").Equal(f.stock(t, product, whB)))

	movs := movementsFor(f, tr.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementKindTransferOut, movs[0].Kind)
	assert.Equal(t, whA, movs[0].WarehouseID)
	assert.True(t, dec("-20").Equal(movs[0].Quantity))
	assert.Equal(t, entity.MovementKindTransferIn, movs[1].Kind)
	assert.Equal(t, whB, movs[1].WarehouseID)
	assert.True(t, dec("20").Equal(movs[1].Quantity))
	for _, m := range movs {
		assert.Equal(t, entity.ReferenceTypeStockTransfer, m.ReferenceType)
	}
	f.assertConsistent(t, product, whA)
	f.assertConsistent(t, product, whB)

	second, err := f.transfers.Create(ctx, companyID, userID, dto.CreateTransferRequest{
		FromWarehouseID: whA, ToWarehouseID: whB, Date: "2026-10-20",
		Items: []dto.TransferItemRequest{{ProductID: product, Quantity: dec("1")}, {ProductID: "prod-2", Quantity: dec("2")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "TRF-BOG-202610-0002", second.ReferenceNumber)
	assert.Len(t, movementsFor(f, second.ID), 4)

	got, err := f.transfers.Get(ctx, companyID, second.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)

	list, err := f.transfers.List(ctx, companyID, whB, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
}

func TestTransfer_OrigenIgualDestinoSeRechazaSinEscribir(t *testing.T) {
	f := newFixture(t)
	before := len(f.store.Movements())

	_, err := f.transfers.Create(context.Background(), companyID, userID, dto.CreateTransferRequest{
		FromWarehouseID: whA, ToWarehouseID: whA,
		Items: []dto.TransferItemRequest{{ProductID: product, Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, f.store.Movements(), before)
}

func TestTransfer_DestinoSinStockRevierteTodo(t *testing.T) {
	f := newFixture(t)
	before := len(f.store.Movements())

	// el destino no tiene fila de stock para el producto
	_, err := f.transfers.Create(context.Background(), companyID, userID, dto.CreateTransferRequest{
		FromWarehouseID: whA, ToWarehouseID: "wh-empty",
		Items: []dto.TransferItemRequest{{ProductID: product, Quantity: dec("5")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, dec("50").Equal(f.stock(t, product, whA)), "el origen no se descuenta")
	assert.Len(t, f.store.Movements(), before)

	list, err := f.transfers.List(context.Background(), companyID, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestTransfer_MultiLineaTodoONada(t *testing.T) {
	f := newFixture(t)
	store := f.store
	store.AddWarehouse(entity.Warehouse{ID: "wh-c", CompanyID: companyID, Code: "CTG"})
	store.SeedStock(companyID, product, "wh-c", dec("0"))
	before := len(store.Movements())

	_, err := f.transfers.Create(context.Background(), companyID, userID, dto.CreateTransferRequest{
		FromWarehouseID: whA, ToWarehouseID: "wh-c",
		Items: []dto.TransferItemRequest{
			{ProductID: product, Quantity: dec("5")},
			{ProductID: "prod-2", Quantity: dec("1")}, // sin fila en wh-c
		},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, dec("50").Equal(f.stock(t, product, whA)))
	assert.True(t, dec("0").Equal(f.stock(t, product, "wh-c")))
	assert.Len(t, store.Movements(), before)
}

func TestTransfer_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := []dto.TransferItemRequest{{ProductID: product, Quantity: dec("1")}}

	_, err := f.transfers.Create(ctx, companyID, userID, dto.CreateTransferRequest{FromWarehouseID: whA, ToWarehouseID: "wh-other", Items: item})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "bodegas de distinta empresa")

	_, err = f.transfers.Create(ctx, companyID, userID, dto.CreateTransferRequest{FromWarehouseID: whA, ToWarehouseID: whB,
		Items: []dto.TransferItemRequest{{ProductID: product, Quantity: dec("0")}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.transfers.Create(ctx, companyID, userID, dto.CreateTransferRequest{FromWarehouseID: whA, ToWarehouseID: whB})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.transfers.Create(ctx, companyID, userID, dto.CreateTransferRequest{FromWarehouseID: "nope", ToWarehouseID: whB, Items: item})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.transfers.Create(ctx, companyID, userID, dto.CreateTransferRequest{FromWarehouseID: whA, ToWarehouseID: whB,
		Items: []dto.TransferItemRequest{{ProductID: "prod-deleted", Quantity: dec("1")}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConcurrencia_AjustesYTrasladosSobreLaMismaFila(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const n = 25

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, err := f.adjustments.Create(ctx, companyID, userID, addReq("2"))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := f.adjustments.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
				WarehouseID: whA, ProductID: product, Direction: "subtract", Quantity: dec("1"),
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := f.transfers.Create(ctx, companyID, userID, dto.CreateTransferRequest{
				FromWarehouseID: whA, ToWarehouseID: whB,
				Items: []dto.TransferItemRequest{{ProductID: product, Quantity: dec("1")}},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// A: 50 + 25*2 - 25*1 - 25*1 = 50; B: 5 + 25 = 30
	assert.True(t, dec("50").Equal(f.stock(t, product, whA)))
	assert.True(t, dec("30").Equal(f.stock(t, product, whB)))
	f.assertConsistent(t, product, whA)
	f.assertConsistent(t, product, whB)
}

func TestAudit_ListMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	adj, err := f.adjustments.Create(ctx, companyID, userID, addReq("7"))
	require.NoError(t, err)

	list, err := f.audit.ListMovements(ctx, companyID, dto.MovementFilterRequest{ReferenceID: adj.ID})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "adjustment", list.Items[0].Kind)
	assert.Equal(t, userID, list.Items[0].CreatedBy)

	byKind, err := f.audit.ListMovements(ctx, companyID, dto.MovementFilterRequest{Kind: "purchase", WarehouseID: whA})
	require.NoError(t, err)
	assert.Len(t, byKind.Items, 3, "saldos iniciales de la bodega A")

	_, err = f.audit.ListMovements(ctx, companyID, dto.MovementFilterRequest{Kind: "theft"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.audit.ReconcileStock(ctx, companyID, product, "wh-empty")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.audit.ReconcileStock(ctx, companyID, product, "wh-other")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// lockRecorder anota el orden en que se bloquean las filas de stock.
type lockRecorder struct {
	store *memory.Store
	locks []string
}

func (l *lockRecorder) Run(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	return l.store.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		r.Levels = recordingLevels{StockLevelRepository: r.Levels, rec: l}
		return fn(ctx, r)
	})
}

type recordingLevels struct {
	repository.StockLevelRepository
	rec *lockRecorder
}

func (r recordingLevels) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	r.rec.locks = append(r.rec.locks, productID+"@"+warehouseID)
	return r.StockLevelRepository.GetForUpdate(ctx, productID, warehouseID)
}

func TestTransfer_BloqueaFilasEnOrdenFijo(t *testing.T) {
	f := newFixture(t)
	expected := []string{"prod-1@wh-a", "prod-1@wh-b", "prod-2@wh-a", "prod-2@wh-b"}

	requests := []dto.CreateTransferRequest{
		{FromWarehouseID: whA, ToWarehouseID: whB, Items: []dto.TransferItemRequest{
			{ProductID: product, Quantity: dec("1")}, {ProductID: "prod-2", Quantity: dec("1")},
		}},
		// sentido y orden de líneas invertidos: mismas filas, mismo orden de bloqueo
		{FromWarehouseID: whB, ToWarehouseID: whA, Items: []dto.TransferItemRequest{
			{ProductID: "prod-2", Quantity: dec("1")}, {ProductID: product, Quantity: dec("1")},
		}},
	}
	for _, req := range requests {
		rec := &lockRecorder{store: f.store}
		uc := inventory.NewTransferUseCase(rec, f.store.Repos(), inventory.NewMovementEngine(), numbering.NewGenerator(logger.Nop()), logger.Nop())
		_, err := uc.Create(context.Background(), companyID, userID, req)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(rec.locks), len(expected))
		assert.Equal(t, expected, rec.locks[:len(expected)])
	}
	f.assertConsistent(t, product, whA)
	f.assertConsistent(t, "prod-2", whB)
}
