package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// Schema capacidades opcionales detectadas en la base al arrancar.
type Schema struct {
	PaymentKeyColumn bool // payments.idempotency_key existe
}

// DetectSchema consulta information_schema una sola vez al arrancar.
func DetectSchema(ctx context.Context, q Querier) (Schema, error) {
	var s Schema
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = 'payments' AND column_name = 'idempotency_key'
		)`).Scan(&s.PaymentKeyColumn)
	if err != nil {
		return Schema{}, fmt.Errorf("detect schema: %w", err)
	}
	return s, nil
}

// NewRepos ata todos los repositorios a la misma conexión o transacción.
func NewRepos(q Querier, schema Schema) repository.Repos {
	return repository.Repos{
		Payments:    NewPaymentRepository(q, schema),
		Links:       NewOrderPaymentLinkRepository(q),
		Orders:      NewOrderRepository(q),
		Levels:      NewStockLevelRepository(q),
		Movements:   NewStockMovementRepository(q),
		Adjustments: NewStockAdjustmentRepository(q),
		Transfers:   NewStockTransferRepository(q),
		Sequences:   NewSequenceRepository(q),
		Warehouses:  NewWarehouseRepository(q),
		Products:    NewProductRepository(q),
	}
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool           *pgxpool.Pool
	schema         Schema
	acquireTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. acquireTimeout acota la espera por una conexión.
func NewTxRunner(pool *pgxpool.Pool, schema Schema, acquireTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, schema: schema, acquireTimeout: acquireTimeout}
}

// Repos devuelve repositorios sobre el pool, para lecturas fuera de transacción.
func (r *TxRunner) Repos() repository.Repos {
	return NewRepos(r.pool, r.schema)
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los bloqueos de fila (FOR UPDATE) y de serie (advisory) viven hasta el fin de la tx.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	beginCtx := ctx
	if r.acquireTimeout > 0 {
		var cancel context.CancelFunc
		beginCtx, cancel = context.WithTimeout(ctx, r.acquireTimeout)
		defer cancel()
	}
	tx, err := r.pool.BeginTx(beginCtx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewRepos(tx, r.schema)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
