package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

const transferColumns = `id, company_id, from_warehouse_id, to_warehouse_id, reference_number, transfer_date,
	COALESCE(notes, ''), COALESCE(created_by::text, ''), created_at`

// StockTransferRepo traslados (cabecera stock_transfers + stock_transfer_items).
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

func scanTransfer(row scanner) (*entity.StockTransfer, error) {
	var t entity.StockTransfer
	err := row.Scan(&t.ID, &t.CompanyID, &t.FromWarehouseID, &t.ToWarehouseID, &t.ReferenceNumber,
		&t.TransferDate, &t.Notes, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserta la cabecera y sus ítems. Debe correr dentro de la transacción del traslado.
func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_transfers (id, company_id, from_warehouse_id, to_warehouse_id, reference_number,
			transfer_date, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.CompanyID, t.FromWarehouseID, t.ToWarehouseID, t.ReferenceNumber,
		t.TransferDate, nullable(t.Notes), nullable(t.CreatedBy), t.CreatedAt,
	)
	if err != nil {
		return classify("insert stock transfer", err)
	}

	batch := &pgx.Batch{}
	for i := range t.Items {
		item := &t.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.TransferID = t.ID
		batch.Queue(`
			INSERT INTO stock_transfer_items (id, transfer_id, line_no, product_id, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			item.ID, item.TransferID, i+1, item.ProductID, item.Quantity)
	}
	if batch.Len() == 0 {
		return nil
	}
	sender, ok := r.q.(interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	})
	if !ok {
		for _, qq := range batch.QueuedQueries {
			if _, err := r.q.Exec(ctx, qq.SQL, qq.Arguments...); err != nil {
				return classify("insert stock transfer item", err)
			}
		}
		return nil
	}
	if err := sender.SendBatch(ctx, batch).Close(); err != nil {
		return classify("insert stock transfer items", err)
	}
	return nil
}

// GetByID cabecera con ítems; nil, nil si no existe.
func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get stock transfer", err)
	}
	if err := r.loadItems(ctx, []*entity.StockTransfer{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// List traslados donde la bodega es origen o destino, más recientes primero.
func (r *StockTransferRepo) List(ctx context.Context, f entity.TransferFilter) ([]*entity.StockTransfer, error) {
	c := &conditions{}
	if f.CompanyID != "" {
		c.add("company_id = ?", f.CompanyID)
	}
	if f.WarehouseID != "" {
		c.add("(from_warehouse_id = ? OR to_warehouse_id = ?)", f.WarehouseID)
	}
	if f.From != nil {
		c.add("transfer_date >= ?", *f.From)
	}
	if f.To != nil {
		c.add("transfer_date <= ?", *f.To)
	}
	query := `SELECT ` + transferColumns + ` FROM stock_transfers` + c.sql() +
		` ORDER BY transfer_date DESC, reference_number DESC` + c.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, classify("list stock transfers", err)
	}
	var list []*entity.StockTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan stock transfer: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify("list stock transfers", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *StockTransferRepo) loadItems(ctx context.Context, transfers []*entity.StockTransfer) error {
	if len(transfers) == 0 {
		return nil
	}
	byID := make(map[string]*entity.StockTransfer, len(transfers))
	ids := make([]string, 0, len(transfers))
	for _, t := range transfers {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, product_id, quantity
		FROM stock_transfer_items WHERE transfer_id = ANY($1::uuid[])
		ORDER BY transfer_id, line_no`, ids)
	if err != nil {
		return classify("list stock transfer items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.StockTransferItem
		if err := rows.Scan(&it.ID, &it.TransferID, &it.ProductID, &it.Quantity); err != nil {
			return fmt.Errorf("scan stock transfer item: %w", err)
		}
		if t, ok := byID[it.TransferID]; ok {
			t.Items = append(t.Items, it)
		}
	}
	return rows.Err()
}
