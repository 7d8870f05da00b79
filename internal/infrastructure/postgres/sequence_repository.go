package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// columnas de donde sale el último número emitido de cada serie
var sequenceColumns = map[repository.SequenceScope]struct{ table, column string }{
	repository.SequencePayments:  {"payments", "payment_number"},
	repository.SequenceTransfers: {"stock_transfers", "reference_number"},
}

// SequenceRepo numeración "último + 1" serializada con un advisory lock por prefijo.
// Las consultas corren en un savepoint: si fallan, la transacción del llamador sigue usable
// y el generador puede caer al número de respaldo.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// LockSeries toma pg_advisory_xact_lock sobre el hash del prefijo; se libera en commit/rollback.
func (r *SequenceRepo) LockSeries(ctx context.Context, prefix string) error {
	return withSavepoint(ctx, r.q, func(q Querier) error {
		_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, prefix)
		return classify("lock series "+prefix, err)
	})
}

// LastNumber mayor número con el prefijo dado y sufijo solo numérico (ignora los de respaldo "T...").
func (r *SequenceRepo) LastNumber(ctx context.Context, scope repository.SequenceScope, prefix string) (string, error) {
	src, ok := sequenceColumns[scope]
	if !ok {
		return "", fmt.Errorf("serie desconocida %q", scope)
	}
	query := fmt.Sprintf(`
		SELECT %[2]s FROM %[1]s
		WHERE left(%[2]s, char_length($1)) = $1
			AND substring(%[2]s FROM char_length($1) + 1) ~ '^[0-9]+$'
		ORDER BY char_length(%[2]s) DESC, %[2]s DESC
		LIMIT 1`, src.table, src.column)

	var last string
	err := withSavepoint(ctx, r.q, func(q Querier) error {
		err := q.QueryRow(ctx, query, prefix).Scan(&last)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return classify("last number "+prefix, err)
	})
	if err != nil {
		return "", err
	}
	return last, nil
}
