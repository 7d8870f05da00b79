package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

// Querier abstrae pgxpool.Pool y pgx.Tx: los repositorios funcionan igual con o sin transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// beginner lo cumplen pgxpool.Pool (transacción nueva) y pgx.Tx (savepoint).
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	codeUniqueViolation = "23505"
	codeUndefinedColumn = "42703"
	codeUndefinedTable  = "42P01"
)

// classify envuelve el error del driver con la operación y lo traduce a errores de dominio
// cuando el código SQLSTATE lo permite.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, repository.ErrUniqueViolation, pgErr.ConstraintName)
		case codeUndefinedColumn, codeUndefinedTable:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrSchemaMismatch, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// withSavepoint ejecuta fn en una subtransacción: si falla, la transacción externa sigue viva.
// Sin soporte de Begin ejecuta fn directamente.
func withSavepoint(ctx context.Context, q Querier, fn func(q Querier) error) error {
	b, ok := q.(beginner)
	if !ok {
		return fn(q)
	}
	sp, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(sp); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// conditions arma el WHERE dinámico de los listados. Cada "?" de cond se reemplaza por el
// placeholder del valor recién agregado.
type conditions struct {
	where []string
	args  []any
}

func (c *conditions) add(cond string, v any) {
	c.args = append(c.args, v)
	c.where = append(c.where, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(c.args))))
}

func (c *conditions) sql() string {
	if len(c.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.where, " AND ")
}

// page agrega LIMIT/OFFSET; limit <= 0 no limita.
func (c *conditions) page(limit, offset int) string {
	var out string
	if limit > 0 {
		c.args = append(c.args, limit)
		out += fmt.Sprintf(" LIMIT $%d", len(c.args))
	}
	if offset > 0 {
		c.args = append(c.args, offset)
		out += fmt.Sprintf(" OFFSET $%d", len(c.args))
	}
	return out
}

// nullable convierte "" en NULL para columnas opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
