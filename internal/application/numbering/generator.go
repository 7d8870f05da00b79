package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// Series serie de numeración: de dónde se lee el último número y con qué prefijo.
type Series struct {
	Scope  repository.SequenceScope
	Prefix string
}

// Generator emite números "último + 1" dentro de la transacción del llamador.
//
// Con FailSoft activo (por defecto) un fallo de numeración no aborta la operación de
// negocio: se emite una etiqueta única basada en tiempo. Sin FailSoft el error se propaga.
type Generator struct {
	FailSoft bool

	log *logger.Logger
	now func() time.Time
}

// NewGenerator construye el generador con la política fail-soft activa.
func NewGenerator(log *logger.Logger) *Generator {
	return &Generator{FailSoft: true, log: logger.OrNop(log), now: time.Now}
}

// Next devuelve el siguiente número de la serie. El bloqueo de serie se mantiene hasta
// el fin de la transacción, de modo que dos emisiones concurrentes no leen el mismo último número.
func (g *Generator) Next(ctx context.Context, seq repository.SequenceRepository, s Series) (string, error) {
	number, err := g.next(ctx, seq, s)
	if err == nil {
		return number, nil
	}
	if !g.FailSoft {
		return "", fmt.Errorf("numbering %s: %w", s.Prefix, err)
	}
	fallback := ledger.FallbackNumber(s.Prefix, g.now())
	g.log.Warn().Err(err).
		Str("series", s.Prefix).
		Str("fallback", fallback).
		Msg("numeración falló; se usa etiqueta de respaldo")
	return fallback, nil
}

func (g *Generator) next(ctx context.Context, seq repository.SequenceRepository, s Series) (string, error) {
	if err := seq.LockSeries(ctx, s.Prefix); err != nil {
		return "", fmt.Errorf("lock series: %w", err)
	}
	last, err := seq.LastNumber(ctx, s.Scope, s.Prefix)
	if err != nil {
		return "", fmt.Errorf("last number: %w", err)
	}
	return ledger.NextNumber(s.Prefix, last), nil
}
