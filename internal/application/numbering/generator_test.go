package numbering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSequences struct {
	last    string
	lockErr error
	lastErr error
	locked  []string
}

func (f *fakeSequences) LockSeries(_ context.Context, prefix string) error {
	f.locked = append(f.locked, prefix)
	return f.lockErr
}

func (f *fakeSequences) LastNumber(context.Context, repository.SequenceScope, string) (string, error) {
	return f.last, f.lastErr
}

var paySeries = Series{Scope: repository.SequencePayments, Prefix: "PAY-IN-BOG-"}

func TestNext_IncrementaUltimo(t *testing.T) {
	g := NewGenerator(logger.Nop())
	seq := &fakeSequences{last: "PAY-IN-BOG-0041"}

	n, err := g.Next(context.Background(), seq, paySeries)
	require.NoError(t, err)
	assert.Equal(t, "PAY-IN-BOG-0042", n)
	assert.Equal(t, []string{"PAY-IN-BOG-"}, seq.locked, "la serie se bloquea antes de leer")
}

func TestNext_SerieVacia(t *testing.T) {
	g := NewGenerator(nil)
	n, err := g.Next(context.Background(), &fakeSequences{}, paySeries)
	require.NoError(t, err)
	assert.Equal(t, "PAY-IN-BOG-0001", n)
}

func TestNext_FailSoft(t *testing.T) {
	g := NewGenerator(logger.Nop())
	g.now = func() time.Time { return time.UnixMilli(1_760_000_000_000) }

	for _, seq := range []*fakeSequences{
		{lockErr: errors.New("lock timeout")},
		{lastErr: errors.New("connection reset")},
	} {
		n, err := g.Next(context.Background(), seq, paySeries)
		require.NoError(t, err, "la numeración nunca aborta la operación")
		assert.Regexp(t, `^PAY-IN-BOG-T1760000000000\d{3}$`, n)
	}
}

func TestNext_SinFailSoftPropagaError(t *testing.T) {
	g := NewGenerator(logger.Nop())
	g.FailSoft = false

	_, err := g.Next(context.Background(), &fakeSequences{lastErr: errors.New("boom")}, paySeries)
	assert.Error(t, err)
}
