package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jhoicas/retail-ledger/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_NivelYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(&buf, "warn").Named("payment")

	l.Info().Msg("no debe salir")
	l.Warn().Str("reason", "similarity").Msg("duplicado")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "payment", entry["component"])
	assert.Equal(t, "similarity", entry["reason"])
}

func TestOrNop(t *testing.T) {
	l := logger.OrNop(nil)
	require.NotNil(t, l)
	l.Error().Msg("descartado")
}
