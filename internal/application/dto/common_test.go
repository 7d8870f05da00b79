package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString_DistingueOmitidoDeNull(t *testing.T) {
	tests := []struct {
		name string
		body string
		want dto.OptionalString
	}{
		{name: "omitido", body: `{}`, want: dto.OptionalString{}},
		{name: "null", body: `{"notes":null}`, want: dto.OptionalString{Set: true}},
		{name: "vacío", body: `{"notes":""}`, want: dto.OptionalString{Set: true}},
		{name: "valor", body: `{"notes":"recuento"}`, want: dto.NewOptionalString("recuento")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in dto.UpdateAdjustmentRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))
			assert.Equal(t, tt.want, in.Notes)
		})
	}

	var in dto.UpdateAdjustmentRequest
	assert.Error(t, json.Unmarshal([]byte(`{"notes":12}`), &in))
}
