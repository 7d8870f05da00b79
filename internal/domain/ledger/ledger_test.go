package ledger_test

import (
	"testing"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProjectOrder(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		paid      string
		status    entity.PaymentStatus
		due       string
		deletable bool
	}{
		{"sin pagos", "100", "0", entity.PaymentStatusUnpaid, "100", true},
		{"pago parcial", "100", "40", entity.PaymentStatusPartiallyPaid, "60", false},
		{"pago total", "100", "100", entity.PaymentStatusPaid, "0", false},
		{"pendiente dentro de tolerancia", "100", "99.995", entity.PaymentStatusPaid, "0.005", false},
		{"pendiente en el borde", "100", "99.99", entity.PaymentStatusPaid, "0.01", false},
		{"pendiente fuera de tolerancia", "100", "99.98", entity.PaymentStatusPartiallyPaid, "0.02", false},
		{"sobrepago", "100", "120", entity.PaymentStatusPaid, "-20", false},
		{"orden en cero", "0", "0", entity.PaymentStatusPaid, "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ledger.ProjectOrder(dec(tt.total), dec(tt.paid))
			assert.Equal(t, tt.status, got.PaymentStatus)
			assert.True(t, dec(tt.due).Equal(got.DueAmount), "due %s", got.DueAmount)
			assert.True(t, dec(tt.paid).Equal(got.PaidAmount))
			assert.Equal(t, tt.deletable, got.IsDeletable)
		})
	}
}

func TestProjectOrder_Idempotente(t *testing.T) {
	a := ledger.ProjectOrder(dec("250"), dec("100"))
	b := ledger.ProjectOrder(dec("250"), dec("100"))
	assert.Equal(t, a.PaymentStatus, b.PaymentStatus)
	assert.True(t, a.DueAmount.Equal(b.DueAmount))
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, ledger.WithinTolerance(dec("10.00"), dec("10.01")))
	assert.True(t, ledger.WithinTolerance(dec("10.01"), dec("10.00")))
	assert.False(t, ledger.WithinTolerance(dec("10.00"), dec("10.02")))
}

func TestNetDelta(t *testing.T) {
	// add 10 -> subtract 5: -15 aplicado una sola vez
	got := ledger.NetDelta(entity.AdjustmentAdd, dec("10"), entity.AdjustmentSubtract, dec("5"))
	assert.True(t, dec("-15").Equal(got), got.String())

	got = ledger.NetDelta(entity.AdjustmentAdd, dec("10"), entity.AdjustmentAdd, dec("10"))
	assert.True(t, got.IsZero())

	got = ledger.NetDelta(entity.AdjustmentSubtract, dec("3"), entity.AdjustmentAdd, dec("2"))
	assert.True(t, dec("5").Equal(got))
}

func TestNextNumber(t *testing.T) {
	prefix := ledger.PaymentPrefix(entity.PaymentDirectionIn, "BOG")
	assert.Equal(t, "PAY-IN-BOG-", prefix)

	assert.Equal(t, "PAY-IN-BOG-0001", ledger.NextNumber(prefix, ""))
	assert.Equal(t, "PAY-IN-BOG-0008", ledger.NextNumber(prefix, "PAY-IN-BOG-0007"))
	assert.Equal(t, "PAY-IN-BOG-10000", ledger.NextNumber(prefix, "PAY-IN-BOG-9999"))
	// último número con sufijo no numérico (p. ej. etiqueta de respaldo): reinicia en 1
	assert.Equal(t, "PAY-IN-BOG-0001", ledger.NextNumber(prefix, "PAY-IN-BOG-T1700000000000123"))
}

func TestTransferPrefix(t *testing.T) {
	at := time.Date(2026, time.October, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "TRF-MED-202610-", ledger.TransferPrefix("MED", at))
	assert.Equal(t, "TRF-MED-202610-0001", ledger.NextNumber(ledger.TransferPrefix("MED", at), ""))
}

func TestFallbackNumber(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	got := ledger.FallbackNumber("PAY-OUT-BOG-", now)
	assert.Regexp(t, `^PAY-OUT-BOG-T1700000000000\d{3}$`, got)
}

func TestWarehouseNumberingCode(t *testing.T) {
	assert.Equal(t, "BOG", (&entity.Warehouse{Code: "bog", Name: "Bogotá"}).NumberingCode())
	assert.Equal(t, "MED", (&entity.Warehouse{Name: "Medellín Centro"}).NumberingCode())
	assert.Equal(t, "CLX", (&entity.Warehouse{Name: "Cl"}).NumberingCode())
	assert.Equal(t, "XXX", (&entity.Warehouse{}).NumberingCode())
}
