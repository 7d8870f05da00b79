package ledger

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// SequenceWidth dígitos del consecutivo (0001).
const SequenceWidth = 4

// PaymentPrefix serie de pagos por bodega y sentido: PAY-IN-BOG-.
func PaymentPrefix(dir entity.PaymentDirection, warehouseCode string) string {
	return fmt.Sprintf("PAY-%s-%s-", dir.Code(), warehouseCode)
}

// TransferPrefix serie de traslados por bodega de origen, año y mes: TRF-BOG-202610-.
func TransferPrefix(warehouseCode string, at time.Time) string {
	return fmt.Sprintf("TRF-%s-%s-", warehouseCode, at.Format("200601"))
}

// NextNumber calcula el siguiente número de la serie a partir del último emitido.
// Sin número previo, o si su segmento final no es numérico, la serie inicia en 1.
func NextNumber(prefix, last string) string {
	seq := 1
	if last != "" {
		if n, ok := trailingNumber(last); ok {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, SequenceWidth, seq)
}

// FallbackNumber etiqueta única basada en tiempo cuando la numeración normal falla.
// No garantiza orden respecto a la serie.
func FallbackNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%sT%d%03d", prefix, now.UnixMilli(), rand.IntN(1000))
}

func trailingNumber(s string) (int, bool) {
	i := strings.LastIndex(s, "-")
	seg := s[i+1:]
	if seg == "" {
		return 0, false
	}
	n, err := strconv.Atoi(seg)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
