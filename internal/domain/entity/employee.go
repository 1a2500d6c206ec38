package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee es un técnico instalador con su saldo materializado de materiales.
// Los saldos nunca son negativos: toda deducción pasa antes por una verificación
// de suficiencia dentro de la misma transacción (ver application/inventory).
type Employee struct {
	ID                 string
	FullName           string
	FiberBalance       decimal.Decimal // metros de fibra óptica
	TwistedPairBalance decimal.Decimal // metros de par trenzado
	CreatedAt          time.Time
}

// HasEnough indica si el saldo cubre los metros solicitados de ambos materiales.
func (e Employee) HasEnough(fiber, twisted decimal.Decimal) bool {
	return e.FiberBalance.GreaterThanOrEqual(fiber) && e.TwistedPairBalance.GreaterThanOrEqual(twisted)
}
