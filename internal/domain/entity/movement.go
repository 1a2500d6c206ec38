package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operaciones del libro de movimientos.
const (
	MovementOpAdd    = "add"
	MovementOpDeduct = "deduct"
)

// Tipos de recurso movido.
const (
	ItemTypeFiber       = "fiber"
	ItemTypeTwistedPair = "twisted_pair"
	ItemTypeRouter      = "router"
)

// MaterialMovement es una entrada del libro de movimientos: registro
// append-only de cada cambio de saldo. Nunca se actualiza ni se borra;
// el saldo materializado en employees debe ser siempre la suma de estas filas.
type MaterialMovement struct {
	ID           string
	EmployeeID   string
	Operation    string // add, deduct
	ItemType     string // fiber, twisted_pair, router
	ItemName     string // nombre legible; para routers, el modelo exacto
	Quantity     decimal.Decimal
	BalanceAfter decimal.Decimal
	ConnectionID *string // presente cuando el movimiento nace de una instalación
	CreatedBy    string
	CreatedAt    time.Time
}
