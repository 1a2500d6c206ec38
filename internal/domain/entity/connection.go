package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de conexión soportados.
const (
	ConnectionTypeMDU      = "mdu"      // multifamiliar / edificio
	ConnectionTypePrivate  = "private"  // sector privado / casa
	ConnectionTypeBusiness = "business" // empresa / entidad estatal
)

// ConnectionTypeLabels nombres legibles por tipo (para reportes y prompts).
var ConnectionTypeLabels = map[string]string{
	ConnectionTypeMDU:      "Edificio multifamiliar",
	ConnectionTypePrivate:  "Sector privado",
	ConnectionTypeBusiness: "Empresa / Gobierno",
}

// CrewMember vincula un técnico con una conexión. FullName es una copia del
// nombre al momento de crear la conexión, de modo que los reportes históricos
// sobreviven a la eliminación del técnico.
type CrewMember struct {
	EmployeeID string
	FullName   string
}

// Connection es una instalación terminada: datos del trabajo, cuadrilla
// participante y fotos del sitio. Inmutable una vez confirmada.
type Connection struct {
	ID               string
	Type             string
	Address          string
	RouterModel      string // "" = sin router
	RouterQuantity   int
	RouterAccess     bool
	Port             string // "" = omitido
	FiberMeters      decimal.Decimal
	TwistedPairMeters decimal.Decimal
	ContractSigned   bool
	CreatedAt        time.Time
	CreatedBy        string
	MaterialPayerID  *string // técnico al que se le descontó el material
	RouterPayerID    *string // técnico al que se le descontó el router
	Crew             []CrewMember
	Photos           []string // referencias ordenadas a las fotos subidas
}

// HasRouter indica si la instalación incluyó un router.
func (c Connection) HasRouter() bool { return c.RouterModel != "" }
