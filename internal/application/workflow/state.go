package workflow

import "github.com/shopspring/decimal"

// State es el paso actual del flujo de alta de instalación. El orden es
// lineal con dos desvíos condicionales: sin router se salta la cantidad, y
// con 0 o 1 candidato suficiente se salta la elección de pagador.
type State int

const (
	StateSelectType State = iota
	StateUploadPhotos
	StateEnterAddress
	StateSelectRouter
	StateEnterRouterQuantity
	StateRouterAccess
	StateEnterPort
	StateEnterFiber
	StateEnterTwisted
	StateContractSigned
	StateSelectCrew
	StateSelectMaterialPayer
	StateSelectRouterPayer
	StateConfirm
	StateDone
)

var stateNames = map[State]string{
	StateSelectType:          "select_type",
	StateUploadPhotos:        "upload_photos",
	StateEnterAddress:        "enter_address",
	StateSelectRouter:        "select_router",
	StateEnterRouterQuantity: "enter_router_quantity",
	StateRouterAccess:        "router_access",
	StateEnterPort:           "enter_port",
	StateEnterFiber:          "enter_fiber",
	StateEnterTwisted:        "enter_twisted",
	StateContractSigned:      "contract_signed",
	StateSelectCrew:          "select_crew",
	StateSelectMaterialPayer: "select_material_payer",
	StateSelectRouterPayer:   "select_router_payer",
	StateConfirm:             "confirm",
	StateDone:                "done",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Draft acumula lo recolectado turno a turno. Vive solo dentro de una sesión
// y se descarta entero ante una cancelación.
type Draft struct {
	Type              string
	Photos            []string
	Address           string
	RouterModel       string // "" = omitido
	RouterQuantity    int
	RouterAccess      bool
	Port              string // "" = omitido
	FiberMeters       decimal.Decimal
	TwistedPairMeters decimal.Decimal
	ContractSigned    bool
	CrewIDs           []string // orden de selección; toggle repetido lo quita
}

// HasRouter indica si el borrador incluye un router.
func (d Draft) HasRouter() bool { return d.RouterModel != "" }

// ToggleCrew agrega o quita un técnico del conjunto de cuadrilla.
func (d *Draft) ToggleCrew(employeeID string) {
	for i, id := range d.CrewIDs {
		if id == employeeID {
			d.CrewIDs = append(d.CrewIDs[:i], d.CrewIDs[i+1:]...)
			return
		}
	}
	d.CrewIDs = append(d.CrewIDs, employeeID)
}

// InCrew indica si el técnico ya está seleccionado.
func (d Draft) InCrew(employeeID string) bool {
	for _, id := range d.CrewIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}

// Next calcula el estado siguiente en el tramo lineal del flujo, aplicando el
// desvío por router omitido. Función pura, verificable sin transporte ni BD.
// Los desvíos que dependen de la resolución de pagador (0/1/varios candidatos)
// los decide la máquina con el desenlace de la resolución en mano.
func Next(s State, d Draft) State {
	switch s {
	case StateSelectType:
		return StateUploadPhotos
	case StateUploadPhotos:
		return StateEnterAddress
	case StateEnterAddress:
		return StateSelectRouter
	case StateSelectRouter:
		if !d.HasRouter() {
			return StateRouterAccess
		}
		return StateEnterRouterQuantity
	case StateEnterRouterQuantity:
		return StateRouterAccess
	case StateRouterAccess:
		return StateEnterPort
	case StateEnterPort:
		return StateEnterFiber
	case StateEnterFiber:
		return StateEnterTwisted
	case StateEnterTwisted:
		return StateContractSigned
	case StateContractSigned:
		return StateSelectCrew
	case StateConfirm:
		return StateDone
	}
	return StateDone
}
