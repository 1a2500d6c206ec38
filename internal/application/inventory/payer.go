package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldops-api/internal/domain/entity"
)

// Resultado de la resolución de pagador.
const (
	PayerOutcomeNone   = "none"   // ningún candidato alcanza: abortar con reporte de faltantes
	PayerOutcomeAuto   = "auto"   // exactamente uno alcanza: se selecciona sin preguntar
	PayerOutcomeChoice = "choice" // varios alcanzan: el usuario debe elegir
)

// MaterialCandidate es un miembro de la cuadrilla evaluado contra los metros
// requeridos, con su saldo visible para el reporte de faltantes.
type MaterialCandidate struct {
	Employee   entity.Employee
	Sufficient bool
}

// MaterialResolution clasifica a los candidatos en tres desenlaces posibles.
type MaterialResolution struct {
	Outcome    string
	Payer      *entity.Employee    // definido solo cuando Outcome == auto
	Candidates []MaterialCandidate // todos los evaluados, en el orden recibido
	Sufficient []entity.Employee   // subconjunto que alcanza
}

// ResolveMaterialPayer clasifica a cada candidato como suficiente o no para
// los metros de fibra y par trenzado solicitados. Función pura: recibe los
// saldos ya leídos y no toca la BD.
func ResolveMaterialPayer(candidates []entity.Employee, fiber, twisted decimal.Decimal) MaterialResolution {
	res := MaterialResolution{Candidates: make([]MaterialCandidate, 0, len(candidates))}
	for _, emp := range candidates {
		ok := emp.HasEnough(fiber, twisted)
		res.Candidates = append(res.Candidates, MaterialCandidate{Employee: emp, Sufficient: ok})
		if ok {
			res.Sufficient = append(res.Sufficient, emp)
		}
	}
	switch len(res.Sufficient) {
	case 0:
		res.Outcome = PayerOutcomeNone
	case 1:
		res.Outcome = PayerOutcomeAuto
		payer := res.Sufficient[0]
		res.Payer = &payer
	default:
		res.Outcome = PayerOutcomeChoice
	}
	return res
}

// RouterCandidate es un miembro de la cuadrilla con su conteo del modelo
// de router requerido.
type RouterCandidate struct {
	Employee entity.Employee
	Quantity int
}

// RouterResolution aplica el mismo patrón de tres desenlaces al pagador del
// router, con el predicado "tiene al menos una unidad".
type RouterResolution struct {
	Outcome    string
	Payer      *entity.Employee
	Candidates []RouterCandidate
	Sufficient []RouterCandidate
}

// ResolveRouterPayer clasifica a los candidatos según tengan unidades del
// modelo. A diferencia del material, el desenlace "none" no aborta la
// instalación: simplemente no se descuenta router a nadie.
func ResolveRouterPayer(candidates []RouterCandidate) RouterResolution {
	res := RouterResolution{Candidates: candidates}
	for _, c := range candidates {
		if c.Quantity > 0 {
			res.Sufficient = append(res.Sufficient, c)
		}
	}
	switch len(res.Sufficient) {
	case 0:
		res.Outcome = PayerOutcomeNone
	case 1:
		res.Outcome = PayerOutcomeAuto
		payer := res.Sufficient[0].Employee
		res.Payer = &payer
	default:
		res.Outcome = PayerOutcomeChoice
	}
	return res
}
