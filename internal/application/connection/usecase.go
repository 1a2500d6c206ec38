package connection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldops-api/internal/application/inventory"
	"github.com/jhoicas/fieldops-api/internal/domain"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

// Políticas de descuento de material. Ambas conviven: la histórica reparte el
// consumo en partes iguales entre la cuadrilla; la actual carga todo a un
// único pagador resuelto antes de confirmar.
const (
	PolicySinglePayer = "single_payer"
	PolicySplitCrew   = "split_crew"
)

// CreateInput datos recolectados por el flujo de conversación para dar de alta
// una instalación.
type CreateInput struct {
	Type              string
	Address           string
	RouterModel       string // "" = sin router
	RouterQuantity    int
	RouterAccess      bool
	Port              string // "" = omitido
	FiberMeters       decimal.Decimal
	TwistedPairMeters decimal.Decimal
	ContractSigned    bool
	CrewIDs           []string
	Photos            []string
	CreatedBy         string
	MaterialPayerID   *string // requerido bajo PolicySinglePayer si hay consumo
	RouterPayerID     *string // nil = no se descuenta router a nadie
}

// CreateConnectionUseCase da de alta instalaciones de forma transaccional:
// fila + cuadrilla + fotos + descuentos de inventario como una sola unidad.
// Si cualquier descuento falla, nada queda persistido.
type CreateConnectionUseCase struct {
	txRunner    TxRunner
	connections repository.ConnectionRepository
	ledger      *inventory.LedgerUseCase
	policy      string
}

// NewCreateConnectionUseCase construye el caso de uso. policy debe ser
// PolicySinglePayer o PolicySplitCrew.
func NewCreateConnectionUseCase(
	txRunner TxRunner,
	connections repository.ConnectionRepository,
	ledger *inventory.LedgerUseCase,
	policy string,
) *CreateConnectionUseCase {
	if policy != PolicySplitCrew {
		policy = PolicySinglePayer
	}
	return &CreateConnectionUseCase{
		txRunner:    txRunner,
		connections: connections,
		ledger:      ledger,
		policy:      policy,
	}
}

// Policy devuelve la política de descuento activa.
func (uc *CreateConnectionUseCase) Policy() string { return uc.policy }

// Create persiste la instalación y ejecuta los descuentos dentro de una sola
// transacción. La cuadrilla no puede estar vacía; los nombres de la cuadrilla
// se copian a los vínculos para que los reportes históricos no dependan de que
// el técnico siga existiendo.
func (uc *CreateConnectionUseCase) Create(ctx context.Context, input CreateInput) (*entity.Connection, error) {
	if err := validateInput(input, uc.policy); err != nil {
		return nil, err
	}

	conn := &entity.Connection{
		ID:                uuid.New().String(),
		Type:              input.Type,
		Address:           input.Address,
		RouterModel:       input.RouterModel,
		RouterQuantity:    input.RouterQuantity,
		RouterAccess:      input.RouterAccess,
		Port:              input.Port,
		FiberMeters:       input.FiberMeters,
		TwistedPairMeters: input.TwistedPairMeters,
		ContractSigned:    input.ContractSigned,
		CreatedAt:         time.Now(),
		CreatedBy:         input.CreatedBy,
		MaterialPayerID:   input.MaterialPayerID,
		RouterPayerID:     input.RouterPayerID,
		Photos:            input.Photos,
	}

	err := uc.txRunner.RunConnection(ctx, func(
		connRepo repository.ConnectionRepository,
		empRepo repository.EmployeeRepository,
		routerRepo repository.RouterRepository,
		movRepo repository.MovementRepository,
	) error {
		// Snapshot de nombres de la cuadrilla al momento del alta.
		crew := make([]entity.CrewMember, 0, len(input.CrewIDs))
		for _, id := range input.CrewIDs {
			emp, err := empRepo.GetByID(id)
			if err != nil {
				return err
			}
			if emp == nil {
				return domain.ErrEmployeeNotFound
			}
			crew = append(crew, entity.CrewMember{EmployeeID: emp.ID, FullName: emp.FullName})
		}
		conn.Crew = crew

		if err := connRepo.Create(conn); err != nil {
			return err
		}

		if err := uc.deductMaterials(empRepo, movRepo, conn, input); err != nil {
			return err
		}

		if input.RouterPayerID != nil && conn.HasRouter() {
			if _, err := uc.ledger.DeductRouterInTx(
				routerRepo, movRepo,
				*input.RouterPayerID, input.RouterModel, 1,
				&conn.ID, input.CreatedBy, conn.CreatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// deductMaterials aplica la política activa. Bajo split_crew cada miembro
// asume su parte igualitaria (redondeada a 2 decimales); si a cualquiera no le
// alcanza, toda la operación se revierte.
func (uc *CreateConnectionUseCase) deductMaterials(
	empRepo repository.EmployeeRepository,
	movRepo repository.MovementRepository,
	conn *entity.Connection,
	input CreateInput,
) error {
	if input.FiberMeters.IsZero() && input.TwistedPairMeters.IsZero() {
		return nil
	}
	if uc.policy == PolicySplitCrew {
		crewSize := decimal.NewFromInt(int64(len(input.CrewIDs)))
		fiberShare := input.FiberMeters.Div(crewSize).Round(2)
		twistedShare := input.TwistedPairMeters.Div(crewSize).Round(2)
		for _, id := range input.CrewIDs {
			if _, err := uc.ledger.DeductMaterialInTx(
				empRepo, movRepo,
				id, fiberShare, twistedShare,
				&conn.ID, input.CreatedBy, conn.CreatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	}
	_, err := uc.ledger.DeductMaterialInTx(
		empRepo, movRepo,
		*input.MaterialPayerID, input.FiberMeters, input.TwistedPairMeters,
		&conn.ID, input.CreatedBy, conn.CreatedAt,
	)
	return err
}

// Get devuelve una instalación con cuadrilla y fotos.
func (uc *CreateConnectionUseCase) Get(ctx context.Context, id string) (*entity.Connection, error) {
	conn, err := uc.connections.GetByID(id)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, domain.ErrNotFound
	}
	return conn, nil
}

func validateInput(input CreateInput, policy string) error {
	if len(input.CrewIDs) == 0 {
		return domain.ErrEmptyCrew
	}
	switch input.Type {
	case entity.ConnectionTypeMDU, entity.ConnectionTypePrivate, entity.ConnectionTypeBusiness:
	default:
		return domain.ErrInvalidInput
	}
	if input.Address == "" || len(input.Photos) == 0 {
		return domain.ErrInvalidInput
	}
	if input.FiberMeters.IsNegative() || input.TwistedPairMeters.IsNegative() {
		return domain.ErrInvalidInput
	}
	hasConsumption := !input.FiberMeters.IsZero() || !input.TwistedPairMeters.IsZero()
	if policy != PolicySplitCrew && hasConsumption && input.MaterialPayerID == nil {
		return domain.ErrInvalidInput
	}
	return nil
}
