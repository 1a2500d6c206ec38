package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldops-api/internal/application/connection"
	"github.com/jhoicas/fieldops-api/internal/application/inventory"
	"github.com/jhoicas/fieldops-api/internal/domain"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

// DefaultMaxPhotos límite de fotos por instalación.
const DefaultMaxPhotos = 10

// Deps colaboradores del motor. Employees y Routers son solo lectura aquí;
// toda mutación pasa por Creator al confirmar.
type Deps struct {
	Employees repository.EmployeeRepository
	Routers   repository.RouterRepository
	Creator   ConnectionCreator
	Acta      ActaGenerator // opcional
	Policy    string        // connection.PolicySinglePayer | PolicySplitCrew
	MaxPhotos int
}

// Machine es una instancia viva del flujo de alta, con alcance de una sola
// sesión de chat. Nace en StateSelectType y muere en StateDone o al cancelar;
// nunca se comparte ni se reanuda entre sesiones.
type Machine struct {
	deps   Deps
	userID string
	state  State
	draft  Draft

	staff           []entity.Employee // plantilla cacheada al armar la cuadrilla
	matRes          inventory.MaterialResolution
	rtrRes          inventory.RouterResolution
	materialPayerID *string
	routerPayerID   *string
}

// New crea una instancia del flujo para el usuario dado.
func New(userID string, deps Deps) *Machine {
	if deps.MaxPhotos <= 0 {
		deps.MaxPhotos = DefaultMaxPhotos
	}
	return &Machine{deps: deps, userID: userID, state: StateSelectType}
}

// State devuelve el estado actual.
func (m *Machine) State() State { return m.state }

// Done indica si la sesión terminó.
func (m *Machine) Done() bool { return m.state == StateDone }

// Start devuelve el primer prompt del flujo.
func (m *Machine) Start() Prompt {
	return m.promptSelectType()
}

// Apply procesa un turno del usuario y devuelve el siguiente prompt.
// La cancelación vale en cualquier estado y descarta todo sin efectos.
// Una entrada inválida repite el mismo estado con un Hint descriptivo.
// Solo los errores de persistencia suben como error; el estado se conserva
// para que la sesión pueda reintentar.
func (m *Machine) Apply(ctx context.Context, in Input) (Prompt, error) {
	if m.state == StateDone {
		return Prompt{State: StateDone, Terminal: true}, nil
	}
	if in.Kind == InputCancel {
		return m.cancel(), nil
	}

	switch m.state {
	case StateSelectType:
		return m.applySelectType(in)
	case StateUploadPhotos:
		return m.applyUploadPhotos(in)
	case StateEnterAddress:
		return m.applyEnterAddress(in)
	case StateSelectRouter:
		return m.applySelectRouter(in)
	case StateEnterRouterQuantity:
		return m.applyEnterRouterQuantity(in)
	case StateRouterAccess:
		return m.applyRouterAccess(in)
	case StateEnterPort:
		return m.applyEnterPort(in)
	case StateEnterFiber:
		return m.applyEnterFiber(in)
	case StateEnterTwisted:
		return m.applyEnterTwisted(in)
	case StateContractSigned:
		return m.applyContractSigned(in)
	case StateSelectCrew:
		return m.applySelectCrew(in)
	case StateSelectMaterialPayer:
		return m.applySelectMaterialPayer(in)
	case StateSelectRouterPayer:
		return m.applySelectRouterPayer(in)
	case StateConfirm:
		return m.applyConfirm(ctx, in)
	}
	return Prompt{State: StateDone, Terminal: true}, nil
}

func (m *Machine) cancel() Prompt {
	m.state = StateDone
	m.draft = Draft{}
	return Prompt{
		State:    StateDone,
		Text:     "Instalación cancelada. Todos los datos ingresados fueron descartados.",
		Terminal: true,
	}
}

// ── Pasos ─────────────────────────────────────────────────────────────────────

func (m *Machine) applySelectType(in Input) (Prompt, error) {
	if in.Kind != InputSelect {
		return m.reprompt(m.promptSelectType(), "Elegí el tipo de conexión con una de las opciones."), nil
	}
	t := strings.TrimPrefix(in.Value, "type:")
	if _, ok := entity.ConnectionTypeLabels[t]; !ok {
		return m.reprompt(m.promptSelectType(), "Tipo de conexión desconocido."), nil
	}
	m.draft.Type = t
	m.state = Next(m.state, m.draft)
	return m.promptUploadPhotos(""), nil
}

func (m *Machine) applyUploadPhotos(in Input) (Prompt, error) {
	switch in.Kind {
	case InputPhoto:
		if len(m.draft.Photos) >= m.deps.MaxPhotos {
			return m.reprompt(m.promptUploadPhotos(""), fmt.Sprintf("Límite de %d fotos alcanzado.", m.deps.MaxPhotos)), nil
		}
		m.draft.Photos = append(m.draft.Photos, in.Value)
		return m.promptUploadPhotos(fmt.Sprintf("Foto %d/%d recibida.", len(m.draft.Photos), m.deps.MaxPhotos)), nil
	case InputSelect:
		if in.Value == "continue" {
			// El avance con cero fotos se rechaza, no es un error: mismo estado.
			if len(m.draft.Photos) == 0 {
				return m.reprompt(m.promptUploadPhotos(""), "Subí al menos una foto del sitio antes de continuar."), nil
			}
			m.state = Next(m.state, m.draft)
			return m.promptEnterAddress(), nil
		}
	}
	return m.reprompt(m.promptUploadPhotos(""), ""), nil
}

func (m *Machine) applyEnterAddress(in Input) (Prompt, error) {
	if in.Kind != InputText || strings.TrimSpace(in.Value) == "" {
		return m.reprompt(m.promptEnterAddress(), "Ingresá la dirección como texto."), nil
	}
	m.draft.Address = strings.TrimSpace(in.Value)
	m.state = Next(m.state, m.draft)
	return m.promptSelectRouter()
}

func (m *Machine) applySelectRouter(in Input) (Prompt, error) {
	if in.Kind != InputSelect {
		p, err := m.promptSelectRouter()
		if err != nil {
			return Prompt{}, err
		}
		return m.reprompt(p, "Elegí un modelo de la lista u omití el paso."), nil
	}
	if in.Value == "skip" {
		m.draft.RouterModel = ""
		m.draft.RouterQuantity = 0
		m.state = Next(m.state, m.draft) // sin router: directo a acceso
		return m.promptRouterAccess(), nil
	}
	model := strings.TrimPrefix(in.Value, "model:")
	if model == "" {
		p, err := m.promptSelectRouter()
		if err != nil {
			return Prompt{}, err
		}
		return m.reprompt(p, "Modelo inválido."), nil
	}
	m.draft.RouterModel = model
	m.state = Next(m.state, m.draft)
	return m.promptEnterRouterQuantity(), nil
}

func (m *Machine) applyEnterRouterQuantity(in Input) (Prompt, error) {
	if in.Kind != InputText {
		return m.reprompt(m.promptEnterRouterQuantity(), "Ingresá la cantidad como número entero."), nil
	}
	qty, err := parseQuantity(in.Value)
	if err != nil {
		return m.reprompt(m.promptEnterRouterQuantity(), err.Error()), nil
	}
	m.draft.RouterQuantity = qty
	m.state = Next(m.state, m.draft)
	return m.promptRouterAccess(), nil
}

func (m *Machine) applyRouterAccess(in Input) (Prompt, error) {
	if in.Kind != InputSelect {
		return m.reprompt(m.promptRouterAccess(), "Confirmá u omití el acceso al router."), nil
	}
	switch in.Value {
	case "access:yes":
		m.draft.RouterAccess = true
	case "access:skip":
		m.draft.RouterAccess = false
	default:
		return m.reprompt(m.promptRouterAccess(), ""), nil
	}
	m.state = Next(m.state, m.draft)
	return m.promptEnterPort(), nil
}

func (m *Machine) applyEnterPort(in Input) (Prompt, error) {
	switch in.Kind {
	case InputSelect:
		if in.Value != "skip" {
			return m.reprompt(m.promptEnterPort(), ""), nil
		}
		m.draft.Port = ""
	case InputText:
		m.draft.Port = strings.TrimSpace(in.Value)
	default:
		return m.reprompt(m.promptEnterPort(), "Ingresá el puerto como texto u omití el paso."), nil
	}
	m.state = Next(m.state, m.draft)
	return m.promptEnterFiber(), nil
}

func (m *Machine) applyEnterFiber(in Input) (Prompt, error) {
	if in.Kind != InputText {
		return m.reprompt(m.promptEnterFiber(), "Ingresá los metros como número."), nil
	}
	meters, err := parseMeters(in.Value)
	if err != nil {
		return m.reprompt(m.promptEnterFiber(), err.Error()), nil
	}
	m.draft.FiberMeters = meters
	m.state = Next(m.state, m.draft)
	return m.promptEnterTwisted(), nil
}

func (m *Machine) applyEnterTwisted(in Input) (Prompt, error) {
	if in.Kind != InputText {
		return m.reprompt(m.promptEnterTwisted(), "Ingresá los metros como número."), nil
	}
	meters, err := parseMeters(in.Value)
	if err != nil {
		return m.reprompt(m.promptEnterTwisted(), err.Error()), nil
	}
	m.draft.TwistedPairMeters = meters
	m.state = Next(m.state, m.draft)
	return m.promptContractSigned(), nil
}

func (m *Machine) applyContractSigned(in Input) (Prompt, error) {
	if in.Kind != InputSelect || in.Value != "contract:signed" {
		return m.reprompt(m.promptContractSigned(), "Confirmá que el contrato está firmado."), nil
	}
	m.draft.ContractSigned = true

	staff, err := m.deps.Employees.List()
	if err != nil {
		return Prompt{}, err
	}
	if len(staff) == 0 {
		m.state = StateDone
		return Prompt{
			State:    StateDone,
			Text:     "No hay técnicos registrados en el sistema. Pedile al administrador que dé de alta la plantilla.",
			Terminal: true,
		}, nil
	}
	m.staff = staff
	m.state = Next(m.state, m.draft)
	return m.promptSelectCrew(""), nil
}

func (m *Machine) applySelectCrew(in Input) (Prompt, error) {
	if in.Kind != InputSelect {
		return m.reprompt(m.promptSelectCrew(""), "Marcá a los técnicos con las opciones."), nil
	}
	if strings.HasPrefix(in.Value, "crew:") {
		id := strings.TrimPrefix(in.Value, "crew:")
		if m.staffByID(id) == nil {
			return m.reprompt(m.promptSelectCrew(""), ""), nil
		}
		m.draft.ToggleCrew(id)
		return m.promptSelectCrew(""), nil
	}
	if in.Value != "done" {
		return m.reprompt(m.promptSelectCrew(""), ""), nil
	}
	// Cerrar con cuadrilla vacía se rechaza en el mismo estado.
	if len(m.draft.CrewIDs) == 0 {
		return m.reprompt(m.promptSelectCrew(""), "Seleccioná al menos un técnico."), nil
	}
	return m.resolveMaterialPayer()
}

// resolveMaterialPayer clasifica a la cuadrilla contra los metros requeridos
// y decide el siguiente estado: abortar, auto-seleccionar o preguntar.
func (m *Machine) resolveMaterialPayer() (Prompt, error) {
	if m.deps.Policy == connection.PolicySplitCrew {
		// Política histórica: reparto igualitario, no hay pagador único.
		m.materialPayerID = nil
		return m.resolveRouterPayer()
	}

	crew, err := m.crewEmployees()
	if err != nil {
		return Prompt{}, err
	}
	m.matRes = inventory.ResolveMaterialPayer(crew, m.draft.FiberMeters, m.draft.TwistedPairMeters)

	switch m.matRes.Outcome {
	case inventory.PayerOutcomeNone:
		m.state = StateDone
		return Prompt{
			State:    StateDone,
			Text:     m.shortageReport(),
			Terminal: true,
		}, nil
	case inventory.PayerOutcomeAuto:
		id := m.matRes.Payer.ID
		m.materialPayerID = &id
		return m.resolveRouterPayer()
	default:
		m.state = StateSelectMaterialPayer
		return m.promptSelectMaterialPayer(), nil
	}
}

// resolveRouterPayer aplica el mismo patrón al router. Que nadie tenga el
// modelo no aborta: la instalación sigue sin descuento de router.
func (m *Machine) resolveRouterPayer() (Prompt, error) {
	if !m.draft.HasRouter() {
		m.routerPayerID = nil
		m.state = StateConfirm
		return m.promptConfirm(), nil
	}
	crew, err := m.crewEmployees()
	if err != nil {
		return Prompt{}, err
	}
	candidates := make([]inventory.RouterCandidate, 0, len(crew))
	for _, emp := range crew {
		r, err := m.deps.Routers.Get(emp.ID, m.draft.RouterModel)
		if err != nil {
			return Prompt{}, err
		}
		candidates = append(candidates, inventory.RouterCandidate{Employee: emp, Quantity: r.Quantity})
	}
	m.rtrRes = inventory.ResolveRouterPayer(candidates)

	switch m.rtrRes.Outcome {
	case inventory.PayerOutcomeNone:
		m.routerPayerID = nil
	case inventory.PayerOutcomeAuto:
		id := m.rtrRes.Payer.ID
		m.routerPayerID = &id
	default:
		m.state = StateSelectRouterPayer
		return m.promptSelectRouterPayer(), nil
	}
	m.state = StateConfirm
	return m.promptConfirm(), nil
}

func (m *Machine) applySelectMaterialPayer(in Input) (Prompt, error) {
	// Solo se acepta un id del conjunto precalculado de suficientes;
	// cualquier otro valor repite el prompt.
	if in.Kind == InputSelect && strings.HasPrefix(in.Value, "payer:") {
		id := strings.TrimPrefix(in.Value, "payer:")
		for _, emp := range m.matRes.Sufficient {
			if emp.ID == id {
				m.materialPayerID = &id
				return m.resolveRouterPayer()
			}
		}
	}
	return m.reprompt(m.promptSelectMaterialPayer(), ""), nil
}

func (m *Machine) applySelectRouterPayer(in Input) (Prompt, error) {
	if in.Kind == InputSelect && strings.HasPrefix(in.Value, "rpayer:") {
		id := strings.TrimPrefix(in.Value, "rpayer:")
		for _, c := range m.rtrRes.Sufficient {
			if c.Employee.ID == id {
				m.routerPayerID = &id
				m.state = StateConfirm
				return m.promptConfirm(), nil
			}
		}
	}
	return m.reprompt(m.promptSelectRouterPayer(), ""), nil
}

func (m *Machine) applyConfirm(ctx context.Context, in Input) (Prompt, error) {
	if in.Kind != InputSelect {
		return m.reprompt(m.promptConfirm(), "Confirmá o cancelá con las opciones."), nil
	}
	switch in.Value {
	case "confirm:no":
		return m.cancel(), nil
	case "confirm:yes":
	default:
		return m.reprompt(m.promptConfirm(), ""), nil
	}

	conn, err := m.deps.Creator.Create(ctx, connection.CreateInput{
		Type:              m.draft.Type,
		Address:           m.draft.Address,
		RouterModel:       m.draft.RouterModel,
		RouterQuantity:    m.draft.RouterQuantity,
		RouterAccess:      m.draft.RouterAccess,
		Port:              m.draft.Port,
		FiberMeters:       m.draft.FiberMeters,
		TwistedPairMeters: m.draft.TwistedPairMeters,
		ContractSigned:    m.draft.ContractSigned,
		CrewIDs:           m.draft.CrewIDs,
		Photos:            m.draft.Photos,
		CreatedBy:         m.userID,
		MaterialPayerID:   m.materialPayerID,
		RouterPayerID:     m.routerPayerID,
	})
	if err != nil {
		// Otro flujo pudo vaciar el saldo entre la resolución y el alta:
		// se aborta con mensaje, sin escrituras parciales.
		if errors.Is(err, domain.ErrInsufficientMaterial) || errors.Is(err, domain.ErrInsufficientRouter) {
			m.state = StateDone
			return Prompt{
				State:    StateDone,
				Text:     "No se pudo registrar la instalación: el saldo cambió y ya no alcanza. Nada fue guardado.",
				Terminal: true,
			}, nil
		}
		// Error de persistencia: el estado se conserva para reintentar.
		return Prompt{}, err
	}

	m.state = StateDone
	p := Prompt{
		State:    StateDone,
		Text:     fmt.Sprintf("Instalación registrada: #%s\nFecha: %s", conn.ID, conn.CreatedAt.Format("02.01.2006 15:04")),
		Terminal: true,
	}
	if m.deps.Acta != nil {
		// El acta es una cortesía: si falla su generación, el alta ya quedó firme.
		if pdf, err := m.deps.Acta.Generate(conn); err == nil {
			p.Document = &Document{
				Name:    fmt.Sprintf("acta_%s.pdf", conn.ID),
				Content: pdf,
				Caption: "Acta de instalación",
			}
		}
	}
	return p, nil
}

// ── Auxiliares ────────────────────────────────────────────────────────────────

func (m *Machine) reprompt(p Prompt, hint string) Prompt {
	p.Hint = hint
	return p
}

func (m *Machine) staffByID(id string) *entity.Employee {
	for i := range m.staff {
		if m.staff[i].ID == id {
			return &m.staff[i]
		}
	}
	return nil
}

// crewEmployees relee los saldos de la cuadrilla: la resolución de pagador
// siempre trabaja con datos frescos, no con la plantilla cacheada.
func (m *Machine) crewEmployees() ([]entity.Employee, error) {
	out := make([]entity.Employee, 0, len(m.draft.CrewIDs))
	for _, id := range m.draft.CrewIDs {
		emp, err := m.deps.Employees.GetByID(id)
		if err != nil {
			return nil, err
		}
		if emp == nil {
			return nil, domain.ErrEmployeeNotFound
		}
		out = append(out, *emp)
	}
	return out, nil
}

func parseMeters(text string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(text), ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("ingresá un número válido (por ejemplo: 100 o 50.5)")
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("los metros no pueden ser negativos")
	}
	return v, nil
}

func parseQuantity(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("ingresá un entero mayor a cero (por ejemplo: 1, 2, 3)")
	}
	return n, nil
}
