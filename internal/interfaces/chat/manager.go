// Package chat orquesta las sesiones de conversación de los técnicos:
// enruta eventos del transporte hacia el flujo activo de cada usuario y
// administra el ciclo de vida de las sesiones.
package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/fieldops-api/internal/application/connection"
	"github.com/jhoicas/fieldops-api/internal/application/inventory"
	"github.com/jhoicas/fieldops-api/internal/application/report"
	"github.com/jhoicas/fieldops-api/internal/application/workflow"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

// EventKind clasifica los eventos entrantes del transporte.
type EventKind int

const (
	EventCommand EventKind = iota // comando explícito (nueva, reporte, saldo, cancelar)
	EventText                     // texto libre
	EventSelect                   // opción elegida de un prompt anterior
	EventPhoto                    // referencia a una foto subida
)

// Event es un turno del usuario ya normalizado por el adaptador de transporte.
type Event struct {
	UserID string
	Kind   EventKind
	Value  string
}

// Sender renderiza prompts hacia el usuario. Lo implementa el adaptador del
// transporte concreto (Telegram, consola de pruebas, etc.).
type Sender interface {
	Send(userID string, p workflow.Prompt) error
}

// ReportExporter serializa un reporte de período a planilla descargable.
type ReportExporter interface {
	Export(r *report.Report) ([]byte, error)
}

// flow es una sesión activa cualquiera: el alta de instalación o alguno de
// los mini-flujos (reporte, saldo). Todos hablan el mismo contrato de turnos.
type flow interface {
	Apply(ctx context.Context, in workflow.Input) (workflow.Prompt, error)
}

// Config parámetros del Manager.
type Config struct {
	AllowedUsers []string // vacío = sin restricción
	MaxPhotos    int
	Policy       string // política de descuento de material
}

// Manager mantiene una sesión activa por usuario. Iniciar un comando nuevo
// descarta implícitamente la sesión anterior, sin efectos persistidos.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]flow

	employees repository.EmployeeRepository
	routers   repository.RouterRepository
	ledger    *inventory.LedgerUseCase
	reports   *report.UseCase
	exporter  ReportExporter
	creator   workflow.ConnectionCreator
	acta      workflow.ActaGenerator
	sender    Sender
	allowed   map[string]struct{}
	cfg       Config
	log       zerolog.Logger
}

// NewManager arma el orquestador de sesiones.
func NewManager(
	employees repository.EmployeeRepository,
	routers repository.RouterRepository,
	ledger *inventory.LedgerUseCase,
	reports *report.UseCase,
	exporter ReportExporter,
	creator workflow.ConnectionCreator,
	acta workflow.ActaGenerator,
	sender Sender,
	cfg Config,
	log zerolog.Logger,
) *Manager {
	var allowed map[string]struct{}
	if len(cfg.AllowedUsers) > 0 {
		allowed = make(map[string]struct{}, len(cfg.AllowedUsers))
		for _, u := range cfg.AllowedUsers {
			allowed[u] = struct{}{}
		}
	}
	if cfg.Policy == "" {
		cfg.Policy = connection.PolicySinglePayer
	}
	return &Manager{
		sessions:  make(map[string]flow),
		employees: employees,
		routers:   routers,
		ledger:    ledger,
		reports:   reports,
		exporter:  exporter,
		creator:   creator,
		acta:      acta,
		sender:    sender,
		allowed:   allowed,
		cfg:       cfg,
		log:       log,
	}
}

// Comandos reconocidos. El adaptador de transporte entrega el comando sin
// prefijo ("/nueva" llega como "nueva").
const (
	CmdNew     = "nueva"
	CmdReport  = "reporte"
	CmdBalance = "saldo"
	CmdCancel  = "cancelar"
)

// Handle procesa un evento entrante. Nunca devuelve error al transporte: los
// fallos se loguean y se responden como prompt de reintento, conservando la
// sesión para que el usuario no pierda lo ya ingresado.
func (m *Manager) Handle(ctx context.Context, ev Event) {
	if !m.authorized(ev.UserID) {
		m.log.Warn().Str("user_id", ev.UserID).Msg("evento de usuario no autorizado")
		m.send(ev.UserID, workflow.Prompt{
			Text:     "No estás autorizado para usar este sistema.",
			Terminal: true,
		})
		return
	}

	if ev.Kind == EventCommand {
		m.handleCommand(ctx, ev)
		return
	}

	active := m.session(ev.UserID)
	if active == nil {
		m.send(ev.UserID, helpPrompt())
		return
	}
	m.dispatch(ctx, ev.UserID, active, toInput(ev))
}

func (m *Manager) handleCommand(ctx context.Context, ev Event) {
	switch ev.Value {
	case CmdCancel:
		active := m.session(ev.UserID)
		if active == nil {
			m.send(ev.UserID, workflow.Prompt{Text: "No hay nada que cancelar.", Terminal: true})
			return
		}
		m.dispatch(ctx, ev.UserID, active, workflow.Input{Kind: workflow.InputCancel})

	case CmdNew:
		m.discardActive(ev.UserID)
		machine := workflow.New(ev.UserID, workflow.Deps{
			Employees: m.employees,
			Routers:   m.routers,
			Creator:   m.creator,
			Acta:      m.acta,
			Policy:    m.cfg.Policy,
			MaxPhotos: m.cfg.MaxPhotos,
		})
		m.setSession(ev.UserID, machine)
		m.log.Info().Str("user_id", ev.UserID).Msg("flujo de instalación iniciado")
		m.send(ev.UserID, machine.Start())

	case CmdReport:
		m.discardActive(ev.UserID)
		f := newReportFlow(m.employees, m.reports, m.exporter)
		p, err := f.start()
		if err != nil {
			m.fail(ev.UserID, err)
			return
		}
		m.setSession(ev.UserID, f)
		m.finish(ev.UserID, p)

	case CmdBalance:
		m.discardActive(ev.UserID)
		f := newBalanceFlow(m.employees, m.ledger)
		p, err := f.start()
		if err != nil {
			m.fail(ev.UserID, err)
			return
		}
		m.setSession(ev.UserID, f)
		m.finish(ev.UserID, p)

	default:
		m.send(ev.UserID, helpPrompt())
	}
}

// dispatch entrega el turno al flujo activo y cierra la sesión si terminó.
func (m *Manager) dispatch(ctx context.Context, userID string, f flow, in workflow.Input) {
	p, err := f.Apply(ctx, in)
	if err != nil {
		m.fail(userID, err)
		return
	}
	m.finish(userID, p)
}

func (m *Manager) finish(userID string, p workflow.Prompt) {
	if p.Terminal {
		m.discardActive(userID)
	}
	m.send(userID, p)
}

// fail responde un prompt de reintento sin tocar la sesión: el estado del
// flujo sobrevive a un fallo transitorio de la BD.
func (m *Manager) fail(userID string, err error) {
	m.log.Error().Err(err).Str("user_id", userID).Msg("error procesando turno de chat")
	m.send(userID, workflow.Prompt{
		Text: "Ocurrió un error procesando tu solicitud. Intentá de nuevo en unos segundos.",
	})
}

func (m *Manager) send(userID string, p workflow.Prompt) {
	if err := m.sender.Send(userID, p); err != nil {
		m.log.Error().Err(err).Str("user_id", userID).Msg("error enviando prompt")
	}
}

func (m *Manager) authorized(userID string) bool {
	if m.allowed == nil {
		return true
	}
	_, ok := m.allowed[userID]
	return ok
}

func (m *Manager) session(userID string) flow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID]
}

func (m *Manager) setSession(userID string, f flow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = f
}

func (m *Manager) discardActive(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[userID]; ok {
		delete(m.sessions, userID)
		m.log.Debug().Str("user_id", userID).Msg("sesión anterior descartada")
	}
}

// ActiveSessions cantidad de sesiones vivas, para diagnóstico.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func toInput(ev Event) workflow.Input {
	switch ev.Kind {
	case EventSelect:
		return workflow.Input{Kind: workflow.InputSelect, Value: ev.Value}
	case EventPhoto:
		return workflow.Input{Kind: workflow.InputPhoto, Value: ev.Value}
	default:
		return workflow.Input{Kind: workflow.InputText, Value: ev.Value}
	}
}

func helpPrompt() workflow.Prompt {
	return workflow.Prompt{
		Text: "Comandos disponibles:\n" +
			"/nueva — registrar una instalación\n" +
			"/reporte — reporte de instalaciones por técnico\n" +
			"/saldo — saldo de material y routers de un técnico\n" +
			"/cancelar — cancelar el flujo en curso",
	}
}
