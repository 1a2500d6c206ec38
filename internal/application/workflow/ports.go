package workflow

import (
	"context"

	"github.com/jhoicas/fieldops-api/internal/application/connection"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
)

// Tipos de entrada que puede producir el transporte de chat.
type InputKind int

const (
	InputText   InputKind = iota // texto libre
	InputSelect                  // opción elegida de un prompt
	InputPhoto                   // referencia a una foto subida
	InputCancel                  // señal de cancelación, válida en todo estado
)

// Input es un turno del usuario, ya despojado de los detalles del transporte.
type Input struct {
	Kind  InputKind
	Value string // texto, id de opción o referencia de foto según Kind
}

// Option es una opción seleccionable de un prompt. El transporte decide cómo
// mostrarla (botón, número, texto).
type Option struct {
	ID    string
	Label string
}

// Document es un artefacto adjunto a un prompt (acta PDF, reporte Excel).
type Document struct {
	Name    string
	Content []byte
	Caption string
}

// Prompt es lo que la sesión debe mostrar a continuación. Hint va lleno
// cuando una entrada inválida repite el mismo estado.
type Prompt struct {
	State    State
	Text     string
	Hint     string
	Options  []Option
	Document *Document
	Terminal bool // la sesión terminó; la instancia no acepta más entradas
}

// ConnectionCreator alta transaccional de la instalación confirmada.
type ConnectionCreator interface {
	Create(ctx context.Context, in connection.CreateInput) (*entity.Connection, error)
}

// ActaGenerator produce el acta PDF de una instalación recién confirmada.
// Opcional: con nil la confirmación no adjunta documento.
type ActaGenerator interface {
	Generate(conn *entity.Connection) ([]byte, error)
}
