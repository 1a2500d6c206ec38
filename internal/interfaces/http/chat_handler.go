package http

import (
	"encoding/base64"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldops-api/internal/application/dto"
	"github.com/jhoicas/fieldops-api/internal/application/workflow"
	"github.com/jhoicas/fieldops-api/internal/interfaces/chat"
)

// PromptOutbox implementa chat.Sender acumulando los prompts por usuario,
// para que el gateway webhook los devuelva en la respuesta del mismo request.
type PromptOutbox struct {
	mu      sync.Mutex
	pending map[string][]workflow.Prompt
}

// NewPromptOutbox construye el buzón.
func NewPromptOutbox() *PromptOutbox {
	return &PromptOutbox{pending: make(map[string][]workflow.Prompt)}
}

// Send implementa chat.Sender.
func (o *PromptOutbox) Send(userID string, p workflow.Prompt) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending[userID] = append(o.pending[userID], p)
	return nil
}

// Drain devuelve y limpia los prompts acumulados de un usuario.
func (o *PromptOutbox) Drain(userID string) []workflow.Prompt {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.pending[userID]
	delete(o.pending, userID)
	return out
}

// ChatEventRequest evento entrante del transporte de chat.
type ChatEventRequest struct {
	UserID string `json:"user_id"`
	Kind   string `json:"kind"` // command, text, select, photo
	Value  string `json:"value"`
}

// ChatOptionDTO opción seleccionable de un prompt.
type ChatOptionDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ChatDocumentDTO documento adjunto, contenido en base64.
type ChatDocumentDTO struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Caption string `json:"caption,omitempty"`
}

// ChatPromptDTO prompt a renderizar por el transporte.
type ChatPromptDTO struct {
	Text     string           `json:"text"`
	Hint     string           `json:"hint,omitempty"`
	Options  []ChatOptionDTO  `json:"options,omitempty"`
	Document *ChatDocumentDTO `json:"document,omitempty"`
	Terminal bool             `json:"terminal"`
}

// ChatHandler gateway webhook del chat: el adaptador del transporte concreto
// (bot de mensajería) publica aquí los eventos normalizados y recibe en la
// respuesta los prompts a mostrar.
type ChatHandler struct {
	manager *chat.Manager
	outbox  *PromptOutbox
}

// NewChatHandler construye el gateway.
func NewChatHandler(manager *chat.Manager, outbox *PromptOutbox) *ChatHandler {
	return &ChatHandler{manager: manager, outbox: outbox}
}

// HandleEvent godoc
// @Summary      Publicar un evento de chat
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body  ChatEventRequest  true  "user_id, kind, value"
// @Success      200  {array}  ChatPromptDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/chat/events [post]
func (h *ChatHandler) HandleEvent(c *fiber.Ctx) error {
	var in ChatEventRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "user_id es requerido"})
	}

	h.manager.Handle(c.Context(), chat.Event{
		UserID: in.UserID,
		Kind:   parseEventKind(in.Kind),
		Value:  in.Value,
	})

	prompts := h.outbox.Drain(in.UserID)
	out := make([]ChatPromptDTO, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, toChatPromptDTO(p))
	}
	return c.JSON(out)
}

func parseEventKind(kind string) chat.EventKind {
	switch kind {
	case "command":
		return chat.EventCommand
	case "select":
		return chat.EventSelect
	case "photo":
		return chat.EventPhoto
	default:
		return chat.EventText
	}
}

func toChatPromptDTO(p workflow.Prompt) ChatPromptDTO {
	out := ChatPromptDTO{
		Text:     p.Text,
		Hint:     p.Hint,
		Terminal: p.Terminal,
	}
	for _, opt := range p.Options {
		out.Options = append(out.Options, ChatOptionDTO{ID: opt.ID, Label: opt.Label})
	}
	if p.Document != nil {
		out.Document = &ChatDocumentDTO{
			Name:    p.Document.Name,
			Content: base64.StdEncoding.EncodeToString(p.Document.Content),
			Caption: p.Document.Caption,
		}
	}
	return out
}
