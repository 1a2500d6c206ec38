package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldops-api/internal/application/connection"
	"github.com/jhoicas/fieldops-api/internal/application/employee"
	"github.com/jhoicas/fieldops-api/internal/application/inventory"
	"github.com/jhoicas/fieldops-api/internal/application/report"
	"github.com/jhoicas/fieldops-api/internal/interfaces/chat"
	"github.com/jhoicas/fieldops-api/pkg/config"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	EmployeeUC   *employee.UseCase
	Ledger       *inventory.LedgerUseCase
	ConnectionUC *connection.CreateConnectionUseCase
	ReportUC     *report.UseCase
	Exporter     ReportExporter
	Acta         ActaRenderer
	ChatManager  *chat.Manager
	ChatOutbox   *PromptOutbox
	JWT          config.JWTConfig
	AdminKeyHash string
	WebhookToken string
}

// Router registra las rutas de la API administrativa.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.JWT, deps.AdminKeyHash)
	api.Post("/auth/login", authHandler.Login)

	// Gateway del chat (autenticado con el token compartido del transporte)
	chatHandler := NewChatHandler(deps.ChatManager, deps.ChatOutbox)
	api.Post("/chat/events", WebhookAuth(deps.WebhookToken), chatHandler.HandleEvent)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWT.Secret))

	// Técnicos e inventario
	employees := protected.Group("/employees")
	employeeHandler := NewEmployeeHandler(deps.EmployeeUC)
	employees.Post("/", employeeHandler.Register)
	employees.Get("/", employeeHandler.List)
	employees.Get("/:id", employeeHandler.GetByID)
	employees.Delete("/:id", employeeHandler.Delete)

	inventoryHandler := NewInventoryHandler(deps.Ledger)
	employees.Post("/:id/material", inventoryHandler.AddMaterial)
	employees.Post("/:id/material/deduct", inventoryHandler.DeductMaterial)
	employees.Get("/:id/routers", inventoryHandler.ListRouters)
	employees.Post("/:id/routers", inventoryHandler.AddRouters)
	employees.Post("/:id/routers/deduct", inventoryHandler.DeductRouter)
	employees.Get("/:id/movements", inventoryHandler.ListMovements)

	// Instalaciones (solo lectura: el alta pasa por el flujo de chat)
	connections := protected.Group("/connections")
	connectionHandler := NewConnectionHandler(deps.ConnectionUC, deps.Acta)
	connections.Get("/:id", connectionHandler.GetByID)
	connections.Get("/:id/acta", connectionHandler.GetActa)

	// Reportes
	reportHandler := NewReportHandler(deps.ReportUC, deps.Exporter)
	protected.Get("/reports/employees/:id", reportHandler.Download)
}
