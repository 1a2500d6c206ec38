package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/fieldops-api/internal/application/connection"
	"github.com/jhoicas/fieldops-api/internal/application/employee"
	"github.com/jhoicas/fieldops-api/internal/application/inventory"
	"github.com/jhoicas/fieldops-api/internal/application/report"
	infraexcel "github.com/jhoicas/fieldops-api/internal/infrastructure/excel"
	infrapdf "github.com/jhoicas/fieldops-api/internal/infrastructure/pdf"
	"github.com/jhoicas/fieldops-api/internal/infrastructure/postgres"
	"github.com/jhoicas/fieldops-api/internal/interfaces/chat"
	httpRouter "github.com/jhoicas/fieldops-api/internal/interfaces/http"
	"github.com/jhoicas/fieldops-api/pkg/config"
	"github.com/jhoicas/fieldops-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	employeeRepo := postgres.NewEmployeeRepository(pool)
	routerRepo := postgres.NewRouterRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	connectionRepo := postgres.NewConnectionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledgerUC := inventory.NewLedgerUseCase(txRunner, employeeRepo, routerRepo, movementRepo)
	employeeUC := employee.NewUseCase(txRunner, employeeRepo, routerRepo)
	connectionUC := connection.NewCreateConnectionUseCase(txRunner, connectionRepo, ledgerUC, cfg.Inventory.DeductionPolicy)
	reportUC := report.NewUseCase(employeeRepo, connectionRepo)

	actaGenerator := infrapdf.NewActaGenerator()
	reportExporter := infraexcel.NewReportExporter()

	// Orquestador de sesiones de chat: el frente principal de los técnicos.
	// El transporte publica eventos en el gateway webhook y recibe los prompts
	// acumulados en el outbox como respuesta.
	chatOutbox := httpRouter.NewPromptOutbox()
	chatManager := chat.NewManager(
		employeeRepo, routerRepo, ledgerUC, reportUC, reportExporter,
		connectionUC, actaGenerator, chatOutbox,
		chat.Config{
			AllowedUsers: cfg.Bot.AllowedUsers,
			MaxPhotos:    cfg.Bot.MaxPhotos,
			Policy:       cfg.Inventory.DeductionPolicy,
		},
		log.Zerolog(),
	)
	log.Info().Int("allowed_users", len(cfg.Bot.AllowedUsers)).Msg("gestor de chat listo")

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "FieldOps API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		EmployeeUC:   employeeUC,
		Ledger:       ledgerUC,
		ConnectionUC: connectionUC,
		ReportUC:     reportUC,
		Exporter:     reportExporter,
		Acta:         actaGenerator,
		ChatManager:  chatManager,
		ChatOutbox:   chatOutbox,
		JWT:          cfg.JWT,
		AdminKeyHash: cfg.Inventory.AdminKeyHash,
		WebhookToken: cfg.Bot.WebhookToken,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
