package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"it-inventory/internal/handler"
	"it-inventory/internal/middleware"
	"it-inventory/internal/notify"
	"it-inventory/internal/repository"
	"it-inventory/internal/service"
	"it-inventory/internal/ws"
	"it-inventory/migrations"
	"it-inventory/pkg/config"
	"it-inventory/pkg/database"
	"it-inventory/pkg/jwt"
	applog "it-inventory/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Config + logging
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.ValidateForProduction(cfg); err != nil {
		return err
	}

	log, err := applog.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// 2. Database
	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}()

	if cfg.RunMigrations {
		if err := database.Migrate(db, migrations.FS); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	// 3. Repositories
	itemRepo := repository.NewItemRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)
	transactor := repository.NewTransactor(db)

	if err := seed(context.Background(), cfg, log, userRepo, settingsRepo, itemRepo); err != nil {
		return err
	}

	// 4. WebSocket hub + notifications
	wsHub := ws.NewHub(log.Named("ws"))
	go wsHub.Run()

	dispatcher := notify.NewDispatcher(cfg, log)
	if !cfg.SMTPEnabled() {
		log.Info("SMTP_HOST not set, email alerts disabled")
	}

	// 5. Services
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	ledgerService := service.NewLedgerService(transactor, txRepo, dispatcher, wsHub, service.PolicyFromConfig(cfg), log)
	invService := service.NewInventoryService(itemRepo, transactor, wsHub, log)
	settingsService := service.NewSettingsService(settingsRepo)
	dashService := service.NewDashboardService(txRepo)
	authService := service.NewAuthService(userRepo, tokens, log)

	log.Info("ledger policy",
		zap.String("oversell", cfg.OversellPolicy),
		zap.String("missing_item", cfg.MissingItemPolicy))

	// 6. HTTP
	app, err := newApp(cfg, log, db, routes{
		auth:         handler.NewAuthHandler(authService, log),
		items:        handler.NewItemHandler(invService, settingsService, log),
		transactions: handler.NewTransactionHandler(ledgerService, settingsService, log),
		settings:     handler.NewSettingsHandler(settingsService, wsHub, log),
		dashboard:    handler.NewDashboardHandler(dashService, log),
		authService:  authService,
		hub:          wsHub,
	})
	if err != nil {
		return err
	}

	// 7. Serve with graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port))
		serverErr <- app.Listen(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	wsHub.Stop()
	dispatcher.Wait()

	log.Info("server exited")
	return nil
}

type routes struct {
	auth         *handler.AuthHandler
	items        *handler.ItemHandler
	transactions *handler.TransactionHandler
	settings     *handler.SettingsHandler
	dashboard    *handler.DashboardHandler
	authService  middleware.Authenticator
	hub          *ws.Hub
}

func newApp(cfg *config.Config, log *zap.Logger, db *gorm.DB, r routes) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName: "IT Inventory",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
		},
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPatch, fiber.MethodDelete, fiber.MethodOptions}, ","),
	}))

	loginLimit, err := middleware.RateLimit(cfg.LoginRateLimit, log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Get("/health", handler.Health(sqlDB))
	api.Get("/settings", r.settings.GetSettings)
	api.Post("/auth/login", loginLimit, r.auth.Login)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(r.authService))

	protected.Post("/auth/logout", r.auth.Logout)
	protected.Get("/auth/me", r.auth.Me)
	protected.Post("/auth/change-password", r.auth.ChangePassword)

	protected.Patch("/settings", r.settings.UpdateSettings)

	protected.Get("/items", r.items.GetItems)
	protected.Get("/items/low-stock", r.items.GetLowStock)
	protected.Post("/items", r.items.CreateItem)
	protected.Get("/items/:id", r.items.GetItem)
	protected.Patch("/items/:id", r.items.UpdateItem)
	protected.Delete("/items/:id", r.items.DeleteItem)

	protected.Get("/transactions", r.transactions.GetTransactions)
	protected.Post("/transactions", r.transactions.CreateTransaction)
	protected.Get("/transactions/:id", r.transactions.GetTransaction)

	protected.Get("/dashboard/stats", r.dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", r.dashboard.GetStockMovement)

	// WebSocket Route
	app.Use("/ws", middleware.RequireWebSocketAuth(r.authService))
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		r.hub.Join(c)
		defer r.hub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	return app, nil
}
