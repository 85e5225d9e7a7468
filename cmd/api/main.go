package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ibrahimkeyboad/cardauth/internal/adapter/handler"
	"github.com/ibrahimkeyboad/cardauth/internal/adapter/middleware"
	"github.com/ibrahimkeyboad/cardauth/internal/adapter/storage"
	"github.com/ibrahimkeyboad/cardauth/internal/core/authorizer"
	"github.com/ibrahimkeyboad/cardauth/internal/core/config"
	"github.com/ibrahimkeyboad/cardauth/internal/core/statement"
	"github.com/ibrahimkeyboad/cardauth/internal/core/worker"
)

func main() {
	cfg := config.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	dbPool, err := storage.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := storage.Migrate(ctx, dbPool); err != nil {
		slog.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	directory := storage.NewDirectoryRepository(dbPool)
	ledger := storage.NewLedgerRepository(dbPool, cfg.WebhookURL)
	statements := storage.NewStatementRepository(dbPool)

	authService := authorizer.NewService(directory, ledger)
	statementService := statement.NewService(statements)

	accountHandler := &handler.AccountHandler{Repo: directory}
	authHandler := &handler.AuthorizationHandler{Service: authService}
	transactionHandler := &handler.TransactionHandler{Repo: ledger}
	statementHandler := &handler.StatementHandler{Service: statementService}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/v1")

	// Public
	api.Post("/accounts", accountHandler.CreateAccount)
	api.Post("/accounts/:id/keys", accountHandler.GenerateKey)

	// Protected
	private := api.Use(middleware.Protected(dbPool))
	private.Post("/transactions", authHandler.Authorize)
	private.Post("/accounts/:id/cards", accountHandler.CreateCard)
	private.Get("/accounts/:id/transactions", transactionHandler.GetHistory)
	private.Post("/statements/run", statementHandler.RunMonthly)
	private.Post("/accounts/:id/statements", statementHandler.GenerateForAccount)

	worker.StartWebhookWorker(ctx, dbPool, cfg.WebhookSecret)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	stopWorker()
	dbPool.Close()
	slog.Info("database connection closed")

	slog.Info("server exited")
}
