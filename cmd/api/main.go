package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/sahelretail/pos-backend/api/routes"
	"github.com/sahelretail/pos-backend/internal/access"
	"github.com/sahelretail/pos-backend/internal/alerts"
	"github.com/sahelretail/pos-backend/internal/auth"
	"github.com/sahelretail/pos-backend/internal/employees"
	"github.com/sahelretail/pos-backend/internal/inventory"
	"github.com/sahelretail/pos-backend/internal/products"
	"github.com/sahelretail/pos-backend/internal/shifts"
	"github.com/sahelretail/pos-backend/internal/transfers"
	"github.com/sahelretail/pos-backend/pkg/auth/session"
	"github.com/sahelretail/pos-backend/pkg/config"
	"github.com/sahelretail/pos-backend/pkg/db"
	"github.com/sahelretail/pos-backend/pkg/logger"
	"github.com/sahelretail/pos-backend/pkg/migrate"
	"github.com/sahelretail/pos-backend/pkg/outbox"
	"github.com/sahelretail/pos-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	resolver, err := access.NewResolver(context.Background(), access.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to load warehouse access resolver", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	employeeRepo := employees.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		EmployeeRepo:   employeeRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventoryRepo, dbClient, outboxService, resolver, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	transferService, err := transfers.NewService(transfers.NewRepository(dbClient.DB()), inventoryRepo, dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create transfer service", err)
		os.Exit(1)
	}

	shiftService, err := shifts.NewService(shifts.NewRepository(dbClient.DB()), dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create shift service", err)
		os.Exit(1)
	}

	alertService, err := alerts.NewService(alerts.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create alert service", err)
		os.Exit(1)
	}

	employeeService, err := employees.NewService(employeeRepo, dbClient, outboxService, cfg.PIN, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create employee service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.NewRepository(dbClient.DB()), dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			resolver,
			authService,
			inventoryService,
			transferService,
			shiftService,
			alertService,
			employeeService,
			productService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
