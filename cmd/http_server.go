package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/bodega-inventory/api"
	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/internal/auth"
	authPostgres "github.com/frahmantamala/bodega-inventory/internal/auth/postgres"
	authredis "github.com/frahmantamala/bodega-inventory/internal/auth/redis"
	"github.com/frahmantamala/bodega-inventory/internal/category"
	categoryPostgres "github.com/frahmantamala/bodega-inventory/internal/category/postgres"
	"github.com/frahmantamala/bodega-inventory/internal/core/events"
	"github.com/frahmantamala/bodega-inventory/internal/observability"
	"github.com/frahmantamala/bodega-inventory/internal/product"
	productPostgres "github.com/frahmantamala/bodega-inventory/internal/product/postgres"
	"github.com/frahmantamala/bodega-inventory/internal/report"
	reportPostgres "github.com/frahmantamala/bodega-inventory/internal/report/postgres"
	"github.com/frahmantamala/bodega-inventory/internal/transport/rest"
	"github.com/frahmantamala/bodega-inventory/internal/user"
	userPostgres "github.com/frahmantamala/bodega-inventory/internal/user/postgres"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Redis  *goredis.Client
	Router *chi.Mux
	Logger *slog.Logger
}

func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("redis close error", "error", err)
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Error("database close error", "error", err)
		}
	}
}

func startHTTPServer() error {
	deps, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		deps.Logger.Info("starting HTTP server", "address", addr, "env", deps.Config.Env)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	deps.Logger.Info("server stopped")
	return nil
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	lg := deps.Logger

	metrics := observability.New()
	bus := events.NewEventBus(lg)

	hasher := auth.NewPasswordHasher(cfg.Security.BCryptCost)
	tokens := auth.NewJWTTokenGenerator(cfg.Security.TokenSecret, cfg.Security.TokenIssuer, cfg.Security.AccessTokenDuration)
	revocations := authredis.NewRevocationStore(deps.Redis, cfg.Redis.KeyPrefix)

	authService := auth.NewService(authPostgres.NewRepository(deps.Gorm), tokens, revocations, hasher, cfg.Security.AuthTimeout, lg).
		WithRecorder(metrics)
	auth.NewEventHandler(authService, lg).Register(bus)

	userService := user.NewService(userPostgres.NewUserRepository(deps.Gorm), hasher, bus, lg)
	productService := product.NewService(productPostgres.NewProductRepository(deps.Gorm), lg)
	categoryService := category.NewService(categoryPostgres.NewCategoryRepository(deps.Gorm), lg)
	reportService := report.NewService(reportPostgres.NewReportRepository(deps.DB), cfg.Server.WriteTimeout, lg)

	rest.RegisterAllRoutes(deps.Router, rest.RouterDeps{
		Config:          cfg,
		Logger:          lg,
		AuthHandler:     auth.NewHandler(authService, lg),
		RBAC:            auth.NewRBACAuthorization(lg, metrics),
		UserHandler:     user.NewHandler(userService, lg),
		ProductHandler:  product.NewHandler(productService, lg),
		CategoryHandler: category.NewHandler(categoryService, lg),
		ReportHandler:   report.NewHandler(reportService, lg),
		Metrics:         metrics,
		Health: map[string]rest.Pinger{
			"postgres": deps.DB,
			"redis":    rest.PingFunc(revocations.Ping),
		},
		OpenAPISpec: api.Spec,
	})
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := setupLogger(config)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db.DB)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	rdb, err := initRedis(config.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	return &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gdb,
		Redis:  rdb,
		Router: chi.NewRouter(),
		Logger: lg,
	}, nil
}
