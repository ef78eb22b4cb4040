package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"workflow-templates/backend/internal/api"
	"workflow-templates/backend/internal/auth"
	"workflow-templates/backend/internal/config"
	"workflow-templates/backend/internal/extract"
	"workflow-templates/backend/internal/ingest"
	"workflow-templates/backend/internal/logging"
	"workflow-templates/backend/internal/mcp"
	"workflow-templates/backend/internal/repository"
	"workflow-templates/backend/internal/services"
	"workflow-templates/backend/internal/taxonomy"
)

var forceReindex bool

var rootCmd = &cobra.Command{
	Use:   "workflow-templates",
	Short: "Workflow template indexing and search service",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the query API and MCP tool server",
	RunE:  runServe,
}

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Ingest workflow templates into the store",
	RunE:  runPopulate,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print store statistics",
	RunE:  runStats,
}

func init() {
	populateCmd.Flags().BoolVar(&forceReindex, "force-reindex", false, "Re-extract every template even when unchanged")
	rootCmd.AddCommand(serveCmd, populateCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the shared wiring built by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	store    repository.TemplateStore
	pipeline *ingest.Pipeline
	service  *services.TemplateService
	close    func()
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger := logging.NewLogger(cfg.Log.Level)

	store, closeStore, err := initStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Initialize(ctx); err != nil {
		closeStore()
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	tax, err := taxonomy.Load(cfg.Taxonomy.Path)
	if err != nil {
		logger.Warn("Could not load taxonomy file, using built-in categories: %v", err)
		tax = taxonomy.Default()
	}

	pipeline := ingest.New(cfg.Templates.Dir, extract.New(tax), store, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		pipeline: pipeline,
		service:  services.NewTemplateService(store),
		close:    closeStore,
	}, nil
}

func initStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (repository.TemplateStore, func(), error) {
	if cfg.DB.Driver == "memory" {
		logger.Info("Using in-memory template store")
		return repository.NewMemoryTemplateStore(), func() {}, nil
	}

	logger.Debug("Initializing database connection")
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	return repository.NewPostgresTemplateStore(pool), pool.Close, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}
	defer a.close()

	a.logger.Info("Starting Workflow Templates Service")
	a.logger.Warn("Removed template files are never evicted from the index; run against a fresh store to drop stale records")

	// Auto-populate when the store is empty.
	count, err := a.store.Count(ctx)
	if err != nil {
		a.logger.Error("Failed to count templates: %v", err)
	} else if count == 0 {
		a.logger.Info("Store is empty, auto-populating from %s", a.cfg.Templates.Dir)
		if _, err := a.pipeline.Run(ctx, false); err != nil {
			a.logger.Error("Auto-population failed: %v", err)
		}
	}

	// Create Echo server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("workflow-templates"))

	authz, err := auth.New(ctx, a.cfg.Auth.Issuer, a.logger)
	if err != nil {
		a.logger.Error("failed to initialize auth: %v", err)
		log.Fatalf("auth initialization failed: %v", err)
	}

	handler := api.NewHandler(a.service)
	e.GET("/health", handler.HandleHealth)

	apiGroup := e.Group("/api")
	apiGroup.Use(echo.WrapMiddleware(authz.RequireAuth))
	handler.Register(apiGroup)

	a.logger.Info("REST API handlers mounted")

	// Mount MCP protocol handlers
	mcpServer := mcp.NewServer(a.cfg.API.BaseURL, time.Duration(a.cfg.API.TimeoutMS)*time.Millisecond, a.logger)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp", echo.WrapHandler(mcpHandlers))
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	a.logger.Info("MCP protocol handlers mounted")

	// OpenAPI spec and Swagger UI
	e.GET("/openapi.yaml", echo.WrapHandler(api.SpecHandler()))
	e.GET("/docs", echo.WrapHandler(api.SwaggerHandler()))

	server := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("Server starting on %s", a.cfg.Server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			a.logger.Error("Server error: %v", err)
			return err
		}
	case sig := <-shutdown:
		a.logger.Info("Shutdown signal received: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			a.logger.Error("Server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				a.logger.Error("Server close error: %v", err)
			}
		}

		a.logger.Info("Server stopped gracefully")
	}
	return nil
}

func runPopulate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.pipeline.Run(ctx, forceReindex)
	if err != nil {
		return err
	}
	fmt.Printf("Imported: %d\nUpdated: %d\nSkipped: %d\nFailed: %d\n",
		report.Imported, report.Updated, report.Skipped, report.Failed)
	return nil
}

func runStats(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	stats, err := a.service.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Total workflows: %d\n", stats.TotalWorkflows)
	fmt.Printf("Total nodes: %d\n", stats.TotalNodes)
	fmt.Printf("Average nodes per workflow: %.1f\n", stats.AverageNodesPerWorkflow)
	fmt.Println("Categories:")
	for _, c := range stats.Categories {
		fmt.Printf("  %s: %d\n", c.Name, c.Count)
	}
	fmt.Println("Trigger types:")
	for _, t := range stats.TriggerTypes {
		fmt.Printf("  %s: %d\n", t.Type, t.Count)
	}
	fmt.Println("Complexity:")
	for _, c := range stats.Complexity {
		fmt.Printf("  %s: %d\n", c.Level, c.Count)
	}
	return nil
}
