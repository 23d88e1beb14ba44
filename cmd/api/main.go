package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docflow/docs"
	"docflow/internal/audit"
	auditPostgres "docflow/internal/audit/postgres"
	"docflow/internal/config"
	"docflow/internal/credential"
	"docflow/internal/database"
	"docflow/internal/database/migration"
	"docflow/internal/docx"
	"docflow/internal/export"
	handlers "docflow/internal/http/handler"
	"docflow/internal/http/middleware"
	"docflow/internal/otel"
	"docflow/internal/repository/memory"
	"docflow/internal/service"
	"docflow/internal/storage"
)

// @title Docflow API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger := log.New(os.Stdout, "", log.LstdFlags|log.LUTC)

	// Initialize OpenTelemetry tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracing, err := otel.Init(context.Background())
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Prepare the storage areas: Templates, Documents, SignedArtifacts
	layout, err := storage.NewLayout(cfg.Storage.RootPath)
	if err != nil {
		log.Fatalf("invalid storage root: %v", err)
	}
	if err := layout.Ensure(); err != nil {
		log.Fatalf("failed to prepare storage areas: %v", err)
	}

	// Audit sink: PostgreSQL when a database is configured, JSON lines on
	// stdout otherwise
	var db *sql.DB
	var sink audit.Sink = audit.NewLogSink(os.Stdout)
	if cfg.Database.Host != "" {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(context.Background(), db, cfg.Database.Host); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		sink = auditPostgres.NewAuditPostgres(db)
	}

	// Optional S3-compatible archive for exported artifacts (MinIO-supported)
	var archiver storage.Archiver
	if cfg.MinIO.Endpoint != "" {
		archiver, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize artifact archive: %v", err)
		}
	}

	// Export gateway: remote converter when configured, local placeholder
	// exporter otherwise
	var exporter export.Gateway
	if cfg.Converter.URL != "" {
		exporter, err = export.NewConvertGateway(cfg.Converter, layout, archiver, logger)
		if err != nil {
			log.Fatalf("failed to initialize converter gateway: %v", err)
		}
	} else {
		exporter = export.NewLocalGateway(layout, archiver, logger)
	}

	issuer, err := credential.NewIssuer(cfg.JWT)
	if err != nil {
		log.Fatalf("failed to initialize credential issuer: %v", err)
	}

	// Initialize registry and services
	registry := memory.NewDocumentMemory()
	tplSvc := service.NewTemplateService(layout, sink)
	docSvc := service.NewDocumentService(layout.DocumentsPath(), tplSvc, registry, docx.New(logger), exporter, sink)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())

	promMw, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMw.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, tplSvc, docSvc, exporter, issuer, cfg.BaseURL)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
