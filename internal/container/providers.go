package container

import (
	"database/sql"
	"fmt"

	"github.com/insurdesk/claims-desk/internal/application/port"
	"github.com/insurdesk/claims-desk/internal/application/service"
	"github.com/insurdesk/claims-desk/internal/domain/checklist"
	"github.com/insurdesk/claims-desk/internal/domain/completeness"
	"github.com/insurdesk/claims-desk/internal/infrastructure/document"
	"github.com/insurdesk/claims-desk/internal/infrastructure/export"
	"github.com/insurdesk/claims-desk/internal/infrastructure/metrics"
	"github.com/insurdesk/claims-desk/internal/infrastructure/persistence/repository"
	"github.com/insurdesk/claims-desk/internal/infrastructure/persistence/sqlite"
	"github.com/insurdesk/claims-desk/internal/infrastructure/storage"
	httpServer "github.com/insurdesk/claims-desk/internal/interfaces/http"
	"github.com/insurdesk/claims-desk/migrations"
	"github.com/insurdesk/claims-desk/pkg/database"
	"go.uber.org/zap"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	Conn           *database.DB
	TransactionMgr *sqlite.DB
}

// StorageBundle holds document handling components.
type StorageBundle struct {
	Evidence  port.EvidenceStorage
	Inspector port.DocumentInspector
	Exporters port.ExporterRegistry
}

// ProvideDatabase opens the database and applies the embedded migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	conn, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(conn, logger).RunMigrations(migrations.FS); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		Conn:           conn,
		TransactionMgr: sqlite.NewDB(conn.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Claims:   repository.NewClaimRepository(sqlDB, logger),
		Evidence: repository.NewEvidenceRepository(sqlDB, logger),
		Events:   repository.NewEventRepository(sqlDB, logger),
	}, nil
}

// ProvideStorage creates the evidence store, document inspector and
// checklist exporters.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	if cfg.EvidenceDir == "" {
		return nil, fmt.Errorf("evidence directory is required")
	}

	return &StorageBundle{
		Evidence:  storage.NewEvidenceStore(cfg.EvidenceDir, logger),
		Inspector: document.NewInspector(logger),
		Exporters: export.DefaultRegistry(),
	}, nil
}

// ProvideEvaluator loads the checklist catalog and builds the evaluator.
// An empty path selects the built-in catalog.
func ProvideEvaluator(cfg *CatalogConfig, logger *zap.Logger) (*completeness.Evaluator, error) {
	var (
		catalog *checklist.Catalog
		err     error
	)
	if cfg == nil || cfg.Path == "" {
		catalog, err = checklist.Default()
	} else {
		catalog, err = checklist.LoadFile(cfg.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist catalog: %w", err)
	}

	logger.Info("Checklist catalog loaded",
		zap.String("version", catalog.Version()),
		zap.Int("claim_types", len(catalog.ClaimTypes())))
	return completeness.NewEvaluator(catalog), nil
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos     *RepositoryBundle
	TxManager port.TransactionManager
	Storage   *StorageBundle
	Evaluator *completeness.Evaluator
	Metrics   *metrics.Metrics
	Config    *ClaimsConfig
	MaxUpload int64
	Logger    *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil || deps.TxManager == nil || deps.Storage == nil || deps.Evaluator == nil {
		return nil, fmt.Errorf("incomplete service dependencies")
	}

	var m service.Metrics
	if deps.Metrics != nil {
		m = deps.Metrics
	}

	cfg := service.Config{MaxUploadBytes: deps.MaxUpload}
	if deps.Config != nil {
		cfg.EnforceIntakeDocuments = deps.Config.EnforceIntakeDocuments
		cfg.ExportCacheTTL = deps.Config.ExportCacheTTL
	}

	claims := service.NewClaimService(service.Dependencies{
		Claims:    deps.Repos.Claims,
		Evidence:  deps.Repos.Evidence,
		Events:    deps.Repos.Events,
		TxManager: deps.TxManager,
		Storage:   deps.Storage.Evidence,
		Inspector: deps.Storage.Inspector,
		Exporters: deps.Storage.Exporters,
		Evaluator: deps.Evaluator,
		Metrics:   m,
		Logger:    &zapLoggerAdapter{logger: deps.Logger.Named("claims")},
	}, cfg)

	return &ServiceBundle{Claims: claims}, nil
}

// ProvideHTTPServer creates the HTTP adapter over the claim service.
func ProvideHTTPServer(cfg *Config, claims service.ClaimService, m *metrics.Metrics, health httpServer.HealthFunc, logger *zap.Logger) *httpServer.Server {
	serverCfg := httpServer.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	}
	if cfg.Metrics.Enabled && m != nil {
		serverCfg.MetricsPath = cfg.Metrics.Path
		serverCfg.MetricsHandler = m.Handler()
	}

	return httpServer.NewServer(serverCfg, claims, health, &zapLoggerAdapter{logger: logger.Named("http")})
}
