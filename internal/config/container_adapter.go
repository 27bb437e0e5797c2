package config

import (
	"github.com/insurdesk/claims-desk/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Storage: container.StorageConfig{
			EvidenceDir:    c.Storage.EvidenceDir,
			MaxUploadBytes: c.Storage.MaxUploadBytes,
		},
		Catalog: container.CatalogConfig{
			Path: c.Catalog.Path,
		},
		Claims: container.ClaimsConfig{
			EnforceIntakeDocuments: c.Intake.EnforceDocuments,
			ExportCacheTTL:         c.Export.CacheTTL,
		},
		Metrics: container.MetricsConfig{
			Enabled: c.Metrics.Enabled,
			Path:    c.Metrics.Path,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
	}
}
