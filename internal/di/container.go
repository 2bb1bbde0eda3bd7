// Package di provides dependency injection configuration for the custody log server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/custodylog/custodylog-server/internal/auth"
	"github.com/custodylog/custodylog-server/internal/config"
	"github.com/custodylog/custodylog-server/internal/di/providers"
	"github.com/custodylog/custodylog-server/internal/logger"
	"github.com/custodylog/custodylog-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()
	Register(injector)
	return injector
}

// NewContainerWithConfig creates a container around an already loaded
// configuration. Command line tools use it to reach services without
// starting the HTTP server.
func NewContainerWithConfig(cfg *config.Config) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, cfg)
	registerComponents(injector)
	return injector
}

// Register adds every provider to injector.
func Register(injector do.Injector) {
	do.Provide(injector, providers.ProvideConfig)
	registerComponents(injector)
}

// registerComponents adds every provider except configuration.
func registerComponents(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideTokenKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideBlobStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Workers
	do.Provide(injector, providers.ProvidePublisher)
	do.Provide(injector, providers.ProvideExportLimiter)

	// Business services
	do.Provide(injector, providers.ProvideEntryService)
	do.Provide(injector, providers.ProvideExportService)
	do.Provide(injector, providers.ProvideDashboardService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
}

// Bootstrap initializes all services. This triggers lazy initialization so
// configuration and connection errors surface before the server reports ready.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.BlobStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.PublisherHandle](injector)

	_ = do.MustInvoke[*service.EntryService](injector)
	_ = do.MustInvoke[*service.ExportService](injector)
	_ = do.MustInvoke[*service.DashboardService](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
