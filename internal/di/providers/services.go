package providers

import (
	"github.com/samber/do/v2"

	"github.com/custodylog/custodylog-server/internal/location"
	"github.com/custodylog/custodylog-server/internal/logger"
	"github.com/custodylog/custodylog-server/internal/service"
	"github.com/custodylog/custodylog-server/internal/session"
	"github.com/custodylog/custodylog-server/internal/validation"
)

// ProvideEntryService provides the entry builder.
func ProvideEntryService(i do.Injector) (*service.EntryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	blobHandle := do.MustInvoke[*BlobStoreHandle](i)
	publisher := do.MustInvoke[*PublisherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewEntryService(
		session.ContextProvider{},
		storeHandle.Store,
		blobHandle.Store,
		location.NewResolver(log.Logger),
		validation.New(),
		publisher.Publisher,
		log.Logger,
	), nil
}

// ProvideExportService provides the export engine.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiter := do.MustInvoke[*ExportLimiterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExportService(session.ContextProvider{}, storeHandle.Store, limiter.KeyedRateLimiter, log.Logger), nil
}

// ProvideDashboardService provides the dashboard summary service.
func ProvideDashboardService(i do.Injector) (*service.DashboardService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewDashboardService(session.ContextProvider{}, storeHandle.Store), nil
}
