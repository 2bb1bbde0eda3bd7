package api

import (
	"github.com/custodylog/custodylog-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Entries   *service.EntryService
	Exports   *service.ExportService
	Dashboard *service.DashboardService
}
