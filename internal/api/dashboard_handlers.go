package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/custodylog/custodylog-server/internal/service"
)

func (s *Server) registerDashboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard",
		Summary:     "Dashboard",
		Description: "Returns how many entries the caller has dated in the last seven days",
		Tags:        []string{"Dashboard"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetDashboard)
}

// DashboardResponse is the landing page summary.
type DashboardResponse struct {
	Since         string `json:"since" doc:"First date counted (YYYY-MM-DD)"`
	WindowDays    int    `json:"window_days" doc:"Days counted, today included"`
	EntriesInWeek int    `json:"entries_this_week" doc:"Entries dated within the window"`
}

// DashboardOutput wraps the dashboard response for Huma.
type DashboardOutput struct {
	Body DashboardResponse
}

func (s *Server) handleGetDashboard(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
	d, err := s.services.Dashboard.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardOutput{
		Body: DashboardResponse{
			Since:         d.Since.String(),
			WindowDays:    service.DashboardWindowDays,
			EntriesInWeek: d.EntriesInWeek,
		},
	}, nil
}
