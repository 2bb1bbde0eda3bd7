package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/custodylog/custodylog-server/internal/api/dto"
	domainerrors "github.com/custodylog/custodylog-server/internal/errors"
	"github.com/custodylog/custodylog-server/internal/export"
)

func (s *Server) registerExportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getExportSummary",
		Method:      http.MethodGet,
		Path:        "/api/v1/exports/summary",
		Summary:     "Export summary",
		Description: "Returns totals for a date range and a preview of the newest entries",
		Tags:        []string{"Exports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetExportSummary)

	huma.Register(s.api, huma.Operation{
		OperationID: "downloadExport",
		Method:      http.MethodGet,
		Path:        "/api/v1/exports/{format}",
		Summary:     "Download export",
		Description: "Renders the caller's entries in a date range as JSON, CSV, HTML or Markdown",
		Tags:        []string{"Exports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDownloadExport)
}

// === DTOs ===

// ExportSummaryInput contains parameters for the export summary.
type ExportSummaryInput struct {
	dto.DateRangeParams
}

// ExportSummaryResponse backs the export page.
type ExportSummaryResponse struct {
	Range         dto.RangeResponse   `json:"range" doc:"Resolved date range"`
	Aggregates    export.Aggregates   `json:"aggregates" doc:"Totals over the range"`
	RecentEntries []dto.EntryResponse `json:"recent_entries" doc:"Newest entries in the range"`
	Formats       []string            `json:"formats" doc:"Available export formats"`
}

// ExportSummaryOutput wraps the summary for Huma.
type ExportSummaryOutput struct {
	Body ExportSummaryResponse
}

// DownloadExportInput contains parameters for an export download.
type DownloadExportInput struct {
	Format string `path:"format" doc:"json, csv, html (alias pdf) or md"`
	dto.DateRangeParams
}

// DownloadExportOutput is the rendered file.
type DownloadExportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	CacheControl       string `header:"Cache-Control"`
	Body               []byte
}

// === Handlers ===

func (s *Server) handleGetExportSummary(ctx context.Context, input *ExportSummaryInput) (*ExportSummaryOutput, error) {
	r, err := input.Range()
	if err != nil {
		return nil, err
	}

	sum, err := s.services.Exports.Summary(ctx, r)
	if err != nil {
		return nil, err
	}

	formats := make([]string, 0, len(export.Formats))
	for _, f := range export.Formats {
		formats = append(formats, string(f))
	}

	return &ExportSummaryOutput{
		Body: ExportSummaryResponse{
			Range:         dto.NewRangeResponse(sum.Range),
			Aggregates:    sum.Aggregates,
			RecentEntries: dto.NewEntryResponses(sum.RecentEntries),
			Formats:       formats,
		},
	}, nil
}

func (s *Server) handleDownloadExport(ctx context.Context, input *DownloadExportInput) (*DownloadExportOutput, error) {
	f, err := export.ParseFormat(input.Format)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("unsupported export format",
			map[string]string{"format": err.Error()})
	}

	r, err := input.Range()
	if err != nil {
		return nil, err
	}

	file, err := s.services.Exports.Export(ctx, f, r)
	if err != nil {
		return nil, err
	}

	return &DownloadExportOutput{
		ContentType:        file.ContentType,
		ContentDisposition: attachment(file.FileName),
		CacheControl:       CacheNoStore,
		Body:               file.Data,
	}, nil
}

// attachment builds a Content-Disposition value. File names are generated
// from dates, so only quotes need guarding.
func attachment(name string) string {
	return `attachment; filename="` + strings.ReplaceAll(name, `"`, "") + `"`
}
