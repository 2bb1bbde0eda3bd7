// Package dto provides request and response types for the custody log API.
// These types are used by huma to generate OpenAPI documentation and perform validation.
package dto

import (
	"github.com/custodylog/custodylog-server/internal/domain"
	domainerrors "github.com/custodylog/custodylog-server/internal/errors"
)

// DateRangeParams defines the optional start/end query parameters shared by
// listing and export operations.
type DateRangeParams struct {
	Start string `query:"start" doc:"First date to include (YYYY-MM-DD). Defaults to one month before end."`
	End   string `query:"end" doc:"Last date to include (YYYY-MM-DD). Defaults to today."`
}

// Range parses the parameters. Blank values stay zero so the service can
// apply its defaults.
func (p DateRangeParams) Range() (domain.DateRange, error) {
	var r domain.DateRange
	details := map[string]string{}

	if p.Start != "" {
		d, err := domain.ParseDate(p.Start)
		if err != nil {
			details["start"] = "must be a date in YYYY-MM-DD format"
		}
		r.Start = d
	}
	if p.End != "" {
		d, err := domain.ParseDate(p.End)
		if err != nil {
			details["end"] = "must be a date in YYYY-MM-DD format"
		}
		r.End = d
	}

	if len(details) > 0 {
		return domain.DateRange{}, domainerrors.ValidationWithDetails("invalid date range", details)
	}
	return r, nil
}

// RangeResponse is a resolved, inclusive date range.
type RangeResponse struct {
	Start string `json:"start" doc:"First date included"`
	End   string `json:"end" doc:"Last date included"`
}

// NewRangeResponse converts a domain range.
func NewRangeResponse(r domain.DateRange) RangeResponse {
	return RangeResponse{Start: r.Start.String(), End: r.End.String()}
}
