// Package export renders a user's entries as downloadable documents.
//
// Every renderer consumes the same fetched slice, in the order given, and all
// aggregate numbers come from ComputeAggregates so the formats agree.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/custodylog/custodylog-server/internal/domain"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatCSV, FormatHTML, FormatMarkdown}

// ParseFormat accepts a format name, case-insensitively. "pdf" and "document"
// are aliases for the printable HTML document; "markdown" for md.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "html", "pdf", "document":
		return FormatHTML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string { return string(f) }

// ContentType returns the MIME type of the rendered file.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// FileName is the download name for an export of r in format f.
func FileName(r domain.DateRange, f Format) string {
	return fmt.Sprintf("custody-documentation-%s-to-%s.%s", r.Start, r.End, f.Extension())
}

// Aggregates are the summary numbers shown with an export.
type Aggregates struct {
	TotalEntries int `json:"total_entries"`
	TotalMeals   int `json:"total_meals"`
	TotalPhotos  int `json:"total_photos"`
}

// ComputeAggregates sums entries. Duplicate entries for one date all count.
func ComputeAggregates(entries []*domain.DailyEntry) Aggregates {
	a := Aggregates{TotalEntries: len(entries)}
	for _, e := range entries {
		a.TotalMeals += e.Meals
		a.TotalPhotos += e.PhotoCount()
	}
	return a
}

// Document is one export: the range it covers, the fetched entries and their totals.
type Document struct {
	Range      domain.DateRange
	Entries    []*domain.DailyEntry
	Aggregates Aggregates
}

// NewDocument computes the aggregates once for entries.
func NewDocument(r domain.DateRange, entries []*domain.DailyEntry) *Document {
	if entries == nil {
		entries = []*domain.DailyEntry{}
	}
	return &Document{
		Range:      r,
		Entries:    entries,
		Aggregates: ComputeAggregates(entries),
	}
}

// Render writes doc to w in format f.
func Render(w io.Writer, f Format, doc *Document) error {
	switch f {
	case FormatJSON:
		return RenderJSON(w, doc.Entries)
	case FormatCSV:
		return RenderCSV(w, doc.Entries)
	case FormatHTML:
		return RenderHTML(w, doc)
	case FormatMarkdown:
		return RenderMarkdown(w, doc)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

func joinList(values []string) string {
	return strings.Join(values, ", ")
}
