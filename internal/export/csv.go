package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/custodylog/custodylog-server/internal/domain"
)

// CSVHeader is the fixed column order of the CSV export.
var CSVHeader = []string{
	"Date",
	"Activities",
	"Custom Activities",
	"Special Events",
	"Meals",
	"Notes",
	"Number of Photos",
	"Created At",
}

// RenderCSV writes one row per entry after the header. List columns are
// joined with ", "; quoting follows RFC 4180.
func RenderCSV(w io.Writer, entries []*domain.DailyEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(csvRow(e)); err != nil {
			return fmt.Errorf("write csv row for entry %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRow(e *domain.DailyEntry) []string {
	return []string{
		e.Date.String(),
		joinList(e.Activities),
		joinList(e.CustomActivities),
		joinList(e.SpecialEvents),
		strconv.Itoa(e.Meals),
		e.Notes,
		strconv.Itoa(e.PhotoCount()),
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
