package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/custodylog/custodylog-server/internal/domain"
)

// RenderJSON writes entries as a pretty-printed array, field names and order
// exactly as fetched.
func RenderJSON(w io.Writer, entries []*domain.DailyEntry) error {
	if entries == nil {
		entries = []*domain.DailyEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}
