package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodylog/custodylog-server/internal/domain"
)

var exampleRange = domain.DateRange{
	Start: domain.MustParseDate("2025-01-01"),
	End:   domain.MustParseDate("2025-01-02"),
}

func photos(entryID string, n int) []domain.Photo {
	out := []domain.Photo{}
	for i := 0; i < n; i++ {
		out = append(out, domain.Photo{
			ID:        "ph-" + entryID + "-" + strconv.Itoa(i),
			EntryID:   entryID,
			FilePath:  "usr-1/" + entryID + "/" + strconv.Itoa(1700000000000+i) + "_p.jpg",
			Location:  &domain.Location{Lat: 40.5, Lng: -74.25, Source: domain.LocationEXIF},
			CreatedAt: time.Date(2025, 1, 2, 18, 0, i, 0, time.UTC),
		})
	}
	return out
}

// exampleEntries is the two-entry example, already in fetched (date descending) order.
func exampleEntries() []*domain.DailyEntry {
	return []*domain.DailyEntry{
		{
			ID:               "ent-2",
			UserID:           "usr-1",
			Date:             domain.MustParseDate("2025-01-02"),
			Activities:       []string{"Park visit"},
			CustomActivities: []string{},
			SpecialEvents:    []string{},
			Meals:            3,
			CreatedAt:        time.Date(2025, 1, 2, 18, 0, 0, 0, time.UTC),
			Photos:           photos("ent-2", 2),
		},
		{
			ID:               "ent-1",
			UserID:           "usr-1",
			Date:             domain.MustParseDate("2025-01-01"),
			Activities:       []string{"Reading", "Home activities"},
			CustomActivities: []string{"Baking cookies", "Lego"},
			SpecialEvents:    []string{"Positive milestone"},
			Meals:            2,
			Notes:            "Said \"thank you\", unprompted.\nGreat day.",
			CreatedAt:        time.Date(2025, 1, 1, 20, 15, 30, 500000000, time.UTC),
			Photos:           []domain.Photo{},
		},
	}
}

func TestComputeAggregates(t *testing.T) {
	got := ComputeAggregates(exampleEntries())
	assert.Equal(t, Aggregates{TotalEntries: 2, TotalMeals: 5, TotalPhotos: 2}, got)

	assert.Equal(t, Aggregates{}, ComputeAggregates(nil))
}

func TestComputeAggregates_CountsDuplicateDates(t *testing.T) {
	entries := exampleEntries()
	dup := *entries[0]
	dup.ID = "ent-2b"
	entries = append(entries, &dup)

	got := ComputeAggregates(entries)
	assert.Equal(t, 3, got.TotalEntries)
	assert.Equal(t, 8, got.TotalMeals)
	assert.Equal(t, 4, got.TotalPhotos)
}

func TestRenderCSV_Example(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCSV(&buf, exampleEntries()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{
		"2025-01-02", "Park visit", "", "", "3", "", "2", "2025-01-02T18:00:00Z",
	}, records[1])
	assert.Equal(t, []string{
		"2025-01-01",
		"Reading, Home activities",
		"Baking cookies, Lego",
		"Positive milestone",
		"2",
		"Said \"thank you\", unprompted.\nGreat day.",
		"0",
		"2025-01-01T20:15:30.5Z",
	}, records[2])
}

func TestRenderCSV_QuotesSpecialCharacters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCSV(&buf, exampleEntries()[1:]))

	assert.Contains(t, buf.String(), `"Reading, Home activities"`)
	assert.Contains(t, buf.String(), `"Said ""thank you"", unprompted.`)
}

func TestRenderCSV_HeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCSV(&buf, nil))
	assert.Equal(t, strings.Join(CSVHeader, ",")+"\n", buf.String())
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	entries := exampleEntries()

	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, entries))
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {"), "expected two-space indented array")

	var decoded []*domain.DailyEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, entries, decoded)
}

func TestRenderJSON_FieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, exampleEntries()[:1]))

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.Len(t, raw, 1)

	for _, key := range []string{"id", "user_id", "date", "activities", "custom_activities", "special_events", "meals", "notes", "created_at", "photos"} {
		assert.Contains(t, raw[0], key)
	}
	assert.Equal(t, "2025-01-02", raw[0]["date"])
	assert.Len(t, raw[0]["photos"], 2)
	assert.NotContains(t, raw[0], "entry_photos")
}

func TestRenderJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRenderHTML_Structure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, NewDocument(exampleRange, exampleEntries())))
	out := buf.String()

	assert.Contains(t, out, "<title>Custody Documentation</title>")
	assert.Contains(t, out, "<h1>Custody Documentation</h1>")
	assert.Contains(t, out, "Period: 2025-01-01 to 2025-01-02")

	// Entries appear in fetched order.
	first := strings.Index(out, "Thursday, January 2, 2025")
	second := strings.Index(out, "Wednesday, January 1, 2025")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)

	assert.Equal(t, 2, strings.Count(out, `<div class="entry">`))
	assert.Equal(t, 1, strings.Count(out, "Custom Activities:"), "only the entry with custom activities gets the section")
	assert.Equal(t, 1, strings.Count(out, "Special Events:"))
	assert.Equal(t, 1, strings.Count(out, "Notes:"))
	assert.Contains(t, out, "Baking cookies, Lego")
}

func TestRenderHTML_OmitsEmptySections(t *testing.T) {
	entry := exampleEntries()[0]
	entry.Notes = "   "

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, NewDocument(exampleRange, []*domain.DailyEntry{entry})))
	out := buf.String()

	assert.NotContains(t, out, "Custom Activities")
	assert.NotContains(t, out, "Special Events")
	assert.NotContains(t, out, "Notes:")
	assert.Contains(t, out, "<strong class=\"label\">Meals:</strong> 3")
	assert.Contains(t, out, "<strong class=\"label\">Photos:</strong> 2")
}

func TestRenderHTML_EscapesUserText(t *testing.T) {
	entry := exampleEntries()[1]
	entry.Notes = "<script>alert(1)</script>"
	entry.CustomActivities = []string{"Arts & crafts"}

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, NewDocument(exampleRange, []*domain.DailyEntry{entry})))
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "Arts &amp; crafts")
}

func TestRenderHTML_NoEntries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, NewDocument(exampleRange, nil)))
	assert.Contains(t, buf.String(), "No entries in this period.")
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, NewDocument(exampleRange, exampleEntries())))
	out := buf.String()

	assert.Contains(t, out, "# Custody Documentation")
	assert.Contains(t, out, "Period: 2025-01-01 to 2025-01-02")
	assert.Contains(t, out, "## Thursday, January 2, 2025")
	assert.Contains(t, out, "**Activities:** Park visit")
	assert.Equal(t, 1, strings.Count(out, "Custom Activities:"))
	assert.NotContains(t, out, "<div")
}

var photosLine = regexp.MustCompile(`Photos:</strong> (\d+)`)

// All formats must agree on the totals when summed from their own output.
func TestFormatsAgreeOnAggregates(t *testing.T) {
	entries := exampleEntries()
	want := ComputeAggregates(entries)

	var csvBuf bytes.Buffer
	require.NoError(t, RenderCSV(&csvBuf, entries))
	records, err := csv.NewReader(&csvBuf).ReadAll()
	require.NoError(t, err)
	var csvMeals, csvPhotos int
	for _, rec := range records[1:] {
		m, _ := strconv.Atoi(rec[4])
		p, _ := strconv.Atoi(rec[6])
		csvMeals += m
		csvPhotos += p
	}

	var jsonBuf bytes.Buffer
	require.NoError(t, RenderJSON(&jsonBuf, entries))
	var decoded []*domain.DailyEntry
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))

	var htmlBuf bytes.Buffer
	require.NoError(t, RenderHTML(&htmlBuf, NewDocument(exampleRange, entries)))
	var htmlPhotos int
	for _, m := range photosLine.FindAllStringSubmatch(htmlBuf.String(), -1) {
		n, _ := strconv.Atoi(m[1])
		htmlPhotos += n
	}

	assert.Equal(t, want.TotalEntries, len(records)-1)
	assert.Equal(t, want.TotalMeals, csvMeals)
	assert.Equal(t, want.TotalPhotos, csvPhotos)
	assert.Equal(t, want, ComputeAggregates(decoded))
	assert.Equal(t, want.TotalPhotos, htmlPhotos)
	assert.Equal(t, want.TotalEntries, strings.Count(htmlBuf.String(), `<div class="entry">`))
}

func TestRender_Dispatch(t *testing.T) {
	doc := NewDocument(exampleRange, exampleEntries())
	for _, f := range Formats {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, f, doc), f)
		assert.NotEmpty(t, buf.String(), f)
	}

	assert.Error(t, Render(&bytes.Buffer{}, Format("xml"), doc))
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":     FormatJSON,
		"CSV":      FormatCSV,
		"html":     FormatHTML,
		"pdf":      FormatHTML,
		"markdown": FormatMarkdown,
		"md":       FormatMarkdown,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "custody-documentation-2025-01-01-to-2025-01-02.csv", FileName(exampleRange, FormatCSV))
	assert.Equal(t, "custody-documentation-2025-01-01-to-2025-01-02.json", FileName(exampleRange, FormatJSON))
	assert.Equal(t, "custody-documentation-2025-01-01-to-2025-01-02.html", FileName(exampleRange, FormatHTML))
}

func TestFormat_ContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Equal(t, "application/json; charset=utf-8", FormatJSON.ContentType())
}
