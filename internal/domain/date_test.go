package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-03")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", d.String())
	assert.Equal(t, "Monday, March 3, 2025", d.Long())

	_, err = ParseDate("03/03/2025")
	assert.Error(t, err)

	_, err = ParseDate("2025-02-30")
	assert.Error(t, err)
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	d := DateOf(time.Date(2025, 1, 2, 23, 30, 0, 0, loc))

	assert.Equal(t, "2025-01-02", d.String())
	assert.Equal(t, time.UTC, d.Time().Location())
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Date Date `json:"date"`
	}

	out, err := json.Marshal(wrapper{Date: MustParseDate("2025-01-02")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-01-02"}`, string(out))

	var back wrapper
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, MustParseDate("2025-01-02"), back.Date)

	out, err = json.Marshal(wrapper{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":null}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"date":null}`), &back))
	assert.True(t, back.Date.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"date":"yesterday"}`), &back))
}

func TestDate_Arithmetic(t *testing.T) {
	d := MustParseDate("2025-03-31")

	assert.Equal(t, "2025-04-01", d.AddDays(1).String())
	assert.Equal(t, "2025-03-25", d.AddDays(-6).String())
	// time.AddDate normalises Feb 31 to Mar 3.
	assert.Equal(t, "2025-03-03", d.AddMonths(-1).String())
	assert.True(t, d.After(d.AddDays(-1)))
	assert.True(t, d.AddDays(-1).Before(d))
	assert.Equal(t, 0, d.Compare(MustParseDate("2025-03-31")))
}

func TestDateRange(t *testing.T) {
	r := DateRange{Start: MustParseDate("2025-01-01"), End: MustParseDate("2025-01-31")}
	require.NoError(t, r.Validate())

	assert.True(t, r.Contains(MustParseDate("2025-01-01")))
	assert.True(t, r.Contains(MustParseDate("2025-01-31")))
	assert.False(t, r.Contains(MustParseDate("2025-02-01")))
	assert.False(t, r.Contains(MustParseDate("2024-12-31")))

	assert.Error(t, DateRange{Start: r.End, End: r.Start}.Validate())
	assert.Error(t, DateRange{Start: r.Start}.Validate())
}

func TestLastMonth(t *testing.T) {
	r := LastMonth(MustParseDate("2025-06-15"))
	assert.Equal(t, "2025-05-15", r.Start.String())
	assert.Equal(t, "2025-06-15", r.End.String())
}
