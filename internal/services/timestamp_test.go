package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

func TestMergeDateTime(t *testing.T) {
	tests := []struct {
		name     string
		date     models.Cell
		time     models.Cell
		fallback string
		want     string
	}{
		{
			name:     "date and 12 hour time",
			date:     models.TextCell("7/1/2026"),
			time:     models.TextCell("7:38:00 AM"),
			fallback: "2026-02-01",
			want:     "2026-01-07T07:38:00",
		},
		{
			name:     "missing time defaults to noon",
			date:     models.TextCell("7/1/2026"),
			fallback: "2026-02-01",
			want:     "2026-01-07T12:00:00",
		},
		{
			name:     "bad time defaults to noon",
			date:     models.TextCell("7/1/2026"),
			time:     models.TextCell("soon"),
			fallback: "2026-02-01",
			want:     "2026-01-07T12:00:00",
		},
		{
			name:     "missing date uses fallback",
			time:     models.TextCell("19:05"),
			fallback: "2026-02-01",
			want:     "2026-02-01T19:05:00",
		},
		{
			name:     "bad date uses fallback",
			date:     models.TextCell("31/02/2026"),
			fallback: "2026-02-01",
			want:     "2026-02-01T12:00:00",
		},
		{
			name:     "serial date and fraction time",
			date:     models.NumberCell(46029),
			time:     models.NumberCell(0.75),
			fallback: "2026-02-01",
			want:     "2026-01-07T18:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeDateTime(tt.date, tt.time, tt.fallback))
		})
	}
}

// TestMergeDateTime_RoundTrip checks merged timestamps against time.Date for a
// matrix of date and time encodings
func TestMergeDateTime_RoundTrip(t *testing.T) {
	dates := []struct {
		cell models.Cell
		y    int
		m    time.Month
		d    int
	}{
		{models.TextCell("7/1/2026"), 2026, time.January, 7},
		{models.TextCell("07-01-26"), 2026, time.January, 7},
		{models.TextCell("2026-03-15"), 2026, time.March, 15},
		{models.TextCell("12/31/2025"), 2025, time.December, 31},
		{models.NumberCell(46029), 2026, time.January, 7},
		{models.NumberCell(45658), 2025, time.January, 1},
	}
	times := []struct {
		cell models.Cell
		h    int
		min  int
		s    int
	}{
		{models.TextCell("7:38:00 AM"), 7, 38, 0},
		{models.TextCell("11:59:59 PM"), 23, 59, 59},
		{models.TextCell("12:00 AM"), 0, 0, 0},
		{models.TextCell("13:45"), 13, 45, 0},
		{models.NumberCell(0.25), 6, 0, 0},
		{models.NumberCell(45296.0 / 86400), 12, 34, 56},
		{models.Cell{}, 12, 0, 0},
	}

	for _, d := range dates {
		for _, tm := range times {
			merged := MergeDateTime(d.cell, tm.cell, "2000-01-01")

			got, err := ParseTimestamp(merged)
			require.NoError(t, err, merged)

			want := time.Date(d.y, d.m, d.d, tm.h, tm.min, tm.s, 0, time.UTC)
			assert.Equal(t, want, got, "date %q time %q", d.cell.Raw, tm.cell.Raw)
		}
	}
}

func TestSplitDateTimeCell(t *testing.T) {
	tests := []struct {
		name     string
		cell     models.Cell
		wantDate string
		wantTime string
	}{
		{name: "text with meridian", cell: models.TextCell("07/01/2026 07:38:00 AM"), wantDate: "07/01/2026", wantTime: "07:38:00 AM"},
		{name: "iso", cell: models.TextCell("2026-01-07T07:38:00"), wantDate: "2026-01-07", wantTime: "07:38:00"},
		{name: "date only", cell: models.TextCell("07/01/2026"), wantDate: "07/01/2026"},
		{name: "empty", cell: models.TextCell("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, tm := SplitDateTimeCell(tt.cell)
			assert.Equal(t, tt.wantDate, d.Text())
			assert.Equal(t, tt.wantTime, tm.Text())
		})
	}
}

func TestSplitDateTimeCell_Serial(t *testing.T) {
	d, tm := SplitDateTimeCell(models.NumberCell(46029.5))
	assert.True(t, d.Numeric)
	assert.Equal(t, 46029.0, d.Num)
	assert.True(t, tm.Numeric)
	assert.Equal(t, 0.5, tm.Num)

	d, tm = SplitDateTimeCell(models.NumberCell(46029))
	assert.Equal(t, 46029.0, d.Num)
	assert.True(t, tm.IsEmpty())
}

func TestResolveFallbackDate(t *testing.T) {
	now := time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		manual   string
		filename string
		want     string
	}{
		{name: "manual wins", manual: "2026-02-01", filename: "sales_2026-01-07.xlsx", want: "2026-02-01"},
		{name: "date in file name", filename: "sales_2026-01-07.xlsx", want: "2026-01-07"},
		{name: "invalid manual ignored", manual: "01/02/2026", filename: "sales_2026-01-07.csv", want: "2026-01-07"},
		{name: "invalid date in file name", filename: "sales_2026-13-40.xlsx", want: "2026-03-09"},
		{name: "today", filename: "sales.xlsx", want: "2026-03-09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveFallbackDate(tt.manual, tt.filename, now))
		})
	}
}
