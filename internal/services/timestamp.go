package services

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// DefaultTimeOfDay is used whenever a row carries no usable time
var DefaultTimeOfDay = ClockTime{Hour: 12}

// TimestampLayout is the canonical naive local timestamp format
const TimestampLayout = "2006-01-02T15:04:05"

var isoDateInName = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// MergeDateTime combines a date cell and a time cell into YYYY-MM-DDTHH:MM:SS.
// An empty or undecodable date uses fallback (YYYY-MM-DD); an empty or undecodable
// time uses DefaultTimeOfDay. No timezone is applied.
func MergeDateTime(rawDate, rawTime models.Cell, fallback string) string {
	date, ok := DecodeDate(rawDate)
	if !ok {
		date, ok = ParseCivilDate(fallback)
		if !ok {
			return strings.TrimSpace(fallback) + "T" + DefaultTimeOfDay.String()
		}
	}

	clock, ok := DecodeTime(rawTime)
	if !ok {
		clock = DefaultTimeOfDay
	}

	return date.String() + "T" + clock.String()
}

// SplitDateTimeCell separates a cell that carries both date and time, such as
// "07/01/2026 07:38:00 AM", "2026-01-07T07:38:00" or the serial 46029.318.
// The returned time cell is empty when the source has no time part.
func SplitDateTimeCell(c models.Cell) (models.Cell, models.Cell) {
	if c.IsEmpty() {
		return models.Cell{}, models.Cell{}
	}

	if c.Numeric {
		whole := math.Floor(c.Num)
		frac := c.Num - whole
		if frac == 0 {
			return models.NumberCell(whole), models.Cell{}
		}
		return models.NumberCell(whole), models.NumberCell(frac)
	}

	text := c.Text()
	if datePart, timePart, found := strings.Cut(text, "T"); found && len(datePart) >= 8 && strings.Contains(timePart, ":") {
		return models.Cell{Raw: datePart}, models.Cell{Raw: timePart}
	}
	datePart, timePart, found := strings.Cut(text, " ")
	if !found {
		return models.Cell{Raw: text}, models.Cell{}
	}
	return models.Cell{Raw: datePart}, models.Cell{Raw: strings.TrimSpace(timePart)}
}

// ResolveFallbackDate picks the date used for rows without a usable date: the
// operator's choice, else an ISO date embedded in the file name, else today.
func ResolveFallbackDate(manual, filename string, now time.Time) string {
	if d, ok := ParseCivilDate(manual); ok {
		return d.String()
	}
	if m := isoDateInName.FindString(filename); m != "" {
		if d, ok := ParseCivilDate(m); ok {
			return d.String()
		}
	}
	return now.Format("2006-01-02")
}

// ParseTimestamp reads a canonical timestamp
func ParseTimestamp(ts string) (time.Time, error) {
	return time.Parse(TimestampLayout, ts)
}
