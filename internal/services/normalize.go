package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// spreadsheetEpochOffset is the serial number of 1970-01-01 in the 1900 date system
const spreadsheetEpochOffset = 25569

const secondsPerDay = 86400

// CivilDate is a calendar date without location
type CivilDate struct {
	Year  int
	Month int
	Day   int
}

// String formats the date as YYYY-MM-DD
func (d CivilDate) String() string {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// ClockTime is a time of day
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// String formats the time as HH:MM:SS
func (t ClockTime) String() string {
	return pad2(t.Hour) + ":" + pad2(t.Minute) + ":" + pad2(t.Second)
}

// CleanAmount decodes an amount cell. Numbers pass through; text keeps only digits,
// '.' and '-' before parsing. Anything unparsable is zero.
func CleanAmount(c models.Cell) decimal.Decimal {
	if c.Numeric {
		return decimal.NewFromFloat(c.Num)
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, c.Raw)
	if cleaned == "" {
		return decimal.Zero
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// DecodeDate decodes a date cell. Numbers are spreadsheet serials; text is split on
// '/', '-' or '.' and read as day/month/year (year/month/day when the first part has
// four digits). A month above 12 paired with a day of 12 or less is taken as
// month/day order and swapped. Two-digit years are in the 2000s.
func DecodeDate(c models.Cell) (CivilDate, bool) {
	if c.IsEmpty() {
		return CivilDate{}, false
	}

	if c.Numeric {
		serial := math.Floor(c.Num)
		if serial < 1 || serial > 2958465 {
			return CivilDate{}, false
		}
		days := int64(serial) - spreadsheetEpochOffset
		t := time.Unix(days*secondsPerDay, 0).UTC()
		return CivilDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, true
	}

	text := c.Text()
	if fields := strings.Fields(text); len(fields) > 0 {
		text = fields[0]
	}
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) != 3 {
		return CivilDate{}, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return CivilDate{}, false
		}
		nums[i] = n
	}

	var d CivilDate
	var yearPart string
	if len(parts[0]) == 4 {
		d = CivilDate{Year: nums[0], Month: nums[1], Day: nums[2]}
		yearPart = parts[0]
	} else {
		d = CivilDate{Day: nums[0], Month: nums[1], Year: nums[2]}
		yearPart = parts[2]
		if d.Month > 12 && d.Day <= 12 {
			d.Day, d.Month = d.Month, d.Day
		}
	}

	switch len(yearPart) {
	case 2:
		d.Year += 2000
	case 4:
	default:
		return CivilDate{}, false
	}

	if !validDate(d) {
		return CivilDate{}, false
	}
	return d, true
}

// DecodeTime decodes a time cell. Numbers are fractions of a day; text may carry an
// AM/PM marker and is read as hour:minute[:second].
func DecodeTime(c models.Cell) (ClockTime, bool) {
	if c.IsEmpty() {
		return ClockTime{}, false
	}

	if c.Numeric {
		frac := c.Num - math.Floor(c.Num)
		total := int(math.Round(frac * secondsPerDay))
		if total >= secondsPerDay {
			total = secondsPerDay - 1
		}
		return ClockTime{Hour: total / 3600, Minute: (total % 3600) / 60, Second: total % 60}, true
	}

	text := strings.ToUpper(c.Text())
	isPM := strings.Contains(text, "PM")
	isAM := strings.Contains(text, "AM")
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case 'A', 'P', 'M', ' ', '\t':
			return -1
		}
		return r
	}, text)

	parts := strings.Split(cleaned, ":")
	if len(parts) < 2 && !(len(parts) == 1 && (isAM || isPM)) {
		return ClockTime{}, false
	}
	if len(parts) > 3 {
		return ClockTime{}, false
	}

	nums := []int{0, 0, 0}
	for i, p := range parts {
		if i == 2 {
			// fractional seconds are dropped
			p, _, _ = strings.Cut(p, ".")
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return ClockTime{}, false
		}
		nums[i] = n
	}

	t := ClockTime{Hour: nums[0], Minute: nums[1], Second: nums[2]}
	if isPM && t.Hour < 12 {
		t.Hour += 12
	}
	if isAM && t.Hour == 12 {
		t.Hour = 0
	}

	if t.Hour > 23 || t.Minute > 59 || t.Second > 59 {
		return ClockTime{}, false
	}
	return t, true
}

// ParseCivilDate reads a YYYY-MM-DD string
func ParseCivilDate(s string) (CivilDate, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return CivilDate{}, false
	}
	return CivilDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, true
}

func validDate(d CivilDate) bool {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return t.Year() == d.Year && int(t.Month()) == d.Month && t.Day() == d.Day
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
