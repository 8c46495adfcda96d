package services

import (
	"strings"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// match strength recorded per field; an exact match may replace a substring one
const (
	strengthNone = iota
	strengthSubstring
	strengthExact
)

// headerRule claims a header for a field when it matches
type headerRule struct {
	field models.Field
	exact bool
	// combined marks a date column that also carries the time of day
	combined bool
	match    func(clean, compact string) bool
}

// headerRules are evaluated in order for every header; the first eligible rule wins
var headerRules = []headerRule{
	{field: models.FieldID, exact: true, match: equalsAny("transid", "transno", "refno", "orderno", "reference", "id")},
	{field: models.FieldID, match: func(clean, compact string) bool {
		return containsAny(compact, "trans", "ref") && !containsAny(compact, "date", "time", "amount", "type")
	}},

	{field: models.FieldMachine, exact: true, match: func(clean, compact string) bool {
		return clean == "user name" || clean == "username"
	}},
	{field: models.FieldMachine, match: containsAnyRule("terminalid", "merchantname", "machine", "mesin")},

	{field: models.FieldProduct, match: containsAnyRule("proddesc", "product", "item", "produk")},

	{field: models.FieldAmount, match: func(clean, compact string) bool {
		return containsAny(compact, "originalamount", "amount", "price", "harga", "total") && !strings.Contains(compact, "qty")
	}},

	{field: models.FieldPayment, match: containsAnyRule("paymentmethod", "paytype", "kaedah")},

	{field: models.FieldDate, exact: true, match: func(clean, compact string) bool {
		return clean == "date" || clean == "tarikh"
	}},
	{field: models.FieldDate, combined: true, match: func(clean, compact string) bool {
		return strings.Contains(compact, "date") && strings.Contains(compact, "time")
	}},
	{field: models.FieldDate, match: func(clean, compact string) bool {
		return strings.Contains(compact, "date") && !strings.Contains(compact, "time")
	}},

	{field: models.FieldTime, exact: true, match: func(clean, compact string) bool {
		return clean == "time" || clean == "masa"
	}},
	{field: models.FieldTime, match: containsAnyRule("time")},
}

// DetectHeaders infers which column holds each logical transaction field.
// A field is assigned at most once, first match in header order, except that an
// exact header name replaces an earlier substring match for the same field.
// It never fails; unmatched fields stay at models.NotFound.
func DetectHeaders(headers []string) models.HeaderMap {
	m := models.NewHeaderMap()
	strength := make(map[models.Field]int, len(models.Fields))
	combinedCol := models.NotFound

	for idx, h := range headers {
		clean := strings.ToLower(strings.TrimSpace(h))
		if clean == "" {
			continue
		}
		compact := compactHeader(clean)

		for _, rule := range headerRules {
			if !rule.match(clean, compact) {
				continue
			}
			current := strength[rule.field]
			if rule.exact {
				if current == strengthExact {
					continue
				}
			} else if current != strengthNone {
				continue
			}

			m.Columns[rule.field] = idx
			if rule.exact {
				strength[rule.field] = strengthExact
			} else {
				strength[rule.field] = strengthSubstring
			}
			if rule.field == models.FieldDate {
				if rule.combined {
					combinedCol = idx
				} else {
					combinedCol = models.NotFound
				}
			}
			break
		}
	}

	m.CombinedDateTime = combinedCol != models.NotFound && combinedCol == m.Index(models.FieldDate)
	return m
}

// compactHeader keeps only ASCII letters and digits
func compactHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func equalsAny(keywords ...string) func(clean, compact string) bool {
	return func(_, compact string) bool {
		for _, k := range keywords {
			if compact == k {
				return true
			}
		}
		return false
	}
}

func containsAnyRule(keywords ...string) func(clean, compact string) bool {
	return func(_, compact string) bool {
		return containsAny(compact, keywords...)
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
