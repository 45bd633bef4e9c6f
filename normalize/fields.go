package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// placeholders are cell values that mean "nothing here" across the boards.
var placeholders = map[string]bool{
	"":    true,
	"nan": true,
	"n/a": true,
	"-":   true,
}

const errorSentinel = "#VALUE!"

// cleanAmount parses a monetary cell into a non-negative float. Every
// failure mode recovers to 0 with a flag appended; a bad cell must never
// abort the record.
func cleanAmount(field, raw string, flags *[]QualityFlag) float64 {
	text := strings.TrimSpace(raw)

	if placeholders[strings.ToLower(text)] {
		*flags = append(*flags, QualityFlag{Field: field, Raw: raw, Reason: ReasonMissing})
		return 0
	}
	if text == errorSentinel {
		*flags = append(*flags, QualityFlag{Field: field, Raw: raw, Reason: ReasonErrorSentinel})
		return 0
	}

	// Strip currency symbol, digit grouping and stray spaces.
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '₹', ',', ' ':
			return -1
		}
		return r
	}, text)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		*flags = append(*flags, QualityFlag{Field: field, Raw: raw, Reason: ReasonUnparseableNumber})
		return 0
	}
	if v < 0 {
		*flags = append(*flags, QualityFlag{Field: field, Raw: raw, Reason: ReasonNegativeClamped})
		return 0
	}
	return v
}

// parseDate parses a date cell with a permissive multi-format parser,
// preferring day-first for ambiguous forms (the boards are dd/mm). A
// missing or unparseable date is the zero time — "not set" — and is
// deliberately not flagged: absent dates are routine on these boards.
func parseDate(raw string) time.Time {
	text := strings.TrimSpace(raw)
	if placeholders[strings.ToLower(text)] {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(text, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
