package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// UnitUnknown is the unit assigned when a composite quantity cell cannot be
// split into a numeric magnitude and a unit code.
const UnitUnknown = "Unknown"

// Quantity is a parsed (magnitude, unit) pair from a composite text cell
// such as "2186.54 HA" or "350 KM".
type Quantity struct {
	Magnitude float64 `json:"magnitude"`
	Unit      string  `json:"unit"`
}

var quantityRe = regexp.MustCompile(`^([0-9][0-9,.]*)\s*(.*)$`)

// ParseQuantity splits a composite cell on the first run of whitespace after
// the numeric prefix. ok is false when no magnitude could be extracted; the
// caller decides whether that deserves a quality flag.
func ParseQuantity(raw string) (q Quantity, ok bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Quantity{Unit: UnitUnknown}, false
	}

	m := quantityRe.FindStringSubmatch(text)
	if m == nil {
		return Quantity{Unit: UnitUnknown}, false
	}

	mag, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return Quantity{Unit: UnitUnknown}, false
	}

	unit := strings.TrimSpace(m[2])
	if unit == "" {
		unit = UnitUnknown
	}
	return Quantity{Magnitude: mag, Unit: unit}, true
}

// String renders the quantity back to its "<magnitude> <unit>" cell form.
func (q Quantity) String() string {
	mag := strconv.FormatFloat(q.Magnitude, 'f', -1, 64)
	if q.Unit == "" || q.Unit == UnitUnknown {
		return mag
	}
	return mag + " " + q.Unit
}
