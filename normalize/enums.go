package normalize

import (
	"regexp"
	"strings"
)

// Status and priority fields are closed variant sets with an explicit
// Unknown member. Raw board text that matches no known variant falls through
// to Unknown; it never surfaces downstream and never fails the record.
// Unknown is a legitimate state, not a quality defect, so no flag is raised.

// DealStatus is the sales pipeline state of a deal.
type DealStatus string

const (
	DealOpen    DealStatus = "Open"
	DealWon     DealStatus = "Won"
	DealDead    DealStatus = "Dead"
	DealOnHold  DealStatus = "On Hold"
	DealUnknown DealStatus = "Unknown"
)

// ParseDealStatus matches raw text case- and whitespace-insensitively.
func ParseDealStatus(raw string) DealStatus {
	switch fold(raw) {
	case "open":
		return DealOpen
	case "won":
		return DealWon
	case "dead", "lost":
		return DealDead
	case "on hold", "onhold", "on-hold":
		return DealOnHold
	default:
		return DealUnknown
	}
}

// Probability is the closure probability bucket of a deal.
type Probability string

const (
	ProbHigh    Probability = "High"
	ProbMedium  Probability = "Medium"
	ProbLow     Probability = "Low"
	ProbUnknown Probability = "Unknown"
)

func ParseProbability(raw string) Probability {
	switch fold(raw) {
	case "high":
		return ProbHigh
	case "medium", "med":
		return ProbMedium
	case "low":
		return ProbLow
	default:
		return ProbUnknown
	}
}

// ARPriority is the collection priority of a receivable.
type ARPriority string

const (
	ARHigh    ARPriority = "High"
	ARMedium  ARPriority = "Medium"
	ARLow     ARPriority = "Low"
	ARUnknown ARPriority = "Unknown"
)

// ParseARPriority folds the upstream "Critical" label into High.
func ParseARPriority(raw string) ARPriority {
	switch fold(raw) {
	case "high", "critical":
		return ARHigh
	case "medium", "med":
		return ARMedium
	case "low":
		return ARLow
	default:
		return ARUnknown
	}
}

// Platform is the product platform attached to a work order.
type Platform string

const (
	PlatformSpectra Platform = "SPECTRA"
	PlatformDMO     Platform = "DMO"
	PlatformNone    Platform = "None"
	PlatformUnknown Platform = "Unknown"
)

// ParsePlatform treats an empty cell as None (no platform assigned), not as
// Unknown: blank is the board's way of saying "none".
func ParsePlatform(raw string) Platform {
	switch fold(raw) {
	case "spectra":
		return PlatformSpectra
	case "dmo":
		return PlatformDMO
	case "", "none", "n/a", "none/unknown":
		return PlatformNone
	default:
		return PlatformUnknown
	}
}

// stageLabels maps the board's single-letter funnel codes to their labels.
var stageLabels = map[string]string{
	"A": "Lead",
	"B": "SQL",
	"C": "Demo Done",
	"D": "Feasibility",
	"E": "Proposal Sent",
	"F": "Negotiations",
	"G": "Won",
	"H": "WO Received",
	"I": "POC",
	"J": "Invoice Sent",
	"K": "Amount Accrued",
	"L": "Project Lost",
	"M": "On Hold",
	"N": "Not Relevant",
	"O": "Not Relevant",
}

var stageLetterRe = regexp.MustCompile(`^([A-O])\b`)

// MapStage resolves a raw stage cell ("B", "B - SQL", "Stage F") to its
// funnel label. Text with no letter code is title-cased as-is.
func MapStage(raw string) string {
	text := strings.ToUpper(strings.TrimSpace(raw))
	if text == "" {
		return "Unknown"
	}
	text = strings.TrimPrefix(text, "STAGE ")
	if m := stageLetterRe.FindStringSubmatch(text); m != nil {
		return stageLabels[m[1]]
	}
	return titleCase(text)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func titleCase(upper string) string {
	words := strings.Fields(strings.ToLower(upper))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
