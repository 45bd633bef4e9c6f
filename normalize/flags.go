package normalize

// FlagReason classifies why a field failed clean parsing.
type FlagReason string

const (
	// ReasonErrorSentinel marks the well-known spreadsheet formula error
	// marker ("#VALUE!") found where a number was expected.
	ReasonErrorSentinel FlagReason = "ERROR_SENTINEL"
	// ReasonUnparseableNumber marks numeric text that failed to parse.
	ReasonUnparseableNumber FlagReason = "UNPARSEABLE_NUMBER"
	// ReasonMissing marks an empty or placeholder value.
	ReasonMissing FlagReason = "MISSING"
	// ReasonNegativeClamped marks a negative monetary value clamped to zero.
	ReasonNegativeClamped FlagReason = "NEGATIVE_CLAMPED"
)

// QualityFlag records a field that failed clean parsing. Flags are
// informational: the record still participates in analytics with its
// sentinel value, and the narrative layer surfaces the reduced confidence.
type QualityFlag struct {
	Field  string     `json:"field"`
	Raw    string     `json:"raw"`
	Reason FlagReason `json:"reason"`
}
