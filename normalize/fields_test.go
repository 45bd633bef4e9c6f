package normalize

import (
	"testing"
	"time"
)

func TestCleanAmount(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		want   float64
		reason FlagReason // "" means no flag expected
	}{
		{name: "plain", raw: "120000", want: 120000},
		{name: "decimal", raw: "42.5", want: 42.5},
		{name: "rupee and commas", raw: "₹1,20,000.50", want: 120000.50},
		{name: "internal spaces", raw: " 1 200 ", want: 1200},
		{name: "error sentinel", raw: "#VALUE!", want: 0, reason: ReasonErrorSentinel},
		{name: "empty", raw: "", want: 0, reason: ReasonMissing},
		{name: "nan placeholder", raw: "NaN", want: 0, reason: ReasonMissing},
		{name: "dash placeholder", raw: "-", want: 0, reason: ReasonMissing},
		{name: "na placeholder", raw: "N/A", want: 0, reason: ReasonMissing},
		{name: "garbage", raw: "twelve lakh", want: 0, reason: ReasonUnparseableNumber},
		{name: "negative clamped", raw: "-500", want: 0, reason: ReasonNegativeClamped},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var flags []QualityFlag
			got := cleanAmount("value", tc.raw, &flags)
			if got != tc.want {
				t.Fatalf("cleanAmount(%q) = %v, want %v", tc.raw, got, tc.want)
			}
			if tc.reason == "" {
				if len(flags) != 0 {
					t.Fatalf("unexpected flags: %+v", flags)
				}
				return
			}
			if len(flags) != 1 {
				t.Fatalf("got %d flags, want 1", len(flags))
			}
			if flags[0].Reason != tc.reason {
				t.Fatalf("flag reason = %s, want %s", flags[0].Reason, tc.reason)
			}
			if flags[0].Field != "value" || flags[0].Raw != tc.raw {
				t.Fatalf("flag = %+v, want field %q raw %q", flags[0], "value", tc.raw)
			}
		})
	}
}

func TestCleanAmountNeverNegative(t *testing.T) {
	for _, raw := range []string{"-1", "-0.01", "-₹2,000", "#VALUE!", "", "junk", "99"} {
		var flags []QualityFlag
		if got := cleanAmount("f", raw, &flags); got < 0 {
			t.Errorf("cleanAmount(%q) = %v, want >= 0", raw, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2025-03-14", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"14/03/2025", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"March 14, 2025", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"nan", time.Time{}},
		{"-", time.Time{}},
		{"not a date", time.Time{}},
	}
	for _, tc := range cases {
		if got := parseDate(tc.raw); !got.Equal(tc.want) {
			t.Errorf("parseDate(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParseDateAmbiguousIsDayFirst(t *testing.T) {
	got := parseDate("02/03/2025")
	want := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("parseDate(02/03/2025) = %v, want %v", got, want)
	}
}
