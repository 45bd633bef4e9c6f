package normalize

import "testing"

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		raw     string
		wantMag float64
		wantUnit string
		wantOK  bool
	}{
		{"2186.54 HA", 2186.54, "HA", true},
		{"350 KM", 350, "KM", true},
		{"1,200 Sq Km", 1200, "Sq Km", true},
		{"42", 42, UnitUnknown, true},
		{"99.5HA", 99.5, "HA", true},
		{"", 0, UnitUnknown, false},
		{"approx five", 0, UnitUnknown, false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			q, ok := ParseQuantity(tc.raw)
			if ok != tc.wantOK {
				t.Fatalf("ParseQuantity(%q) ok = %v, want %v", tc.raw, ok, tc.wantOK)
			}
			if q.Magnitude != tc.wantMag || q.Unit != tc.wantUnit {
				t.Fatalf("ParseQuantity(%q) = %+v, want {%v %s}", tc.raw, q, tc.wantMag, tc.wantUnit)
			}
		})
	}
}

func TestQuantityStringRoundTrip(t *testing.T) {
	q, ok := ParseQuantity("2186.54 HA")
	if !ok {
		t.Fatal("parse failed")
	}
	if got := q.String(); got != "2186.54 HA" {
		t.Fatalf("String() = %q, want %q", got, "2186.54 HA")
	}
}
