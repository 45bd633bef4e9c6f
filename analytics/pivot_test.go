package analytics

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/meridianbi/boardpulse/normalize"
)

func TestPivotDealValueBySector(t *testing.T) {
	deals := []normalize.Deal{
		deal("Energy", normalize.DealOpen, 100),
		deal("Energy", normalize.DealWon, 50),
		deal("Telecom", normalize.DealOpen, 400),
		deal("", normalize.DealOpen, 25),
	}

	res, err := Pivot(deals, nil, "sector", "deal_value")
	if err != nil {
		t.Fatal(err)
	}

	wantRows := []PivotRow{
		{Key: "Telecom", Value: 400, Count: 1},
		{Key: "Energy", Value: 150, Count: 2},
		{Key: "Unknown", Value: 25, Count: 1},
	}
	if diff := cmp.Diff(wantRows, res.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if res.Top == nil || res.Top.Key != "Telecom" {
		t.Fatalf("Top = %+v", res.Top)
	}
	if res.Total != 575 || res.Records != 4 {
		t.Fatalf("total/records = %v/%d", res.Total, res.Records)
	}
	if res.ValueKind != "currency" || res.ChartHint != "bar" {
		t.Fatalf("hints = %s/%s", res.ValueKind, res.ChartHint)
	}
}

func TestPivotARByPlatform(t *testing.T) {
	wos := []normalize.WorkOrder{
		{Platform: normalize.PlatformSpectra, Receivable: 100},
		{Platform: normalize.PlatformSpectra, Receivable: 200},
		{Platform: normalize.PlatformDMO, Receivable: 50},
	}

	res, err := Pivot(nil, wos, "platform", "ar")
	if err != nil {
		t.Fatal(err)
	}
	wantRows := []PivotRow{
		{Key: "SPECTRA", Value: 300, Count: 2},
		{Key: "DMO", Value: 50, Count: 1},
	}
	if diff := cmp.Diff(wantRows, res.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestPivotDealValueByPlatform(t *testing.T) {
	deals := []normalize.Deal{
		{Product: "SPECTRA", Status: normalize.DealOpen, Value: 300},
		{Product: "SPECTRA", Status: normalize.DealOpen, Value: 200},
		{Product: "DMO", Status: normalize.DealWon, Value: 100},
		{Status: normalize.DealOpen, Value: 50},
	}

	res, err := Pivot(deals, nil, "platform", "deal_value")
	if err != nil {
		t.Fatal(err)
	}
	wantRows := []PivotRow{
		{Key: "SPECTRA", Value: 500, Count: 2},
		{Key: "DMO", Value: 100, Count: 1},
		{Key: "Unknown", Value: 50, Count: 1},
	}
	if diff := cmp.Diff(wantRows, res.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if res.Total != 650 {
		t.Fatalf("total = %v, want 650", res.Total)
	}
}

func TestPivotWinRateBySector(t *testing.T) {
	deals := []normalize.Deal{
		deal("Energy", normalize.DealWon, 1),
		deal("Energy", normalize.DealWon, 1),
		deal("Energy", normalize.DealDead, 1),
		deal("Telecom", normalize.DealOpen, 1), // no closed deals, not ranked
	}

	res, err := Pivot(deals, nil, "sector", "win_rate")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 1 || res.Rows[0].Key != "Energy" {
		t.Fatalf("rows = %+v, want only Energy", res.Rows)
	}
	if got := res.Rows[0].Value; got < 0.666 || got > 0.667 {
		t.Fatalf("rate = %v, want 2/3", got)
	}
	if res.ValueKind != "ratio" {
		t.Fatalf("ValueKind = %s", res.ValueKind)
	}
}

func TestPivotUnsupported(t *testing.T) {
	cases := []struct {
		name      string
		dimension string
		metric    string
	}{
		{"unknown dimension", "region", "deal_value"},
		{"unknown metric", "sector", "margin"},
		{"stage with work order metric", "stage", "billed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Pivot(nil, nil, tc.dimension, tc.metric)
			var unsupported *UnsupportedPivotError
			if !errors.As(err, &unsupported) {
				t.Fatalf("err = %v, want UnsupportedPivotError", err)
			}
			if unsupported.Reason == "" {
				t.Fatal("empty reason")
			}
		})
	}
}

func TestPivotEmptyDataIsNotAnError(t *testing.T) {
	res, err := Pivot(nil, nil, "sector", "deal_count")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 0 || res.Top != nil || res.Total != 0 {
		t.Fatalf("res = %+v, want empty result", res)
	}
}
