package analytics

import (
	"testing"
	"time"

	"github.com/meridianbi/boardpulse/normalize"
)

var now = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func datedDeal(id string, status normalize.DealStatus, close time.Time, prob normalize.Probability) normalize.Deal {
	return normalize.Deal{ID: id, Status: status, CloseDate: close, Probability: prob}
}

func TestOverdueDeals(t *testing.T) {
	deals := []normalize.Deal{
		datedDeal("late", normalize.DealOpen, now.AddDate(0, 0, -10), normalize.ProbHigh),
		datedDeal("future", normalize.DealOpen, now.AddDate(0, 0, 10), normalize.ProbHigh),
		datedDeal("won-late", normalize.DealWon, now.AddDate(0, 0, -10), normalize.ProbHigh),
		datedDeal("no-date", normalize.DealOpen, time.Time{}, normalize.ProbHigh),
	}

	got := OverdueDeals(deals, now)
	if len(got) != 1 || got[0].ID != "late" {
		t.Fatalf("overdue = %+v, want only late", got)
	}
}

func TestOverdueFallsBackToTentativeDate(t *testing.T) {
	deals := []normalize.Deal{{
		ID: "tentative", Status: normalize.DealOpen,
		TentativeCloseDate: now.AddDate(0, 0, -1),
	}}
	if got := OverdueDeals(deals, now); len(got) != 1 {
		t.Fatalf("overdue = %+v", got)
	}
}

func TestAtRiskDeals(t *testing.T) {
	deals := []normalize.Deal{
		datedDeal("overdue", normalize.DealOpen, now.AddDate(0, 0, -1), normalize.ProbHigh),
		datedDeal("soon-low", normalize.DealOpen, now.AddDate(0, 0, 14), normalize.ProbLow),
		datedDeal("soon-high", normalize.DealOpen, now.AddDate(0, 0, 14), normalize.ProbHigh),
		datedDeal("far-low", normalize.DealOpen, now.AddDate(0, 0, 90), normalize.ProbLow),
	}

	got := AtRiskDeals(deals, now)
	if len(got) != 2 {
		t.Fatalf("at risk = %+v, want overdue and soon-low", got)
	}
	if got[0].ID != "overdue" || got[1].ID != "soon-low" {
		t.Fatalf("order = %s, %s", got[0].ID, got[1].ID)
	}
}

func TestUpcomingDeals(t *testing.T) {
	deals := []normalize.Deal{
		datedDeal("in-window", normalize.DealOpen, now.AddDate(0, 0, 7), normalize.ProbHigh),
		datedDeal("past", normalize.DealOpen, now.AddDate(0, 0, -7), normalize.ProbHigh),
		datedDeal("beyond", normalize.DealOpen, now.AddDate(0, 0, 60), normalize.ProbHigh),
	}
	got := UpcomingDeals(deals, now, 30)
	if len(got) != 1 || got[0].ID != "in-window" {
		t.Fatalf("upcoming = %+v", got)
	}
}

func TestPlatformAdoption(t *testing.T) {
	wos := []normalize.WorkOrder{
		{Platform: normalize.PlatformSpectra, AmountExclGST: 100},
		{Platform: normalize.PlatformSpectra, AmountExclGST: 300},
		{Platform: normalize.PlatformNone, AmountExclGST: 50},
	}
	got := PlatformAdoption(wos)
	if len(got) != 2 {
		t.Fatalf("adoption = %+v", got)
	}
	if got[0].Platform != normalize.PlatformSpectra || got[0].WorkOrders != 2 || got[0].ContractValue != 400 {
		t.Fatalf("top = %+v", got[0])
	}
}

func TestLeadershipUpdateComposes(t *testing.T) {
	deals := []normalize.Deal{
		deal("Energy", normalize.DealWon, 100),
		datedDeal("d1", normalize.DealOpen, now.AddDate(0, 0, -2), normalize.ProbHigh),
	}
	wos := []normalize.WorkOrder{
		{Sector: "Energy", AmountExclGST: 1000, BilledExclGST: 400, Receivable: 600, ARPriority: normalize.ARHigh},
	}

	l := LeadershipUpdate(deals, wos, now)
	if !l.GeneratedAt.Equal(now) {
		t.Fatalf("GeneratedAt = %v", l.GeneratedAt)
	}
	if l.Pipeline.TotalDeals != 2 {
		t.Fatalf("TotalDeals = %d", l.Pipeline.TotalDeals)
	}
	if l.Billing.BillingGap != 600 {
		t.Fatalf("BillingGap = %v", l.Billing.BillingGap)
	}
	if len(l.Overdue) != 1 || l.Overdue[0].ID != "d1" {
		t.Fatalf("Overdue = %+v", l.Overdue)
	}
	if len(l.ARBuckets) != 1 || l.ARBuckets[0].Priority != normalize.ARHigh {
		t.Fatalf("ARBuckets = %+v", l.ARBuckets)
	}
}

func TestDashboardMetrics(t *testing.T) {
	deals := []normalize.Deal{
		deal("Energy", normalize.DealOpen, 300),
		deal("Energy", normalize.DealWon, 700),
		deal("Energy", normalize.DealDead, 100),
	}
	wos := []normalize.WorkOrder{
		{AmountExclGST: 1000, BilledExclGST: 500, Collected: 250, ExecutionStatus: "In Progress"},
	}

	d := DashboardMetrics(deals, wos, now)
	kpis := make(map[string]float64, len(d.KPIs))
	for _, k := range d.KPIs {
		kpis[k.Label] = k.Value
	}
	if kpis["Open Pipeline"] != 300 || kpis["Won Value"] != 700 {
		t.Fatalf("KPIs = %v", kpis)
	}
	if kpis["Win Rate"] != 0.5 {
		t.Fatalf("Win Rate KPI = %v, want 0.5", kpis["Win Rate"])
	}
	if kpis["Collection Efficiency"] != 0.5 {
		t.Fatalf("Collection Efficiency = %v", kpis["Collection Efficiency"])
	}
	if kpis["Active Work Orders"] != 1 {
		t.Fatalf("Active Work Orders = %v", kpis["Active Work Orders"])
	}
	if len(d.StageFunnel) == 0 {
		t.Fatal("empty stage funnel")
	}
}
