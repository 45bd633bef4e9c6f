package analytics

import (
	"time"

	"github.com/meridianbi/boardpulse/normalize"
)

// Leadership is the composite context behind the periodic leadership
// briefing: pipeline health, conversion, billing and execution in one view.
type Leadership struct {
	GeneratedAt   time.Time         `json:"generated_at"`
	Pipeline      Pipeline          `json:"pipeline"`
	WinRates      WinRates          `json:"win_rates"`
	Billing       Billing           `json:"billing"`
	ARBuckets     []ARBucket        `json:"ar_buckets"`
	Activity      WorkOrderActivity `json:"activity"`
	Platforms     []PlatformShare   `json:"platforms"`
	Overdue       []DealRef         `json:"overdue"`
	AtRisk        []DealRef         `json:"at_risk"`
	Upcoming      []DealRef         `json:"upcoming"`
	QualityFlags  int               `json:"quality_flags"`
	DroppedHeader int               `json:"dropped_header_rows"`
}

// LeadershipUpdate assembles the full briefing context at now.
func LeadershipUpdate(deals []normalize.Deal, wos []normalize.WorkOrder, now time.Time) Leadership {
	return Leadership{
		GeneratedAt: now,
		Pipeline:    PipelineSummary(deals),
		WinRates:    WinRateSummary(deals),
		Billing:     BillingSummary(wos),
		ARBuckets:   ARPriorityRollup(wos),
		Activity:    ActiveWorkOrders(wos),
		Platforms:   PlatformAdoption(wos),
		Overdue:     OverdueDeals(deals, now),
		AtRisk:      AtRiskDeals(deals, now),
		Upcoming:    UpcomingDeals(deals, now, 30),
		QualityFlags: normalize.FlagCount(deals) +
			normalize.FlagCount(wos),
	}
}

// KPI is one headline number on the dashboard.
type KPI struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Kind  string  `json:"kind"` // currency | count | ratio
}

// Dashboard is the chart-ready aggregate set for the BI dashboard.
type Dashboard struct {
	KPIs           []KPI           `json:"kpis"`
	StageFunnel    []RankedValue   `json:"stage_funnel"`
	SectorPipeline []RankedValue   `json:"sector_pipeline"`
	SectorBilling  []SectorBilling `json:"sector_billing"`
	Platforms      []PlatformShare `json:"platforms"`
	HighPriorityAR []ARAccount     `json:"high_priority_ar"`
	Overdue        []DealRef       `json:"overdue"`
}

// DashboardMetrics computes the dashboard payload at now.
func DashboardMetrics(deals []normalize.Deal, wos []normalize.WorkOrder, now time.Time) Dashboard {
	pipeline := PipelineSummary(deals)
	billing := BillingSummary(wos)
	rates := WinRateSummary(deals)
	activity := ActiveWorkOrders(wos)

	kpis := []KPI{
		{Label: "Open Pipeline", Value: pipeline.OpenValue, Kind: "currency"},
		{Label: "Won Value", Value: pipeline.WonValue, Kind: "currency"},
		{Label: "Outstanding AR", Value: billing.Receivable, Kind: "currency"},
		{Label: "Billing Gap", Value: billing.BillingGap, Kind: "currency"},
		{Label: "Active Work Orders", Value: float64(len(activity.InProgress)), Kind: "count"},
	}
	if rates.Overall.Rate != nil {
		kpis = append(kpis, KPI{Label: "Win Rate", Value: *rates.Overall.Rate, Kind: "ratio"})
	}
	if billing.CollectionEfficiency != nil {
		kpis = append(kpis, KPI{Label: "Collection Efficiency", Value: *billing.CollectionEfficiency, Kind: "ratio"})
	}

	stageFunnel := make(map[string]*RankedValue)
	for _, d := range deals {
		bump(stageFunnel, orUnknown(d.Stage), d.Value)
	}

	return Dashboard{
		KPIs:           kpis,
		StageFunnel:    rank(stageFunnel),
		SectorPipeline: pipeline.TopSectors,
		SectorBilling:  billing.BySector,
		Platforms:      PlatformAdoption(wos),
		HighPriorityAR: billing.HighPriorityAR,
		Overdue:        OverdueDeals(deals, now),
	}
}
