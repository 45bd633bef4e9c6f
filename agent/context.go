package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/meridianbi/boardpulse/analytics"
	"github.com/meridianbi/boardpulse/normalize"
)

// Context building lives engine-side so it is testable without the network.
// The model only ever sees these rendered strings.

// DealContext renders the Deals-board figures a narrative answer can cite.
func DealContext(deals []normalize.Deal, now time.Time) string {
	p := analytics.PipelineSummary(deals)
	rates := analytics.WinRateSummary(deals)
	overdue := analytics.OverdueDeals(deals, now)

	var b strings.Builder
	b.WriteString("== DEALS ==\n")
	fmt.Fprintf(&b, "Total deals: %d (open %d, won %d, dead %d, on hold %d)\n",
		p.TotalDeals,
		p.StatusCounts[normalize.DealOpen], p.StatusCounts[normalize.DealWon],
		p.StatusCounts[normalize.DealDead], p.StatusCounts[normalize.DealOnHold])
	fmt.Fprintf(&b, "Open pipeline: %s; won to date: %s\n",
		analytics.FormatINR(p.OpenValue), analytics.FormatINR(p.WonValue))

	if rates.Overall.Rate != nil {
		fmt.Fprintf(&b, "Win rate: %s (%d won / %d closed)\n",
			analytics.FormatPercent(*rates.Overall.Rate), rates.Overall.Won, rates.Overall.Closed())
	} else {
		b.WriteString("Win rate: insufficient data (no closed deals)\n")
	}
	for _, s := range rates.BySector {
		fmt.Fprintf(&b, "  %s: %s (%d closed)\n", s.Sector, analytics.FormatPercent(*s.Rate), s.Closed())
	}

	if len(p.TopSectors) > 0 {
		b.WriteString("Top sectors by open value:\n")
		for _, s := range top(p.TopSectors, 5) {
			fmt.Fprintf(&b, "  %s: %s (%d deals)\n", s.Key, analytics.FormatINR(s.Value), s.Count)
		}
	}
	if len(overdue) > 0 {
		fmt.Fprintf(&b, "Overdue open deals: %d (earliest due %s)\n",
			len(overdue), overdue[0].CloseDate.Format("2006-01-02"))
	}
	if p.ZeroValueCount > 0 {
		fmt.Fprintf(&b, "Data quality: %d deals carry a zero value from unparseable cells\n", p.ZeroValueCount)
	}
	return b.String()
}

// WorkOrderContext renders the Work-Orders-board figures.
func WorkOrderContext(wos []normalize.WorkOrder) string {
	billing := analytics.BillingSummary(wos)
	activity := analytics.ActiveWorkOrders(wos)
	buckets := analytics.ARPriorityRollup(wos)

	var b strings.Builder
	b.WriteString("== WORK ORDERS ==\n")
	fmt.Fprintf(&b, "Total work orders: %d; contract value: %s\n",
		len(wos), analytics.FormatINR(billing.ContractValue))
	fmt.Fprintf(&b, "Billed: %s; collected: %s; billing gap: %s\n",
		analytics.FormatINR(billing.Billed), analytics.FormatINR(billing.Collected),
		analytics.FormatINR(billing.BillingGap))
	if billing.CollectionEfficiency != nil {
		fmt.Fprintf(&b, "Collection efficiency: %s\n", analytics.FormatPercent(*billing.CollectionEfficiency))
	}

	fmt.Fprintf(&b, "Outstanding AR: %s\n", analytics.FormatINR(billing.Receivable))
	for _, bucket := range buckets {
		fmt.Fprintf(&b, "  %s priority: %s across %d accounts\n",
			bucket.Priority, analytics.FormatINR(bucket.Receivable), bucket.Count)
	}
	for _, acct := range top(billing.HighPriorityAR, 5) {
		fmt.Fprintf(&b, "  chase: %s (%s) %s [%s]\n",
			acct.WorkOrder, acct.Customer, analytics.FormatINR(acct.Receivable), acct.Priority)
	}

	fmt.Fprintf(&b, "In progress: %d; stuck: %d\n", len(activity.InProgress), len(activity.Stuck))
	for _, ref := range top(activity.Stuck, 5) {
		fmt.Fprintf(&b, "  stuck: %s (%s) status %q\n", ref.Name, ref.Customer, ref.Status)
	}
	return b.String()
}

// ChatContext composes per-board context for the boards a question needs.
func ChatContext(boards []normalize.BoardKind, deals []normalize.Deal, wos []normalize.WorkOrder, now time.Time) string {
	var parts []string
	for _, kind := range boards {
		switch kind {
		case normalize.KindDeals:
			parts = append(parts, DealContext(deals, now))
		case normalize.KindWorkOrders:
			parts = append(parts, WorkOrderContext(wos))
		}
	}
	return strings.Join(parts, "\n")
}

// LeadershipContext renders the full briefing context.
func LeadershipContext(l analytics.Leadership) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Leadership update context, generated %s\n\n", l.GeneratedAt.Format("2006-01-02"))

	fmt.Fprintf(&b, "PIPELINE\nOpen: %s across %d deals; won to date: %s\n",
		analytics.FormatINR(l.Pipeline.OpenValue),
		l.Pipeline.StatusCounts[normalize.DealOpen],
		analytics.FormatINR(l.Pipeline.WonValue))
	if l.WinRates.Overall.Rate != nil {
		fmt.Fprintf(&b, "Win rate: %s\n", analytics.FormatPercent(*l.WinRates.Overall.Rate))
	}
	fmt.Fprintf(&b, "Overdue: %d; at risk: %d; closing in 30 days: %d\n\n",
		len(l.Overdue), len(l.AtRisk), len(l.Upcoming))

	fmt.Fprintf(&b, "BILLING\nContract: %s; billed: %s; gap: %s; collected: %s\n",
		analytics.FormatINR(l.Billing.ContractValue), analytics.FormatINR(l.Billing.Billed),
		analytics.FormatINR(l.Billing.BillingGap), analytics.FormatINR(l.Billing.Collected))
	for _, bucket := range l.ARBuckets {
		fmt.Fprintf(&b, "AR %s: %s (%d accounts)\n", bucket.Priority,
			analytics.FormatINR(bucket.Receivable), bucket.Count)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "EXECUTION\nIn progress: %d; stuck: %d\n",
		len(l.Activity.InProgress), len(l.Activity.Stuck))
	for _, share := range l.Platforms {
		fmt.Fprintf(&b, "Platform %s: %d work orders, %s\n", share.Platform,
			share.WorkOrders, analytics.FormatINR(share.ContractValue))
	}
	if l.QualityFlags > 0 {
		fmt.Fprintf(&b, "\nData quality: %d field-level flags across both boards\n", l.QualityFlags)
	}
	return b.String()
}

func top[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
