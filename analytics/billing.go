package analytics

import (
	"sort"
	"strings"

	"github.com/meridianbi/boardpulse/normalize"
)

// SectorBilling rolls billing figures up per sector. CollectionGap is
// billed minus collected within the sector.
type SectorBilling struct {
	Sector        string  `json:"sector"`
	ContractValue float64 `json:"contract_value"`
	Billed        float64 `json:"billed"`
	Collected     float64 `json:"collected"`
	CollectionGap float64 `json:"collection_gap"`
	Receivable    float64 `json:"receivable"`
}

// OwnerBilling rolls billing figures up per owner code.
type OwnerBilling struct {
	Owner         string  `json:"owner"`
	ContractValue float64 `json:"contract_value"`
	Billed        float64 `json:"billed"`
	Collected     float64 `json:"collected"`
	CollectionGap float64 `json:"collection_gap"`
	Receivable    float64 `json:"receivable"`
}

// ARAccount is one receivable surfaced in the high-priority list.
type ARAccount struct {
	WorkOrder  string               `json:"work_order"`
	Customer   string               `json:"customer"`
	Receivable float64              `json:"receivable"`
	Priority   normalize.ARPriority `json:"priority"`
}

// Billing summarizes contract, billing and collection across work orders.
// Figures use the excl-GST amounts throughout so gap and efficiency compare
// like with like.
type Billing struct {
	ContractValue        float64         `json:"contract_value"`
	Billed               float64         `json:"billed"`
	Collected            float64         `json:"collected"`
	Receivable           float64         `json:"receivable"`
	BillingGap           float64         `json:"billing_gap"`
	CollectionGap        float64         `json:"collection_gap"`
	CollectionEfficiency *float64        `json:"collection_efficiency"`
	BySector             []SectorBilling `json:"by_sector"`
	ByOwner              []OwnerBilling  `json:"by_owner"`
	HighPriorityAR       []ARAccount     `json:"high_priority_ar"`
}

// BillingSummary aggregates the work order set. BillingGap is contract value
// not yet billed; CollectionGap is billed value not yet collected;
// CollectionEfficiency is collected over billed, nil when nothing has been
// billed.
func BillingSummary(wos []normalize.WorkOrder) Billing {
	var b Billing
	perSector := make(map[string]*SectorBilling)
	perOwner := make(map[string]*OwnerBilling)

	for _, w := range wos {
		b.ContractValue += w.AmountExclGST
		b.Billed += w.BilledExclGST
		b.Collected += w.Collected
		b.Receivable += w.Receivable

		sector := orUnknown(w.Sector)
		sb := perSector[sector]
		if sb == nil {
			sb = &SectorBilling{Sector: sector}
			perSector[sector] = sb
		}
		sb.ContractValue += w.AmountExclGST
		sb.Billed += w.BilledExclGST
		sb.Collected += w.Collected
		sb.Receivable += w.Receivable

		owner := orUnknown(w.OwnerCode)
		ob := perOwner[owner]
		if ob == nil {
			ob = &OwnerBilling{Owner: owner}
			perOwner[owner] = ob
		}
		ob.ContractValue += w.AmountExclGST
		ob.Billed += w.BilledExclGST
		ob.Collected += w.Collected
		ob.Receivable += w.Receivable

		if w.Receivable > 0 && (w.ARPriority == normalize.ARHigh || w.ARPriority == normalize.ARMedium) {
			b.HighPriorityAR = append(b.HighPriorityAR, ARAccount{
				WorkOrder:  w.Name,
				Customer:   w.CustomerCode,
				Receivable: w.Receivable,
				Priority:   w.ARPriority,
			})
		}
	}

	b.BillingGap = b.ContractValue - b.Billed
	b.CollectionGap = b.Billed - b.Collected
	if b.Billed > 0 {
		eff := b.Collected / b.Billed
		b.CollectionEfficiency = &eff
	}

	for _, sb := range perSector {
		sb.CollectionGap = sb.Billed - sb.Collected
		b.BySector = append(b.BySector, *sb)
	}
	sort.Slice(b.BySector, func(i, j int) bool {
		if b.BySector[i].ContractValue != b.BySector[j].ContractValue {
			return b.BySector[i].ContractValue > b.BySector[j].ContractValue
		}
		return b.BySector[i].Sector < b.BySector[j].Sector
	})

	for _, ob := range perOwner {
		ob.CollectionGap = ob.Billed - ob.Collected
		b.ByOwner = append(b.ByOwner, *ob)
	}
	sort.Slice(b.ByOwner, func(i, j int) bool {
		if b.ByOwner[i].ContractValue != b.ByOwner[j].ContractValue {
			return b.ByOwner[i].ContractValue > b.ByOwner[j].ContractValue
		}
		return b.ByOwner[i].Owner < b.ByOwner[j].Owner
	})

	// High before Medium, then largest receivable first.
	sort.Slice(b.HighPriorityAR, func(i, j int) bool {
		a, c := b.HighPriorityAR[i], b.HighPriorityAR[j]
		if a.Priority != c.Priority {
			return a.Priority == normalize.ARHigh
		}
		return a.Receivable > c.Receivable
	})
	return b
}

// ARBucket is the receivable rollup for one priority.
type ARBucket struct {
	Priority   normalize.ARPriority `json:"priority"`
	Count      int                  `json:"count"`
	Receivable float64              `json:"receivable"`
}

var arPriorityOrder = []normalize.ARPriority{
	normalize.ARHigh, normalize.ARMedium, normalize.ARLow, normalize.ARUnknown,
}

// ARPriorityRollup buckets outstanding receivables by priority, High first.
// Work orders with nothing outstanding are skipped.
func ARPriorityRollup(wos []normalize.WorkOrder) []ARBucket {
	byPriority := make(map[normalize.ARPriority]*ARBucket)
	for _, w := range wos {
		if w.Receivable <= 0 {
			continue
		}
		bucket := byPriority[w.ARPriority]
		if bucket == nil {
			bucket = &ARBucket{Priority: w.ARPriority}
			byPriority[w.ARPriority] = bucket
		}
		bucket.Count++
		bucket.Receivable += w.Receivable
	}

	out := make([]ARBucket, 0, len(byPriority))
	for _, p := range arPriorityOrder {
		if bucket := byPriority[p]; bucket != nil {
			out = append(out, *bucket)
		}
	}
	return out
}

// WorkOrderRef identifies a work order in a status listing.
type WorkOrderRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
}

// WorkOrderActivity is the execution-status view of the Work Orders board.
type WorkOrderActivity struct {
	StatusCounts map[string]int `json:"status_counts"`
	InProgress   []WorkOrderRef `json:"in_progress"`
	Stuck        []WorkOrderRef `json:"stuck"`
}

// ActiveWorkOrders breaks work orders down by execution status. Stuck means
// the status text signals a halt (on hold, blocked, stuck).
func ActiveWorkOrders(wos []normalize.WorkOrder) WorkOrderActivity {
	a := WorkOrderActivity{StatusCounts: make(map[string]int)}
	for _, w := range wos {
		status := orUnknown(strings.TrimSpace(w.ExecutionStatus))
		a.StatusCounts[status]++

		ref := WorkOrderRef{ID: w.ID, Name: w.Name, Customer: w.CustomerCode, Status: status}
		lower := strings.ToLower(status)
		switch {
		case strings.Contains(lower, "hold"), strings.Contains(lower, "blocked"), strings.Contains(lower, "stuck"):
			a.Stuck = append(a.Stuck, ref)
		case strings.Contains(lower, "progress"), strings.Contains(lower, "ongoing"):
			a.InProgress = append(a.InProgress, ref)
		}
	}
	return a
}
