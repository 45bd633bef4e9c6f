package analytics

import (
	"sort"
	"time"

	"github.com/meridianbi/boardpulse/normalize"
)

// DealRef identifies a deal in a timeline listing.
type DealRef struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Owner     string                `json:"owner"`
	Sector    string                `json:"sector"`
	Value     float64               `json:"value"`
	CloseDate time.Time             `json:"close_date"`
	Prob      normalize.Probability `json:"probability"`
}

// closeDate prefers the confirmed close date over the tentative one.
func closeDate(d normalize.Deal) time.Time {
	if !d.CloseDate.IsZero() {
		return d.CloseDate
	}
	return d.TentativeCloseDate
}

func toRef(d normalize.Deal) DealRef {
	return DealRef{
		ID: d.ID, Name: d.Name, Owner: d.OwnerCode, Sector: orUnknown(d.Sector),
		Value: d.Value, CloseDate: closeDate(d), Prob: d.Probability,
	}
}

// OverdueDeals lists open deals whose close date has passed. Deals with no
// close date set are never overdue.
func OverdueDeals(deals []normalize.Deal, now time.Time) []DealRef {
	var out []DealRef
	for _, d := range deals {
		if d.Status != normalize.DealOpen {
			continue
		}
		due := closeDate(d)
		if !due.IsZero() && due.Before(now) {
			out = append(out, toRef(d))
		}
	}
	sortByCloseDate(out)
	return out
}

// AtRiskDeals lists open deals that are overdue or closing within 30 days
// with low closure probability.
func AtRiskDeals(deals []normalize.Deal, now time.Time) []DealRef {
	horizon := now.AddDate(0, 0, 30)
	var out []DealRef
	for _, d := range deals {
		if d.Status != normalize.DealOpen {
			continue
		}
		due := closeDate(d)
		if due.IsZero() {
			continue
		}
		overdue := due.Before(now)
		closingSoon := !due.After(horizon) && d.Probability == normalize.ProbLow
		if overdue || closingSoon {
			out = append(out, toRef(d))
		}
	}
	sortByCloseDate(out)
	return out
}

// UpcomingDeals lists open deals closing within the next days days.
func UpcomingDeals(deals []normalize.Deal, now time.Time, days int) []DealRef {
	horizon := now.AddDate(0, 0, days)
	var out []DealRef
	for _, d := range deals {
		if d.Status != normalize.DealOpen {
			continue
		}
		due := closeDate(d)
		if due.IsZero() || due.Before(now) || due.After(horizon) {
			continue
		}
		out = append(out, toRef(d))
	}
	sortByCloseDate(out)
	return out
}

func sortByCloseDate(refs []DealRef) {
	sort.Slice(refs, func(i, j int) bool {
		if !refs[i].CloseDate.Equal(refs[j].CloseDate) {
			return refs[i].CloseDate.Before(refs[j].CloseDate)
		}
		return refs[i].ID < refs[j].ID
	})
}

// PlatformShare is one platform's slice of the adoption picture.
type PlatformShare struct {
	Platform      normalize.Platform `json:"platform"`
	WorkOrders    int                `json:"work_orders"`
	ContractValue float64            `json:"contract_value"`
}

// PlatformAdoption rolls work orders up by product platform, largest
// contract value first.
func PlatformAdoption(wos []normalize.WorkOrder) []PlatformShare {
	byPlatform := make(map[normalize.Platform]*PlatformShare)
	for _, w := range wos {
		share := byPlatform[w.Platform]
		if share == nil {
			share = &PlatformShare{Platform: w.Platform}
			byPlatform[w.Platform] = share
		}
		share.WorkOrders++
		share.ContractValue += w.AmountExclGST
	}

	out := make([]PlatformShare, 0, len(byPlatform))
	for _, share := range byPlatform {
		out = append(out, *share)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ContractValue != out[j].ContractValue {
			return out[i].ContractValue > out[j].ContractValue
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}
