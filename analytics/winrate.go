package analytics

import (
	"sort"

	"github.com/meridianbi/boardpulse/normalize"
)

// minClosedForRanking is the closed-deal count a sector needs before its win
// rate is ranked. Sectors below it still aggregate into the overall figure.
const minClosedForRanking = 3

// WinRate is won / (won + dead). Rate is nil when no deal has closed: that
// is "insufficient data", distinct from a genuine 0% rate.
type WinRate struct {
	Won  int      `json:"won"`
	Dead int      `json:"dead"`
	Rate *float64 `json:"rate"`
}

// Closed is the win-rate denominator.
func (w WinRate) Closed() int { return w.Won + w.Dead }

func (w WinRate) finish() WinRate {
	if closed := w.Closed(); closed > 0 {
		rate := float64(w.Won) / float64(closed)
		w.Rate = &rate
	}
	return w
}

// SectorWinRate is one sector's entry in the ranked breakdown.
type SectorWinRate struct {
	Sector string `json:"sector"`
	WinRate
}

// WinRates is the overall rate plus the per-sector ranking.
type WinRates struct {
	Overall  WinRate         `json:"overall"`
	BySector []SectorWinRate `json:"by_sector"`
}

// WinRateSummary computes win rates from deal statuses alone. Deal value
// never enters the ratio, so zero-value deals count like any other.
func WinRateSummary(deals []normalize.Deal) WinRates {
	var overall WinRate
	perSector := make(map[string]*WinRate)

	for _, d := range deals {
		var won, dead int
		switch d.Status {
		case normalize.DealWon:
			won = 1
		case normalize.DealDead:
			dead = 1
		default:
			continue
		}
		overall.Won += won
		overall.Dead += dead

		sector := orUnknown(d.Sector)
		wr := perSector[sector]
		if wr == nil {
			wr = &WinRate{}
			perSector[sector] = wr
		}
		wr.Won += won
		wr.Dead += dead
	}

	out := WinRates{Overall: overall.finish()}
	for sector, wr := range perSector {
		if wr.Closed() < minClosedForRanking {
			continue
		}
		out.BySector = append(out.BySector, SectorWinRate{Sector: sector, WinRate: wr.finish()})
	}
	sort.Slice(out.BySector, func(i, j int) bool {
		a, b := out.BySector[i], out.BySector[j]
		if *a.Rate != *b.Rate {
			return *a.Rate > *b.Rate
		}
		return a.Sector < b.Sector
	})
	return out
}
