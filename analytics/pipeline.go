// Package analytics computes deterministic aggregates over board snapshots.
//
// Everything here is a pure function of normalized records: no I/O, no
// clocks except where a reference time is passed in. Monetary outputs are
// raw magnitudes; FormatINR renders them for narrative context only.
package analytics

import (
	"sort"

	"github.com/meridianbi/boardpulse/normalize"
)

// RankedValue is one (label, value) entry of a descending ranking.
type RankedValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// SectorOutcome counts deal outcomes within one sector.
type SectorOutcome struct {
	Sector string `json:"sector"`
	Open   int    `json:"open"`
	Won    int    `json:"won"`
	Dead   int    `json:"dead"`
}

// Pipeline summarizes the Deals board.
type Pipeline struct {
	TotalDeals        int                           `json:"total_deals"`
	StatusCounts      map[normalize.DealStatus]int  `json:"status_counts"`
	OpenValue         float64                       `json:"open_value"`
	WonValue          float64                       `json:"won_value"`
	ZeroValueCount    int                           `json:"zero_value_count"`
	TopSectors        []RankedValue                 `json:"top_sectors"`
	TopOwners         []RankedValue                 `json:"top_owners"`
	StageCounts       map[string]int                `json:"stage_counts"`
	ProbabilityCounts map[normalize.Probability]int `json:"probability_counts"`
	SectorOutcomes    []SectorOutcome               `json:"sector_outcomes"`
}

// PipelineSummary aggregates the full deal set. Zero-value deals participate
// in every count; their reduced confidence shows up only in ZeroValueCount.
func PipelineSummary(deals []normalize.Deal) Pipeline {
	p := Pipeline{
		TotalDeals:        len(deals),
		StatusCounts:      make(map[normalize.DealStatus]int),
		StageCounts:       make(map[string]int),
		ProbabilityCounts: make(map[normalize.Probability]int),
	}

	sectorOpen := make(map[string]*RankedValue)
	ownerValue := make(map[string]*RankedValue)
	outcomes := make(map[string]*SectorOutcome)

	for _, d := range deals {
		p.StatusCounts[d.Status]++
		p.StageCounts[d.Stage]++
		p.ProbabilityCounts[d.Probability]++
		if d.Value == 0 {
			p.ZeroValueCount++
		}

		sector := orUnknown(d.Sector)
		out := outcomes[sector]
		if out == nil {
			out = &SectorOutcome{Sector: sector}
			outcomes[sector] = out
		}

		switch d.Status {
		case normalize.DealOpen:
			p.OpenValue += d.Value
			out.Open++
			bump(sectorOpen, sector, d.Value)
		case normalize.DealWon:
			p.WonValue += d.Value
			out.Won++
		case normalize.DealDead:
			out.Dead++
		}

		if d.OwnerCode != "" {
			bump(ownerValue, d.OwnerCode, d.Value)
		}
	}

	p.TopSectors = rank(sectorOpen)
	p.TopOwners = rank(ownerValue)

	for _, out := range outcomes {
		p.SectorOutcomes = append(p.SectorOutcomes, *out)
	}
	sort.Slice(p.SectorOutcomes, func(i, j int) bool {
		a, b := p.SectorOutcomes[i], p.SectorOutcomes[j]
		if a.Open != b.Open {
			return a.Open > b.Open
		}
		return a.Sector < b.Sector
	})
	return p
}

func bump(m map[string]*RankedValue, key string, value float64) {
	rv := m[key]
	if rv == nil {
		rv = &RankedValue{Key: key}
		m[key] = rv
	}
	rv.Value += value
	rv.Count++
}

// rank flattens a rollup map into a descending ranking. Ties break on key so
// output is deterministic.
func rank(m map[string]*RankedValue) []RankedValue {
	out := make([]RankedValue, 0, len(m))
	for _, rv := range m {
		out = append(out, *rv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
