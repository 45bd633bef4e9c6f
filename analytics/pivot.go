package analytics

import (
	"fmt"
	"strings"

	"github.com/meridianbi/boardpulse/normalize"
)

// Pivot dimensions and metrics form a closed vocabulary. Anything outside it
// is an explicit UnsupportedPivotError so callers can distinguish "bad ask"
// from "no data".
const (
	DimSector   = "sector"
	DimOwner    = "owner"
	DimStage    = "stage"
	DimStatus   = "status"
	DimPlatform = "platform"

	MetricDealCount = "deal_count"
	MetricDealValue = "deal_value"
	MetricWinRate   = "win_rate"
	MetricWOCount   = "wo_count"
	MetricBilled    = "billed"
	MetricCollected = "collected"
	MetricAR        = "ar"
)

// Dimensions lists the supported pivot dimensions.
func Dimensions() []string {
	return []string{DimSector, DimOwner, DimStage, DimStatus, DimPlatform}
}

// Metrics lists the supported pivot metrics.
func Metrics() []string {
	return []string{MetricDealCount, MetricDealValue, MetricWinRate, MetricWOCount, MetricBilled, MetricCollected, MetricAR}
}

// workOrderMetrics are computed over the Work Orders board; the rest come
// from Deals.
var workOrderMetrics = map[string]bool{
	MetricWOCount:   true,
	MetricBilled:    true,
	MetricCollected: true,
	MetricAR:        true,
}

// UnsupportedPivotError reports a dimension/metric pair outside the
// supported vocabulary, with the valid options for the caller to echo back.
type UnsupportedPivotError struct {
	Dimension string
	Metric    string
	Reason    string
}

func (e *UnsupportedPivotError) Error() string {
	return fmt.Sprintf("analytics: unsupported pivot %s by %s: %s", e.Metric, e.Dimension, e.Reason)
}

// PivotRow is one entry of the ranked pivot series.
type PivotRow struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// PivotResult is a ranked single-dimension aggregation.
type PivotResult struct {
	Dimension string     `json:"dimension"`
	Metric    string     `json:"metric"`
	Rows      []PivotRow `json:"rows"`
	Top       *PivotRow  `json:"top,omitempty"`
	Total     float64    `json:"total"`
	Records   int        `json:"records"`
	ChartHint string     `json:"chart_hint"` // bar | pie
	ValueKind string     `json:"value_kind"` // currency | count | ratio
}

// Pivot aggregates metric by dimension over whichever board the metric
// belongs to. The series is ranked descending by value.
func Pivot(deals []normalize.Deal, wos []normalize.WorkOrder, dimension, metric string) (*PivotResult, error) {
	dimension = strings.ToLower(strings.TrimSpace(dimension))
	metric = strings.ToLower(strings.TrimSpace(metric))

	if !contains(Dimensions(), dimension) {
		return nil, &UnsupportedPivotError{Dimension: dimension, Metric: metric,
			Reason: "dimension must be one of " + strings.Join(Dimensions(), ", ")}
	}
	if !contains(Metrics(), metric) {
		return nil, &UnsupportedPivotError{Dimension: dimension, Metric: metric,
			Reason: "metric must be one of " + strings.Join(Metrics(), ", ")}
	}

	if workOrderMetrics[metric] {
		if dimension == DimStage {
			return nil, &UnsupportedPivotError{Dimension: dimension, Metric: metric,
				Reason: "stage is a deal dimension; work order metrics support sector, owner, status, platform"}
		}
		return pivotWorkOrders(wos, dimension, metric), nil
	}
	if metric == MetricWinRate {
		return pivotWinRate(deals, dimension), nil
	}
	return pivotDeals(deals, dimension, metric), nil
}

// dealKey groups a deal under the dimension. Platform maps to the deal's
// product line, the board's equivalent of the work order platform column.
func dealKey(d normalize.Deal, dimension string) string {
	switch dimension {
	case DimSector:
		return orUnknown(d.Sector)
	case DimOwner:
		return orUnknown(d.OwnerCode)
	case DimStage:
		return orUnknown(d.Stage)
	case DimPlatform:
		return orUnknown(d.Product)
	default: // DimStatus
		return string(d.Status)
	}
}

func workOrderKey(w normalize.WorkOrder, dimension string) string {
	switch dimension {
	case DimSector:
		return orUnknown(w.Sector)
	case DimOwner:
		return orUnknown(w.OwnerCode)
	case DimPlatform:
		return string(w.Platform)
	default: // DimStatus
		return orUnknown(w.ExecutionStatus)
	}
}

func pivotDeals(deals []normalize.Deal, dimension, metric string) *PivotResult {
	rollup := make(map[string]*RankedValue)
	for _, d := range deals {
		switch metric {
		case MetricDealCount:
			bump(rollup, dealKey(d, dimension), 1)
		case MetricDealValue:
			bump(rollup, dealKey(d, dimension), d.Value)
		}
	}
	return buildResult(dimension, metric, rollup, len(deals))
}

func pivotWorkOrders(wos []normalize.WorkOrder, dimension, metric string) *PivotResult {
	rollup := make(map[string]*RankedValue)
	for _, w := range wos {
		key := workOrderKey(w, dimension)
		switch metric {
		case MetricWOCount:
			bump(rollup, key, 1)
		case MetricBilled:
			bump(rollup, key, w.BilledExclGST)
		case MetricCollected:
			bump(rollup, key, w.Collected)
		case MetricAR:
			bump(rollup, key, w.Receivable)
		}
	}
	return buildResult(dimension, metric, rollup, len(wos))
}

// pivotWinRate ranks groups by win rate; groups with no closed deals are
// insufficient data and stay out of the series.
func pivotWinRate(deals []normalize.Deal, dimension string) *PivotResult {
	type tally struct{ won, dead int }
	tallies := make(map[string]*tally)
	for _, d := range deals {
		if d.Status != normalize.DealWon && d.Status != normalize.DealDead {
			continue
		}
		key := dealKey(d, dimension)
		t := tallies[key]
		if t == nil {
			t = &tally{}
			tallies[key] = t
		}
		if d.Status == normalize.DealWon {
			t.won++
		} else {
			t.dead++
		}
	}

	rollup := make(map[string]*RankedValue)
	var won, closed int
	for key, t := range tallies {
		groupClosed := t.won + t.dead
		won += t.won
		closed += groupClosed
		rollup[key] = &RankedValue{
			Key:   key,
			Value: float64(t.won) / float64(groupClosed),
			Count: groupClosed,
		}
	}

	res := buildResult(dimension, MetricWinRate, rollup, len(deals))
	if closed > 0 {
		res.Total = float64(won) / float64(closed)
	} else {
		res.Total = 0
	}
	return res
}

func buildResult(dimension, metric string, rollup map[string]*RankedValue, records int) *PivotResult {
	res := &PivotResult{
		Dimension: dimension,
		Metric:    metric,
		Records:   records,
		ChartHint: chartHint(dimension, metric),
		ValueKind: valueKind(metric),
	}
	ranked := rank(rollup)
	for _, rv := range ranked {
		res.Rows = append(res.Rows, PivotRow(rv))
		if metric != MetricWinRate {
			res.Total += rv.Value
		}
	}
	if len(res.Rows) > 0 {
		top := res.Rows[0]
		res.Top = &top
	}
	return res
}

func chartHint(dimension, metric string) string {
	if (dimension == DimStatus || dimension == DimPlatform) &&
		(metric == MetricDealCount || metric == MetricWOCount) {
		return "pie"
	}
	return "bar"
}

func valueKind(metric string) string {
	switch metric {
	case MetricDealCount, MetricWOCount:
		return "count"
	case MetricWinRate:
		return "ratio"
	default:
		return "currency"
	}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
