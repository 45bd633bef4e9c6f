// Package normalize converts raw board items into typed, cleaned records.
//
// Field rules are applied independently: one bad cell recovers to a sentinel
// value plus a QualityFlag and never aborts the record, let alone the board.
// Column titles (not ids) are the contract with the boards; lookups are
// case-insensitive and tolerate the title drift the boards accumulate.
package normalize

import (
	"strings"
	"time"

	"github.com/meridianbi/boardpulse/boardapi"
)

// BoardKind discriminates the two boards the engine understands.
type BoardKind string

const (
	KindDeals      BoardKind = "deals"
	KindWorkOrders BoardKind = "work_orders"
)

// Deal is a normalized record from the sales Deals board.
type Deal struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	OwnerCode          string      `json:"owner_code"`
	ClientCode         string      `json:"client_code"`
	Status             DealStatus  `json:"status"`
	CloseDate          time.Time   `json:"close_date"`           // zero = not set
	TentativeCloseDate time.Time   `json:"tentative_close_date"` // zero = not set
	Probability        Probability `json:"probability"`
	Value              float64     `json:"value"` // masked deal value, ≥ 0
	Stage              string      `json:"stage"`
	Product            string      `json:"product"`
	Sector             string      `json:"sector"`
	CreatedDate        time.Time   `json:"created_date"`
	Flags              []QualityFlag `json:"flags,omitempty"`
}

// WorkOrder is a normalized record from the operations Work Orders board.
type WorkOrder struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	CustomerCode    string     `json:"customer_code"`
	ExecutionStatus string     `json:"execution_status"`
	POLOIDate       time.Time  `json:"po_loi_date"` // zero = not set
	OwnerCode       string     `json:"owner_code"`  // BD/KAM personnel code
	Sector          string     `json:"sector"`
	Platform        Platform   `json:"platform"`
	Quantity        Quantity   `json:"quantity"`
	AmountExclGST   float64    `json:"amount_excl_gst"`
	AmountInclGST   float64    `json:"amount_incl_gst"`
	BilledExclGST   float64    `json:"billed_excl_gst"`
	BilledInclGST   float64    `json:"billed_incl_gst"`
	Collected       float64    `json:"collected"`
	Receivable      float64    `json:"receivable"`
	ARPriority      ARPriority `json:"ar_priority"`
	InvoiceStatus   string     `json:"invoice_status"`
	BillingStatus   string     `json:"billing_status"`
	CollectionStatus string    `json:"collection_status"`
	Flags           []QualityFlag `json:"flags,omitempty"`
}

// columns is a lowercase-title → text view of one raw item.
type columns map[string]string

func newColumns(item boardapi.RawItem) columns {
	cols := make(columns, len(item.Columns))
	for title, text := range item.Columns {
		cols[strings.ToLower(strings.TrimSpace(title))] = strings.TrimSpace(text)
	}
	return cols
}

// lookup tries alias keys in order and returns the first non-empty value.
func (c columns) lookup(aliases ...string) string {
	for _, a := range aliases {
		if v := c[a]; v != "" {
			return v
		}
	}
	return ""
}

// headerStatusTitles are status-column titles as they appear when the
// board's header row is duplicated into the data grid. A status cell whose
// text equals one of its own column titles marks the whole row as a stray
// header, which is dropped, not normalized.
var headerStatusTitles = map[string]bool{
	"deal status":      true,
	"status":           true,
	"deal_status":      true,
	"execution status": true,
	"wo status":        true,
}

func isHeaderRow(statusRaw string) bool {
	return headerStatusTitles[fold(statusRaw)]
}

// Deals normalizes raw Deals-board items. dropped counts header-duplicate
// rows excluded from the result (reported for audit, invisible to
// aggregates).
func Deals(items []boardapi.RawItem) (deals []Deal, dropped int) {
	deals = make([]Deal, 0, len(items))
	for _, item := range items {
		cols := newColumns(item)

		statusRaw := cols.lookup("deal status", "status")
		if isHeaderRow(statusRaw) {
			dropped++
			continue
		}

		var flags []QualityFlag
		d := Deal{
			ID:                 item.ID,
			Name:               strings.TrimSpace(item.Name),
			OwnerCode:          cols.lookup("owner code", "owner", "bd/kam personnel code"),
			ClientCode:         cols.lookup("client code", "client", "customer name code"),
			Status:             ParseDealStatus(statusRaw),
			CloseDate:          parseDate(cols.lookup("close date (a)", "close date")),
			TentativeCloseDate: parseDate(cols.lookup("tentative close date", "tentative close")),
			Probability:        ParseProbability(cols.lookup("closure probability", "probability")),
			Value:              cleanAmount("deal_value", cols.lookup("masked deal value", "deal value", "value"), &flags),
			Stage:              MapStage(cols.lookup("deal stage", "stage")),
			Product:            cols.lookup("product deal", "product"),
			Sector:             cols.lookup("sector/service", "sector"),
			CreatedDate:        parseDate(cols.lookup("created date")),
		}
		d.Flags = flags
		deals = append(deals, d)
	}
	return deals, dropped
}

// WorkOrders normalizes raw Work-Orders-board items.
func WorkOrders(items []boardapi.RawItem) (wos []WorkOrder, dropped int) {
	wos = make([]WorkOrder, 0, len(items))
	for _, item := range items {
		cols := newColumns(item)

		statusRaw := cols.lookup("execution status", "status")
		if isHeaderRow(statusRaw) {
			dropped++
			continue
		}

		var flags []QualityFlag
		w := WorkOrder{
			ID:              item.ID,
			Name:            strings.TrimSpace(item.Name),
			CustomerCode:    cols.lookup("customer name code", "client code"),
			ExecutionStatus: statusRaw,
			POLOIDate:       parseDate(cols.lookup("po/loi date", "po date", "loi date")),
			OwnerCode:       cols.lookup("bd/kam personnel code", "bd/kam code", "owner code"),
			Sector:          cols.lookup("sector", "sector/service"),
			Platform:        ParsePlatform(cols.lookup("platform", "product platform")),
			AmountExclGST:   cleanAmount("amount_excl_gst", cols.lookup("amount excl gst (masked)", "amount excl gst"), &flags),
			AmountInclGST:   cleanAmount("amount_incl_gst", cols.lookup("amount incl gst (masked)", "amount incl gst"), &flags),
			BilledExclGST:   cleanAmount("billed_excl_gst", cols.lookup("billed value excl gst (masked)", "billed value excl gst"), &flags),
			BilledInclGST:   cleanAmount("billed_incl_gst", cols.lookup("billed value incl gst (masked)", "billed value incl gst"), &flags),
			Collected:       cleanAmount("collected", cols.lookup("collected amount incl gst (masked)", "collected amount"), &flags),
			Receivable:      cleanAmount("receivable", cols.lookup("amount receivable", "ar"), &flags),
			ARPriority:      ParseARPriority(cols.lookup("ar priority", "priority")),
			InvoiceStatus:   cols.lookup("invoice status"),
			BillingStatus:   cols.lookup("billing status"),
			CollectionStatus: cols.lookup("collection status"),
		}

		if raw := cols.lookup("quantity", "scope", "area/length"); raw != "" {
			q, ok := ParseQuantity(raw)
			if !ok {
				flags = append(flags, QualityFlag{Field: "quantity", Raw: raw, Reason: ReasonUnparseableNumber})
			}
			w.Quantity = q
		}

		w.Flags = flags
		wos = append(wos, w)
	}
	return wos, dropped
}

// FlagCount sums quality flags across a normalized record set.
func FlagCount[T interface{ QualityFlags() []QualityFlag }](records []T) int {
	n := 0
	for _, r := range records {
		n += len(r.QualityFlags())
	}
	return n
}

// QualityFlags implements the flag accessor used by FlagCount.
func (d Deal) QualityFlags() []QualityFlag { return d.Flags }

// QualityFlags implements the flag accessor used by FlagCount.
func (w WorkOrder) QualityFlags() []QualityFlag { return w.Flags }
