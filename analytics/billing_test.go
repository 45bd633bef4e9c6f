package analytics

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/meridianbi/boardpulse/normalize"
)

func TestBillingSummary(t *testing.T) {
	wos := []normalize.WorkOrder{
		{Name: "WO-1", CustomerCode: "C-1", OwnerCode: "AB", Sector: "Energy", AmountExclGST: 1000, BilledExclGST: 600, Collected: 300, Receivable: 300, ARPriority: normalize.ARHigh},
		{Name: "WO-2", CustomerCode: "C-2", OwnerCode: "CD", Sector: "Energy", AmountExclGST: 500, BilledExclGST: 500, Collected: 500},
		{Name: "WO-3", CustomerCode: "C-3", OwnerCode: "AB", Sector: "Telecom", AmountExclGST: 2000, BilledExclGST: 900, Collected: 100, Receivable: 800, ARPriority: normalize.ARMedium},
	}

	b := BillingSummary(wos)

	if b.ContractValue != 3500 || b.Billed != 2000 || b.Collected != 900 || b.Receivable != 1100 {
		t.Fatalf("totals = %+v", b)
	}
	if b.BillingGap != 1500 {
		t.Fatalf("BillingGap = %v, want 1500", b.BillingGap)
	}
	if b.CollectionGap != 1100 {
		t.Fatalf("CollectionGap = %v, want 1100", b.CollectionGap)
	}
	if b.CollectionEfficiency == nil || *b.CollectionEfficiency != 0.45 {
		t.Fatalf("CollectionEfficiency = %v, want 0.45", b.CollectionEfficiency)
	}

	wantSectors := []SectorBilling{
		{Sector: "Telecom", ContractValue: 2000, Billed: 900, Collected: 100, CollectionGap: 800, Receivable: 800},
		{Sector: "Energy", ContractValue: 1500, Billed: 1100, Collected: 800, CollectionGap: 300, Receivable: 300},
	}
	if diff := cmp.Diff(wantSectors, b.BySector); diff != "" {
		t.Errorf("BySector mismatch (-want +got):\n%s", diff)
	}

	wantOwners := []OwnerBilling{
		{Owner: "AB", ContractValue: 3000, Billed: 1500, Collected: 400, CollectionGap: 1100, Receivable: 1100},
		{Owner: "CD", ContractValue: 500, Billed: 500, Collected: 500, CollectionGap: 0},
	}
	if diff := cmp.Diff(wantOwners, b.ByOwner); diff != "" {
		t.Errorf("ByOwner mismatch (-want +got):\n%s", diff)
	}

	// High before Medium even though the Medium receivable is larger.
	wantAR := []ARAccount{
		{WorkOrder: "WO-1", Customer: "C-1", Receivable: 300, Priority: normalize.ARHigh},
		{WorkOrder: "WO-3", Customer: "C-3", Receivable: 800, Priority: normalize.ARMedium},
	}
	if diff := cmp.Diff(wantAR, b.HighPriorityAR); diff != "" {
		t.Errorf("HighPriorityAR mismatch (-want +got):\n%s", diff)
	}
}

func TestBillingSummaryNoBilledMeansNilEfficiency(t *testing.T) {
	b := BillingSummary([]normalize.WorkOrder{{AmountExclGST: 100}})
	if b.CollectionEfficiency != nil {
		t.Fatalf("CollectionEfficiency = %v, want nil", *b.CollectionEfficiency)
	}
}

func TestARPriorityRollup(t *testing.T) {
	wos := []normalize.WorkOrder{
		{Receivable: 100, ARPriority: normalize.ARLow},
		{Receivable: 200, ARPriority: normalize.ARHigh},
		{Receivable: 300, ARPriority: normalize.ARHigh},
		{Receivable: 0, ARPriority: normalize.ARHigh}, // nothing outstanding
		{Receivable: 50, ARPriority: normalize.ARUnknown},
	}

	want := []ARBucket{
		{Priority: normalize.ARHigh, Count: 2, Receivable: 500},
		{Priority: normalize.ARLow, Count: 1, Receivable: 100},
		{Priority: normalize.ARUnknown, Count: 1, Receivable: 50},
	}
	if diff := cmp.Diff(want, ARPriorityRollup(wos)); diff != "" {
		t.Errorf("rollup mismatch (-want +got):\n%s", diff)
	}
}

func TestActiveWorkOrders(t *testing.T) {
	wos := []normalize.WorkOrder{
		{ID: "1", Name: "a", ExecutionStatus: "In Progress"},
		{ID: "2", Name: "b", ExecutionStatus: "On Hold"},
		{ID: "3", Name: "c", ExecutionStatus: "Completed"},
		{ID: "4", Name: "d", ExecutionStatus: ""},
	}

	a := ActiveWorkOrders(wos)
	if a.StatusCounts["In Progress"] != 1 || a.StatusCounts["Completed"] != 1 || a.StatusCounts["Unknown"] != 1 {
		t.Fatalf("StatusCounts = %v", a.StatusCounts)
	}
	if len(a.InProgress) != 1 || a.InProgress[0].ID != "1" {
		t.Fatalf("InProgress = %+v", a.InProgress)
	}
	if len(a.Stuck) != 1 || a.Stuck[0].ID != "2" {
		t.Fatalf("Stuck = %+v", a.Stuck)
	}
}
