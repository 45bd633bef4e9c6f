package observability

import (
	"testing"
	"time"

	"github.com/meridianbi/boardpulse/dbopen"
	_ "modernc.org/sqlite"
)

func TestRecordAndQueryEvents(t *testing.T) {
	db := dbopen.OpenMemory(t)
	if err := Init(db); err != nil {
		t.Fatal(err)
	}
	r := NewRecorder(db, 16)
	defer r.Close()

	err := r.RecordSync(t.Context(), Event{
		EventType:    EventBoardRefresh,
		Board:        "deals",
		Duration:     1200 * time.Millisecond,
		Records:      42,
		QualityFlags: 3,
		DroppedRows:  1,
		Success:      true,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = r.RecordSync(t.Context(), Event{
		EventType:    EventChatTurn,
		Success:      false,
		ErrorMessage: "upstream 502",
	})
	if err != nil {
		t.Fatal(err)
	}

	events, err := r.Query(t.Context(), EventFilter{EventType: EventBoardRefresh})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Board != "deals" || e.Records != 42 || e.QualityFlags != 3 || e.DroppedRows != 1 {
		t.Fatalf("event = %+v", e)
	}
	if !e.Success || e.Duration != 1200*time.Millisecond {
		t.Fatalf("event = %+v", e)
	}
	if e.EventID == "" {
		t.Fatal("missing event id")
	}

	all, err := r.Query(t.Context(), EventFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d events, want 2", len(all))
	}
}

func TestAsyncRecordLandsAfterClose(t *testing.T) {
	db := dbopen.OpenMemory(t)
	if err := Init(db); err != nil {
		t.Fatal(err)
	}
	r := NewRecorder(db, 16)
	r.Record(Event{EventType: EventCacheInvalidate, Success: true})
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	events, err := r.Query(t.Context(), EventFilter{EventType: EventCacheInvalidate})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 after drain", len(events))
	}
}

func TestCleanup(t *testing.T) {
	db := dbopen.OpenMemory(t)
	if err := Init(db); err != nil {
		t.Fatal(err)
	}
	r := NewRecorder(db, 16)
	defer r.Close()

	old := Event{EventType: EventChatTurn, Timestamp: time.Now().Add(-48 * time.Hour), Success: true}
	recent := Event{EventType: EventChatTurn, Success: true}
	if err := r.RecordSync(t.Context(), old); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordSync(t.Context(), recent); err != nil {
		t.Fatal(err)
	}

	deleted, err := r.Cleanup(t.Context(), 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
}

func TestMetricsRoundTrip(t *testing.T) {
	db := dbopen.OpenMemory(t)
	if err := Init(db); err != nil {
		t.Fatal(err)
	}
	m := NewMetrics(db, 100, time.Hour)

	m.Observe("chat_latency_ms", 850, "milliseconds")
	m.Record(&Metric{Name: "snapshot_records", Value: 120, Unit: "count",
		Labels: map[string]string{"board": "deals"}})
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	points, err := m.Query(t.Context(), "snapshot_records", nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if points[0].Value != 120 || points[0].Labels["board"] != "deals" {
		t.Fatalf("point = %+v", points[0])
	}

	all, err := m.Query(t.Context(), "", nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d points, want 2", len(all))
	}
}
