// Package observability records the engine's operational telemetry in
// SQLite: what was refreshed, what was asked, how long it took.
//
// All persistence is async and non-blocking. A full buffer drops the event
// with a warning rather than applying backpressure to request handling, and
// a failing telemetry store never fails the application.
package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridianbi/boardpulse/idgen"
)

// Event types recorded by the engine.
const (
	EventBoardRefresh     = "board_refresh"
	EventChatTurn         = "chat_turn"
	EventAdhocPivot       = "adhoc_pivot"
	EventCacheInvalidate  = "cache_invalidate"
	EventLeadershipUpdate = "leadership_update"
)

// Event is one engine event.
type Event struct {
	EventID      string
	Timestamp    time.Time
	EventType    string
	Board        string // deals | work_orders, empty when not board-scoped
	RequestID    string
	Duration     time.Duration
	Records      int
	QualityFlags int
	DroppedRows  int
	Success      bool
	ErrorMessage string
	Details      any // marshalled to JSON
}

// EventFilter narrows Query results.
type EventFilter struct {
	EventType string
	Board     string
	Since     *time.Time
	Limit     int // default 100
}

// Recorder persists engine events asynchronously in batches.
type Recorder struct {
	db    *sql.DB
	newID idgen.Generator
	ch    chan *Event
	stop  chan struct{}
	done  chan struct{}
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithIDGenerator overrides the event ID generator.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(r *Recorder) { r.newID = gen }
}

// NewRecorder starts a recorder over db. bufferSize 256 is plenty for this
// engine's event volume.
func NewRecorder(db *sql.DB, bufferSize int, opts ...Option) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	r := &Recorder{
		db:    db,
		newID: idgen.Prefixed("evt_", idgen.Default),
		ch:    make(chan *Event, bufferSize),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	go r.flushLoop()
	return r
}

// Record queues an event. Non-blocking; a full buffer drops the event.
func (r *Recorder) Record(event Event) {
	r.fillDefaults(&event)
	select {
	case r.ch <- &event:
	default:
		slog.Warn("telemetry buffer full, event dropped", "event_type", event.EventType)
	}
}

// RecordSync inserts an event synchronously. Used by tests and shutdown
// paths that must not race the flush loop.
func (r *Recorder) RecordSync(ctx context.Context, event Event) error {
	r.fillDefaults(&event)
	return r.insert(ctx, &event)
}

// Query returns events matching filter, newest first.
func (r *Recorder) Query(ctx context.Context, filter EventFilter) ([]*Event, error) {
	q := `SELECT event_id, timestamp, event_type, board, request_id,
		duration_ms, records, quality_flags, dropped_rows, success,
		error_message, details
		FROM engine_events WHERE 1=1`
	var args []any

	if filter.EventType != "" {
		q += " AND event_type = ?"
		args = append(args, filter.EventType)
	}
	if filter.Board != "" {
		q += " AND board = ?"
		args = append(args, filter.Board)
	}
	if filter.Since != nil {
		q += " AND timestamp >= ?"
		args = append(args, filter.Since.Unix())
	}

	limit := 100
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	q += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query engine events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			e                     Event
			ts, durationMs        int64
			success               int
			board, reqID          sql.NullString
			errMsg, details       sql.NullString
			records, flags, drops sql.NullInt64
		)
		if err := rows.Scan(&e.EventID, &ts, &e.EventType, &board, &reqID,
			&durationMs, &records, &flags, &drops, &success, &errMsg, &details); err != nil {
			return nil, fmt.Errorf("scan engine event: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.Board = board.String
		e.RequestID = reqID.String
		e.Records = int(records.Int64)
		e.QualityFlags = int(flags.Int64)
		e.DroppedRows = int(drops.Int64)
		e.Success = success != 0
		e.ErrorMessage = errMsg.String
		if details.Valid && details.String != "" {
			e.Details = details.String
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// Cleanup deletes events older than retention.
func (r *Recorder) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	threshold := time.Now().Add(-retention).Unix()
	res, err := r.db.ExecContext(ctx, "DELETE FROM engine_events WHERE timestamp < ?", threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup engine events: %w", err)
	}
	return res.RowsAffected()
}

// Close drains the buffer and stops the flush loop.
func (r *Recorder) Close() error {
	close(r.stop)
	<-r.done
	return nil
}

func (r *Recorder) fillDefaults(e *Event) {
	if e.EventID == "" {
		e.EventID = r.newID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
}

func (r *Recorder) flushLoop() {
	defer close(r.done)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	batch := make([]*Event, 0, 64)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, e := range batch {
			if err := r.insert(ctx, e); err != nil {
				slog.Error("telemetry insert failed", "error", err, "event_type", e.EventType)
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-r.stop:
			for {
				select {
				case e := <-r.ch:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		case e := <-r.ch:
			batch = append(batch, e)
			if len(batch) >= 64 {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (r *Recorder) insert(ctx context.Context, e *Event) error {
	var details string
	if e.Details != nil {
		if b, err := json.Marshal(e.Details); err == nil {
			details = string(b)
		}
	}
	success := 0
	if e.Success {
		success = 1
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO engine_events
		(event_id, timestamp, event_type, board, request_id,
		 duration_ms, records, quality_flags, dropped_rows, success,
		 error_message, details)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.EventID, e.Timestamp.Unix(), e.EventType, e.Board, e.RequestID,
		e.Duration.Milliseconds(), e.Records, e.QualityFlags, e.DroppedRows,
		success, e.ErrorMessage, details)
	return err
}
