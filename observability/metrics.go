package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Metric is one timeseries datapoint.
type Metric struct {
	Name      string // e.g. "chat_latency_ms", "snapshot_records"
	Timestamp time.Time
	Value     float64
	Labels    map[string]string
	Unit      string // "milliseconds", "count", "minutes"
}

// Metrics buffers datapoints and flushes them to SQLite in batches.
type Metrics struct {
	db            *sql.DB
	bufferSize    int
	flushInterval time.Duration

	mu     sync.Mutex
	buffer []*Metric

	stop chan struct{}
	done chan struct{}
}

// NewMetrics starts a batching metrics writer. Defaults: bufferSize 100,
// flushInterval 5s.
func NewMetrics(db *sql.DB, bufferSize int, flushInterval time.Duration) *Metrics {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	m := &Metrics{
		db:            db,
		bufferSize:    bufferSize,
		flushInterval: flushInterval,
		buffer:        make([]*Metric, 0, bufferSize),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go m.flushLoop()
	return m
}

// Record queues a datapoint. Non-blocking.
func (m *Metrics) Record(metric *Metric) {
	if metric.Timestamp.IsZero() {
		metric.Timestamp = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffer = append(m.buffer, metric)
	if len(m.buffer) >= m.bufferSize {
		m.flushLocked()
	}
}

// Observe is the shorthand for an unlabeled datapoint.
func (m *Metrics) Observe(name string, value float64, unit string) {
	m.Record(&Metric{Name: name, Value: value, Unit: unit})
}

// Query returns datapoints for name (empty for all), newest first.
func (m *Metrics) Query(ctx context.Context, name string, since *time.Time, limit int) ([]*Metric, error) {
	q := "SELECT metric_name, timestamp, value, labels, unit FROM metrics_timeseries WHERE 1=1"
	var args []any
	if name != "" {
		q += " AND metric_name = ?"
		args = append(args, name)
	}
	if since != nil {
		q += " AND timestamp >= ?"
		args = append(args, since.Unix())
	}
	q += " ORDER BY timestamp DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var out []*Metric
	for rows.Next() {
		var (
			metric     Metric
			ts         int64
			labelsJSON sql.NullString
			unit       sql.NullString
		)
		if err := rows.Scan(&metric.Name, &ts, &metric.Value, &labelsJSON, &unit); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		metric.Timestamp = time.Unix(ts, 0)
		metric.Unit = unit.String
		if labelsJSON.Valid && labelsJSON.String != "" {
			var labels map[string]string
			if json.Unmarshal([]byte(labelsJSON.String), &labels) == nil {
				metric.Labels = labels
			}
		}
		out = append(out, &metric)
	}
	return out, rows.Err()
}

// Close flushes the buffer and stops the flush loop.
func (m *Metrics) Close() error {
	close(m.stop)
	<-m.done
	return nil
}

func (m *Metrics) flushLoop() {
	defer close(m.done)
	ticker := time.NewTicker(m.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			m.mu.Lock()
			m.flushLocked()
			m.mu.Unlock()
			return
		case <-ticker.C:
			m.mu.Lock()
			m.flushLocked()
			m.mu.Unlock()
		}
	}
}

// flushLocked writes the buffer out. Callers hold mu.
func (m *Metrics) flushLocked() {
	if len(m.buffer) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, metric := range m.buffer {
		var labels any
		if len(metric.Labels) > 0 {
			if b, err := json.Marshal(metric.Labels); err == nil {
				labels = string(b)
			}
		}
		if _, err := m.db.ExecContext(ctx, `INSERT INTO metrics_timeseries
			(metric_name, timestamp, value, labels, unit) VALUES (?,?,?,?,?)`,
			metric.Name, metric.Timestamp.Unix(), metric.Value, labels, metric.Unit); err != nil {
			slog.Error("metric insert failed", "error", err, "metric", metric.Name)
		}
	}
	m.buffer = m.buffer[:0]
}
