package observability

import "database/sql"

// Schema is the DDL for the engine's operational telemetry store. It lives
// in its own database file, separate from anything user-facing, so telemetry
// writes never contend with request handling.
const Schema = `
-- Engine events: board refreshes, chat turns, pivots, invalidations.
CREATE TABLE IF NOT EXISTS engine_events (
    event_id TEXT PRIMARY KEY,
    timestamp INTEGER NOT NULL,
    event_type TEXT NOT NULL,
    board TEXT,
    request_id TEXT,
    duration_ms INTEGER,
    records INTEGER,
    quality_flags INTEGER,
    dropped_rows INTEGER,
    success INTEGER NOT NULL DEFAULT 1,
    error_message TEXT,
    details TEXT,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_engine_events_type
    ON engine_events(event_type, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_engine_events_time
    ON engine_events(timestamp DESC);

-- Metrics timeseries: request latencies, snapshot sizes, cache ages.
CREATE TABLE IF NOT EXISTS metrics_timeseries (
    metric_id TEXT PRIMARY KEY DEFAULT ('met_' || hex(randomblob(16))),
    metric_name TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    value REAL NOT NULL,
    labels TEXT,
    unit TEXT,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_metrics_name_time
    ON metrics_timeseries(metric_name, timestamp DESC);
`

// Init applies the telemetry schema to db.
func Init(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
