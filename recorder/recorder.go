// Package recorder persists a bounded number of parsed records per state to
// SQLite for offline analysis. Only raw input samples are stored; aggregate
// state never touches disk.
package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sensormon/record"
	"sensormon/sqliteutil"
	"sensormon/strutil"

	_ "modernc.org/sqlite"
)

// Recorder samples parsed records into SQLite, capped per state value so a
// noisy state cannot crowd out the interesting ones.
type Recorder struct {
	db             *sql.DB
	perStateLimit  int
	mu             sync.Mutex
	perStateCounts map[string]int
}

// NewRecorder opens (or creates) the SQLite database at path and ensures the
// schema exists.
func NewRecorder(path string, perStateLimit int) (*Recorder, error) {
	if perStateLimit <= 0 {
		return nil, errors.New("recorder: per-state limit must be > 0")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("recorder: ensure dir: %w", err)
	}
	// A corrupt or stalled file is quarantined so the recorder starts fresh
	// instead of wedging startup.
	if _, err := sqliteutil.Preflight(path, "recorder", 2*time.Second, log.Printf); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("recorder: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Recorder{
		db:             db,
		perStateLimit:  perStateLimit,
		perStateCounts: make(map[string]int),
	}, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS telemetry_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sensor_id TEXT,
    sp1 TEXT,
    sp2 TEXT,
    state TEXT,
    observed_at INTEGER
);`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Record inserts the record if the per-state limit has not been reached.
// Inserts run inline; the per-state cap keeps the cost bounded.
func (r *Recorder) Record(rec record.Record) {
	if r == nil || r.db == nil {
		return
	}
	state := strutil.NormalizeUpper(rec.State)
	if state == "" {
		state = "EMPTY"
	}

	r.mu.Lock()
	count := r.perStateCounts[state]
	if count >= r.perStateLimit {
		r.mu.Unlock()
		return
	}
	r.perStateCounts[state] = count + 1
	r.mu.Unlock()

	r.insert(state, rec)
}

func (r *Recorder) insert(state string, rec record.Record) {
	_, err := r.db.Exec(`
INSERT INTO telemetry_records (sensor_id, sp1, sp2, state, observed_at)
VALUES (?, ?, ?, ?, ?)`,
		rec.SensorID,
		rec.SP1,
		rec.SP2,
		state,
		time.Now().UTC().Unix(),
	)
	if err != nil {
		log.Printf("Recorder: failed to insert record: %v", err)
	}
}
