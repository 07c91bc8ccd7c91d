package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrClosed is returned by a recorder after Close.
var ErrClosed = errors.New("recorder closed")

const schema = `
CREATE TABLE IF NOT EXISTS frames (
    tick        INTEGER PRIMARY KEY,
    sim_ns      INTEGER NOT NULL,
    items       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS samples (
    tick        INTEGER NOT NULL REFERENCES frames(tick),
    robot       TEXT NOT NULL,
    robot_id    TEXT NOT NULL,
    state       TEXT NOT NULL DEFAULT '',
    motor       REAL NOT NULL,
    steering    REAL NOT NULL,
    arm         INTEGER NOT NULL,
    x           REAL NOT NULL,
    y           REAL NOT NULL,
    heading     REAL NOT NULL,
    velocity    REAL NOT NULL,
    held        INTEGER NOT NULL,
    halted      TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (tick, robot)
);

CREATE INDEX IF NOT EXISTS idx_samples_robot ON samples(robot, tick);
`

// Sample is one recorded robot row.
type Sample struct {
	Tick     uint64
	Robot    string
	State    string
	Motor    float64
	Steering float64
	Arm      bool
	X, Y     float64
	Heading  float64
	Velocity float64
	Held     int
	Halted   string
}

// Recorder writes frames to a SQLite database.
type Recorder struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

var _ Sink = (*Recorder)(nil)

// OpenRecorder opens or creates the database at path. Use ":memory:" for a
// throwaway recording.
func OpenRecorder(ctx context.Context, path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Publish stores f in one transaction. Re-publishing a tick replaces it.
func (r *Recorder) Publish(ctx context.Context, f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM samples WHERE tick = ?`, f.Tick); err != nil {
		return fmt.Errorf("failed to clear tick %d: %w", f.Tick, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO frames (tick, sim_ns, items) VALUES (?, ?, ?)`,
		f.Tick, int64(f.Time), f.Items); err != nil {
		return fmt.Errorf("failed to insert frame %d: %w", f.Tick, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (tick, robot, robot_id, state, motor, steering, arm, x, y, heading, velocity, held, halted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rb := range f.Robots {
		if _, err := stmt.ExecContext(ctx,
			f.Tick, rb.Name, rb.ID, rb.State,
			rb.Command.Motor(), rb.Command.Steering(), rb.Command.Arm(),
			rb.Body.Position[0], rb.Body.Position[1], rb.Body.Heading, rb.Body.Velocity,
			rb.Body.Held, rb.Halted,
		); err != nil {
			return fmt.Errorf("failed to insert %s at tick %d: %w", rb.Name, f.Tick, err)
		}
	}
	return tx.Commit()
}

// Track returns the recorded samples of one robot in tick order.
func (r *Recorder) Track(ctx context.Context, robot string) ([]Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT tick, robot, state, motor, steering, arm, x, y, heading, velocity, held, halted
		FROM samples WHERE robot = ? ORDER BY tick`, robot)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", robot, err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.Tick, &s.Robot, &s.State, &s.Motor, &s.Steering, &s.Arm,
			&s.X, &s.Y, &s.Heading, &s.Velocity, &s.Held, &s.Halted); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Frames returns the number of recorded frames.
func (r *Recorder) Frames(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, ErrClosed
	}
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM frames`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count frames: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.db.Close()
}
