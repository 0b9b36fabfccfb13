// ABOUTME: TOML snapshot of the best solution, rewritten while a run progresses
// ABOUTME: Read by the live viewer; writes go through a temp file and rename

package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"popsearch/algorithm"
	"popsearch/solution"
)

// Snapshot is the on-disk form of the best solution so far
type Snapshot struct {
	Algorithm string    `toml:"algorithm"`
	Step      int       `toml:"step"`
	Fitness   float64   `toml:"fitness"`
	Final     bool      `toml:"final"`
	UpdatedAt time.Time `toml:"updated_at"`
	Solution  string    `toml:"solution"`
	Detail    string    `toml:"detail,omitempty"`
}

// WriteSnapshot replaces path atomically
func WriteSnapshot(path string, s Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(s); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot written by WriteSnapshot
func ReadSnapshot(path string) (Snapshot, error) {
	var s Snapshot
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return s, nil
}

// SnapshotWriter rewrites a snapshot file on best-so-far updates, at most
// once per interval, and always on the final solution
type SnapshotWriter[S solution.Solution] struct {
	path     string
	name     string
	interval time.Duration
	describe func(S) string

	lastWrite time.Time
	pending   *Snapshot
}

// NewSnapshotWriter creates a listener writing to path. describe, if not
// nil, adds a multi-line detail section to every snapshot.
func NewSnapshotWriter[S solution.Solution](path, name string, interval time.Duration, describe func(S) string) *SnapshotWriter[S] {
	return &SnapshotWriter[S]{path: path, name: name, interval: interval, describe: describe}
}

func (w *SnapshotWriter[S]) snapshot(best S, step int, final bool) Snapshot {
	s := Snapshot{
		Algorithm: w.name,
		Step:      step,
		Fitness:   best.Fitness(),
		Final:     final,
		UpdatedAt: time.Now(),
		Solution:  best.String(),
	}
	if w.describe != nil {
		s.Detail = w.describe(best)
	}
	return s
}

func (w *SnapshotWriter[S]) write(s Snapshot) {
	if err := WriteSnapshot(w.path, s); err != nil {
		log.Printf("Warning: %v", err)
		return
	}
	w.lastWrite = time.Now()
	w.pending = nil
}

// PopulationChanged flushes a throttled best update once the interval has passed
func (w *SnapshotWriter[S]) PopulationChanged(_ []S, _ int) {
	if w.pending != nil && time.Since(w.lastWrite) >= w.interval {
		w.write(*w.pending)
	}
}

func (w *SnapshotWriter[S]) BestUpdated(best S, step int) {
	s := w.snapshot(best, step, false)
	if time.Since(w.lastWrite) < w.interval {
		w.pending = &s
		return
	}
	w.write(s)
}

func (w *SnapshotWriter[S]) FinalSolution(best S, step int) {
	w.write(w.snapshot(best, step, true))
}
