// Package particle holds the per-particle state mutated across a simulation
// run. Positions, group ids and statuses live in parallel slices indexed by
// particle; a particle that leaves the domain keeps its slot so callers can
// report per-particle outcomes by position.
package particle

import (
	"fmt"

	"github.com/driftlab/driftsim/internal/drift"
)

// Store is the structure-of-arrays particle state. The particle count is
// fixed between calls to Set; nothing resizes it during integration.
type Store struct {
	groupIDs []int64
	x, y, z  []float64
	status   []drift.Status
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the full particle set. All slices must have equal, non-zero
// length; on failure the store is left unchanged. New particles start with
// status active; Seed decides their final status.
func (s *Store) Set(groupIDs []int64, x, y, z []float64) error {
	n := len(groupIDs)
	if n == 0 {
		return fmt.Errorf("%w: empty seed arrays", drift.ErrInvalidInput)
	}
	if len(x) != n || len(y) != n || len(z) != n {
		return fmt.Errorf("%w: lengths %d/%d/%d/%d", drift.ErrInvalidInput,
			n, len(x), len(y), len(z))
	}

	s.groupIDs = append(s.groupIDs[:0], groupIDs...)
	s.x = append(s.x[:0], x...)
	s.y = append(s.y[:0], y...)
	s.z = append(s.z[:0], z...)

	s.status = s.status[:0]
	for range groupIDs {
		s.status = append(s.status, drift.StatusActive)
	}
	return nil
}

func (s *Store) Len() int { return len(s.groupIDs) }

func (s *Store) GroupID(i int) int64 { return s.groupIDs[i] }

func (s *Store) Position(i int) (x, y, z float64) {
	return s.x[i], s.y[i], s.z[i]
}

func (s *Store) SetPosition(i int, x, y, z float64) {
	s.x[i], s.y[i], s.z[i] = x, y, z
}

func (s *Store) Status(i int) drift.Status { return s.status[i] }

func (s *Store) SetStatus(i int, st drift.Status) { s.status[i] = st }

// Active counts particles still eligible for advancement.
func (s *Store) Active() int {
	n := 0
	for _, st := range s.status {
		if st == drift.StatusActive {
			n++
		}
	}
	return n
}

// Snapshot is a read-only copy of the particle state at one instant.
type Snapshot struct {
	GroupIDs []int64
	X, Y, Z  []float64
	Status   []drift.Status
}

// Snapshot copies the current state. Mutating the copy has no effect on the
// store.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		GroupIDs: make([]int64, len(s.groupIDs)),
		X:        make([]float64, len(s.x)),
		Y:        make([]float64, len(s.y)),
		Z:        make([]float64, len(s.z)),
		Status:   make([]drift.Status, len(s.status)),
	}
	copy(snap.GroupIDs, s.groupIDs)
	copy(snap.X, s.x)
	copy(snap.Y, s.y)
	copy(snap.Z, s.z)
	copy(snap.Status, s.status)
	return snap
}
