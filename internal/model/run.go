package model

import (
	"context"

	"github.com/driftlab/driftsim/internal/particle"
)

// Result collects particle state snapshots over a run.
type Result struct {
	Times     []float64
	Snapshots []particle.Snapshot
}

// Run advances the seeded particle set through a fixed number of steps,
// recording a snapshot after each. Cancellation is step-granular: the
// context is checked between steps, never mid-step. The run stops early
// once no particle remains active.
func (m *Model) Run(ctx context.Context, start, dt float64, steps int) (*Result, error) {
	result := &Result{
		Times:     make([]float64, 0, steps+1),
		Snapshots: make([]particle.Snapshot, 0, steps+1),
	}

	t := start
	result.Times = append(result.Times, t)
	result.Snapshots = append(result.Snapshots, m.store.Snapshot())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := m.Update(t, dt); err != nil {
			return result, err
		}
		t += dt

		result.Times = append(result.Times, t)
		result.Snapshots = append(result.Snapshots, m.store.Snapshot())

		if m.store.Active() == 0 {
			break
		}
	}

	return result, nil
}
