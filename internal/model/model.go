// Package model owns the particle state for a simulation run and sequences
// seeding and integration. Domain math lives in the scheme and the data
// reader; the orchestrator only wires them together.
package model

import (
	"fmt"
	"sync"

	"github.com/driftlab/driftsim/internal/config"
	"github.com/driftlab/driftsim/internal/drift"
	"github.com/driftlab/driftsim/internal/particle"
	"github.com/driftlab/driftsim/internal/schemes"
	"github.com/driftlab/driftsim/internal/sources"
)

type Model struct {
	reader drift.DataReader
	scheme drift.Scheme
	store  *particle.Store

	datum       drift.VerticalDatum
	rejectBatch bool
	workers     int
}

// New builds a model around an already-constructed data reader. The
// numerical scheme is resolved once from cfg.NumMethod.
func New(cfg *config.Config, reader drift.DataReader) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scheme, err := schemes.New(cfg.NumMethod)
	if err != nil {
		return nil, err
	}

	datum := drift.DepthBelowSurface
	if cfg.DepthCoordinates == config.HeightAboveFloor {
		datum = drift.HeightAboveFloor
	}

	return &Model{
		reader:      reader,
		scheme:      scheme,
		store:       particle.NewStore(),
		datum:       datum,
		rejectBatch: cfg.PartialSeedPolicy == config.RejectBatch,
		workers:     cfg.Workers,
	}, nil
}

// NewFromConfig constructs the data reader named in cfg and pairs it with a
// model. Unrecognized source names fail with drift.ErrUnsupportedSource.
func NewFromConfig(cfg *config.Config) (*Model, error) {
	reader, err := sources.New(cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg, reader)
}

// SetParticleData replaces the particle set. Pure data assignment; Seed
// performs validation.
func (m *Model) SetParticleData(groupIDs []int64, x, y, z []float64) error {
	return m.store.Set(groupIDs, x, y, z)
}

// Snapshot returns a read-only copy of the particle state.
func (m *Model) Snapshot() particle.Snapshot {
	return m.store.Snapshot()
}

// Active reports how many particles remain eligible for advancement.
func (m *Model) Active() int {
	return m.store.Active()
}

// Reader exposes the data source for reporting layers.
func (m *Model) Reader() drift.DataReader {
	return m.reader
}

// Update advances every active particle by one time increment. Particles
// that leave the horizontal domain flip to outside_domain and keep their
// last in-domain position; particles that cross a vertical bound flip to
// bounds_violation. Neither transition is an error. A scheme failure aborts
// the step with a StepError naming the particle.
func (m *Model) Update(t, dt float64) error {
	n := m.store.Len()

	var mu sync.Mutex
	var stepErr error

	drift.ParallelFor(n, m.workers, func(start, end int) {
		for i := start; i < end; i++ {
			if m.store.Status(i) != drift.StatusActive {
				continue
			}

			x, y, z := m.store.Position(i)
			dx, dy, dz, err := m.scheme.Advect(m.reader, x, y, z, t, dt)
			if err != nil {
				mu.Lock()
				if stepErr == nil {
					stepErr = &drift.StepError{Particle: i, Time: t, Dt: dt, Wrapped: err}
				}
				mu.Unlock()
				return
			}

			nx, ny, nz := x+dx, y+dy, z+dz
			if !m.reader.ContainsPoint(nx, ny, t+dt) {
				m.store.SetStatus(i, drift.StatusOutsideDomain)
				continue
			}

			eta := m.reader.FreeSurfaceElevation(nx, ny, t+dt)
			floor := -m.reader.SeaFloorDepth(nx, ny, t+dt)
			if nz > eta || nz < floor {
				m.store.SetStatus(i, drift.StatusBoundsViolation)
				continue
			}

			m.store.SetPosition(i, nx, ny, nz)
		}
	})

	return stepErr
}

func (m *Model) seedBatchError(n int) error {
	return fmt.Errorf("%w: no viable particle in a batch of %d", drift.ErrOutsideDomain, n)
}
