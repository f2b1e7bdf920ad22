package model

import (
	"fmt"

	"github.com/driftlab/driftsim/internal/drift"
)

// Seed validates the supplied particle positions against the domain at time
// t and installs them with canonical vertical coordinates. Validation runs
// to completion before the store is touched: a failed seed leaves the
// particle state exactly as SetParticleData set it.
//
// Horizontal containment failures follow the configured partial-seed policy:
// under reject_batch any outside particle fails the batch; under
// flag_invalid it is marked outside_domain and the rest proceed. A batch
// with no particle inside the domain always fails.
func (m *Model) Seed(t float64) error {
	n := m.store.Len()
	if n == 0 {
		return fmt.Errorf("%w: no particle data supplied", drift.ErrInvalidInput)
	}

	statuses := make([]drift.Status, n)
	zs := make([]float64, n)

	inside := 0
	firstOutside := -1
	for i := 0; i < n; i++ {
		x, y, z := m.store.Position(i)
		// Particles skipped by the vertical pass keep their supplied z.
		zs[i] = z
		if m.reader.ContainsPoint(x, y, t) {
			inside++
			continue
		}
		statuses[i] = drift.StatusOutsideDomain
		if firstOutside < 0 {
			firstOutside = i
		}
	}

	if inside == 0 {
		return m.seedBatchError(n)
	}
	if firstOutside >= 0 && m.rejectBatch {
		x, y, z := m.store.Position(firstOutside)
		return &drift.SeedError{Particle: firstOutside, X: x, Y: y, Z: z,
			Wrapped: drift.ErrOutsideDomain}
	}

	viable := 0
	for i := 0; i < n; i++ {
		if statuses[i] != drift.StatusActive {
			continue
		}

		x, y, z := m.store.Position(i)
		eta := m.reader.FreeSurfaceElevation(x, y, t)
		floor := -m.reader.SeaFloorDepth(x, y, t)

		zAbs, err := m.resolveVertical(z, eta, floor)
		if err != nil {
			if m.rejectBatch {
				return &drift.SeedError{Particle: i, X: x, Y: y, Z: z, Wrapped: err}
			}
			statuses[i] = drift.StatusBoundsViolation
			zs[i] = zAbs
			continue
		}

		zs[i] = zAbs
		viable++
	}

	if viable == 0 {
		return m.seedBatchError(n)
	}

	for i := 0; i < n; i++ {
		x, y, _ := m.store.Position(i)
		m.store.SetPosition(i, x, y, zs[i])
		m.store.SetStatus(i, statuses[i])
	}
	return nil
}

// resolveVertical converts a supplied z into the canonical internal datum
// (absolute elevation, surface at eta, floor at -depth) and checks it
// against both bounds.
func (m *Model) resolveVertical(z, eta, floor float64) (float64, error) {
	var zAbs float64
	switch m.datum {
	case drift.DepthBelowSurface:
		zAbs = eta + z
		if z > 0 {
			return zAbs, fmt.Errorf("%w: above the free surface", drift.ErrBoundsViolation)
		}
	case drift.HeightAboveFloor:
		zAbs = floor + z
		if z < 0 {
			return zAbs, fmt.Errorf("%w: below the sea floor", drift.ErrBoundsViolation)
		}
	}

	if zAbs < floor {
		return zAbs, fmt.Errorf("%w: below the sea floor", drift.ErrBoundsViolation)
	}
	if zAbs > eta {
		return zAbs, fmt.Errorf("%w: above the free surface", drift.ErrBoundsViolation)
	}
	return zAbs, nil
}
