package schemes

import "github.com/driftlab/driftsim/internal/drift"

// Euler is the fixed-step explicit first-order scheme.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Advect(r drift.DataReader, x, y, z, t, dt float64) (float64, float64, float64, error) {
	u, v, w := r.Velocity(x, y, z, t)
	return u * dt, v * dt, w * dt, nil
}
