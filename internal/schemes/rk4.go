package schemes

import "github.com/driftlab/driftsim/internal/drift"

// RK4 is the classic fourth-order Runge-Kutta scheme, sampling the velocity
// field at the interval midpoint twice and at the far end once.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (s *RK4) Advect(r drift.DataReader, x, y, z, t, dt float64) (float64, float64, float64, error) {
	h2 := dt * 0.5

	k1u, k1v, k1w := r.Velocity(x, y, z, t)
	k2u, k2v, k2w := r.Velocity(x+h2*k1u, y+h2*k1v, z+h2*k1w, t+h2)
	k3u, k3v, k3w := r.Velocity(x+h2*k2u, y+h2*k2v, z+h2*k2w, t+h2)
	k4u, k4v, k4w := r.Velocity(x+dt*k3u, y+dt*k3v, z+dt*k3w, t+dt)

	dt6 := dt / 6.0
	dx := dt6 * (k1u + 2*k2u + 2*k3u + k4u)
	dy := dt6 * (k1v + 2*k2v + 2*k3v + k4v)
	dz := dt6 * (k1w + 2*k2w + 2*k3w + k4w)
	return dx, dy, dz, nil
}
