package schemes

import (
	"math"

	"github.com/driftlab/driftsim/internal/drift"
)

// Dormand-Prince coefficients
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is the embedded Dormand-Prince pair with internal sub-stepping. The
// full increment dt is covered by sub-steps whose size halves whenever the
// local error estimate exceeds tolerance; the halving budget is bounded, and
// exhausting it fails the step rather than returning an inaccurate position.
type RK45 struct {
	tol            float64
	maxRefinements int
}

func NewRK45() *RK45 {
	return &RK45{
		tol:            1e-6,
		maxRefinements: 16,
	}
}

func (s *RK45) Advect(r drift.DataReader, x, y, z, t, dt float64) (float64, float64, float64, error) {
	if dt == 0 {
		return 0, 0, 0, nil
	}

	sign := 1.0
	if dt < 0 {
		sign = -1.0
	}
	remaining := math.Abs(dt)
	h := remaining

	cx, cy, cz, ct := x, y, z, t
	refinements := 0

	for remaining > 1e-12*math.Abs(dt) {
		if h > remaining {
			h = remaining
		}

		nx, ny, nz, errEst := s.stage(r, cx, cy, cz, ct, sign*h)
		if errEst > s.tol {
			refinements++
			if refinements > s.maxRefinements {
				return 0, 0, 0, drift.ErrNoConvergence
			}
			h *= 0.5
			continue
		}

		cx, cy, cz = nx, ny, nz
		ct += sign * h
		remaining -= h

		if errEst < s.tol/32 {
			h *= 2
		}
	}

	return cx - x, cy - y, cz - z, nil
}

// stage takes a single Dormand-Prince step of size h and returns the new
// position plus the max-component error estimate between the embedded
// fourth- and fifth-order solutions.
func (s *RK45) stage(r drift.DataReader, x, y, z, t, h float64) (nx, ny, nz, errEst float64) {
	k1u, k1v, k1w := r.Velocity(x, y, z, t)

	k2u, k2v, k2w := r.Velocity(
		x+h*b21*k1u, y+h*b21*k1v, z+h*b21*k1w, t+a2*h)

	k3u, k3v, k3w := r.Velocity(
		x+h*(b31*k1u+b32*k2u), y+h*(b31*k1v+b32*k2v), z+h*(b31*k1w+b32*k2w), t+a3*h)

	k4u, k4v, k4w := r.Velocity(
		x+h*(b41*k1u+b42*k2u+b43*k3u),
		y+h*(b41*k1v+b42*k2v+b43*k3v),
		z+h*(b41*k1w+b42*k2w+b43*k3w), t+a4*h)

	k5u, k5v, k5w := r.Velocity(
		x+h*(b51*k1u+b52*k2u+b53*k3u+b54*k4u),
		y+h*(b51*k1v+b52*k2v+b53*k3v+b54*k4v),
		z+h*(b51*k1w+b52*k2w+b53*k3w+b54*k4w), t+a5*h)

	k6u, k6v, k6w := r.Velocity(
		x+h*(b61*k1u+b62*k2u+b63*k3u+b64*k4u+b65*k5u),
		y+h*(b61*k1v+b62*k2v+b63*k3v+b64*k4v+b65*k5v),
		z+h*(b61*k1w+b62*k2w+b63*k3w+b64*k4w+b65*k5w), t+h)

	nx = x + h*(c1*k1u+c3*k3u+c4*k4u+c5*k5u+c6*k6u)
	ny = y + h*(c1*k1v+c3*k3v+c4*k4v+c5*k5v+c6*k6v)
	nz = z + h*(c1*k1w+c3*k3w+c4*k4w+c5*k5w+c6*k6w)

	k7u, k7v, k7w := r.Velocity(nx, ny, nz, t+h)

	eu := h * (dc1*k1u + dc3*k3u + dc4*k4u + dc5*k5u + dc6*k6u + dc7*k7u)
	ev := h * (dc1*k1v + dc3*k3v + dc4*k4v + dc5*k5v + dc6*k6v + dc7*k7v)
	ew := h * (dc1*k1w + dc3*k3w + dc4*k4w + dc5*k5w + dc6*k6w + dc7*k7w)

	errEst = math.Max(math.Abs(eu), math.Max(math.Abs(ev), math.Abs(ew)))
	return nx, ny, nz, errEst
}
