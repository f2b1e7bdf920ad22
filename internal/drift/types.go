package drift

import "time"

// Status marks a particle's eligibility for further integration.
type Status uint8

const (
	// StatusActive particles are advanced on every step.
	StatusActive Status = iota
	// StatusOutsideDomain particles left the horizontal domain and are frozen
	// at their last in-domain position.
	StatusOutsideDomain
	// StatusBoundsViolation particles crossed the sea floor or free surface
	// and are frozen where the violation was detected.
	StatusBoundsViolation
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusOutsideDomain:
		return "outside_domain"
	case StatusBoundsViolation:
		return "bounds_violation"
	default:
		return "unknown"
	}
}

// VerticalDatum selects how a supplied z-coordinate is interpreted.
type VerticalDatum uint8

const (
	// DepthBelowSurface measures z down from the local free surface
	// (0 at the surface, negative below it).
	DepthBelowSurface VerticalDatum = iota
	// HeightAboveFloor measures z up from the local sea floor
	// (0 on the floor, positive above it).
	HeightAboveFloor
)

// DataReader abstracts one circulation data source. Implementations must be
// safe for concurrent reads: the integration loop queries a shared reader
// from multiple goroutines within a step.
type DataReader interface {
	// ContainsPoint reports whether (x, y) lies inside the valid horizontal
	// domain at simulation time t.
	ContainsPoint(x, y, t float64) bool

	// SeaFloorDepth returns the bathymetric depth at (x, y, t) as a positive
	// magnitude; the floor sits at elevation -SeaFloorDepth.
	SeaFloorDepth(x, y, t float64) float64

	// FreeSurfaceElevation returns the free surface elevation at (x, y, t)
	// in the model datum.
	FreeSurfaceElevation(x, y, t float64) float64

	// Velocity returns the flow velocity components at (x, y, z, t).
	Velocity(x, y, z, t float64) (u, v, w float64)

	// Datetime maps a time index in the source's record to calendar time.
	Datetime(index int) (time.Time, error)

	// Datetimes returns the source's full calendar-time record.
	Datetimes() []time.Time
}

// Scheme advances a single particle position by one time increment. Advect
// returns the position increment rather than the new position so callers
// decide how increments are applied and validated.
type Scheme interface {
	Advect(r DataReader, x, y, z, t, dt float64) (dx, dy, dz float64, err error)
}
