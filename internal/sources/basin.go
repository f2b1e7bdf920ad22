package sources

import (
	"fmt"
	"time"

	"github.com/driftlab/driftsim/internal/config"
	"github.com/driftlab/driftsim/internal/drift"
	"github.com/driftlab/driftsim/internal/timenorm"
)

// Basin is a flat-bottomed rectangular domain with an analytic circulation
// field: a uniform drift plus solid-body rotation around the basin center.
// It backs the default CLI runs and gives tests a field with a known exact
// solution.
type Basin struct {
	xmin, xmax float64
	ymin, ymax float64
	depth      float64
	eta        float64

	u0, v0 float64
	omega  float64

	datetimes []time.Time
}

// basinRecord is the synthetic hourly time record the basin presents through
// the normalizer, mimicking a single-variable source file.
type basinRecord struct {
	n       int
	varName string
}

func (b *basinRecord) TimeVar(name string) ([]float64, string, error) {
	if name != b.varName {
		return nil, "", fmt.Errorf("sources: no time variable %q", name)
	}
	values := make([]float64, b.n)
	for i := range values {
		values[i] = float64(i)
	}
	return values, "hours since 2000-01-01 00:00:00", nil
}

func NewBasin(cfg *config.Config) (drift.DataReader, error) {
	bc := cfg.Basin
	if bc.XMax <= bc.XMin || bc.YMax <= bc.YMin {
		return nil, fmt.Errorf("sources: degenerate basin extent [%g, %g]x[%g, %g]",
			bc.XMin, bc.XMax, bc.YMin, bc.YMax)
	}
	if bc.Depth <= 0 {
		return nil, fmt.Errorf("sources: basin depth must be positive, got %g", bc.Depth)
	}

	records := bc.Records
	if records <= 0 {
		records = 25
	}
	norm := timenorm.New(cfg.Name, cfg)
	datetimes, err := norm.Datetimes(&basinRecord{n: records, varName: cfg.TimeVarName})
	if err != nil {
		return nil, err
	}

	return &Basin{
		xmin: bc.XMin, xmax: bc.XMax,
		ymin: bc.YMin, ymax: bc.YMax,
		depth:     bc.Depth,
		eta:       bc.SurfaceElevation,
		u0:        bc.U,
		v0:        bc.V,
		omega:     bc.Rotation,
		datetimes: datetimes,
	}, nil
}

func (b *Basin) ContainsPoint(x, y, t float64) bool {
	return x >= b.xmin && x <= b.xmax && y >= b.ymin && y <= b.ymax
}

func (b *Basin) SeaFloorDepth(x, y, t float64) float64 {
	return b.depth
}

func (b *Basin) FreeSurfaceElevation(x, y, t float64) float64 {
	return b.eta
}

func (b *Basin) Velocity(x, y, z, t float64) (float64, float64, float64) {
	cx := (b.xmin + b.xmax) / 2
	cy := (b.ymin + b.ymax) / 2
	u := b.u0 - b.omega*(y-cy)
	v := b.v0 + b.omega*(x-cx)
	return u, v, 0
}

func (b *Basin) Datetime(index int) (time.Time, error) {
	if index < 0 || index >= len(b.datetimes) {
		return time.Time{}, fmt.Errorf("sources: time index %d out of range [0, %d)",
			index, len(b.datetimes))
	}
	return b.datetimes[index], nil
}

func (b *Basin) Datetimes() []time.Time {
	out := make([]time.Time, len(b.datetimes))
	copy(out, b.datetimes)
	return out
}
