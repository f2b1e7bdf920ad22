// Package stats computes summary statistics over completed runs: per-particle
// net displacement and the distribution of displacements across the batch.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/driftlab/driftsim/internal/drift"
	"github.com/driftlab/driftsim/internal/model"
)

// Summary describes the spread of a particle batch at the end of a run.
type Summary struct {
	Particles      int
	ActiveFraction float64

	// Horizontal net displacement, start to final position.
	MeanDisplacement float64
	StdDisplacement  float64
	MaxDisplacement  float64

	// Centroid drift of the active subset.
	CentroidDX, CentroidDY float64

	// Vertical excursion statistics.
	MeanDZ float64
	StdDZ  float64
}

// Summarize compares the first and last snapshots of a result. Particles
// flagged before the end of the run are counted against ActiveFraction but
// still contribute displacement up to where they stopped.
func Summarize(result *model.Result) *Summary {
	if result == nil || len(result.Snapshots) == 0 {
		return &Summary{}
	}

	first := result.Snapshots[0]
	last := result.Snapshots[len(result.Snapshots)-1]
	n := len(first.X)
	if n == 0 || len(last.X) != n {
		return &Summary{}
	}

	disp := make([]float64, n)
	dz := make([]float64, n)
	active := 0
	sumDX, sumDY := 0.0, 0.0
	maxDisp := 0.0

	for i := 0; i < n; i++ {
		dx := last.X[i] - first.X[i]
		dy := last.Y[i] - first.Y[i]
		disp[i] = math.Hypot(dx, dy)
		dz[i] = last.Z[i] - first.Z[i]
		if disp[i] > maxDisp {
			maxDisp = disp[i]
		}
		if last.Status[i] == drift.StatusActive {
			active++
			sumDX += dx
			sumDY += dy
		}
	}

	s := &Summary{
		Particles:        n,
		ActiveFraction:   float64(active) / float64(n),
		MeanDisplacement: stat.Mean(disp, nil),
		MaxDisplacement:  maxDisp,
		MeanDZ:           stat.Mean(dz, nil),
	}
	if n > 1 {
		s.StdDisplacement = stat.StdDev(disp, nil)
		s.StdDZ = stat.StdDev(dz, nil)
	}
	if active > 0 {
		s.CentroidDX = sumDX / float64(active)
		s.CentroidDY = sumDY / float64(active)
	}
	return s
}

// DisplacementSeries returns the mean horizontal displacement from the
// initial positions at every recorded step. Useful for spread-over-time
// plots.
func DisplacementSeries(result *model.Result) []float64 {
	if result == nil || len(result.Snapshots) == 0 {
		return nil
	}
	first := result.Snapshots[0]
	n := len(first.X)
	if n == 0 {
		return nil
	}

	series := make([]float64, len(result.Snapshots))
	disp := make([]float64, n)
	for si, snap := range result.Snapshots {
		for i := 0; i < n; i++ {
			disp[i] = math.Hypot(snap.X[i]-first.X[i], snap.Y[i]-first.Y[i])
		}
		series[si] = stat.Mean(disp, nil)
	}
	return series
}
