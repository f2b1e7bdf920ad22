package export

import (
	"strings"
	"testing"

	"github.com/driftlab/driftsim/internal/drift"
	"github.com/driftlab/driftsim/internal/storage"
)

func TestTrajectoriesToSVG(t *testing.T) {
	traj := &storage.Trajectories{
		Times:  []float64{0, 60},
		Groups: []int64{1, 2},
		X:      [][]float64{{0.1, 0.2}, {0.5, 0.6}},
		Y:      [][]float64{{0.1, 0.1}, {0.5, 0.4}},
		Z:      [][]float64{{-0.5, -0.5}, {-0.5, -0.5}},
		Status: [][]drift.Status{
			{drift.StatusActive, drift.StatusActive},
			{drift.StatusActive, drift.StatusActive},
		},
	}

	svg := TrajectoriesToSVG(traj, 800, 600)
	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Fatalf("missing XML header: %.40q", svg)
	}
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("path count = %d, want 2", got)
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("release marker count = %d, want 2", got)
	}
}

func TestTrajectoriesToSVGEmpty(t *testing.T) {
	if svg := TrajectoriesToSVG(nil, 800, 600); svg != "" {
		t.Errorf("nil trajectories: got %q", svg)
	}
	if svg := TrajectoriesToSVG(&storage.Trajectories{}, 800, 600); svg != "" {
		t.Errorf("empty trajectories: got %q", svg)
	}
}

func TestTrajectoriesToSVGSparseSeries(t *testing.T) {
	// Particle 0 has no samples; bounds must come from the first populated
	// series instead of panicking.
	traj := &storage.Trajectories{
		Times:  []float64{0, 60},
		Groups: []int64{0, 1},
		X:      [][]float64{nil, {0.5, 0.6}},
		Y:      [][]float64{nil, {0.5, 0.4}},
		Z:      [][]float64{nil, {-0.5, -0.5}},
		Status: [][]drift.Status{nil, {drift.StatusActive, drift.StatusActive}},
	}

	svg := TrajectoriesToSVG(traj, 800, 600)
	if got := strings.Count(svg, "<path"); got != 1 {
		t.Errorf("path count = %d, want 1", got)
	}

	allEmpty := &storage.Trajectories{
		X: [][]float64{nil, nil},
		Y: [][]float64{nil, nil},
	}
	if svg := TrajectoriesToSVG(allEmpty, 800, 600); svg != "" {
		t.Errorf("all-empty series: got %q", svg)
	}
}
