package sources

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/driftlab/driftsim/internal/config"
	"github.com/driftlab/driftsim/internal/drift"
)

func TestNewUnsupportedSource(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Name = "hycom"

	_, err := New(cfg)
	if !errors.Is(err, drift.ErrUnsupportedSource) {
		t.Errorf("expected ErrUnsupportedSource, got %v", err)
	}
}

func TestRegisterOverrides(t *testing.T) {
	called := false
	Register("probe", func(cfg *config.Config) (drift.DataReader, error) {
		called = true
		return NewBasin(cfg)
	})
	defer func() {
		mu.Lock()
		delete(registry, "probe")
		mu.Unlock()
	}()

	cfg := config.DefaultConfig()
	cfg.Name = "Probe" // name lookup is case-insensitive
	if _, err := New(cfg); err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	if !called {
		t.Error("registered constructor was not invoked")
	}
}

func TestBasinDomain(t *testing.T) {
	cfg := config.DefaultConfig()
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}

	tests := []struct {
		name   string
		x, y   float64
		inside bool
	}{
		{"center", 0.5, 0.5, true},
		{"corner", 0, 0, true},
		{"west of domain", -0.1, 0.5, false},
		{"north of domain", 0.5, 1.1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ContainsPoint(tt.x, tt.y, 0); got != tt.inside {
				t.Errorf("ContainsPoint(%g, %g) = %v", tt.x, tt.y, got)
			}
		})
	}

	if d := r.SeaFloorDepth(0.5, 0.5, 0); d != 1 {
		t.Errorf("depth: got %g", d)
	}
	if eta := r.FreeSurfaceElevation(0.5, 0.5, 0); eta != 0 {
		t.Errorf("surface elevation: got %g", eta)
	}
}

func TestBasinVelocityField(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Basin.U = 0.1
	cfg.Basin.V = -0.05
	cfg.Basin.Rotation = 2.0

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}

	// At the basin center only the uniform drift remains.
	u, v, w := r.Velocity(0.5, 0.5, -0.5, 0)
	if u != 0.1 || v != -0.05 || w != 0 {
		t.Errorf("center velocity: got (%g, %g, %g)", u, v, w)
	}

	// Off center the rotational part is perpendicular to the offset.
	u, v, _ = r.Velocity(0.75, 0.5, -0.5, 0)
	if math.Abs(u-0.1) > 1e-12 || math.Abs(v-(-0.05+2.0*0.25)) > 1e-12 {
		t.Errorf("offset velocity: got (%g, %g)", u, v)
	}
}

func TestBasinRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"inverted x extent", func(c *config.Config) { c.Basin.XMax = c.Basin.XMin - 1 }},
		{"zero depth", func(c *config.Config) { c.Basin.Depth = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			if _, err := NewBasin(cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestBasinDatetimes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Basin.Records = 3

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}

	all := r.Datetimes()
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[1].Sub(all[0]) != time.Hour {
		t.Errorf("expected hourly record, got spacing %v", all[1].Sub(all[0]))
	}

	first, err := r.Datetime(0)
	if err != nil {
		t.Fatalf("datetime failed: %v", err)
	}
	if !first.Equal(all[0]) {
		t.Errorf("index access disagrees with full record")
	}

	if _, err := r.Datetime(3); err == nil {
		t.Error("expected out-of-range error")
	}
}
