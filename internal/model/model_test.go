package model_test

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/driftlab/driftsim/internal/config"
	"github.com/driftlab/driftsim/internal/drift"
	"github.com/driftlab/driftsim/internal/model"
)

// stubReader is a unit-square domain with a flat floor at -1, a free surface
// at 0, and a velocity field supplied by a closure.
type stubReader struct {
	vel func(x, y, z, t float64) (u, v, w float64)
}

func (r *stubReader) ContainsPoint(x, y, t float64) bool {
	return x >= 0 && x <= 1 && y >= 0 && y <= 1
}

func (r *stubReader) SeaFloorDepth(x, y, t float64) float64        { return 1 }
func (r *stubReader) FreeSurfaceElevation(x, y, t float64) float64 { return 0 }

func (r *stubReader) Velocity(x, y, z, t float64) (float64, float64, float64) {
	if r.vel == nil {
		return 0, 0, 0
	}
	return r.vel(x, y, z, t)
}

func (r *stubReader) Datetime(index int) (time.Time, error) { return time.Time{}, nil }
func (r *stubReader) Datetimes() []time.Time                { return nil }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.NumMethod = "test"
	return cfg
}

var _ = Describe("Seeding", func() {
	var m *model.Model

	JustBeforeEach(func() {
		var err error
		m, err = model.New(testConfig(), &stubReader{})
		Expect(err).NotTo(HaveOccurred())
	})

	Context("when every particle lies outside the model domain", func() {
		It("fails with a domain error and leaves the store untouched", func() {
			Expect(m.SetParticleData(
				[]int64{1, 1},
				[]float64{-1, -1},
				[]float64{-1, -1},
				[]float64{-1, -1},
			)).To(Succeed())

			before := m.Snapshot()
			err := m.Seed(0)
			Expect(err).To(MatchError(drift.ErrOutsideDomain))

			after := m.Snapshot()
			Expect(after.X).To(Equal(before.X))
			Expect(after.Z).To(Equal(before.Z))
			Expect(after.Status).To(Equal(before.Status))
		})
	})

	Context("with surface-relative vertical coordinates", func() {
		It("rejects a particle above the free surface", func() {
			Expect(m.SetParticleData(
				[]int64{1}, []float64{0.5}, []float64{0.5}, []float64{0.1},
			)).To(Succeed())

			err := m.Seed(0)
			Expect(err).To(MatchError(drift.ErrBoundsViolation))

			var seedErr *drift.SeedError
			Expect(err).To(BeAssignableToTypeOf(seedErr))
		})

		It("rejects a particle below the sea floor", func() {
			Expect(m.SetParticleData(
				[]int64{1}, []float64{0.5}, []float64{0.5}, []float64{-1.1},
			)).To(Succeed())

			Expect(m.Seed(0)).To(MatchError(drift.ErrBoundsViolation))
		})

		It("activates a valid batch", func() {
			Expect(m.SetParticleData(
				[]int64{1, 2},
				[]float64{0.25, 0.75},
				[]float64{0.25, 0.75},
				[]float64{-0.5, -1.0},
			)).To(Succeed())

			Expect(m.Seed(0)).To(Succeed())

			snap := m.Snapshot()
			for i, st := range snap.Status {
				Expect(st).To(Equal(drift.StatusActive), "particle %d", i)
			}
			Expect(snap.Z).To(Equal([]float64{-0.5, -1.0}))
		})
	})

	Context("with floor-relative vertical coordinates", func() {
		floorConfig := func() *config.Config {
			cfg := testConfig()
			cfg.DepthCoordinates = config.HeightAboveFloor
			return cfg
		}

		It("rejects a particle below the sea floor", func() {
			fm, err := model.New(floorConfig(), &stubReader{})
			Expect(err).NotTo(HaveOccurred())

			Expect(fm.SetParticleData(
				[]int64{1}, []float64{0.5}, []float64{0.5}, []float64{-0.1},
			)).To(Succeed())

			Expect(fm.Seed(0)).To(MatchError(drift.ErrBoundsViolation))
		})

		It("rejects a particle poking above the free surface", func() {
			fm, err := model.New(floorConfig(), &stubReader{})
			Expect(err).NotTo(HaveOccurred())

			Expect(fm.SetParticleData(
				[]int64{1}, []float64{0.5}, []float64{0.5}, []float64{1.5},
			)).To(Succeed())

			Expect(fm.Seed(0)).To(MatchError(drift.ErrBoundsViolation))
		})

		It("converts heights into the canonical datum", func() {
			fm, err := model.New(floorConfig(), &stubReader{})
			Expect(err).NotTo(HaveOccurred())

			Expect(fm.SetParticleData(
				[]int64{1}, []float64{0.5}, []float64{0.5}, []float64{0.25},
			)).To(Succeed())
			Expect(fm.Seed(0)).To(Succeed())

			snap := fm.Snapshot()
			Expect(snap.Z[0]).To(BeNumerically("~", -0.75, 1e-12))
		})
	})

	Context("with a batch mixing valid and invalid particles", func() {
		setMixed := func(m *model.Model) {
			Expect(m.SetParticleData(
				[]int64{1, 1},
				[]float64{0.5, -1},
				[]float64{0.5, -1},
				[]float64{-0.5, -0.5},
			)).To(Succeed())
		}

		It("fails the whole batch under reject_batch", func() {
			setMixed(m)

			err := m.Seed(0)
			Expect(err).To(MatchError(drift.ErrOutsideDomain))

			var seedErr *drift.SeedError
			Expect(err).To(BeAssignableToTypeOf(seedErr))
		})

		It("flags individual particles under flag_invalid", func() {
			cfg := testConfig()
			cfg.PartialSeedPolicy = config.FlagInvalid
			fm, err := model.New(cfg, &stubReader{})
			Expect(err).NotTo(HaveOccurred())

			setMixed(fm)
			Expect(fm.Seed(0)).To(Succeed())

			snap := fm.Snapshot()
			Expect(snap.Status[0]).To(Equal(drift.StatusActive))
			Expect(snap.Status[1]).To(Equal(drift.StatusOutsideDomain))
		})

		It("keeps the positions of flagged particles", func() {
			cfg := testConfig()
			cfg.PartialSeedPolicy = config.FlagInvalid
			fm, err := model.New(cfg, &stubReader{})
			Expect(err).NotTo(HaveOccurred())

			setMixed(fm)
			Expect(fm.Seed(0)).To(Succeed())

			snap := fm.Snapshot()
			Expect(snap.X[1]).To(Equal(-1.0))
			Expect(snap.Y[1]).To(Equal(-1.0))
			Expect(snap.Z[1]).To(Equal(-0.5))
		})
	})

	Context("without particle data", func() {
		It("fails with an input error", func() {
			Expect(m.Seed(0)).To(MatchError(drift.ErrInvalidInput))
		})
	})
})

var _ = Describe("Integration stepping", func() {
	seedAt := func(m *model.Model, x, y, z float64) {
		Expect(m.SetParticleData([]int64{1}, []float64{x}, []float64{y}, []float64{z})).To(Succeed())
		Expect(m.Seed(0)).To(Succeed())
	}

	It("is the identity for dt = 0", func() {
		cfg := testConfig()
		cfg.NumMethod = "euler"
		m, err := model.New(cfg, &stubReader{
			vel: func(x, y, z, t float64) (float64, float64, float64) { return 1, 1, 0 },
		})
		Expect(err).NotTo(HaveOccurred())

		seedAt(m, 0.5, 0.5, -0.5)
		before := m.Snapshot()

		Expect(m.Update(0, 0)).To(Succeed())

		after := m.Snapshot()
		Expect(after.X).To(Equal(before.X))
		Expect(after.Y).To(Equal(before.Y))
		Expect(after.Z).To(Equal(before.Z))
		Expect(after.Status).To(Equal(before.Status))
	})

	It("advects active particles through the field", func() {
		cfg := testConfig()
		cfg.NumMethod = "euler"
		m, err := model.New(cfg, &stubReader{
			vel: func(x, y, z, t float64) (float64, float64, float64) { return 0.1, -0.05, 0 },
		})
		Expect(err).NotTo(HaveOccurred())

		seedAt(m, 0.5, 0.5, -0.5)
		Expect(m.Update(0, 1)).To(Succeed())

		snap := m.Snapshot()
		Expect(snap.X[0]).To(BeNumerically("~", 0.6, 1e-12))
		Expect(snap.Y[0]).To(BeNumerically("~", 0.45, 1e-12))
	})

	It("freezes a particle at its last in-domain position when it exits", func() {
		cfg := testConfig()
		cfg.NumMethod = "euler"
		m, err := model.New(cfg, &stubReader{
			vel: func(x, y, z, t float64) (float64, float64, float64) { return 0.3, 0, 0 },
		})
		Expect(err).NotTo(HaveOccurred())

		seedAt(m, 0.8, 0.5, -0.5)

		// First step stays inside; the second would cross x = 1.
		Expect(m.Update(0, 0.5)).To(Succeed())
		Expect(m.Update(0.5, 0.5)).To(Succeed())

		snap := m.Snapshot()
		Expect(snap.Status[0]).To(Equal(drift.StatusOutsideDomain))
		Expect(snap.X[0]).To(BeNumerically("~", 0.95, 1e-12))

		// Frozen particles are excluded from further advancement.
		Expect(m.Update(1.0, 0.5)).To(Succeed())
		after := m.Snapshot()
		Expect(after.X[0]).To(Equal(snap.X[0]))
		Expect(after.Status[0]).To(Equal(drift.StatusOutsideDomain))
	})

	It("flags a particle that crosses a vertical bound", func() {
		cfg := testConfig()
		cfg.NumMethod = "euler"
		m, err := model.New(cfg, &stubReader{
			vel: func(x, y, z, t float64) (float64, float64, float64) { return 0, 0, -0.4 },
		})
		Expect(err).NotTo(HaveOccurred())

		seedAt(m, 0.5, 0.5, -0.8)
		Expect(m.Update(0, 1)).To(Succeed())

		snap := m.Snapshot()
		Expect(snap.Status[0]).To(Equal(drift.StatusBoundsViolation))
		Expect(snap.Z[0]).To(Equal(-0.8))
	})

	It("surfaces a convergence failure with particle context", func() {
		cfg := testConfig()
		cfg.NumMethod = "rk45"
		m, err := model.New(cfg, &stubReader{
			vel: func(x, y, z, t float64) (float64, float64, float64) {
				return 1000 * math.Cos(1e6*t), 1000 * math.Sin(1e6*t), 0
			},
		})
		Expect(err).NotTo(HaveOccurred())

		seedAt(m, 0.5, 0.5, -0.5)
		err = m.Update(0, 1)
		Expect(err).To(MatchError(drift.ErrNoConvergence))

		var stepErr *drift.StepError
		Expect(err).To(BeAssignableToTypeOf(stepErr))
	})
})

var _ = Describe("Run loop", func() {
	It("records a snapshot per step and stops on cancellation", func() {
		cfg := testConfig()
		m, err := model.New(cfg, &stubReader{})
		Expect(err).NotTo(HaveOccurred())

		Expect(m.SetParticleData([]int64{1}, []float64{0.5}, []float64{0.5}, []float64{-0.5})).To(Succeed())
		Expect(m.Seed(0)).To(Succeed())

		result, err := m.Run(context.Background(), 0, 1, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Times).To(HaveLen(6))
		Expect(result.Snapshots).To(HaveLen(6))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = m.Run(ctx, 0, 1, 5)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("stops early once no particle remains active", func() {
		cfg := testConfig()
		cfg.NumMethod = "euler"
		m, err := model.New(cfg, &stubReader{
			vel: func(x, y, z, t float64) (float64, float64, float64) { return 1, 0, 0 },
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(m.SetParticleData([]int64{1}, []float64{0.5}, []float64{0.5}, []float64{-0.5})).To(Succeed())
		Expect(m.Seed(0)).To(Succeed())

		result, err := m.Run(context.Background(), 0, 1, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(result.Times)).To(BeNumerically("<", 101))
		Expect(m.Active()).To(BeZero())
	})
})

var _ = Describe("Factory boundary", func() {
	It("pairs the built-in basin source with a model", func() {
		cfg := config.DefaultConfig()
		m, err := model.NewFromConfig(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Reader()).NotTo(BeNil())
	})

	It("rejects unrecognized source names", func() {
		cfg := config.DefaultConfig()
		cfg.Name = "hycom"
		_, err := model.NewFromConfig(cfg)
		Expect(err).To(MatchError(drift.ErrUnsupportedSource))
	})

	It("rejects unrecognized numerical methods", func() {
		cfg := config.DefaultConfig()
		cfg.NumMethod = "leapfrog"
		_, err := model.NewFromConfig(cfg)
		Expect(err).To(MatchError(drift.ErrUnsupportedScheme))
	})
})
