// Package schemes implements the numerical methods that advance particle
// positions through a velocity field. Each scheme is resolved once from its
// configuration name; the integration loop never dispatches on strings.
package schemes

import (
	"fmt"

	"github.com/driftlab/driftsim/internal/drift"
)

// New resolves a num_method name to a scheme.
func New(name string) (drift.Scheme, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "rk4":
		return NewRK4(), nil
	case "rk45":
		return NewRK45(), nil
	case "test":
		return NewNoOp(), nil
	default:
		return nil, fmt.Errorf("%w: %q", drift.ErrUnsupportedScheme, name)
	}
}

// NoOp performs an identity transformation and never queries the data
// reader. It exists so the orchestrator can be tested in isolation.
type NoOp struct{}

func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) Advect(r drift.DataReader, x, y, z, t, dt float64) (float64, float64, float64, error) {
	return 0, 0, 0, nil
}
