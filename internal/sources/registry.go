// Package sources constructs data readers from configuration. Concrete
// ocean-model readers live outside this module and register themselves here;
// the analytic basin source ships built in.
package sources

import (
	"fmt"
	"strings"
	"sync"

	"github.com/driftlab/driftsim/internal/config"
	"github.com/driftlab/driftsim/internal/drift"
)

// Constructor builds a data reader from a run configuration.
type Constructor func(cfg *config.Config) (drift.DataReader, error)

var (
	mu       sync.RWMutex
	registry = map[string]Constructor{}
)

// Register makes a source available under name. Later registrations for the
// same name win, which lets tests install stubs.
func Register(name string, fn Constructor) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = fn
}

// New constructs the data reader named by cfg.Name.
func New(cfg *config.Config) (drift.DataReader, error) {
	mu.RLock()
	fn, ok := registry[strings.ToLower(cfg.Name)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", drift.ErrUnsupportedSource, cfg.Name)
	}
	return fn(cfg)
}

// Names lists the registered source names.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

func init() {
	Register("basin", NewBasin)
}
