package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeVarName      = "time"
	DefaultRoundingInterval = 3600
	DefaultDt               = 60.0
	DefaultDuration         = 86400.0
	DefaultNumMethod        = "rk4"
)

// Depth coordinate conventions for interpreting seed z-positions.
const (
	DepthBelowSurface = "depth_below_surface"
	HeightAboveFloor  = "height_above_floor"
)

// Partial seed policies for batches mixing valid and invalid particles.
const (
	RejectBatch = "reject_batch"
	FlagInvalid = "flag_invalid"
)

type Config struct {
	// Name selects the data source and, through it, the datetime
	// normalization variant.
	Name string `yaml:"name"`

	TimeVarName      string `yaml:"time_var_name"`
	RoundingInterval int    `yaml:"rounding_interval"`

	DepthCoordinates  string `yaml:"depth_coordinates"`
	NumMethod         string `yaml:"num_method"`
	PartialSeedPolicy string `yaml:"partial_seed_policy"`

	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Workers  int     `yaml:"workers"`
	Seed     int64   `yaml:"seed"`

	Basin    BasinConfig    `yaml:"basin"`
	Releases []ReleaseGroup `yaml:"releases"`
}

// BasinConfig describes the built-in analytic basin source.
type BasinConfig struct {
	XMin             float64 `yaml:"x_min"`
	XMax             float64 `yaml:"x_max"`
	YMin             float64 `yaml:"y_min"`
	YMax             float64 `yaml:"y_max"`
	Depth            float64 `yaml:"depth"`
	SurfaceElevation float64 `yaml:"surface_elevation"`
	U                float64 `yaml:"u"`
	V                float64 `yaml:"v"`
	Rotation         float64 `yaml:"rotation"`
	Records          int     `yaml:"records"`
}

// ReleaseGroup describes one batch of particles released together.
type ReleaseGroup struct {
	GroupID int64   `yaml:"group_id"`
	N       int     `yaml:"n"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Z       float64 `yaml:"z"`
	Radius  float64 `yaml:"radius"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:              "basin",
		TimeVarName:       DefaultTimeVarName,
		RoundingInterval:  DefaultRoundingInterval,
		DepthCoordinates:  DepthBelowSurface,
		NumMethod:         DefaultNumMethod,
		PartialSeedPolicy: RejectBatch,
		Dt:                DefaultDt,
		Duration:          DefaultDuration,
		Basin: BasinConfig{
			XMin:    0,
			XMax:    1,
			YMin:    0,
			YMax:    1,
			Depth:   1,
			Records: 25,
		},
		Releases: []ReleaseGroup{
			{GroupID: 1, N: 10, X: 0.5, Y: 0.5, Z: -0.5, Radius: 0.1},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects enum values the engine does not recognize. Unknown source
// and scheme names are left to their factories, which return typed errors.
func (c *Config) Validate() error {
	switch c.DepthCoordinates {
	case DepthBelowSurface, HeightAboveFloor:
	default:
		return fmt.Errorf("unknown depth_coordinates: %q", c.DepthCoordinates)
	}
	switch c.PartialSeedPolicy {
	case RejectBatch, FlagInvalid:
	default:
		return fmt.Errorf("unknown partial_seed_policy: %q", c.PartialSeedPolicy)
	}
	if c.Dt == 0 {
		return fmt.Errorf("dt must be non-zero")
	}
	if c.RoundingInterval <= 0 {
		return fmt.Errorf("rounding_interval must be positive, got %d", c.RoundingInterval)
	}
	return nil
}
