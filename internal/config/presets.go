package config

// Presets are named run setups for the built-in basin source.
var Presets = map[string]*Config{
	// Unit basin with a still field, matching the geometry used by the
	// validation tests: unit square, floor at -1, surface at 0.
	"unit-basin": {
		Name:              "basin",
		TimeVarName:       DefaultTimeVarName,
		RoundingInterval:  DefaultRoundingInterval,
		DepthCoordinates:  DepthBelowSurface,
		NumMethod:         "test",
		PartialSeedPolicy: RejectBatch,
		Dt:                60, Duration: 3600,
		Basin: BasinConfig{XMin: 0, XMax: 1, YMin: 0, YMax: 1, Depth: 1, Records: 25},
		Releases: []ReleaseGroup{
			{GroupID: 1, N: 4, X: 0.5, Y: 0.5, Z: -0.5, Radius: 0.05},
		},
	},
	// Solid-body rotation around the basin center; particles trace circles,
	// useful for eyeballing scheme accuracy.
	"gyre": {
		Name:              "basin",
		TimeVarName:       DefaultTimeVarName,
		RoundingInterval:  DefaultRoundingInterval,
		DepthCoordinates:  DepthBelowSurface,
		NumMethod:         "rk4",
		PartialSeedPolicy: RejectBatch,
		Dt:                30, Duration: 43200,
		Basin: BasinConfig{
			XMin: -5000, XMax: 5000, YMin: -5000, YMax: 5000,
			Depth: 50, Rotation: 1e-4, Records: 49,
		},
		Releases: []ReleaseGroup{
			{GroupID: 1, N: 20, X: 2000, Y: 0, Z: -10, Radius: 200},
		},
	},
	// Steady along-channel drift; particles eventually cross the open end
	// and flip to outside_domain.
	"channel": {
		Name:              "basin",
		TimeVarName:       DefaultTimeVarName,
		RoundingInterval:  DefaultRoundingInterval,
		DepthCoordinates:  HeightAboveFloor,
		NumMethod:         "euler",
		PartialSeedPolicy: FlagInvalid,
		Dt:                60, Duration: 86400,
		Basin: BasinConfig{
			XMin: 0, XMax: 20000, YMin: 0, YMax: 2000,
			Depth: 20, U: 0.25, Records: 25,
		},
		Releases: []ReleaseGroup{
			{GroupID: 1, N: 30, X: 1000, Y: 1000, Z: 5, Radius: 300},
		},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
