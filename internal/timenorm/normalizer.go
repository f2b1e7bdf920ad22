// Package timenorm converts a data source's raw time encoding into calendar
// time. Sources disagree on how time is written: most carry a single numeric
// variable with CF-style units metadata, while some split it into an integer
// day counter plus an integer milliseconds-of-day counter to work around
// precision loss. One normalizer exists per encoding, selected by source name.
package timenorm

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/driftlab/driftsim/internal/config"
)

// Dataset is the slice of a data file the normalizers need: named time
// variables with their units metadata.
type Dataset interface {
	TimeVar(name string) (values []float64, units string, err error)
}

// Normalizer turns a dataset's raw time record into calendar time, rounded
// to the configured interval.
type Normalizer interface {
	Datetimes(ds Dataset) ([]time.Time, error)
	Datetime(ds Dataset, index int) (time.Time, error)
}

// New selects the normalizer variant for a source name. Sources using the
// split day/millisecond pair ("fvcom") get the split decoder; everything
// else reads a single time variable.
func New(name string, cfg *config.Config) Normalizer {
	interval := time.Duration(cfg.RoundingInterval) * time.Second
	if strings.EqualFold(name, "fvcom") {
		return &SplitEncoding{interval: interval}
	}
	varName := cfg.TimeVarName
	if varName == "" {
		varName = config.DefaultTimeVarName
	}
	return &Default{varName: varName, interval: interval}
}

// Default reads calendar time from a single numeric variable.
type Default struct {
	varName  string
	interval time.Duration
}

func NewDefault(varName string, interval time.Duration) *Default {
	if varName == "" {
		varName = config.DefaultTimeVarName
	}
	return &Default{varName: varName, interval: interval}
}

func (d *Default) Datetimes(ds Dataset) ([]time.Time, error) {
	values, units, err := ds.TimeVar(d.varName)
	if err != nil {
		return nil, err
	}
	return decode(values, units, d.interval)
}

func (d *Default) Datetime(ds Dataset, index int) (time.Time, error) {
	return at(d, ds, index)
}

// SplitEncoding reads calendar time from an integer day counter plus an
// integer milliseconds-of-day counter, combined in day units before decoding.
type SplitEncoding struct {
	interval time.Duration
}

func NewSplitEncoding(interval time.Duration) *SplitEncoding {
	return &SplitEncoding{interval: interval}
}

const daysPerMillisecond = 1.0 / (1000 * 60 * 60 * 24)

func (s *SplitEncoding) Datetimes(ds Dataset) ([]time.Time, error) {
	days, units, err := ds.TimeVar("Itime")
	if err != nil {
		return nil, err
	}
	millis, _, err := ds.TimeVar("Itime2")
	if err != nil {
		return nil, err
	}
	if len(millis) != len(days) {
		return nil, fmt.Errorf("timenorm: Itime/Itime2 length mismatch: %d vs %d",
			len(days), len(millis))
	}

	raw := make([]float64, len(days))
	for i := range days {
		raw[i] = days[i] + millis[i]*daysPerMillisecond
	}
	return decode(raw, units, s.interval)
}

func (s *SplitEncoding) Datetime(ds Dataset, index int) (time.Time, error) {
	return at(s, ds, index)
}

func at(n Normalizer, ds Dataset, index int) (time.Time, error) {
	all, err := n.Datetimes(ds)
	if err != nil {
		return time.Time{}, err
	}
	if index < 0 || index >= len(all) {
		return time.Time{}, fmt.Errorf("timenorm: time index %d out of range [0, %d)", index, len(all))
	}
	return all[index], nil
}

func decode(values []float64, units string, interval time.Duration) ([]time.Time, error) {
	secsPerUnit, epoch, err := parseUnits(units)
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, len(values))
	for i, v := range values {
		total := v * secsPerUnit
		sec := math.Floor(total)
		nsec := (total - sec) * 1e9
		t := epoch.Add(time.Duration(sec)*time.Second + time.Duration(nsec))
		if interval > 0 {
			t = t.Round(interval)
		}
		out[i] = t
	}
	return out, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// parseUnits decodes CF-style units metadata of the form
// "<unit> since <timestamp>".
func parseUnits(units string) (secsPerUnit float64, epoch time.Time, err error) {
	fields := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(fields) != 2 {
		return 0, time.Time{}, fmt.Errorf("timenorm: malformed time units %q", units)
	}

	switch strings.ToLower(strings.TrimSpace(fields[0])) {
	case "seconds", "second", "secs", "sec", "s":
		secsPerUnit = 1
	case "minutes", "minute", "mins", "min":
		secsPerUnit = 60
	case "hours", "hour", "hrs", "hr", "h":
		secsPerUnit = 3600
	case "days", "day", "d":
		secsPerUnit = 86400
	default:
		return 0, time.Time{}, fmt.Errorf("timenorm: unrecognized time unit in %q", units)
	}

	stamp := strings.TrimSpace(fields[1])
	for _, layout := range timestampLayouts {
		if t, perr := time.Parse(layout, stamp); perr == nil {
			return secsPerUnit, t.UTC(), nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("timenorm: unparseable epoch %q", stamp)
}
