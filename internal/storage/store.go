// Package storage persists completed runs: one directory per run holding
// JSON metadata and the particle trajectories in long-format CSV.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/driftlab/driftsim/internal/config"
	"github.com/driftlab/driftsim/internal/drift"
	"github.com/driftlab/driftsim/internal/model"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	NumMethod   string    `json:"num_method"`
	Timestamp   time.Time `json:"timestamp"`
	Dt          float64   `json:"dt"`
	Duration    float64   `json:"duration"`
	Particles   int       `json:"particles"`
	ActiveAtEnd int       `json:"active_at_end"`
}

func (s *Store) Save(cfg *config.Config, result *model.Result) (string, error) {
	if len(result.Snapshots) == 0 {
		return "", fmt.Errorf("storage: empty result")
	}

	runID := fmt.Sprintf("%s_%d", cfg.Name, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	last := result.Snapshots[len(result.Snapshots)-1]
	active := 0
	for _, st := range last.Status {
		if st == drift.StatusActive {
			active++
		}
	}

	meta := RunMetadata{
		ID:          runID,
		Source:      cfg.Name,
		NumMethod:   cfg.NumMethod,
		Timestamp:   time.Now(),
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		Particles:   len(last.GroupIDs),
		ActiveAtEnd: active,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trajectories.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"time", "particle", "group", "x", "y", "z", "status"}); err != nil {
		return "", err
	}

	for si, snap := range result.Snapshots {
		t := result.Times[si]
		for p := range snap.GroupIDs {
			row := []string{
				strconv.FormatFloat(t, 'f', 6, 64),
				strconv.Itoa(p),
				strconv.FormatInt(snap.GroupIDs[p], 10),
				strconv.FormatFloat(snap.X[p], 'f', 6, 64),
				strconv.FormatFloat(snap.Y[p], 'f', 6, 64),
				strconv.FormatFloat(snap.Z[p], 'f', 6, 64),
				snap.Status[p].String(),
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Trajectories holds per-particle position series reassembled from the
// long-format CSV. Series are indexed [particle][step].
type Trajectories struct {
	Times   []float64
	Groups  []int64
	X, Y, Z [][]float64
	Status  [][]drift.Status
}

func (s *Store) LoadTrajectories(runID string) (*Trajectories, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trajectories.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return &Trajectories{}, nil
	}

	traj := &Trajectories{}
	lastTime := 0.0
	for _, record := range records[1:] {
		if len(record) < 7 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		p, err := strconv.Atoi(record[1])
		if err != nil || p < 0 {
			continue
		}
		group, _ := strconv.ParseInt(record[2], 10, 64)
		x, _ := strconv.ParseFloat(record[3], 64)
		y, _ := strconv.ParseFloat(record[4], 64)
		z, _ := strconv.ParseFloat(record[5], 64)

		if len(traj.Times) == 0 || t != lastTime {
			traj.Times = append(traj.Times, t)
			lastTime = t
		}

		for p >= len(traj.X) {
			traj.X = append(traj.X, nil)
			traj.Y = append(traj.Y, nil)
			traj.Z = append(traj.Z, nil)
			traj.Status = append(traj.Status, nil)
			traj.Groups = append(traj.Groups, 0)
		}
		traj.Groups[p] = group
		traj.X[p] = append(traj.X[p], x)
		traj.Y[p] = append(traj.Y[p], y)
		traj.Z[p] = append(traj.Z[p], z)
		traj.Status[p] = append(traj.Status[p], parseStatus(record[6]))
	}
	return traj, nil
}

func parseStatus(s string) drift.Status {
	switch s {
	case "active":
		return drift.StatusActive
	case "outside_domain":
		return drift.StatusOutsideDomain
	case "bounds_violation":
		return drift.StatusBoundsViolation
	default:
		return drift.StatusActive
	}
}
