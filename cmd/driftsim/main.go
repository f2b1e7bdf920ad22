package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/driftlab/driftsim/internal/config"
	"github.com/driftlab/driftsim/internal/drift"
	"github.com/driftlab/driftsim/internal/export"
	"github.com/driftlab/driftsim/internal/model"
	"github.com/driftlab/driftsim/internal/particle"
	"github.com/driftlab/driftsim/internal/stats"
	"github.com/driftlab/driftsim/internal/storage"
	"github.com/driftlab/driftsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	scheme     string
	workers    int
	seed       int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "driftsim",
		Short: "lagrangian particle drift simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".driftsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "seed a particle batch and run the drift simulation",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectories to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render run trajectories to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}

	statsCmd := &cobra.Command{
		Use:   "stats [run_id]",
		Short: "displacement statistics for a run",
		Args:  cobra.ExactArgs(1),
		RunE:  statsRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scheme1] [scheme2] ...",
		Short: "compare numerical schemes on the same batch",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareSchemes,
	}
	addRunFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation with live visualization",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportSVGCmd, statsCmd, compareCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep in seconds")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().StringVar(&scheme, "scheme", config.DefaultNumMethod, "numerical scheme")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = all cores)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for release jitter")
}

// loadConfig resolves preset, config file and CLI flags in increasing
// priority.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("scheme") {
		cfg.NumMethod = scheme
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}

	return cfg, cfg.Validate()
}

// releasePositions expands the configured release groups into per-particle
// seed positions, jittering each particle uniformly within its group radius.
func releasePositions(cfg *config.Config) (groups []int64, xs, ys, zs []float64) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	for _, g := range cfg.Releases {
		for i := 0; i < g.N; i++ {
			x, y := g.X, g.Y
			if g.Radius > 0 {
				angle := rng.Float64() * 2 * math.Pi
				r := g.Radius * math.Sqrt(rng.Float64())
				x += r * math.Cos(angle)
				y += r * math.Sin(angle)
			}
			groups = append(groups, g.GroupID)
			xs = append(xs, x)
			ys = append(ys, y)
			zs = append(zs, g.Z)
		}
	}
	return groups, xs, ys, zs
}

func buildSeeded(cfg *config.Config) (*model.Model, error) {
	m, err := model.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	groups, xs, ys, zs := releasePositions(cfg)
	if err := m.SetParticleData(groups, xs, ys, zs); err != nil {
		return nil, err
	}
	if err := m.Seed(0); err != nil {
		return nil, err
	}
	return m, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	m, err := buildSeeded(cfg)
	if err != nil {
		return err
	}

	steps := int(cfg.Duration / cfg.Dt)
	fmt.Printf("running %s: %d particles, %d steps of %.1fs (%s)\n",
		cfg.Name, len(m.Snapshot().X), steps, cfg.Dt, cfg.NumMethod)

	start := time.Now()
	result, err := m.Run(context.Background(), 0, cfg.Dt, steps)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	s := stats.Summarize(result)
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("snapshots: %d\n", len(result.Snapshots))
	fmt.Printf("active: %.0f%%\n", s.ActiveFraction*100)
	fmt.Printf("mean displacement: %.4f\n", s.MeanDisplacement)

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tDURATION\tDT\tSCHEME\tPARTICLES\tACTIVE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\t%.1fs\t%s\t%d\t%d\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.NumMethod,
			run.Particles,
			run.ActiveAtEnd,
		)
	}

	return w.Flush()
}

// trajectoryResult reassembles a stored run into per-step snapshots so the
// statistics helpers can work on it.
func trajectoryResult(traj *storage.Trajectories) *model.Result {
	steps := len(traj.Times)
	n := len(traj.X)
	result := &model.Result{
		Times:     traj.Times,
		Snapshots: make([]particle.Snapshot, 0, steps),
	}
	for si := 0; si < steps; si++ {
		snap := particle.Snapshot{
			GroupIDs: traj.Groups,
			X:        make([]float64, n),
			Y:        make([]float64, n),
			Z:        make([]float64, n),
			Status:   make([]drift.Status, n),
		}
		for p := 0; p < n; p++ {
			if si >= len(traj.X[p]) {
				continue
			}
			snap.X[p] = traj.X[p][si]
			snap.Y[p] = traj.Y[p][si]
			snap.Z[p] = traj.Z[p][si]
			snap.Status[p] = traj.Status[p][si]
		}
		result.Snapshots = append(result.Snapshots, snap)
	}
	return result
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	traj, err := st.LoadTrajectories(runID)
	if err != nil {
		return err
	}
	if len(traj.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	result := trajectoryResult(traj)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s\n", meta.Source)
	fmt.Printf("samples: %d\n\n", len(traj.Times))

	series := stats.DisplacementSeries(result)
	graph := asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean displacement vs time"),
	)
	fmt.Println(graph)
	fmt.Println()

	active := make([]float64, len(result.Snapshots))
	for i, snap := range result.Snapshots {
		for _, s := range snap.Status {
			if s == drift.StatusActive {
				active[i]++
			}
		}
	}
	graph = asciigraph.Plot(active,
		asciigraph.Height(6),
		asciigraph.Width(80),
		asciigraph.Caption("active particles vs time"),
	)
	fmt.Println(graph)

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	traj, err := st.LoadTrajectories(args[0])
	if err != nil {
		return err
	}
	if len(traj.Times) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "particle", "group", "x", "y", "z", "status"}); err != nil {
		return err
	}
	for si, t := range traj.Times {
		for p := range traj.X {
			if si >= len(traj.X[p]) {
				continue
			}
			row := []string{
				strconv.FormatFloat(t, 'f', 6, 64),
				strconv.Itoa(p),
				strconv.FormatInt(traj.Groups[p], 10),
				strconv.FormatFloat(traj.X[p][si], 'f', 6, 64),
				strconv.FormatFloat(traj.Y[p][si], 'f', 6, 64),
				strconv.FormatFloat(traj.Z[p][si], 'f', 6, 64),
				traj.Status[p][si].String(),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	traj, err := st.LoadTrajectories(args[0])
	if err != nil {
		return err
	}
	if len(traj.Times) == 0 {
		return fmt.Errorf("no data to render")
	}

	fmt.Println(export.TrajectoriesToSVG(traj, 800, 600))
	return nil
}

func statsRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	traj, err := st.LoadTrajectories(args[0])
	if err != nil {
		return err
	}
	if len(traj.Times) == 0 {
		return fmt.Errorf("no data")
	}

	s := stats.Summarize(trajectoryResult(traj))

	fmt.Printf("run: %s (%s, %s)\n\n", meta.ID, meta.Source, meta.NumMethod)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "particles\t%d\n", s.Particles)
	fmt.Fprintf(w, "active fraction\t%.2f\n", s.ActiveFraction)
	fmt.Fprintf(w, "mean displacement\t%.4f\n", s.MeanDisplacement)
	fmt.Fprintf(w, "std displacement\t%.4f\n", s.StdDisplacement)
	fmt.Fprintf(w, "max displacement\t%.4f\n", s.MaxDisplacement)
	fmt.Fprintf(w, "centroid drift\t(%.4f, %.4f)\n", s.CentroidDX, s.CentroidDY)
	fmt.Fprintf(w, "mean dz\t%.4f\n", s.MeanDZ)
	fmt.Fprintf(w, "std dz\t%.4f\n", s.StdDZ)
	return w.Flush()
}

func compareSchemes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	steps := int(cfg.Duration / cfg.Dt)
	fmt.Printf("comparing schemes on %s (dt=%.1fs, duration=%.0fs)\n\n", cfg.Name, cfg.Dt, cfg.Duration)
	fmt.Printf("%-10s  %-12s  %-12s  %-10s  %-10s\n", "scheme", "mean_disp", "centroid_dx", "active", "time_ms")
	fmt.Println(strings.Repeat("-", 62))

	for _, name := range args {
		runCfg := *cfg
		runCfg.NumMethod = name

		m, err := buildSeeded(&runCfg)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := m.Run(context.Background(), 0, runCfg.Dt, steps)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		s := stats.Summarize(result)
		fmt.Printf("%-10s  %12.6f  %12.6f  %9.0f%%  %10.2f\n",
			name, s.MeanDisplacement, s.CentroidDX, s.ActiveFraction*100,
			float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	m, err := buildSeeded(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(m, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
