package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/oxygene76/orrery/pkg/analysis"
	"github.com/oxygene76/orrery/pkg/astronomy/epoch"
	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
	"github.com/oxygene76/orrery/pkg/simulation"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the bodies in the catalog",
	Long:  "List every catalog body with its elements and derived perihelion, aphelion and period.",
	RunE:  runCatalog,
}

var positionCmd = &cobra.Command{
	Use:   "position [body]",
	Short: "Heliocentric position of one body",
	Long: `
Compute the heliocentric ecliptic position (AU) of a body at a given time.

Time is either --days (simulated days since J2000, default 0) or --at, an
RFC3339 timestamp converted to days since J2000. The two are exclusive.

Examples:
  orrery position earth --days 182.6
  orrery position mars --at 2024-03-20T03:06:00Z --verbose
`,
	Args: cobra.ExactArgs(1),
	RunE: runPosition,
}

var dateCmd = &cobra.Command{
	Use:   "date",
	Short: "Calendar date for simulated days since J2000",
	RunE:  runDate,
}

var summaryCmd = &cobra.Command{
	Use:   "summary [body...]",
	Short: "Orbit statistics over one period",
	Long: `Sample each named body (or every catalog body) uniformly in time over one
orbital period and report radius statistics, apsides and the closure error.`,
	RunE: runSummary,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the frame-driven simulation",
	Long: `
Advance a simulated clock frame by frame and propagate every selected body once
per frame. Every --snapshot-every frames (and always the last frame) the positions
are appended to --snapshot-file as one JSON object per line.

Without --realtime frames are stepped as fast as possible with a fixed wall time of
1/fps per frame, so output is reproducible. With --realtime frames are paced by a
ticker at --fps and the run stops early on Ctrl-C.

Each body keeps a trail of its most recent positions. Changing the speed with
--speed-change clears the trails; --trail-file writes them out at the end.

Examples:
  orrery run --frames 3600 --speed 10 --snapshot-file out.jsonl
  orrery run --frames 600 --speed-change 300=50 --trail-file trails.json
  orrery run --realtime --fps 30 --frames 9000 --metrics-addr :9090
`,
	RunE: runSimulation,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Epoch JD %.1f (%s)\n\n", c.EpochJD, epoch.CalendarFromJD(c.EpochJD).ISO())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BODY\tA (AU)\tE\tI (deg)\tPERIHELION (AU)\tAPHELION (AU)\tPERIOD (days)")
	for _, b := range c.Bodies() {
		fmt.Fprintf(tw, "%s\t%.3f\t%.4f\t%.3f\t%.4f\t%.4f\t%.2f\n",
			b.Name(),
			b.SemiMajorAxis(),
			b.Eccentricity(),
			radToDeg(b.Inclination()),
			b.PerihelionAU(),
			b.AphelionAU(),
			b.PeriodDays(),
		)
	}
	return tw.Flush()
}

func runPosition(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetFloat64("days")
	at, _ := cmd.Flags().GetString("at")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if at != "" {
		if cmd.Flags().Changed("days") {
			return fmt.Errorf("--days and --at are mutually exclusive")
		}
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("invalid --at timestamp: %w", err)
		}
		days = epoch.ElapsedDaysAt(t)
	}

	c, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	body, err := c.Lookup(args[0])
	if err != nil {
		return err
	}

	prop := orbital.NewPropagator(config.SolverSettings())
	state, err := prop.State(body, days)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	pos := state.Position
	if config.Output.YUp {
		pos = pos.SceneYUp()
	}
	fmt.Fprintf(out, "%s at %s (JD %.5f)\n", body.Name(), epoch.CalendarAt(days).ISO(), epoch.JulianDate(days))
	fmt.Fprintf(out, "  x = %+.6f AU\n  y = %+.6f AU\n  z = %+.6f AU\n", pos.X, pos.Y, pos.Z)
	fmt.Fprintf(out, "  r = %.6f AU\n", state.Radius)

	if verbose {
		fmt.Fprintf(out, "  elapsed days      %.6f\n", state.ElapsedDays)
		fmt.Fprintf(out, "  mean anomaly      %.6f rad\n", state.MeanAnomaly)
		fmt.Fprintf(out, "  eccentric anomaly %.6f rad\n", state.EccentricAnomaly)
		fmt.Fprintf(out, "  true anomaly      %.6f rad\n", state.TrueAnomaly)
	}
	return nil
}

func runDate(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetFloat64("days")

	d := epoch.CalendarAt(days)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, d.String())
	fmt.Fprintf(out, "JD  %.5f\n", epoch.JulianDate(days))
	fmt.Fprintf(out, "UTC %s\n", d.ISO())
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	samples, _ := cmd.Flags().GetInt("samples")
	asJSON, _ := cmd.Flags().GetBool("json")

	c, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	bodies, err := c.Select(args)
	if err != nil {
		return err
	}

	manager := analysis.NewManager(orbital.NewPropagator(config.SolverSettings()), logger)
	summaries, err := manager.SummarizeAll(bodies, config.Simulation.StartDays, samples)
	if err != nil {
		return fmt.Errorf("orbit summary failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BODY\tMEAN R (AU)\tSTDDEV\tMIN R\tMAX R\tMAX |Z|\tCLOSURE")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%.5f\t%.5f\t%.5f\t%.5f\t%.5f\t%.2e\n",
			s.Body, s.MeanRadius, s.StdDevRadius, s.MinRadius, s.MaxRadius, s.MaxAbsZ, s.ClosureError)
	}
	return tw.Flush()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	applyRunFlags(cmd)
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid run options: %w", err)
	}

	frames, _ := cmd.Flags().GetInt("frames")
	realtime, _ := cmd.Flags().GetBool("realtime")
	trailFile, _ := cmd.Flags().GetString("trail-file")
	changeSpecs, _ := cmd.Flags().GetStringSlice("speed-change")
	speedChanges, err := parseSpeedChanges(changeSpecs)
	if err != nil {
		return err
	}
	names, _ := cmd.Flags().GetStringSlice("bodies")
	if len(names) == 0 {
		names = config.Catalog.Bodies
	}

	c, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	bodies, err := c.Select(names)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := simulation.NewMetrics(reg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if config.Metrics.Addr != "" {
		srv := serveMetrics(config.Metrics.Addr, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	driver, err := simulation.NewDriver(bodies, simulation.Options{
		Solver:      config.SolverSettings(),
		StartDays:   config.Simulation.StartDays,
		Speed:       config.Simulation.Speed,
		TrailLength: config.Simulation.TrailLength,
		Workers:     config.Simulation.Workers,
		Logger:      logger,
		Metrics:     metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create simulation: %w", err)
	}

	sink, err := simulation.NewJSONLSnapshotWriter(config.Output.SnapshotFile, config.Output.YUp)
	if err != nil {
		return err
	}
	defer sink.Close()

	last, err := driver.Run(ctx, simulation.RunConfig{
		Frames:        frames,
		FrameInterval: time.Duration(float64(time.Second) / config.Simulation.FPS),
		SnapshotEvery: config.Output.SnapshotEvery,
		Realtime:      realtime,
		SpeedChanges:  speedChanges,
	}, sink)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("simulation failed: %w", err)
	}
	if err := sink.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %s: %d frames, %.2f days simulated, reached %s\n",
		driver.RunID(), last.Index, last.ElapsedDays, last.Date.String())
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshots written to %s\n", config.Output.SnapshotFile)

	trails := driver.Trails()
	for _, tr := range trails {
		fmt.Fprintf(cmd.OutOrStdout(), "  trail %-8s %d points\n", tr.Name, len(tr.Points))
	}
	if trailFile != "" {
		if err := writeTrails(trailFile, trails); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Trails written to %s\n", trailFile)
	}
	return nil
}

// parseSpeedChanges reads FRAME=SPEED pairs such as "120=25".
func parseSpeedChanges(specs []string) (map[int]float64, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	changes := make(map[int]float64, len(specs))
	for _, spec := range specs {
		frameStr, speedStr, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --speed-change %q (want FRAME=SPEED)", spec)
		}
		frame, err := strconv.Atoi(strings.TrimSpace(frameStr))
		if err != nil || frame < 1 {
			return nil, fmt.Errorf("invalid --speed-change frame %q", frameStr)
		}
		speed, err := strconv.ParseFloat(strings.TrimSpace(speedStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --speed-change speed %q: %w", speedStr, err)
		}
		if err := simulation.ValidateSpeed(speed); err != nil {
			return nil, fmt.Errorf("invalid --speed-change at frame %d: %w", frame, err)
		}
		changes[frame] = speed
	}
	return changes, nil
}

// writeTrails stores each body's trail, oldest point first, with the configured axis convention.
func writeTrails(path string, trails []simulation.BodyTrail) error {
	if config.Output.YUp {
		for i := range trails {
			for j, p := range trails[i].Points {
				trails[i].Points[j] = p.SceneYUp()
			}
		}
	}
	data, err := json.MarshalIndent(trails, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal trails: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write trail file: %w", err)
	}
	return nil
}

// applyRunFlags lets explicitly set flags override the loaded config.
func applyRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("speed") {
		config.Simulation.Speed, _ = flags.GetFloat64("speed")
	}
	if flags.Changed("fps") {
		config.Simulation.FPS, _ = flags.GetFloat64("fps")
	}
	if flags.Changed("start-days") {
		config.Simulation.StartDays, _ = flags.GetFloat64("start-days")
	}
	if flags.Changed("workers") {
		config.Simulation.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("snapshot-file") {
		config.Output.SnapshotFile, _ = flags.GetString("snapshot-file")
	}
	if flags.Changed("snapshot-every") {
		config.Output.SnapshotEvery, _ = flags.GetInt("snapshot-every")
	}
	if flags.Changed("y-up") {
		config.Output.YUp, _ = flags.GetBool("y-up")
	}
	if flags.Changed("metrics-addr") {
		config.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics endpoint failed", "error", err)
		}
	}()
	return srv
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

func init() {
	positionCmd.Flags().Float64("days", 0, "simulated days since J2000")
	positionCmd.Flags().String("at", "", "RFC3339 timestamp instead of --days")
	positionCmd.Flags().BoolP("verbose", "v", false, "show the intermediate anomalies")

	dateCmd.Flags().Float64("days", 0, "simulated days since J2000")

	summaryCmd.Flags().Int("samples", 360, "samples per orbital period")
	summaryCmd.Flags().Bool("json", false, "print summaries as JSON")

	runCmd.Flags().Int("frames", 600, "number of frames to step")
	runCmd.Flags().Float64("fps", 60, "frames per wall second")
	runCmd.Flags().Float64("speed", simulation.DefaultSpeed, "simulated days per wall second (0.1-100)")
	runCmd.Flags().Float64("start-days", 0, "simulated days since J2000 at the first frame")
	runCmd.Flags().Int("workers", 1, "propagate bodies on this many goroutines per frame")
	runCmd.Flags().StringSlice("bodies", nil, "bodies to simulate (default: catalog.bodies or all)")
	runCmd.Flags().String("snapshot-file", "snapshots.jsonl", "JSONL snapshot output file")
	runCmd.Flags().Int("snapshot-every", 60, "write every Nth frame")
	runCmd.Flags().Bool("realtime", false, "pace frames with a wall-clock ticker")
	runCmd.Flags().Bool("y-up", false, "write positions with Y and Z swapped for y-up scenes")
	runCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address")
	runCmd.Flags().StringSlice("speed-change", nil, "FRAME=SPEED pairs applied before the given frame; trails restart on each change")
	runCmd.Flags().String("trail-file", "", "write the final trail of every body as JSON")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(positionCmd)
	rootCmd.AddCommand(dateCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(runCmd)
}
