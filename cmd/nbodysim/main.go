package main

import (
	"fmt"
	"os"

	"github.com/san-kum/nbodysim/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	devLog   bool

	configFile string
	preset     string
	input      string
	scenarioN  string
	output     string
	duration   float64
	dt         float64
	interval   float64
	gconst     float64
	workers    int
	seed       int64
	numBodies  int
	bufferSize int

	stepsPerTick int
	trailLength  int

	addr        string
	waitClients int
	frameDelay  int
	svgWidth    int
	svgHeight   int
	svgOut      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "nbodysim",
		Short:        "gravitational n-body simulator",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nbodysim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&devLog, "dev", false, "human readable logs")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its snapshots",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&bufferSize, "buffer", 64, "snapshots queued for storage")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a simulation in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerTick, "steps", 24, "engine steps per frame")
	liveCmd.Flags().IntVar(&trailLength, "trail", 200, "trail length in snapshots")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run a simulation and stream snapshots over websocket",
		Args:  cobra.NoArgs,
		RunE:  serveSimulation,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&waitClients, "wait", 1, "clients to wait for before starting")
	serveCmd.Flags().IntVar(&frameDelay, "frame-ms", 33, "delay after each snapshot in milliseconds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy, momentum and body count of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	verifyCmd := &cobra.Command{
		Use:   "verify [run_id]",
		Short: "check a run's snapshot checksum",
		Args:  cobra.ExactArgs(1),
		RunE:  verifyRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export snapshots to CSV in parsecs, km/s and solar masses",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render trajectories to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				source := p.Scenario
				if source == "" {
					source = p.Input
				}
				fmt.Printf("  %-10s %-10s dt=%gs duration=%gs\n", name, source, p.TimeStep, p.Duration)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, listCmd, plotCmd, verifyCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&input, "input", config.InputRandom, "body table path or \"random\"")
	cmd.Flags().StringVar(&scenarioN, "scenario", "", "named scenario (earth-sun, binary, cluster)")
	cmd.Flags().StringVar(&output, "output", config.DefaultOutput, "text output file, empty to disable")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultTimeStep, "time step in seconds")
	cmd.Flags().Float64Var(&interval, "interval", config.DefaultSnapshotInterval, "snapshot interval in seconds")
	cmd.Flags().Float64Var(&gconst, "g", 0, "gravitational constant")
	cmd.Flags().IntVar(&workers, "workers", 1, "force pass goroutines")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 picks one")
	cmd.Flags().IntVar(&numBodies, "bodies", 100, "number of random bodies")
}
