package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/nbodysim/internal/export"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
	"github.com/san-kum/nbodysim/internal/storage"
	"github.com/san-kum/nbodysim/internal/units"
	"github.com/spf13/cobra"
)

func loadRun(runID string) (*storage.RunMetadata, []sim.Snapshot, error) {
	st := storage.New(dataDir, nil)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(snaps) == 0 {
		return nil, nil, fmt.Errorf("run %s has no snapshots", runID)
	}
	return meta, snaps, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, nil)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tBODIES\tSTEPS\tSNAPSHOTS\tCOLLISIONS\tSIMULATED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%.3gs\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Steps,
			run.Snapshots,
			run.Collisions,
			run.SimulatedTime,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(snaps))

	energy := make([]float64, len(snaps))
	momentum := make([]float64, len(snaps))
	live := make([]float64, len(snaps))
	for i, s := range snaps {
		energy[i] = physics.TotalEnergy(s.Bodies, meta.G)
		momentum[i] = physics.TotalMomentum(s.Bodies).Len()
		for j := range s.Bodies {
			if s.Bodies[j].Alive() {
				live[i]++
			}
		}
	}

	plots := []struct {
		caption string
		data    []float64
	}{
		{"total energy (J)", energy},
		{"total momentum (kg m/s)", momentum},
		{"live bodies", live},
	}
	for _, p := range plots {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func verifyRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, nil)
	if err := st.Verify(args[0]); err != nil {
		return err
	}
	fmt.Printf("run %s: checksum ok\n", args[0])
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, snaps)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time", "body", "alive", "x_pc", "y_pc", "z_pc", "vx_kms", "vy_kms", "vz_kms", "mass_msun"}
	if err := w.Write(header); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', 8, 64) }
	for _, s := range snaps {
		for i, b := range s.Bodies {
			row := []string{
				format(s.Time),
				strconv.Itoa(i),
				strconv.FormatBool(b.Alive()),
				format(units.MetersToParsecs(b.Position.X())),
				format(units.MetersToParsecs(b.Position.Y())),
				format(units.MetersToParsecs(b.Position.Z())),
				format(units.MetersToKilometers(b.Velocity.X())),
				format(units.MetersToKilometers(b.Velocity.Y())),
				format(units.MetersToKilometers(b.Velocity.Z())),
				format(units.KilogramsToSolarMasses(b.Mass)),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}

	svg := export.TrajectoriesToSVG(snaps, svgWidth, svgHeight, nil)
	if svgOut == "" {
		_, err := fmt.Print(svg)
		return err
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}
