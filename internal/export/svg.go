// Package export renders recorded runs to files.
package export

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/nbodysim/internal/sim"
	"github.com/san-kum/nbodysim/internal/viz"
)

var palette = []string{"#00ffff", "#ffd700", "#ff6b6b", "#88ff88", "#ff88ff", "#0088ff", "#ffaa00", "#ffffff"}

// Trajectories collects the positions of each body over the snapshots. A
// body's trajectory ends at the snapshot in which it was absorbed.
func Trajectories(snaps []sim.Snapshot) [][]mgl64.Vec3 {
	var out [][]mgl64.Vec3
	for _, s := range snaps {
		for len(out) < len(s.Bodies) {
			out = append(out, nil)
		}
		for i := range s.Bodies {
			if s.Bodies[i].Alive() {
				out[i] = append(out[i], s.Bodies[i].Position)
			}
		}
	}
	return out
}

// TrajectoriesToSVG draws every body's path, viewed through cam. A nil
// camera is fitted to the data and looks down the z axis.
func TrajectoriesToSVG(snaps []sim.Snapshot, width, height int, cam *viz.Camera) string {
	paths := Trajectories(snaps)

	if cam == nil {
		var all []mgl64.Vec3
		for _, p := range paths {
			all = append(all, p...)
		}
		cam = viz.NewCamera()
		cam.Fit(all)
	}

	w, h := float64(width), float64(height)
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, path := range paths {
		if len(path) == 0 {
			continue
		}
		color := palette[i%len(palette)]

		if len(path) > 1 {
			sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1" stroke-opacity="0.8" d="M`, color))
			for k, p := range path {
				x, y := cam.ProjectF(p, w, h)
				if k == 0 {
					sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
				} else {
					sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
				}
			}
			sb.WriteString("\"/>\n")
		}

		x, y := cam.ProjectF(path[len(path)-1], w, h)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="2.5" fill="%s"/>
`, x, y, color))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
