package viz

import (
	"context"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/nbodysim/internal/sim"
)

const DefaultTrailLength = 200

// Plotter is a sim.Sink that advances the plotted view: it keeps the latest
// snapshot and, for every live body, a trail of its most recent positions.
type Plotter struct {
	mu       sync.Mutex
	trailLen int
	trails   [][]mgl64.Vec3
	latest   sim.Snapshot
	updates  int
}

func NewPlotter(trailLen int) *Plotter {
	if trailLen < 1 {
		trailLen = DefaultTrailLength
	}
	return &Plotter{trailLen: trailLen}
}

func (p *Plotter) WriteSnapshot(_ context.Context, s sim.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.trails) < len(s.Bodies) {
		p.trails = append(p.trails, make([]mgl64.Vec3, 0, p.trailLen))
	}
	for i := range s.Bodies {
		if !s.Bodies[i].Alive() {
			continue
		}
		trail := p.trails[i]
		if len(trail) == p.trailLen {
			copy(trail, trail[1:])
			trail = trail[:len(trail)-1]
		}
		p.trails[i] = append(trail, s.Bodies[i].Position)
	}

	p.latest = s
	p.updates++
	return nil
}

// Latest returns the last snapshot seen and whether there was one.
func (p *Plotter) Latest() (sim.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.updates > 0
}

func (p *Plotter) Updates() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updates
}

// Trails returns a copy of every body's trail, oldest position first.
func (p *Plotter) Trails() [][]mgl64.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([][]mgl64.Vec3, len(p.trails))
	for i, t := range p.trails {
		out[i] = append([]mgl64.Vec3(nil), t...)
	}
	return out
}

// LivePositions returns the positions of live bodies in the latest snapshot.
func (p *Plotter) LivePositions() []mgl64.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()

	pts := make([]mgl64.Vec3, 0, len(p.latest.Bodies))
	for i := range p.latest.Bodies {
		if p.latest.Bodies[i].Alive() {
			pts = append(pts, p.latest.Bodies[i].Position)
		}
	}
	return pts
}

// Draw renders trails as dots and live bodies as blobs.
func (p *Plotter) Draw(c *Canvas, cam *Camera) {
	sw, sh := c.PixelWidth(), c.PixelHeight()

	for _, trail := range p.Trails() {
		for _, pos := range trail {
			if x, y, ok := cam.Project(pos, sw, sh); ok {
				c.Set(x, y)
			}
		}
	}
	for _, pos := range p.LivePositions() {
		if x, y, ok := cam.Project(pos, sw, sh); ok {
			c.Blob(x, y, 1)
		}
	}
}
