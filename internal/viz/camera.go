package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera projects world positions orthographically onto the canvas. Span is
// the world distance from Center that reaches the nearest canvas edge at
// zoom 1.
type Camera struct {
	Center           mgl64.Vec3
	Span             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Span: 1, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(1e3, c.Zoom*1.25) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(1e-3, c.Zoom/1.25) }

func (c *Camera) rotation() mgl64.Mat3 {
	return mgl64.Rotate3DZ(c.RotZ).Mul3(mgl64.Rotate3DY(c.RotY)).Mul3(mgl64.Rotate3DX(c.RotX))
}

// Fit centres the camera on the points and sets Span to enclose them with a
// margin.
func (c *Camera) Fit(points []mgl64.Vec3) {
	if len(points) == 0 {
		return
	}

	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	c.Center = lo.Add(hi).Mul(0.5)

	span := 0.0
	for _, p := range points {
		span = math.Max(span, p.Sub(c.Center).Len())
	}
	if span == 0 {
		span = 1
	}
	c.Span = span * 1.1
}

// ProjectF maps p to continuous screen coordinates with y pointing down.
func (c *Camera) ProjectF(p mgl64.Vec3, sw, sh float64) (float64, float64) {
	q := c.rotation().Mul3x1(p.Sub(c.Center))
	scale := math.Min(sw, sh) / 2 / c.Span * c.Zoom
	return sw/2 + q.X()*scale, sh/2 - q.Y()*scale
}

// Project maps p to pixel coordinates on a sw x sh canvas and reports
// whether the pixel lies on it.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, bool) {
	fx, fy := c.ProjectF(p, float64(sw), float64(sh))
	if math.IsNaN(fx) || math.IsNaN(fy) || fx < 0 || fy < 0 || fx >= float64(sw) || fy >= float64(sh) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}
