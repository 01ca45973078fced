package physics

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl64"
)

type bodyJSON struct {
	Position mgl64.Vec3 `json:"position"`
	Velocity mgl64.Vec3 `json:"velocity"`
	Mass     float64    `json:"mass"`
	Alive    *bool      `json:"alive,omitempty"`
}

// MarshalJSON encodes the body with its liveness tag.
func (b Body) MarshalJSON() ([]byte, error) {
	alive := !b.absorbed
	return json.Marshal(bodyJSON{Position: b.Position, Velocity: b.Velocity, Mass: b.Mass, Alive: &alive})
}

// UnmarshalJSON decodes a body. A missing "alive" field means alive.
func (b *Body) UnmarshalJSON(data []byte) error {
	var v bodyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	alive := v.Alive == nil || *v.Alive
	*b = Restore(v.Position, v.Velocity, v.Mass, alive)
	return nil
}
