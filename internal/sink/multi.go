package sink

import (
	"context"
	"io"

	"github.com/san-kum/nbodysim/internal/sim"
)

// Multi fans a snapshot out to sinks in order and stops at the first error.
type Multi []sim.Sink

func (m Multi) WriteSnapshot(ctx context.Context, s sim.Snapshot) error {
	for _, sk := range m {
		if err := sk.WriteSnapshot(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink that implements io.Closer and returns the first
// error.
func (m Multi) Close() error {
	var first error
	for _, sk := range m {
		c, ok := sk.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
