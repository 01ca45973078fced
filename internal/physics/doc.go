// Package physics provides the point-mass model used by the simulation engine.
//
// A [Body] carries a position, a velocity and a mass in SI units together
// with a liveness tag. Bodies are never removed from a system: a collision
// marks the absorbed body and zeroes its mass so that indices stay stable
// for the whole run.
//
//   - [Body.DistanceTo] and [Body.RelativePositionFrom]: geometric queries
//   - [Body.AddPositionAdjustment] and [Body.AddVelocityAdjustment]: in-place updates
//   - [Body.Absorb]: perfectly inelastic merge conserving linear momentum
//
// # Conserved Quantities
//
// [TotalMomentum] and [TotalEnergy] summarize a system and are used by the
// metrics package to monitor integration drift:
//
//	p0 := physics.TotalMomentum(bodies)
//	e0 := physics.TotalEnergy(bodies, physics.G)
package physics
