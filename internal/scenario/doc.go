// Package scenario builds initial body collections: from a body table in
// astronomical units, from a seeded random generator, or by name.
package scenario
