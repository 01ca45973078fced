// Package units converts between SI and the astronomical units used by body
// tables and output files.
package units

const (
	Parsec    = 3.086e16 // m
	Kilometer = 1e3      // m
	SolarMass = 1.989e30 // kg
)

func ParsecsToMeters(pc float64) float64 { return pc * Parsec }
func MetersToParsecs(m float64) float64  { return m / Parsec }

func KilometersToMeters(km float64) float64 { return km * Kilometer }
func MetersToKilometers(m float64) float64  { return m / Kilometer }

func SolarMassesToKilograms(sm float64) float64 { return sm * SolarMass }
func KilogramsToSolarMasses(kg float64) float64 { return kg / SolarMass }
