package scenario

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/units"
)

const fieldsPerBody = 7

var ErrPartialRecord = errors.New("scenario: incomplete body record")

// ReadBodies parses whitespace-separated records of seven numbers:
// x y z in parsecs, vx vy vz in km/s and mass in solar masses. Reading stops
// quietly at the first non-numeric token that starts a record.
func ReadBodies(r io.Reader) ([]*physics.Body, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	var (
		bodies []*physics.Body
		rec    [fieldsPerBody]float64
		n      int
	)
	for sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			if n == 0 {
				break
			}
			return nil, fmt.Errorf("%w: body %d field %d: %q", ErrPartialRecord, len(bodies), n, sc.Text())
		}

		rec[n] = v
		n++
		if n < fieldsPerBody {
			continue
		}
		n = 0

		b, err := physics.NewBody(
			units.ParsecsToMeters(rec[0]), units.ParsecsToMeters(rec[1]), units.ParsecsToMeters(rec[2]),
			units.KilometersToMeters(rec[3]), units.KilometersToMeters(rec[4]), units.KilometersToMeters(rec[5]),
			units.SolarMassesToKilograms(rec[6]),
		)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", len(bodies), err)
		}
		bodies = append(bodies, b)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read bodies: %w", err)
	}
	if n != 0 {
		return nil, fmt.Errorf("%w: body %d has %d of %d fields", ErrPartialRecord, len(bodies), n, fieldsPerBody)
	}
	return bodies, nil
}

// WriteBodies writes one line per body in the format ReadBodies accepts:
// "x y z\tvx vy vz\tmass\r\n".
func WriteBodies(w io.Writer, bodies []physics.Body) error {
	bw := bufio.NewWriter(w)
	for _, b := range bodies {
		_, err := fmt.Fprintf(bw, "%s %s %s\t%s %s %s\t%s\r\n",
			format(units.MetersToParsecs(b.Position[0])),
			format(units.MetersToParsecs(b.Position[1])),
			format(units.MetersToParsecs(b.Position[2])),
			format(units.MetersToKilometers(b.Velocity[0])),
			format(units.MetersToKilometers(b.Velocity[1])),
			format(units.MetersToKilometers(b.Velocity[2])),
			format(units.KilogramsToSolarMasses(b.Mass)),
		)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
