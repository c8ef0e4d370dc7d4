package orbital

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// DaysPerYear converts sidereal periods in Julian years to days.
	DaysPerYear = 365.25

	twoPi = 2 * math.Pi
)

// OrbitalElements represents the Keplerian elements of one body at the catalog epoch.
// Angles are stored in radians; values are fixed after construction.
type OrbitalElements struct {
	name          string
	semiMajorAxis float64 // a - Semi-major axis (AU)
	eccentricity  float64 // e - Eccentricity [0, 1)
	inclination   float64 // i - Inclination (radians)
	argPeriapsis  float64 // ω - Argument of periapsis (radians)
	ascendingNode float64 // Ω - Longitude of ascending node (radians)
	meanAnomaly   float64 // M0 - Mean anomaly at epoch (radians)
	periodDays    float64 // P - Sidereal period (days)

	// rotation maps orbital-plane coordinates into the ecliptic frame.
	rotation *mat.Dense
}

// NewOrbitalElements validates catalog values and converts them to radians and days.
func NewOrbitalElements(name string, semiMajorAxisAU, inclinationDeg, argPeriapsisDeg, eccentricity,
	ascendingNodeDeg, meanAnomalyDeg, siderealYears float64) (*OrbitalElements, error) {
	for _, in := range []struct {
		field string
		value float64
	}{
		{"semi_major_axis", semiMajorAxisAU},
		{"inclination", inclinationDeg},
		{"arg_periapsis", argPeriapsisDeg},
		{"eccentricity", eccentricity},
		{"ascending_node", ascendingNodeDeg},
		{"mean_anomaly", meanAnomalyDeg},
		{"sidereal_period", siderealYears},
	} {
		if math.IsNaN(in.value) || math.IsInf(in.value, 0) {
			return nil, &InvalidElementsError{Body: name, Field: in.field, Value: in.value, Reason: "must be finite"}
		}
	}
	if semiMajorAxisAU <= 0 {
		return nil, &InvalidElementsError{Body: name, Field: "semi_major_axis", Value: semiMajorAxisAU, Reason: "must be positive"}
	}
	if eccentricity < 0 || eccentricity >= 1 {
		return nil, &InvalidElementsError{Body: name, Field: "eccentricity", Value: eccentricity, Reason: "must be in [0, 1)"}
	}
	if siderealYears <= 0 {
		return nil, &InvalidElementsError{Body: name, Field: "sidereal_period", Value: siderealYears, Reason: "must be positive"}
	}

	oe := &OrbitalElements{
		name:          name,
		semiMajorAxis: semiMajorAxisAU,
		eccentricity:  eccentricity,
		inclination:   degToRad(inclinationDeg),
		argPeriapsis:  degToRad(argPeriapsisDeg),
		ascendingNode: degToRad(ascendingNodeDeg),
		meanAnomaly:   degToRad(meanAnomalyDeg),
		periodDays:    siderealYears * DaysPerYear,
	}
	oe.rotation = orbitalPlaneRotation(oe.ascendingNode, oe.inclination, oe.argPeriapsis)
	return oe, nil
}

// Name returns the body identifier
func (oe *OrbitalElements) Name() string { return oe.name }

// SemiMajorAxis returns a in AU
func (oe *OrbitalElements) SemiMajorAxis() float64 { return oe.semiMajorAxis }

// Eccentricity returns e
func (oe *OrbitalElements) Eccentricity() float64 { return oe.eccentricity }

// Inclination returns i in radians
func (oe *OrbitalElements) Inclination() float64 { return oe.inclination }

// ArgumentOfPeriapsis returns ω in radians
func (oe *OrbitalElements) ArgumentOfPeriapsis() float64 { return oe.argPeriapsis }

// LongitudeAscendingNode returns Ω in radians
func (oe *OrbitalElements) LongitudeAscendingNode() float64 { return oe.ascendingNode }

// EpochMeanAnomaly returns M0 in radians
func (oe *OrbitalElements) EpochMeanAnomaly() float64 { return oe.meanAnomaly }

// PeriodDays returns the sidereal period in days
func (oe *OrbitalElements) PeriodDays() float64 { return oe.periodDays }

// MeanMotion returns n = 2π/P in radians per day
func (oe *OrbitalElements) MeanMotion() float64 {
	return twoPi / oe.periodDays
}

// MeanAnomalyAt returns M(t) = M0 + n·t for t days since epoch. The result is not reduced.
func (oe *OrbitalElements) MeanAnomalyAt(elapsedDays float64) float64 {
	return oe.meanAnomaly + oe.MeanMotion()*elapsedDays
}

// PerihelionAU returns the perihelion distance
func (oe *OrbitalElements) PerihelionAU() float64 {
	return oe.semiMajorAxis * (1 - oe.eccentricity)
}

// AphelionAU returns the aphelion distance
func (oe *OrbitalElements) AphelionAU() float64 {
	return oe.semiMajorAxis * (1 + oe.eccentricity)
}

// LongitudeOfPerihelion returns ϖ = Ω + ω reduced to [0, 2π)
func (oe *OrbitalElements) LongitudeOfPerihelion() float64 {
	return NormalizeAngle(oe.ascendingNode + oe.argPeriapsis)
}

// NormalizeAngle reduces an angle to [0, 2π).
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
