// Package heat holds the first-order room temperature model: an exponential
// approach to ambient, slowed by insulation and thermal mass.
package heat

// Step returns the new room temperature after dt seconds.
//
//	dT = (ambient - room) * (1 - insulation) * k * dt / mass
//
// insulation is clamped to [0,1]; mass must be >= 1 (floor tile count).
// The step never overshoots ambient.
func Step(room, ambient, insulation, k, dt float64, mass float64) float64 {
	if mass < 1 {
		mass = 1
	}
	if insulation < 0 {
		insulation = 0
	} else if insulation > 1 {
		insulation = 1
	}
	delta := (ambient - room) * (1 - insulation) * k * dt / mass
	next := room + delta
	// Clamp at equilibrium so large k*dt cannot oscillate across ambient.
	if (room < ambient && next > ambient) || (room > ambient && next < ambient) {
		next = ambient
	}
	return next
}
