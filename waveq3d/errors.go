package waveq3d

import "fmt"

// ConfigError reports a malformed scenario, detected once at construction
// and fatal: fewer than three DE or AZ samples when eigenrays are
// requested, a source outside the water column, or an empty frequency
// set.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "waveq3d: configuration error: " + e.Reason }

// InstabilityError reports a boundary collision whose fractional
// time-to-impact fell outside [0, timeStep], detected by reflectionEngine's
// 0 <= dt <= h assertion in clampTimeWater. With Config.StrictInstability
// set it is panicked (the "fatal in debug" behavior); otherwise
// reflectionEngine logs it via Config.Log and carries on with the clamped
// value (the "clamped in release" behavior).
type InstabilityError struct {
	DE, AZ   int
	Computed float64
	Clamped  float64
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("waveq3d: integrator instability at de=%d az=%d: dt=%g clamped to %g",
		e.DE, e.AZ, e.Computed, e.Clamped)
}
