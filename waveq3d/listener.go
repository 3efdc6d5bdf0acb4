package waveq3d

import (
	"github.com/google/uuid"

	"github.com/oceanacoustics/waveq3d/eigenray"
	"github.com/oceanacoustics/waveq3d/geo"
	"github.com/oceanacoustics/waveq3d/ocean"
)

// EigenrayListener receives one notification per eigenray discovered
// during a Step, plus a periodic tick so time-windowing listeners (e.g. a
// reverberation collector) can flush per-step state. The core does not
// know or care what a listener does with these events; this is the seam
// that separates the propagator from any serializer or accumulator.
type EigenrayListener interface {
	Eigenray(targetRow, targetCol int, ray eigenray.Eigenray, runID uuid.UUID)
	Check(waveTime float64, runID uuid.UUID)
}

// VolumeScatteringListener receives one notification per ray crossing of
// a registered ocean.VolumeLayer, for reverberation collectors that need
// per-crossing detail rather than just the final eigenray.
type VolumeScatteringListener interface {
	Collision(de, az int, time float64, position geo.Point, direction geo.Vector,
		speed float64, frequencies []float64, amplitudeDB, phaseRad []float64,
		layerIndex int, kind ocean.VolumeLayerType)
}
