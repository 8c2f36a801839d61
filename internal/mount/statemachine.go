package mount

// MountState is a tagged enumeration of the mount's inferred behavioral
// state. Transitions are driven exclusively by caller commands and received
// telemetry; the engine never times a state out on its own.
type MountState int

const (
	Disconnected MountState = iota
	Unknown
	ParkingIssued
	SlewingToParkingPosition
	Parked
	Slewing
	Tracking
	MoveWhileTracking
	Idle
)

func (s MountState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Unknown:
		return "Unknown"
	case ParkingIssued:
		return "ParkingIssued"
	case SlewingToParkingPosition:
		return "SlewingToParkingPosition"
	case Parked:
		return "Parked"
	case Slewing:
		return "Slewing"
	case Tracking:
		return "Tracking"
	case MoveWhileTracking:
		return "MoveWhileTracking"
	case Idle:
		return "Idle"
	default:
		return "Unknown(unrecognized)"
	}
}

// trackSlewThreshold derives from the manufacturer-stated tracking speed of
// roughly 0.004 deg/s sampled at roughly 1Hz.
const trackSlewThreshold = 0.0045

// onTelemetry computes the next mount state given the previous state and the
// per-sample delta magnitude. It mirrors ExosIIMountControl's
// OnPointingCoordinatesReceived switch in the original source: command-issued
// states (ParkingIssued, MoveWhileTracking) are refined or held by telemetry
// rather than overridden uniformly.
//
// isFirstSample must be true only for the very first telemetry sample ever
// received (when there is no previous coordinate to diff against); the
// resulting NaN delta never produces a transition, matching the original's
// "break on NaN delta" Unknown-state handling.
func onTelemetry(prev MountState, mag float32, isFirstSample bool) MountState {
	if isFirstSample || float32IsNaN(mag) {
		return prev
	}

	switch prev {
	case Unknown:
		switch {
		case mag == 0:
			return Parked
		case mag > trackSlewThreshold:
			return Slewing
		default:
			return Tracking
		}

	case ParkingIssued, SlewingToParkingPosition:
		if mag > 0 {
			return SlewingToParkingPosition
		}
		return Parked

	case Parked, Idle:
		if mag > 0 {
			if mag > trackSlewThreshold {
				return Slewing
			}
			return Tracking
		}
		return prev

	case Tracking, Slewing:
		if mag > 0 {
			if mag > trackSlewThreshold {
				return Slewing
			}
			return Tracking
		}
		return Idle

	default:
		// MoveWhileTracking and Disconnected are not refined by telemetry:
		// MoveWhileTracking only exits via StopMotionToDirection, and
		// Disconnected telemetry should never arrive (the receiver loop is
		// not running).
		return prev
	}
}
