package mount

import (
	"errors"
	"sync"

	"github.com/kneo/indi-bresserexos2/internal/monitoring"
	"github.com/kneo/indi-bresserexos2/internal/timeutil"
)

// TelemetryObserver receives the controller's pointing and site-location
// callbacks. It is invoked synchronously from the receiver loop's goroutine,
// so implementations must not block.
type TelemetryObserver interface {
	OnPointingCoordinatesReceived(ra, dec float32)
	OnSiteLocationReceived(lat, lon float32)
}

// Option configures a MountController at construction time.
type Option func(*MountController)

// WithClock overrides the controller's time source; tests pass a MockClock so
// the receiver loop and pulser make no real sleeps.
func WithClock(clock timeutil.Clock) Option {
	return func(c *MountController) { c.clock = clock }
}

// WithObserver registers a TelemetryObserver to receive the controller's
// pointing and site-location callbacks.
func WithObserver(o TelemetryObserver) Option {
	return func(c *MountController) { c.observer = o }
}

// MountController is the public API: the mount state machine, command
// emission, and the owner of the receiver loop and motion pulser. Grounded
// directly on ExosIIMountControl's public methods and
// OnPointingCoordinatesReceived switch in the original source.
type MountController struct {
	port  SerialPort
	clock timeutil.Clock

	state        *guardedCell[MountState]
	pointing     *guardedCell[EquatorialCoordinate]
	siteLocation *guardedCell[GeodeticCoordinate]
	firstSample  *guardedCell[bool]

	writeMu sync.Mutex

	receiver *receiverLoop
	pulser   *motionPulser
	hub      *telemetryHub
	observer TelemetryObserver
}

// NewController binds a MountController to an injected SerialPort. The
// controller does not open the port until Start is called.
func NewController(port SerialPort, opts ...Option) *MountController {
	c := &MountController{
		port:         port,
		clock:        timeutil.RealClock{},
		state:        newGuardedCell(Disconnected),
		pointing:     newGuardedCell(unknownEquatorial()),
		siteLocation: newGuardedCell(unknownGeodetic()),
		firstSample:  newGuardedCell(true),
		hub:          newTelemetryHub(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.receiver = newReceiverLoop(port, c.clock, c.onFrame, c.onOpenFailure)
	c.pulser = newMotionPulser(c.clock, c.emitMove)
	return c
}

// Start opens the port and spawns the receiver loop and motion pulser. It is
// a no-op if the controller is already started.
func (c *MountController) Start() error {
	if c.state.Get() != Disconnected {
		return nil
	}
	c.pointing.Set(unknownEquatorial())
	c.siteLocation.Set(unknownGeodetic())
	c.firstSample.Set(true)

	if err := c.receiver.start(); err != nil {
		return newTransportError("Start", err)
	}
	c.setState(Unknown)
	c.pulser.start()
	return nil
}

// Stop halts the pulser, best-effort sends a DISCONNECT frame, stops the
// receiver loop, closes the port, closes every telemetry fan-out subscriber,
// and transitions to Disconnected. It is a no-op if already Disconnected. A
// stopped controller may be restarted.
func (c *MountController) Stop() error {
	if c.state.Get() == Disconnected {
		return nil
	}
	c.pulser.stop()
	if frame, err := encodeDisconnect(); err == nil {
		if err := c.writeFrame("Stop", frame); err != nil {
			monitoring.Logf("error: mount failed to send disconnect frame: %v", err)
		}
	}
	c.receiver.stop()
	c.hub.closeAll()
	c.state.Set(Disconnected)
	return nil
}

// ParkPosition emits PARK and optimistically annotates ParkingIssued.
func (c *MountController) ParkPosition() error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	frame, err := encodePark()
	if err != nil {
		return err
	}
	if err := c.writeFrame("ParkPosition", frame); err != nil {
		return err
	}
	c.setState(ParkingIssued)
	return nil
}

// GoTo emits GOTO; the resulting Slewing/Tracking transition is inferred
// from subsequent telemetry rather than annotated here.
func (c *MountController) GoTo(ra, dec float32) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	frame, err := encodeGoTo(ra, dec)
	if err != nil {
		return err
	}
	return c.writeFrame("GoTo", frame)
}

// Sync emits SYNC. Valid only while Tracking.
func (c *MountController) Sync(ra, dec float32) error {
	cur := c.state.Get()
	if cur != Tracking {
		return &StateViolation{Operation: "Sync", Required: Tracking, Actual: cur}
	}
	frame, err := encodeSync(ra, dec)
	if err != nil {
		return err
	}
	return c.writeFrame("Sync", frame)
}

// SetSiteLocation emits SET_SITE_LOCATION.
func (c *MountController) SetSiteLocation(lat, lon float32) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	frame, err := encodeSetSiteLocation(lat, lon)
	if err != nil {
		return err
	}
	return c.writeFrame("SetSiteLocation", frame)
}

// RequestSiteLocation emits GET_SITE_LOCATION and awaits a one-shot 0xFE
// reply via OnSiteLocationReceived / the telemetry fan-out.
func (c *MountController) RequestSiteLocation() error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	frame, err := encodeGetSiteLocation()
	if err != nil {
		return err
	}
	return c.writeFrame("RequestSiteLocation", frame)
}

// SetDateTime emits SET_DATE_TIME.
func (c *MountController) SetDateTime(year, month, day, hour, minute, second int) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	frame, err := encodeSetDateTime(year, month, day, hour, minute, second)
	if err != nil {
		return err
	}
	return c.writeFrame("SetDateTime", frame)
}

// StopMotion emits STOP_MOTION. Disallowed while Disconnected.
func (c *MountController) StopMotion() error {
	cur := c.state.Get()
	if cur == Disconnected {
		return &StateViolation{Operation: "StopMotion", Required: Unknown, Actual: cur}
	}
	frame, err := encodeStopMotion()
	if err != nil {
		return err
	}
	return c.writeFrame("StopMotion", frame)
}

// StartMotionToDirection instructs the pulser to begin emitting directional
// pulse frames at rate pulses/second. Valid only from Tracking.
func (c *MountController) StartMotionToDirection(dir Direction, rate int) error {
	cur := c.state.Get()
	if cur != Tracking {
		return &StateViolation{Operation: "StartMotionToDirection", Required: Tracking, Actual: cur}
	}
	if err := c.pulser.startMotionToDirection(dir, rate); err != nil {
		return err
	}
	c.setState(MoveWhileTracking)
	return nil
}

// StopMotionToDirection instructs the pulser to idle and returns to
// Tracking.
func (c *MountController) StopMotionToDirection() error {
	c.pulser.stopMotionToDirection()
	c.setState(Tracking)
	return nil
}

// GetPointingCoordinates returns the most recently received pointing
// coordinate (or the unknown sentinel if none has arrived yet).
func (c *MountController) GetPointingCoordinates() EquatorialCoordinate {
	return c.pointing.Get()
}

// GetTelescopeState returns the current inferred mount state.
func (c *MountController) GetTelescopeState() MountState {
	return c.state.Get()
}

// GetSiteLocation returns the most recently received site location.
func (c *MountController) GetSiteLocation() GeodeticCoordinate {
	return c.siteLocation.Get()
}

// Subscribe registers a telemetry fan-out subscriber.
func (c *MountController) Subscribe() (string, <-chan TelemetryEvent) {
	return c.hub.Subscribe()
}

// Unsubscribe removes a telemetry fan-out subscriber.
func (c *MountController) Unsubscribe(id string) {
	c.hub.Unsubscribe(id)
}

// ringSnapshot exposes the receiver's last-drained ring buffer contents, for
// the admin ring-hexdump route. It never touches the live buffer directly.
func (c *MountController) ringSnapshot() []byte {
	return c.receiver.ringSnapshot()
}

func (c *MountController) requireConnected() error {
	if c.state.Get() == Disconnected {
		return ErrNotConnected
	}
	return nil
}

func (c *MountController) setState(s MountState) {
	c.state.Set(s)
	c.hub.publish(TelemetryEvent{Kind: EventStateChanged, State: s})
}

func (c *MountController) writeFrame(op string, frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	n, err := c.port.Write(frame)
	if err != nil {
		return newTransportError(op, err)
	}
	if n != len(frame) {
		return newTransportError(op, errors.New("short write"))
	}
	return nil
}

func (c *MountController) emitMove(dir Direction) error {
	frame, err := encodeMove(dir)
	if err != nil {
		return err
	}
	return c.writeFrame("pulse-"+dir.String(), frame)
}

func (c *MountController) onOpenFailure(err error) {
	c.state.Set(Disconnected)
	monitoring.Logf("error: mount failed to open serial port: %v", err)
}

// onFrame dispatches a recognized decoded frame to the appropriate
// callback. Invoked synchronously on the receiver loop's goroutine.
func (c *MountController) onFrame(df DecodedFrame) {
	switch df.ID {
	case cmdPositionRpt:
		c.handlePointing(df.Pointing)
	case cmdSiteLocationRpt:
		c.handleSiteLocation(df.SiteLocation)
	}
}

func (c *MountController) handlePointing(coord EquatorialCoordinate) {
	prevCoord := c.pointing.Swap(coord)
	wasFirst := c.firstSample.Swap(false)

	dra, ddec := coord.delta(prevCoord)
	mag := magnitude(dra, ddec)

	prevState := c.state.Get()
	next := onTelemetry(prevState, mag, wasFirst)
	if next != prevState {
		c.setState(next)
	}

	c.hub.publish(TelemetryEvent{Kind: EventPointing, Pointing: coord})
	if c.observer != nil {
		c.observer.OnPointingCoordinatesReceived(coord.RA, coord.Dec)
	}
}

func (c *MountController) handleSiteLocation(loc GeodeticCoordinate) {
	c.siteLocation.Set(loc)
	c.hub.publish(TelemetryEvent{Kind: EventSiteLocation, SiteLocation: loc})
	if c.observer != nil {
		c.observer.OnSiteLocationReceived(loc.Lat, loc.Lon)
	}
}
