package mount

import (
	"sync"
	"time"
)

// LoopbackFake is an in-memory SerialPort for smoke-testing the CLI and
// admin surface without real hardware. It periodically synthesizes a
// stationary POSITION_REPORT frame so the state machine has something to
// infer from, modeled on NewMockSerialMux's background goroutine writing a
// fixed mock line on a ticker (internal/serialmux/mock.go).
type LoopbackFake struct {
	port *fakeSerialPort

	mu      sync.Mutex
	stop    chan struct{}
	stopped bool
}

// NewLoopbackFake constructs a LoopbackFake. The coordinate it reports stays
// fixed, so after the first two samples the inferred state settles to
// Parked.
func NewLoopbackFake() *LoopbackFake {
	return &LoopbackFake{port: newFakeSerialPort()}
}

func (l *LoopbackFake) Open() error {
	if err := l.port.Open(); err != nil {
		return err
	}
	l.mu.Lock()
	l.stop = make(chan struct{})
	l.stopped = false
	l.mu.Unlock()

	go l.simulate()
	return nil
}

func (l *LoopbackFake) simulate() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	var payload [8]byte
	putFloat32LE(payload[0:4], 0)
	putFloat32LE(payload[4:8], 0)
	reportFrame := newFrame(cmdPositionRpt, payload)

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			stopped := l.stopped
			l.mu.Unlock()
			if stopped {
				return
			}
			l.port.feed(reportFrame)
		case <-l.stop:
			return
		}
	}
}

func (l *LoopbackFake) Close() error {
	l.mu.Lock()
	if !l.stopped {
		l.stopped = true
		close(l.stop)
	}
	l.mu.Unlock()
	return l.port.Close()
}

func (l *LoopbackFake) IsOpen() bool                { return l.port.IsOpen() }
func (l *LoopbackFake) BytesToRead() (int, error)   { return l.port.BytesToRead() }
func (l *LoopbackFake) ReadByte() (int16, error)    { return l.port.ReadByte() }
func (l *LoopbackFake) Write(p []byte) (int, error) { return l.port.Write(p) }
func (l *LoopbackFake) Flush() error                { return l.port.Flush() }
