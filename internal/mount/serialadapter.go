package mount

import (
	"errors"
	"io"
	"sync"

	"go.bug.st/serial"
)

// realSerialPort adapts go.bug.st/serial.Port (the same dependency the
// teacher uses for its own radar transport, see internal/serialmux/factory.go)
// to the SerialPort capability interface. go.bug.st/serial exposes a
// blocking io.Reader/io.Writer with no native byte-availability check, so a
// short per-call read deadline plus single-byte reads stand in for the
// spec's BytesToRead/ReadByte primitives.
type realSerialPort struct {
	path string
	mode *serial.Mode

	mu   sync.Mutex
	port serial.Port
}

// NewRealSerialPort builds a production SerialPort for the given device
// path at the mount's fixed 9600 8N1 configuration.
func NewRealSerialPort(path string) *realSerialPort {
	return &realSerialPort{
		path: path,
		mode: &serial.Mode{
			BaudRate: 9600,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
	}
}

func (p *realSerialPort) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	port, err := serial.Open(p.path, p.mode)
	if err != nil {
		return err
	}
	if err := port.SetReadTimeout(defaultReadTimeout); err != nil {
		port.Close()
		return err
	}
	p.port = port
	return nil
}

func (p *realSerialPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}

func (p *realSerialPort) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.port != nil
}

func (p *realSerialPort) BytesToRead() (int, error) {
	// go.bug.st/serial does not expose an exact pending-byte count; callers
	// should drain with ReadByte until it returns -1 rather than relying on
	// this value for anything but a coarse "maybe more data" hint.
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return 0, ErrNotConnected
	}
	return 1, nil
}

func (p *realSerialPort) ReadByte() (int16, error) {
	p.mu.Lock()
	port := p.port
	p.mu.Unlock()
	if port == nil {
		return -1, ErrNotConnected
	}
	var buf [1]byte
	n, err := port.Read(buf[:])
	if err != nil {
		if errors.Is(err, io.EOF) {
			return -1, nil
		}
		return -1, err
	}
	if n == 0 {
		return -1, nil
	}
	return int16(buf[0]), nil
}

func (p *realSerialPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	port := p.port
	p.mu.Unlock()
	if port == nil {
		return 0, ErrNotConnected
	}
	return port.Write(b)
}

func (p *realSerialPort) Flush() error {
	p.mu.Lock()
	port := p.port
	p.mu.Unlock()
	if port == nil {
		return ErrNotConnected
	}
	if err := port.ResetInputBuffer(); err != nil {
		return err
	}
	return port.ResetOutputBuffer()
}
