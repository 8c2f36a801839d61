package mount

import "time"

// SerialPort is the byte-level capability the mount controller depends on.
// It is injected so the controller can run against either the production
// go.bug.st/serial adapter or a deterministic fake in tests, narrowed to a
// byte-oriented non-blocking shape rather than a plain io.ReadWriter.
type SerialPort interface {
	Open() error
	Close() error
	IsOpen() bool

	// BytesToRead reports a best-effort count of bytes available to read
	// without blocking. Implementations that cannot determine an exact
	// count may return a conservative estimate.
	BytesToRead() (int, error)

	// ReadByte returns the next available byte, or -1 if none is currently
	// available. It must not block for longer than a short internal
	// deadline.
	ReadByte() (int16, error)

	Write(p []byte) (int, error)
	Flush() error
}

// SerialPortOpener constructs a SerialPort for a given device path. Nothing
// in this module takes one: the production entrypoint (cmd/mountctl) calls
// NewRealSerialPort directly and tests construct fakes directly.
type SerialPortOpener func(path string) (SerialPort, error)

// defaultReadTimeout bounds how long a single ReadByte call may block
// underneath, so the receiver loop's cadence is never starved by a silent
// line.
const defaultReadTimeout = 50 * time.Millisecond
