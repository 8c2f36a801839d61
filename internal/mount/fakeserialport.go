package mount

import (
	"bytes"
	"sync"
)

// fakeSerialPort is a deterministic in-memory SerialPort for tests, adapted
// from TestableSerialPort (internal/serialmux/mock.go) to a non-blocking
// byte-oriented contract: ReadByte returns -1 rather than blocking when the
// read buffer is empty.
type fakeSerialPort struct {
	mu sync.Mutex

	readBuffer  bytes.Buffer
	writeBuffer bytes.Buffer

	opened bool
	closed bool

	openErr  error
	readErr  error
	writeErr error

	writeCalls int
	readCalls  int
	flushCalls int
}

func newFakeSerialPort() *fakeSerialPort {
	return &fakeSerialPort{}
}

func (f *fakeSerialPort) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = true
	f.closed = false
	return nil
}

func (f *fakeSerialPort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.opened = false
	return nil
}

func (f *fakeSerialPort) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened && !f.closed
}

func (f *fakeSerialPort) BytesToRead() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readBuffer.Len(), nil
}

func (f *fakeSerialPort) ReadByte() (int16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls++
	if f.readErr != nil {
		err := f.readErr
		f.readErr = nil
		return -1, err
	}
	b, err := f.readBuffer.ReadByte()
	if err != nil {
		return -1, nil
	}
	return int16(b), nil
}

func (f *fakeSerialPort) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	if f.writeErr != nil {
		err := f.writeErr
		f.writeErr = nil
		return 0, err
	}
	return f.writeBuffer.Write(p)
}

func (f *fakeSerialPort) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCalls++
	return nil
}

// flushCount returns how many times Flush has been called so far.
func (f *fakeSerialPort) flushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushCalls
}

// feed appends bytes to be returned by future ReadByte calls, simulating
// inbound telemetry arriving on the wire.
func (f *fakeSerialPort) feed(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readBuffer.Write(b)
}

// written returns a copy of everything written to the port so far.
func (f *fakeSerialPort) written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, f.writeBuffer.Len())
	copy(out, f.writeBuffer.Bytes())
	return out
}
