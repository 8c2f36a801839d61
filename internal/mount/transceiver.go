package mount

import (
	"time"

	"github.com/kneo/indi-bresserexos2/internal/monitoring"
	"github.com/kneo/indi-bresserexos2/internal/timeutil"
)

// receiverCadence is the sleep-then-drain period of the transceiver loop.
const receiverCadence = 500 * time.Millisecond

// receiverLoop is the background worker: it owns the port for reading, owns
// the ring buffer exclusively, and dispatches recognized frames
// synchronously on its own goroutine. Grounded on Monitor(ctx)'s
// goroutine-plus-select shape (internal/serialmux/serialmux.go), restructured
// around a non-blocking byte-at-a-time read contract instead of
// bufio.Scanner line framing.
type receiverLoop struct {
	port   SerialPort
	buffer ringBuffer
	clock  timeutil.Clock

	running *guardedCell[bool]
	done    chan struct{}

	onFrame       func(DecodedFrame)
	onOpenFailure func(error)

	lastSnapshot *guardedCell[[]byte]
}

func newReceiverLoop(port SerialPort, clock timeutil.Clock, onFrame func(DecodedFrame), onOpenFailure func(error)) *receiverLoop {
	return &receiverLoop{
		port:          port,
		clock:         clock,
		running:       newGuardedCell(false),
		onFrame:       onFrame,
		onOpenFailure: onOpenFailure,
		lastSnapshot:  newGuardedCell[[]byte](nil),
	}
}

// start opens the port and spawns the worker goroutine. An open failure
// terminates immediately and invokes onOpenFailure instead of starting the
// loop.
func (r *receiverLoop) start() error {
	if err := r.port.Open(); err != nil {
		r.onOpenFailure(err)
		return err
	}
	r.running.Set(true)
	r.done = make(chan struct{})
	go r.run()
	return nil
}

// stop requests the worker to exit, joins it, flushes the port, and closes
// it.
func (r *receiverLoop) stop() {
	r.running.Set(false)
	if r.done != nil {
		<-r.done
	}
	if err := r.port.Flush(); err != nil {
		monitoring.Logf("error: mount receiver flush failed: %v", err)
	}
	r.port.Close()
}

func (r *receiverLoop) run() {
	defer close(r.done)
	for r.running.Get() {
		r.clock.Sleep(receiverCadence)
		if !r.running.Get() {
			return
		}
		r.drain()
		r.dispatchFrames()
		r.lastSnapshot.Set(r.buffer.snapshot())
	}
}

func (r *receiverLoop) drain() {
	for {
		b, err := r.port.ReadByte()
		if err != nil {
			monitoring.Logf("error: mount receiver read failed: %v", err)
			return
		}
		if b < 0 {
			return
		}
		if err := r.buffer.pushBack(byte(b)); err != nil {
			monitoring.Logf("error: mount receiver buffer overflow, dropping byte")
		}
		r.dispatchFrames()
	}
}

func (r *receiverLoop) dispatchFrames() {
	for {
		df, ok := r.buffer.tryExtractFrame()
		if !ok {
			return
		}
		if df.Recognized {
			r.onFrame(df)
		}
	}
}

// ringSnapshot returns the buffer contents as of the last completed drain
// cycle, for the admin ring-hexdump route.
func (r *receiverLoop) ringSnapshot() []byte {
	return r.lastSnapshot.Get()
}
