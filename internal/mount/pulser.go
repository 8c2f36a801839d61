package mount

import (
	"sync"
	"time"

	"github.com/kneo/indi-bresserexos2/internal/monitoring"
	"github.com/kneo/indi-bresserexos2/internal/timeutil"
)

// maxPulseRate is the sustained emission ceiling: at 9600 baud with 13-byte
// frames and half-duplex framing overhead the wire supports roughly 40
// frames/s, so the cap is set lower to leave receive headroom.
const maxPulseRate = 20

// motionPulser is the background pacer. It implements "move while
// tracking" as repeated single-shot direction frames, paced by a
// rendezvous: callers update the descriptor and signal a condition
// variable, and the pulser — if idle — wakes. This mirrors
// ExosIIMountControl::MotionControlThreadFunction in the original source
// (a mutex + condition variable pacing loop), generalized onto an injected
// Clock for deterministic tests.
type motionPulser struct {
	mu   sync.Mutex
	cond *sync.Cond

	descriptor motionDescriptor
	active     bool
	running    bool
	done       chan struct{}

	clock timeutil.Clock
	emit  func(Direction) error
}

func newMotionPulser(clock timeutil.Clock, emit func(Direction) error) *motionPulser {
	p := &motionPulser{clock: clock, emit: emit}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// start spawns the pulser's worker goroutine. It is a no-op if already
// running.
func (p *motionPulser) start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.done = make(chan struct{})
	p.mu.Unlock()
	go p.run()
}

// stop signals the worker to exit and joins it.
func (p *motionPulser) stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.active = false
	done := p.done
	p.cond.Signal()
	p.mu.Unlock()
	<-done
}

func (p *motionPulser) run() {
	defer close(p.done)
	for {
		p.mu.Lock()
		for !p.active && p.running {
			p.cond.Wait()
		}
		if !p.running {
			p.mu.Unlock()
			return
		}
		desc := p.descriptor
		p.mu.Unlock()

		if desc.Direction == DirectionNone || desc.PulsesPerSecond <= 0 {
			p.mu.Lock()
			p.active = false
			p.mu.Unlock()
			continue
		}

		if err := p.emit(desc.Direction); err != nil {
			monitoring.Logf("error: pulser failed to emit %s frame: %v", desc.Direction, err)
		}

		waitMs := 1000 / desc.PulsesPerSecond
		p.clock.Sleep(time.Duration(waitMs) * time.Millisecond)
	}
}

// startMotionToDirection updates the descriptor and wakes the pulser. rate
// must be positive; rates above maxPulseRate are clamped silently rather
// than rejected.
func (p *motionPulser) startMotionToDirection(dir Direction, rate int) error {
	if rate <= 0 {
		return &DomainError{Field: "pulses_per_second", Value: rate}
	}
	if rate > maxPulseRate {
		rate = maxPulseRate
	}
	p.mu.Lock()
	p.descriptor = motionDescriptor{Direction: dir, PulsesPerSecond: rate}
	p.active = true
	p.cond.Signal()
	p.mu.Unlock()
	return nil
}

// stopMotionToDirection idles the pulser without stopping its worker.
func (p *motionPulser) stopMotionToDirection() {
	p.mu.Lock()
	p.descriptor = motionDescriptor{}
	p.active = false
	p.cond.Signal()
	p.mu.Unlock()
}
