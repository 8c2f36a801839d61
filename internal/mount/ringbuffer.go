package mount

// ringBufferCapacity is the bounded size of the receive ring buffer.
const ringBufferCapacity = 256

// ringBuffer is a bounded circular byte buffer owned exclusively by the
// receiver loop (single writer, single reader, same goroutine). It
// accumulates raw serial bytes and locates frame boundaries by header sync,
// discarding noise ahead of a recognized header.
type ringBuffer struct {
	buf   [ringBufferCapacity]byte
	head  int
	count int
}

// pushBack appends a single byte. It returns ErrOverflow when the buffer is
// already full; the caller drops the byte and continues — the framer will
// resynchronize on the next header.
func (r *ringBuffer) pushBack(b byte) error {
	if r.count == ringBufferCapacity {
		return ErrOverflow
	}
	r.buf[(r.head+r.count)%ringBufferCapacity] = b
	r.count++
	return nil
}

func (r *ringBuffer) at(i int) byte {
	return r.buf[(r.head+i)%ringBufferCapacity]
}

func (r *ringBuffer) dropFront(n int) {
	r.head = (r.head + n) % ringBufferCapacity
	r.count -= n
}

// snapshot returns a copy of the current logical contents, front to back.
// Used only for diagnostics (the admin ring-hexdump route); never mutated.
func (r *ringBuffer) snapshot() []byte {
	out := make([]byte, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.at(i)
	}
	return out
}

// findHeader returns the index of the first full occurrence of the 4-byte
// frame header within the logical buffer, or -1 if none is present.
func (r *ringBuffer) findHeader() int {
	if r.count < len(frameHeader) {
		return -1
	}
	for i := 0; i <= r.count-len(frameHeader); i++ {
		match := true
		for j, hb := range frameHeader {
			if r.at(i+j) != hb {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// tryExtractFrame finds the header, discards any preceding noise, and if a
// full frame is present, decodes and consumes it. Call repeatedly after any
// append until it returns ok=false to drain every complete frame currently
// buffered.
func (r *ringBuffer) tryExtractFrame() (DecodedFrame, bool) {
	idx := r.findHeader()
	if idx < 0 {
		// No header anywhere in the buffer. Keep only the last few bytes —
		// they might be the start of a header split across reads — and
		// discard the rest as noise.
		keep := len(frameHeader) - 1
		if r.count > keep {
			r.dropFront(r.count - keep)
		}
		return DecodedFrame{}, false
	}
	if idx > 0 {
		r.dropFront(idx)
	}
	if r.count < FrameSize {
		// Header found but the frame is not fully buffered yet.
		return DecodedFrame{}, false
	}
	raw := make([]byte, FrameSize)
	for i := 0; i < FrameSize; i++ {
		raw[i] = r.at(i)
	}
	r.dropFront(FrameSize)
	df, _ := decodeFrame(raw)
	return df, true
}
