package mount

import "testing"

func positionReportBytes(ra, dec float32) []byte {
	var payload [8]byte
	putFloat32LE(payload[0:4], ra)
	putFloat32LE(payload[4:8], dec)
	return newFrame(cmdPositionRpt, payload)
}

// S4: noise prefix, one frame, trailing noise -> exactly one callback.
func TestRingBuffer_S4(t *testing.T) {
	var rb ringBuffer
	stream := append([]byte{0x00}, positionReportBytes(1.5, 45.0)...)
	stream = append(stream, 0xDE, 0xAD)

	for _, b := range stream {
		if err := rb.pushBack(b); err != nil {
			t.Fatalf("pushBack: %v", err)
		}
	}

	df, ok := rb.tryExtractFrame()
	if !ok || !df.Recognized {
		t.Fatalf("first extract: ok=%v recognized=%v", ok, df.Recognized)
	}
	if df.Pointing.RA != 1.5 || df.Pointing.Dec != 45.0 {
		t.Errorf("pointing = %+v, want {1.5 45}", df.Pointing)
	}

	if _, ok := rb.tryExtractFrame(); ok {
		t.Error("expected no further frames after trailing noise")
	}
}

// Property 3: arbitrary noise prefix and trailing bytes around one frame.
func TestRingBuffer_FramingResilience(t *testing.T) {
	noisePrefixes := [][]byte{
		{},
		{0x01},
		{0x55, 0x00, 0xAA},
		make([]byte, 200),
	}
	for _, noise := range noisePrefixes {
		var rb ringBuffer
		frame := positionReportBytes(3.0, -10.0)
		stream := append(append([]byte{}, noise...), frame...)
		stream = append(stream, 0x01, 0x02, 0x03)

		for _, b := range stream {
			rb.pushBack(b)
		}
		df, ok := rb.tryExtractFrame()
		if !ok || !df.Recognized {
			t.Fatalf("noise len %d: ok=%v recognized=%v", len(noise), ok, df.Recognized)
		}
		if df.Pointing.RA != 3.0 || df.Pointing.Dec != -10.0 {
			t.Errorf("noise len %d: pointing = %+v", len(noise), df.Pointing)
		}
	}
}

// Property 4: a valid frame split across arbitrary chunk boundaries decodes
// exactly once.
func TestRingBuffer_PartialFrameSafety(t *testing.T) {
	frame := positionReportBytes(7.25, 33.0)
	splits := [][]int{
		{1, 12},
		{4, 4, 5},
		{13},
		{0, 13},
	}
	for _, split := range splits {
		var rb ringBuffer
		pos := 0
		for _, n := range split {
			for i := 0; i < n; i++ {
				rb.pushBack(frame[pos])
				pos++
			}
			if df, ok := rb.tryExtractFrame(); ok {
				// Only the final chunk should ever complete the frame.
				if pos != len(frame) {
					t.Fatalf("split %v: frame completed early at pos %d", split, pos)
				}
				if !df.Recognized || df.Pointing.RA != 7.25 {
					t.Fatalf("split %v: df = %+v", split, df)
				}
			}
		}
		if pos != len(frame) {
			t.Fatalf("split %v did not consume whole frame: pos=%d", split, pos)
		}
	}
}

func TestRingBuffer_Overflow(t *testing.T) {
	var rb ringBuffer
	for i := 0; i < ringBufferCapacity; i++ {
		if err := rb.pushBack(0xAA); err != nil {
			t.Fatalf("unexpected overflow at byte %d: %v", i, err)
		}
	}
	if err := rb.pushBack(0xAA); err != ErrOverflow {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}
