package mount

import (
	"encoding/binary"
	"math"
	"testing"
)

func float32LEBytes(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

// S1: encode GOTO(ra=6.0, dec=90.0).
func TestEncodeGoTo_S1(t *testing.T) {
	frame, err := encodeGoTo(6.0, 90.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frame) != FrameSize {
		t.Fatalf("frame length = %d, want %d", len(frame), FrameSize)
	}
	wantPrefix := []byte{0x55, 0xAA, 0x01, 0x09, 0x23}
	for i, b := range wantPrefix {
		if frame[i] != b {
			t.Fatalf("byte %d = %#x, want %#x", i, frame[i], b)
		}
	}
	if got, want := frame[5:9], float32LEBytes(6.0); !bytesEqual(got, want) {
		t.Errorf("ra bytes = %x, want %x", got, want)
	}
	if got, want := frame[9:13], float32LEBytes(90.0); !bytesEqual(got, want) {
		t.Errorf("dec bytes = %x, want %x", got, want)
	}
}

// S2: encode SET_SITE_LOCATION(52.0, 13.0).
func TestEncodeSetSiteLocation_S2(t *testing.T) {
	frame, err := encodeSetSiteLocation(52.0, 13.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame[4] != 0x25 {
		t.Fatalf("id byte = %#x, want 0x25", frame[4])
	}
	if got, want := frame[5:9], float32LEBytes(52.0); !bytesEqual(got, want) {
		t.Errorf("lat bytes = %x, want %x", got, want)
	}
	if got, want := frame[9:13], float32LEBytes(13.0); !bytesEqual(got, want) {
		t.Errorf("lon bytes = %x, want %x", got, want)
	}
}

// S3: encode SET_DATE_TIME(2020,12,12,12,12,0).
func TestEncodeSetDateTime_S3(t *testing.T) {
	frame, err := encodeSetDateTime(2020, 12, 12, 12, 12, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame[4] != 0x26 {
		t.Fatalf("id byte = %#x, want 0x26", frame[4])
	}
	want := []byte{0xE4, 0x07, 0x0C, 0x0C, 0x0C, 0x0C, 0x00, 0x00}
	if got := frame[5:13]; !bytesEqual(got, want) {
		t.Errorf("payload = % x, want % x", got, want)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Property 1: frame round-trip for in-range arguments.
func TestFrameRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		ra, dec  float32
	}{
		{"zero", 0, 0},
		{"mid", 12.5, -45.25},
		{"upperish", 23.999, 89.999},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var payload [8]byte
			putFloat32LE(payload[0:4], c.ra)
			putFloat32LE(payload[4:8], c.dec)
			raw := newFrame(cmdPositionRpt, payload)
			df, ok := decodeFrame(raw)
			if !ok || !df.Recognized {
				t.Fatalf("decodeFrame ok=%v recognized=%v", ok, df.Recognized)
			}
			if math.Abs(float64(df.Pointing.RA-c.ra)) > 1e-6 {
				t.Errorf("RA = %v, want %v", df.Pointing.RA, c.ra)
			}
			if math.Abs(float64(df.Pointing.Dec-c.dec)) > 1e-6 {
				t.Errorf("Dec = %v, want %v", df.Pointing.Dec, c.dec)
			}
		})
	}
}

// Property 2: domain rejection for out-of-range arguments.
func TestDomainRejection(t *testing.T) {
	if _, err := encodeGoTo(24.0, 0); err == nil {
		t.Error("expected error for ra=24.0 (out of [0,24))")
	}
	if _, err := encodeGoTo(0, 90.1); err == nil {
		t.Error("expected error for dec=90.1")
	}
	if _, err := encodeSetSiteLocation(-90.1, 0); err == nil {
		t.Error("expected error for lat=-90.1")
	}
	if _, err := encodeSetSiteLocation(0, 180.1); err == nil {
		t.Error("expected error for lon=180.1")
	}
	if _, err := encodeSetDateTime(2020, 13, 1, 0, 0, 0); err == nil {
		t.Error("expected error for month=13")
	}
	if _, err := encodeSetDateTime(2020, 1, 32, 0, 0, 0); err == nil {
		t.Error("expected error for day=32")
	}
	var de *DomainError
	_, err := encodeGoTo(24.0, 0)
	if !asDomainError(err, &de) {
		t.Errorf("expected *DomainError, got %T", err)
	}
}

func asDomainError(err error, target **DomainError) bool {
	de, ok := err.(*DomainError)
	if ok {
		*target = de
	}
	return ok
}
