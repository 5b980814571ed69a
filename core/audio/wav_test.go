package audio

import (
	"bytes"
	"testing"
)

func TestWrapWAVRoundTripsPayload(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00}

	blob, err := WrapWAV(pcm, CaptureSampleRate)
	if err != nil {
		t.Fatalf("unexpected wrap error: %v", err)
	}

	payload, sampleRate, err := UnwrapWAV(blob)
	if err != nil {
		t.Fatalf("unexpected unwrap error: %v", err)
	}
	if sampleRate != CaptureSampleRate {
		t.Fatalf("expected sample rate %d, got %d", CaptureSampleRate, sampleRate)
	}
	if !bytes.Equal(payload, pcm) {
		t.Fatalf("expected payload %v, got %v", pcm, payload)
	}
}

func TestWrapWAVRejectsEmptyCapture(t *testing.T) {
	if _, err := WrapWAV(nil, CaptureSampleRate); err == nil {
		t.Fatalf("expected error for empty capture")
	}
}

func TestWrapWAVRejectsInvalidSampleRate(t *testing.T) {
	if _, err := WrapWAV([]byte{0x00, 0x00}, 0); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}

func TestUnwrapWAVRejectsForeignData(t *testing.T) {
	if _, _, err := UnwrapWAV(bytes.Repeat([]byte{0xAB}, 64)); err == nil {
		t.Fatalf("expected error for non-WAV data")
	}
}

func TestUnwrapWAVRejectsTruncatedPayload(t *testing.T) {
	blob, err := WrapWAV(make([]byte, 64), CaptureSampleRate)
	if err != nil {
		t.Fatalf("unexpected wrap error: %v", err)
	}

	if _, _, err := UnwrapWAV(blob[:len(blob)-10]); err == nil {
		t.Fatalf("expected error for truncated payload")
	}
}
