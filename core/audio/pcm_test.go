package audio

import (
	"errors"
	"testing"
)

func TestValidatePCM16RejectsEmptyPayload(t *testing.T) {
	err := ValidatePCM16(nil)
	if err == nil {
		t.Fatalf("expected error for empty payload")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %T", err)
	}
}

func TestValidatePCM16RejectsOddByteCount(t *testing.T) {
	if err := ValidatePCM16([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatalf("expected error for odd byte count")
	}
}

func TestDecodePCM16ReadsLittleEndianSamples(t *testing.T) {
	samples, err := DecodePCM16([]byte{0x00, 0x00, 0xFF, 0x7F, 0x00, 0x80})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	want := []int16{0, 32767, -32768}
	if len(samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(samples))
	}
	for i, sample := range want {
		if samples[i] != sample {
			t.Fatalf("expected sample %d to be %d, got %d", i, sample, samples[i])
		}
	}
}

func TestFloat32SamplesNormalizesFullScale(t *testing.T) {
	normalized, err := Float32Samples([]byte{0x00, 0x80, 0x00, 0x00})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if normalized[0] != -1 {
		t.Fatalf("expected negative full scale to normalize to -1, got %f", normalized[0])
	}
	if normalized[1] != 0 {
		t.Fatalf("expected silence to normalize to 0, got %f", normalized[1])
	}
}

func TestDurationUsesSampleRate(t *testing.T) {
	pcm := make([]byte, PlaybackSampleRate*2) // one second of mono PCM16
	if got := Duration(pcm, PlaybackSampleRate); got != 1 {
		t.Fatalf("expected one second of audio, got %f", got)
	}
	if got := Duration(pcm, 0); got != 0 {
		t.Fatalf("expected zero duration for invalid rate, got %f", got)
	}
}
