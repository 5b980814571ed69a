package orchestration

import (
	"bytes"
	"context"
	"testing"

	"github.com/voxhire/interview-core/core/audio"
)

func TestAudioInputCollectsChunksIntoWAV(t *testing.T) {
	capture := &fakeCapture{}
	var input audioInput
	input.set(capture)

	handle, err := input.begin(context.Background())
	if err != nil {
		t.Fatalf("expected begin to succeed, got %v", err)
	}

	capture.feed([]byte{0x01, 0x00, 0x02, 0x00})
	capture.feed([]byte{0x03, 0x00})

	blob, duration, err := input.end(handle)
	if err != nil {
		t.Fatalf("expected end to succeed, got %v", err)
	}
	if duration <= 0 {
		t.Fatalf("expected positive capture duration, got %v", duration)
	}

	pcm, sampleRate, err := audio.UnwrapWAV(blob)
	if err != nil {
		t.Fatalf("expected a valid WAV blob, got %v", err)
	}
	if sampleRate != audio.CaptureSampleRate {
		t.Fatalf("expected sample rate %d, got %d", audio.CaptureSampleRate, sampleRate)
	}
	if !bytes.Equal(pcm, []byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00}) {
		t.Fatalf("unexpected captured audio %v", pcm)
	}
	if capture.stopped != 1 {
		t.Fatalf("expected capture device released once, got %d", capture.stopped)
	}
}

func TestAudioInputRejectsConcurrentCaptures(t *testing.T) {
	capture := &fakeCapture{}
	var input audioInput
	input.set(capture)

	handle, err := input.begin(context.Background())
	if err != nil {
		t.Fatalf("expected begin to succeed, got %v", err)
	}
	if _, err := input.begin(context.Background()); err == nil {
		t.Fatal("expected a second begin to fail while capture is active")
	}
	input.abort(handle)

	if _, err := input.begin(context.Background()); err != nil {
		t.Fatalf("expected begin after abort to succeed, got %v", err)
	}
}

func TestAudioInputEmptyCaptureYieldsNoBlob(t *testing.T) {
	capture := &fakeCapture{}
	var input audioInput
	input.set(capture)

	handle, err := input.begin(context.Background())
	if err != nil {
		t.Fatalf("expected begin to succeed, got %v", err)
	}

	blob, duration, err := input.end(handle)
	if err != nil {
		t.Fatalf("expected end to succeed, got %v", err)
	}
	if blob != nil {
		t.Fatalf("expected no blob for an empty capture, got %d bytes", len(blob))
	}
	if duration != 0 {
		t.Fatalf("expected zero duration for an empty capture, got %v", duration)
	}
}

func TestAudioInputEndRejectsStaleHandle(t *testing.T) {
	capture := &fakeCapture{}
	var input audioInput
	input.set(capture)

	handle, err := input.begin(context.Background())
	if err != nil {
		t.Fatalf("expected begin to succeed, got %v", err)
	}
	input.abort(handle)

	if _, _, err := input.end(handle); err == nil {
		t.Fatal("expected end with an aborted handle to fail")
	}
}

func TestAudioInputChunksAfterFlushAreDropped(t *testing.T) {
	capture := &fakeCapture{}
	var input audioInput
	input.set(capture)

	handle, err := input.begin(context.Background())
	if err != nil {
		t.Fatalf("expected begin to succeed, got %v", err)
	}
	capture.feed([]byte{0x01, 0x00})
	handle.append([]byte{0x02, 0x00})

	pcm := handle.flush()
	handle.append([]byte{0x03, 0x00})

	if len(pcm) != 4 {
		t.Fatalf("expected 4 flushed bytes, got %d", len(pcm))
	}
	if handle.isRecording() {
		t.Fatal("expected handle to stop recording after flush")
	}
}
