package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INTERVIEW_SERVICE_URL", "")
	t.Setenv("AUDIO_BACKEND", "")
	t.Setenv("REARM_DELAY_MS", "")
	t.Setenv("TRANSCRIPT_PATH", "")

	cfg := Load()

	if cfg.ServiceURL != "http://localhost:8000" {
		t.Fatalf("expected default service URL, got %q", cfg.ServiceURL)
	}
	if cfg.AudioBackend != "miniaudio" {
		t.Fatalf("expected default backend miniaudio, got %q", cfg.AudioBackend)
	}
	if cfg.RearmDelay != 500*time.Millisecond {
		t.Fatalf("expected default rearm delay 500ms, got %v", cfg.RearmDelay)
	}
	if cfg.TranscriptPath != "interview_transcript.txt" {
		t.Fatalf("expected default transcript path, got %q", cfg.TranscriptPath)
	}
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("INTERVIEW_SERVICE_URL", "http://interviews.internal:9000")
	t.Setenv("AUDIO_BACKEND", "portaudio")
	t.Setenv("REARM_DELAY_MS", "250")

	cfg := Load()

	if cfg.ServiceURL != "http://interviews.internal:9000" {
		t.Fatalf("expected overridden service URL, got %q", cfg.ServiceURL)
	}
	if cfg.AudioBackend != "portaudio" {
		t.Fatalf("expected portaudio backend, got %q", cfg.AudioBackend)
	}
	if cfg.RearmDelay != 250*time.Millisecond {
		t.Fatalf("expected 250ms rearm delay, got %v", cfg.RearmDelay)
	}
}

func TestLoadIgnoresInvalidRearmDelay(t *testing.T) {
	t.Setenv("REARM_DELAY_MS", "soon")

	cfg := Load()

	if cfg.RearmDelay != 500*time.Millisecond {
		t.Fatalf("expected fallback rearm delay 500ms, got %v", cfg.RearmDelay)
	}
}
