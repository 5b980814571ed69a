package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration for the interview client.
type Config struct {
	ServiceURL string
	// AudioBackend selects the device backend: "miniaudio" or "portaudio".
	AudioBackend string
	// RearmDelay is the pause between the interviewer finishing and the
	// microphone re-arming.
	RearmDelay time.Duration
	// TranscriptPath is where the finished transcript is written.
	TranscriptPath string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded")
	}

	serviceURL := os.Getenv("INTERVIEW_SERVICE_URL")
	if serviceURL == "" {
		serviceURL = "http://localhost:8000"
	}

	backend := os.Getenv("AUDIO_BACKEND")
	if backend == "" {
		backend = "miniaudio"
	}

	rearmDelay := 500 * time.Millisecond
	if raw := os.Getenv("REARM_DELAY_MS"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms >= 0 {
			rearmDelay = time.Duration(ms) * time.Millisecond
		} else {
			log.Printf("Warning: ignoring invalid REARM_DELAY_MS=%q", raw)
		}
	}

	transcriptPath := os.Getenv("TRANSCRIPT_PATH")
	if transcriptPath == "" {
		transcriptPath = "interview_transcript.txt"
	}

	return Config{
		ServiceURL:     serviceURL,
		AudioBackend:   backend,
		RearmDelay:     rearmDelay,
		TranscriptPath: transcriptPath,
	}
}
