// Command interview is a terminal client for voice-driven mock interviews.
// It wires the device backend and the interview service client into the
// turn orchestrator and drives everything from a bubbletea UI.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/voxhire/interview-core/core"
	"github.com/voxhire/interview-core/core/audio/miniaudio"
	"github.com/voxhire/interview-core/core/audio/portaudio"
	"github.com/voxhire/interview-core/core/interviews/remote"
	"github.com/voxhire/interview-core/internal/config"
)

type audioBackend interface {
	orchestration.AudioCapture
	orchestration.AudioPlayback
	Close()
}

func newAudioBackend(name string) (audioBackend, error) {
	switch name {
	case "portaudio":
		return portaudio.NewClient()
	case "miniaudio", "":
		return miniaudio.NewClient()
	default:
		return nil, fmt.Errorf("unknown audio backend %q", name)
	}
}

func run() error {
	cfg := config.Load()

	backend, err := newAudioBackend(cfg.AudioBackend)
	if err != nil {
		return fmt.Errorf("failed to open audio backend: %w", err)
	}
	defer backend.Close()

	client := remote.NewClient(cfg.ServiceURL)
	orchestrator := orchestration.NewOrchestrator(
		orchestration.WithAudioCapture(backend),
		orchestration.WithAudioPlayback(backend),
		orchestration.WithSessionClient(client),
		orchestration.WithRearmDelay(cfg.RearmDelay),
	)
	defer orchestrator.Close()

	app := &appContext{
		orchestrator:   orchestrator,
		client:         client,
		transcriptPath: cfg.TranscriptPath,
	}
	program := tea.NewProgram(newModel(app), tea.WithAltScreen())
	app.send = program.Send

	_, err = program.Run()
	return err
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "interview: %v\n", err)
		os.Exit(1)
	}
}
