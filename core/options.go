package orchestration

import (
	"context"
	"time"

	"github.com/voxhire/interview-core/core/audio"
	"github.com/voxhire/interview-core/core/interviews"
)

// AudioCapture is the microphone side of a device backend.
type AudioCapture interface {
	CaptureEncodingInfo() audio.EncodingInfo
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

// AudioPlayback is the output side of a device backend. Mark queues a
// callback behind the buffered audio; it fires when everything before it has
// played, which is how natural completion is observed.
type AudioPlayback interface {
	PlaybackEncodingInfo() audio.EncodingInfo
	SendAudio(audio []byte) error
	Mark(mark string, callback func(string)) error
	ClearBuffer()
}

// SessionClient performs the four exchanges with the interview service.
type SessionClient interface {
	Start(ctx context.Context, cfg interviews.SetupConfig) (*interviews.StartResult, error)
	Respond(ctx context.Context, sessionID string, capture []byte) (*interviews.RespondResult, error)
	End(ctx context.Context, sessionID string) (*interviews.EndResult, error)
	Analyze(ctx context.Context, sessionID string) (*interviews.Analysis, error)
}

type OrchestratorOption func(*Orchestrator)

func WithAudioCapture(client AudioCapture) OrchestratorOption {
	return func(o *Orchestrator) { o.input.set(client) }
}

func WithAudioPlayback(client AudioPlayback) OrchestratorOption {
	return func(o *Orchestrator) { o.output.set(client) }
}

func WithSessionClient(client SessionClient) OrchestratorOption {
	return func(o *Orchestrator) { o.client = client }
}

// WithRearmDelay overrides the pause between the interviewer finishing and
// the microphone re-arming.
func WithRearmDelay(delay time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if delay >= 0 {
			o.rearmDelay = delay
		}
	}
}

// WithMinCaptureDuration overrides how much audio a capture must hold before
// it is worth a respond exchange.
func WithMinCaptureDuration(duration time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if duration >= 0 {
			o.minCaptureDuration = duration
		}
	}
}

type runCallbacks struct {
	onStateChanged    func(state TurnState)
	onTranscriptEntry func(entry interviews.TranscriptEntry)
	onProgress        func(progress interviews.Progress)
	onEndPrompt       func()
	onCompletion      func(completion interviews.Completion)
	onError           func(err error)
}

type RunOption func(*runCallbacks)

// WithStateChangedCallback registers a callback for turn-state transitions.
func WithStateChangedCallback(callback func(state TurnState)) RunOption {
	return func(c *runCallbacks) { c.onStateChanged = callback }
}

// WithTranscriptEntryCallback registers a callback for each entry appended
// to the transcript, in conversational order.
func WithTranscriptEntryCallback(callback func(entry interviews.TranscriptEntry)) RunOption {
	return func(c *runCallbacks) { c.onTranscriptEntry = callback }
}

// WithProgressCallback registers a callback for each replaced progress
// snapshot.
func WithProgressCallback(callback func(progress interviews.Progress)) RunOption {
	return func(c *runCallbacks) { c.onProgress = callback }
}

// WithEndPromptCallback registers a callback for the non-blocking advisory
// offering early termination. While the prompt is pending, auto re-arm is
// suppressed; the caller answers with EndInterview or DismissEndPrompt.
func WithEndPromptCallback(callback func()) RunOption {
	return func(c *runCallbacks) { c.onEndPrompt = callback }
}

// WithCompletionCallback registers a callback for the completion hand-off:
// the finished transcript and final progress snapshot.
func WithCompletionCallback(callback func(completion interviews.Completion)) RunOption {
	return func(c *runCallbacks) { c.onCompletion = callback }
}

// WithErrorCallback registers a callback for turn failures that leave the
// machine idle awaiting user action.
func WithErrorCallback(callback func(err error)) RunOption {
	return func(c *runCallbacks) { c.onError = callback }
}
