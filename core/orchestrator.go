// Package orchestration coordinates one spoken interview session: it owns
// the turn state machine, the microphone and playback facades, the local
// transcript, and the serialized exchanges with the interview service.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/voxhire/interview-core/core/interviews"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRearmDelay         = 500 * time.Millisecond
	defaultMinCaptureDuration = time.Second
)

// ErrCaptureTooShort is returned when a stopped capture holds too little
// audio to be worth a respond exchange. The machine returns to idle and the
// candidate's turn stays open.
var ErrCaptureTooShort = errors.New("capture too short to process")

// session is the process-scoped context of one interview: created by a
// successful start exchange, discarded at the completion hand-off.
type session struct {
	id         string
	progress   interviews.Progress
	transcript transcript
}

// Orchestrator is the turn state machine. It is the sole writer of TurnState
// and the sole caller into the capture and playback facades, so device
// mutations are totally ordered. Service calls are serialized per session:
// a new respond exchange is only issued from the processing state, which is
// entered at most once at a time.
type Orchestrator struct {
	client SessionClient
	input  audioInput
	output audioOutput

	rearmDelay         time.Duration
	minCaptureDuration time.Duration

	mu               sync.Mutex
	state            TurnState
	session          *session
	captureHandle    *CaptureHandle
	captureEnabled   bool
	endPromptPending bool
	exitRequested    bool
	finalized        bool
	closed           bool
	rearmTimer       *time.Timer
	callbacks        runCallbacks
	baseContext      context.Context

	closeOnce sync.Once
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		state:              TurnStateIdle,
		captureEnabled:     true,
		rearmDelay:         defaultRearmDelay,
		minCaptureDuration: defaultMinCaptureDuration,
		baseContext:        context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run performs the initialization protocol: the start exchange, seeding the
// transcript with the opening interviewer message, and playing the opening
// audio. A start failure is fatal to the attempt and returned as-is; calling
// Run again is the manual retry affordance.
//
// Contract: call Run at most once per successfully started session.
func (o *Orchestrator) Run(ctx context.Context, cfg interviews.SetupConfig, opts ...RunOption) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator is closed")
	}
	if o.session != nil {
		o.mu.Unlock()
		return fmt.Errorf("session already started")
	}
	if o.client == nil {
		o.mu.Unlock()
		return fmt.Errorf("no session client configured")
	}
	callbacks := runCallbacks{}
	for _, opt := range opts {
		opt(&callbacks)
	}
	o.callbacks = callbacks
	o.baseContext = ctx
	o.mu.Unlock()

	ctx, span := tracer.Start(ctx, "start interview session")
	defer span.End()
	span.SetAttributes(attribute.String("request.role", cfg.Role))

	result, err := o.client.Start(ctx, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator is closed")
	}
	sess := &session{id: result.SessionID, progress: result.Progress}
	sess.transcript.seed(result.OpeningMessage)
	o.session = sess
	span.SetAttributes(attribute.String("response.session_id", sess.id))

	var fire []func()
	if cb := o.callbacks.onTranscriptEntry; cb != nil {
		entry := *sess.transcript.last()
		fire = append(fire, func() { cb(entry) })
	}
	if cb := o.callbacks.onProgress; cb != nil {
		progress := result.Progress
		fire = append(fire, func() { cb(progress) })
	}
	fire = append(fire, o.speakLocked(result.OpeningAudio)...)
	o.mu.Unlock()

	o.emit(fire)
	return nil
}

// StartListening is the explicit user request to speak. Allowed from idle
// and, as an interrupt, from speaking: any in-flight playback is stopped
// before the microphone goes live so the mic never captures interviewer
// audio.
func (o *Orchestrator) StartListening() error {
	o.mu.Lock()
	if o.closed || o.finalized {
		o.mu.Unlock()
		return fmt.Errorf("session is finished")
	}
	if o.session == nil {
		o.mu.Unlock()
		return fmt.Errorf("no active session")
	}
	switch o.state {
	case TurnStateIdle, TurnStateSpeaking:
	default:
		o.mu.Unlock()
		return fmt.Errorf("cannot start listening while %s", o.state)
	}
	o.cancelRearmLocked()
	fire, err := o.beginListeningLocked()
	o.mu.Unlock()
	if err != nil {
		return err
	}
	o.emit(fire)
	return nil
}

// StopListening is the explicit user request to stop speaking. The capture
// device is released, buffered chunks are flushed into one blob, and a
// respond exchange starts in the background.
func (o *Orchestrator) StopListening() error {
	o.mu.Lock()
	if o.state != TurnStateListening {
		o.mu.Unlock()
		return fmt.Errorf("cannot stop listening while %s", o.state)
	}

	handle := o.captureHandle
	o.captureHandle = nil
	blob, duration, err := o.input.end(handle)
	if err != nil {
		fire := o.setStateLocked(TurnStateIdle)
		o.mu.Unlock()
		o.emit(fire)
		return err
	}
	if blob == nil || duration < o.minCaptureDuration {
		fire := o.setStateLocked(TurnStateIdle)
		o.scheduleRearmLocked()
		o.mu.Unlock()
		o.emit(fire)
		return ErrCaptureTooShort
	}

	fire := o.setStateLocked(TurnStateProcessing)
	sessionID := o.session.id
	ctx := o.baseContext
	o.mu.Unlock()
	o.emit(fire)

	go o.processTurn(ctx, sessionID, blob)
	return nil
}

// SetCaptureEnabled toggles the candidate's microphone preference. Disabling
// it cancels any pending re-arm and aborts an in-flight capture; re-enabling
// re-evaluates re-arm eligibility.
func (o *Orchestrator) SetCaptureEnabled(enabled bool) {
	o.mu.Lock()
	o.captureEnabled = enabled
	var fire []func()
	if !enabled {
		o.cancelRearmLocked()
		if o.state == TurnStateListening {
			o.input.abort(o.captureHandle)
			o.captureHandle = nil
			fire = o.setStateLocked(TurnStateIdle)
		}
	} else if o.state == TurnStateIdle {
		o.scheduleRearmLocked()
	}
	o.mu.Unlock()
	o.emit(fire)
}

func (o *Orchestrator) CaptureEnabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.captureEnabled
}

// DismissEndPrompt declines the early-termination advisory. Re-arm
// eligibility is re-evaluated immediately, so listening resumes if it was
// suppressed by the pending prompt.
func (o *Orchestrator) DismissEndPrompt() {
	o.mu.Lock()
	o.endPromptPending = false
	if o.state == TurnStateIdle {
		o.scheduleRearmLocked()
	}
	o.mu.Unlock()
}

func (o *Orchestrator) EndPromptPending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.endPromptPending
}

// EndInterview finalizes the session on user request: accepted end prompt or
// leaving early. Devices are released, the end exchange runs best-effort,
// and the completion hand-off fires with the locally-held transcript as the
// fallback.
func (o *Orchestrator) EndInterview() error {
	o.mu.Lock()
	if o.session == nil {
		o.mu.Unlock()
		return fmt.Errorf("no active session")
	}
	if o.finalized {
		o.mu.Unlock()
		return nil
	}
	o.endPromptPending = false
	if o.captureHandle != nil {
		o.input.abort(o.captureHandle)
		o.captureHandle = nil
	}
	fire := o.setStateLocked(TurnStateIdle)
	fire = append(fire, o.finalizeLocked()...)
	o.mu.Unlock()
	o.emit(fire)
	return nil
}

// Analyze requests the post-interview scoring report for the session. The
// turn machine never waits on this; it belongs to the completion stage.
func (o *Orchestrator) Analyze(ctx context.Context) (*interviews.Analysis, error) {
	o.mu.Lock()
	sess := o.session
	client := o.client
	o.mu.Unlock()
	if sess == nil {
		return nil, fmt.Errorf("no active session")
	}
	return client.Analyze(ctx, sess.id)
}

func (o *Orchestrator) State() TurnState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return ""
	}
	return o.session.id
}

func (o *Orchestrator) Progress() interviews.Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return interviews.Progress{}
	}
	return o.session.progress
}

func (o *Orchestrator) Transcript() []interviews.TranscriptEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	return o.session.transcript.snapshot()
}

// Close tears the component down: pending re-arm cancelled, capture released
// and discarded, playback stopped. Runs unconditionally on every exit path
// and is safe to call more than once. Device backends are closed by whoever
// constructed them.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.mu.Lock()
		o.closed = true
		o.cancelRearmLocked()
		if o.captureHandle != nil {
			o.input.abort(o.captureHandle)
			o.captureHandle = nil
		}
		if current := o.output.active(); current != nil {
			o.output.stop(current)
		}
		fire := o.setStateLocked(TurnStateIdle)
		o.mu.Unlock()
		o.emit(fire)
	})
}

// processTurn runs one respond exchange. It is only ever entered from the
// processing state, which guarantees a single outstanding exchange.
func (o *Orchestrator) processTurn(ctx context.Context, sessionID string, blob []byte) {
	ctx, span := tracer.Start(ctx, "process turn")
	defer span.End()
	span.SetAttributes(attribute.Int("request.capture_bytes", len(blob)))

	result, err := o.client.Respond(ctx, sessionID, blob)

	o.mu.Lock()
	if o.closed || o.state != TurnStateProcessing {
		o.mu.Unlock()
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		// The turn failed: back to idle with the transcript untouched and
		// no re-arm. Re-attempting is an explicit user action.
		fire := o.setStateLocked(TurnStateIdle)
		if cb := o.callbacks.onError; cb != nil {
			fire = append(fire, func() { cb(err) })
		}
		o.mu.Unlock()
		o.emit(fire)
		return
	}

	var fire []func()
	appended := o.session.transcript.appendExchange(result.CandidateTranscript, result.InterviewerResponse)
	if cb := o.callbacks.onTranscriptEntry; cb != nil {
		for _, appendedEntry := range appended {
			entry := appendedEntry
			fire = append(fire, func() { cb(entry) })
		}
	}
	o.session.progress = result.Progress
	if cb := o.callbacks.onProgress; cb != nil {
		progress := result.Progress
		fire = append(fire, func() { cb(progress) })
	}

	if interviews.ContainsExitPhrase(result.CandidateTranscript) {
		o.exitRequested = true
	}

	advice := AdviseEnd(result.Progress)
	if advice.SuggestEnd && !o.endPromptPending && !o.exitRequested {
		o.endPromptPending = true
		if cb := o.callbacks.onEndPrompt; cb != nil {
			fire = append(fire, cb)
		}
	}

	span.AddEvent("interviewer audio queued",
		trace.WithAttributes(attribute.Int("response.audio_bytes", len(result.Audio))))
	fire = append(fire, o.speakLocked(result.Audio)...)
	o.mu.Unlock()
	o.emit(fire)
}

// speakLocked enters the speaking state and starts playback. A malformed
// payload is logged and swallowed: the machine proceeds as if playback
// completed so the turn sequence cannot deadlock.
func (o *Orchestrator) speakLocked(pcm []byte) []func() {
	fire := o.setStateLocked(TurnStateSpeaking)

	handle, err := o.output.play(pcm)
	if err != nil {
		logger.Warn("playback failed, continuing as if completed", "error", err)
		return append(fire, o.settleLocked()...)
	}

	go func() {
		<-handle.Done()
		o.output.onSettled(handle)
		if handle.Interrupted() {
			return
		}
		o.onPlaybackEnded()
	}()
	return fire
}

// onPlaybackEnded handles natural playback completion, the only way out of
// the speaking state besides an explicit interrupt.
func (o *Orchestrator) onPlaybackEnded() {
	o.mu.Lock()
	if o.closed || o.state != TurnStateSpeaking {
		o.mu.Unlock()
		return
	}
	fire := o.settleLocked()
	o.mu.Unlock()
	o.emit(fire)
}

// settleLocked moves the machine to idle and decides what happens next:
// finalize on completion or requested exit, hold while the end prompt is
// pending, otherwise schedule auto re-arm.
func (o *Orchestrator) settleLocked() []func() {
	fire := o.setStateLocked(TurnStateIdle)
	if o.session == nil {
		return fire
	}

	advice := AdviseEnd(o.session.progress)
	if advice.ForcedEnd || o.exitRequested {
		return append(fire, o.finalizeLocked()...)
	}
	if o.endPromptPending {
		return fire
	}
	o.scheduleRearmLocked()
	return fire
}

// scheduleRearmLocked arms the debounce timer for automatic listening. It
// only fires when it is the candidate's turn: the last transcript entry is
// from the interviewer and the session is not complete.
func (o *Orchestrator) scheduleRearmLocked() {
	if !o.captureEnabled || o.finalized || o.closed {
		return
	}
	sess := o.session
	if sess == nil || sess.progress.IsComplete {
		return
	}
	last := sess.transcript.last()
	if last == nil || last.Role != interviews.RoleInterviewer {
		return
	}

	o.cancelRearmLocked()
	o.rearmTimer = time.AfterFunc(o.rearmDelay, o.autoRearm)
}

func (o *Orchestrator) autoRearm() {
	o.mu.Lock()
	if o.closed || o.finalized || o.state != TurnStateIdle ||
		!o.captureEnabled || o.endPromptPending {
		o.mu.Unlock()
		return
	}
	fire, err := o.beginListeningLocked()
	errCb := o.callbacks.onError
	o.mu.Unlock()

	if err != nil {
		logger.Warn("auto re-arm failed", "error", err)
		if errCb != nil {
			errCb(err)
		}
		return
	}
	o.emit(fire)
}

// beginListeningLocked acquires the microphone and enters listening. Any
// in-flight playback is stopped first (cancel-on-interrupt); an acquisition
// failure leaves the state untouched.
func (o *Orchestrator) beginListeningLocked() ([]func(), error) {
	if current := o.output.active(); current != nil {
		o.output.stop(current)
	}

	handle, err := o.input.begin(o.baseContext)
	if err != nil {
		return nil, err
	}
	o.captureHandle = handle
	return o.setStateLocked(TurnStateListening), nil
}

// finalizeLocked marks the session finished, releases any devices still
// held, and kicks off the completion hand-off. Idempotent.
func (o *Orchestrator) finalizeLocked() []func() {
	if o.finalized {
		return nil
	}
	o.finalized = true
	o.cancelRearmLocked()
	if o.captureHandle != nil {
		o.input.abort(o.captureHandle)
		o.captureHandle = nil
	}
	if current := o.output.active(); current != nil {
		o.output.stop(current)
	}

	sess := o.session
	localTranscript := sess.transcript.snapshot()
	localProgress := sess.progress
	ctx := o.baseContext
	go o.completeSession(ctx, sess.id, localTranscript, localProgress)
	return nil
}

// completeSession runs the best-effort end exchange and emits the completion
// hand-off. An end failure degrades to the locally-held transcript rather
// than blocking completion.
func (o *Orchestrator) completeSession(
	ctx context.Context,
	sessionID string,
	localTranscript []interviews.TranscriptEntry,
	localProgress interviews.Progress,
) {
	ctx, span := tracer.Start(ctx, "finalize interview session")
	defer span.End()
	span.SetAttributes(attribute.String("request.session_id", sessionID))

	finalTranscript := localTranscript
	finalProgress := localProgress
	if result, err := o.client.End(ctx, sessionID); err != nil {
		logger.Warn("end exchange failed, using local transcript", "error", err)
		span.RecordError(err)
	} else {
		if len(result.Transcript) > 0 {
			finalTranscript = result.Transcript
		}
		finalProgress = result.Progress
	}

	o.mu.Lock()
	cb := o.callbacks.onCompletion
	o.mu.Unlock()
	if cb != nil {
		cb(interviews.Completion{
			SessionID:  sessionID,
			Transcript: finalTranscript,
			Progress:   finalProgress,
		})
	}
}

func (o *Orchestrator) setStateLocked(state TurnState) []func() {
	if o.state == state {
		return nil
	}
	o.state = state
	if cb := o.callbacks.onStateChanged; cb != nil {
		newState := state
		return []func(){func() { cb(newState) }}
	}
	return nil
}

func (o *Orchestrator) cancelRearmLocked() {
	if o.rearmTimer != nil {
		o.rearmTimer.Stop()
		o.rearmTimer = nil
	}
}

func (o *Orchestrator) emit(fire []func()) {
	for _, f := range fire {
		if f != nil {
			f()
		}
	}
}
