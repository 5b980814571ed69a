package orchestration

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/voxhire/interview-core/core/audio"
)

// PlaybackHandle wraps one active playback of synthesized speech. At most
// one handle is live at a time; it settles exactly once, either naturally
// (the device drained the audio) or by being stopped.
type PlaybackHandle struct {
	ID string

	done        chan struct{}
	settleOnce  sync.Once
	interrupted atomic.Bool
}

func newPlaybackHandle() *PlaybackHandle {
	return &PlaybackHandle{
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// Done is closed when playback settles, naturally or not.
func (h *PlaybackHandle) Done() <-chan struct{} { return h.done }

// Interrupted reports whether the handle was stopped before natural
// completion. Only meaningful after Done is closed.
func (h *PlaybackHandle) Interrupted() bool { return h.interrupted.Load() }

// settle resolves the handle. Safe to call any number of times and
// concurrently with natural completion; only the first call wins.
func (h *PlaybackHandle) settle(interrupted bool) {
	h.settleOnce.Do(func() {
		h.interrupted.Store(interrupted)
		close(h.done)
	})
}

// audioOutput owns the playback side of the audio hardware. Starting a new
// playback always supersedes the previous one.
type audioOutput struct {
	base AudioPlayback

	mu      sync.Mutex
	current *PlaybackHandle
}

func (a *audioOutput) set(client AudioPlayback) {
	a.base = client
}

func (a *audioOutput) isConfigured() bool { return a.base != nil }

// play validates and queues a PCM16 payload and returns its handle. Any
// in-flight playback is stopped first, never overlapped.
func (a *audioOutput) play(pcm []byte) (*PlaybackHandle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.base == nil {
		return nil, fmt.Errorf("no playback client configured")
	}

	if err := audio.ValidatePCM16(pcm); err != nil {
		return nil, err
	}

	a.stopLocked(a.current)

	handle := newPlaybackHandle()
	if err := a.base.SendAudio(pcm); err != nil {
		return nil, fmt.Errorf("failed to queue playback audio: %w", err)
	}
	if err := a.base.Mark(handle.ID, func(string) { handle.settle(false) }); err != nil {
		return nil, fmt.Errorf("failed to queue playback completion mark: %w", err)
	}

	a.current = handle
	return handle, nil
}

// stop cancels a playback. Idempotent: a nil, already-stopped or naturally
// completed handle is a no-op.
func (a *audioOutput) stop(handle *PlaybackHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked(handle)
}

func (a *audioOutput) stopLocked(handle *PlaybackHandle) {
	if handle == nil {
		return
	}
	if a.current == handle {
		a.base.ClearBuffer()
		a.current = nil
	}
	handle.settle(true)
}

func (a *audioOutput) active() *PlaybackHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// onSettled clears the current handle once it resolves naturally.
func (a *audioOutput) onSettled(handle *PlaybackHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == handle {
		a.current = nil
	}
}
