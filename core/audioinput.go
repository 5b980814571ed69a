package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/voxhire/interview-core/core/audio"
)

// CaptureHandle wraps one active microphone recording. At most one handle is
// live at a time; it is owned by the input facade while recording and all
// transitions are mediated by the Orchestrator.
type CaptureHandle struct {
	ID string

	mu        sync.Mutex
	chunks    [][]byte
	recording bool
	startedAt time.Time
}

func newCaptureHandle() *CaptureHandle {
	return &CaptureHandle{
		ID:        uuid.NewString(),
		recording: true,
		startedAt: time.Now(),
	}
}

// append copies and stores an incoming chunk. Device callbacks reuse their
// buffers, so the copy is mandatory.
func (h *CaptureHandle) append(chunk []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.recording {
		return
	}
	h.chunks = append(h.chunks, append([]byte(nil), chunk...))
}

// flush stops accepting chunks and returns every byte collected since the
// capture began. Partial chunks are never dropped.
func (h *CaptureHandle) flush() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recording = false

	total := 0
	for _, chunk := range h.chunks {
		total += len(chunk)
	}
	pcm := make([]byte, 0, total)
	for _, chunk := range h.chunks {
		pcm = append(pcm, chunk...)
	}
	h.chunks = nil
	return pcm
}

func (h *CaptureHandle) isRecording() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.recording
}

// audioInput owns the capture side of the audio hardware. It hands out at
// most one CaptureHandle at a time.
type audioInput struct {
	base AudioCapture

	mu     sync.Mutex
	handle *CaptureHandle
}

func (a *audioInput) set(client AudioCapture) {
	a.base = client
}

func (a *audioInput) isConfigured() bool { return a.base != nil }

// begin acquires the microphone and starts collecting chunks. A failure to
// acquire the device surfaces as audio.ErrPermissionDenied from the backend.
func (a *audioInput) begin(ctx context.Context) (*CaptureHandle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.base == nil {
		return nil, fmt.Errorf("no capture client configured")
	}
	if a.handle != nil {
		return nil, fmt.Errorf("capture already active")
	}

	handle := newCaptureHandle()
	if err := a.base.StartCapture(ctx, handle.append); err != nil {
		return nil, err
	}

	a.handle = handle
	return handle, nil
}

// end releases the microphone and packages everything recorded into a WAV
// blob. A capture that collected no audio yields a nil blob.
func (a *audioInput) end(handle *CaptureHandle) ([]byte, time.Duration, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if handle == nil || a.handle != handle {
		return nil, 0, fmt.Errorf("capture handle is not active")
	}

	stopErr := a.base.StopCapture()
	pcm := handle.flush()
	a.handle = nil
	if stopErr != nil {
		return nil, 0, fmt.Errorf("failed to release capture device: %w", stopErr)
	}

	if len(pcm) == 0 {
		return nil, 0, nil
	}

	encodingInfo := a.base.CaptureEncodingInfo()
	duration := time.Duration(audio.Duration(pcm, encodingInfo.SampleRate) * float64(time.Second))
	blob, err := audio.WrapWAV(pcm, encodingInfo.SampleRate)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to package capture: %w", err)
	}
	return blob, duration, nil
}

// abort releases the microphone and discards anything recorded. Used on
// teardown and when capture is disabled mid-listen.
func (a *audioInput) abort(handle *CaptureHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if handle == nil || a.handle != handle {
		return
	}

	if err := a.base.StopCapture(); err != nil {
		logger.Warn("failed to stop capture device on abort", "error", err)
	}
	handle.flush()
	a.handle = nil
}

func (a *audioInput) active() *CaptureHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handle
}
