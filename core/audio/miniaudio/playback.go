package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/voxhire/interview-core/core/audio"
)

// PlaybackDevice plays queued PCM16 through the default output. Completion is
// reported through marks: a mark queued after the audio fires its callback
// once the device has consumed everything before it.
type PlaybackDevice struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	queuedAudio []byte
	marks       []playbackMark

	mu      sync.Mutex
	audioMu sync.Mutex
}

type playbackMark struct {
	name     string
	position int
	callback func(string)
}

func (c *PlaybackDevice) init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sampleRate := uint32(audio.PlaybackSampleRate)
	channels := 1
	format := malgo.FormatS16

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = sampleRate
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	c.config.Periods = 4

	c.audioContext = audioContext

	var err error
	if c.device, err = malgo.InitDevice(
		c.audioContext.Context,
		c.config,
		malgo.DeviceCallbacks{Data: c.processAudio},
	); err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	return nil
}

func (c *PlaybackDevice) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

func (c *PlaybackDevice) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback device: %w", err)
	}

	c.ClearBuffer()
	return nil
}

func (c *PlaybackDevice) SendAudio(audioBytes []byte) error {
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if !c.device.IsStarted() {
		return fmt.Errorf("device not started")
	}

	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	c.queuedAudio = append(c.queuedAudio, audioBytes...)
	return nil
}

// Mark queues a callback at the current end of the buffered audio. Queue a
// mark right after an utterance's audio and its callback fires when that
// utterance has fully played.
func (c *PlaybackDevice) Mark(mark string, callback func(string)) error {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	c.marks = append(c.marks, playbackMark{
		name:     mark,
		position: len(c.queuedAudio),
		callback: callback,
	})
	return nil
}

// ClearBuffer drops all queued audio and pending marks. Dropped marks never
// fire; cancellation is reported by the caller, not the device.
func (c *PlaybackDevice) ClearBuffer() {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	c.queuedAudio = nil
	c.marks = nil
}

func (c *PlaybackDevice) uninit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
}

func (c *PlaybackDevice) EncodingInfo() audio.EncodingInfo {
	return audio.PlaybackEncodingInfo()
}

func (c *PlaybackDevice) processAudio(pOutput, _ []byte, _ uint32) {
	c.audioMu.Lock()
	consumed := copy(pOutput, c.queuedAudio)
	c.queuedAudio = c.queuedAudio[consumed:]

	var passed []playbackMark
	remaining := c.marks[:0]
	for _, mark := range c.marks {
		mark.position -= consumed
		if mark.position <= 0 {
			passed = append(passed, mark)
			continue
		}
		remaining = append(remaining, mark)
	}
	c.marks = remaining
	c.audioMu.Unlock()

	if len(passed) > 0 {
		go func() {
			for _, mark := range passed {
				mark.callback(mark.name)
			}
		}()
	}
}
