// Package miniaudio provides the default capture and playback devices on top
// of malgo. One Client owns the shared audio context; Close releases the
// microphone, the output device and the context on every exit path.
package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/voxhire/interview-core/core/audio"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext

	capture  CaptureDevice
	playback PlaybackDevice

	closeOnce sync.Once
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	client := Client{audioContext: audioCtx}

	if err := client.playback.init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := client.playback.Start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	if err := client.capture.init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}

	return &client, nil
}

func (c *Client) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return c.capture.Start(onAudio)
}

func (c *Client) StopCapture() error {
	return c.capture.Stop()
}

func (c *Client) CaptureEncodingInfo() audio.EncodingInfo {
	return c.capture.EncodingInfo()
}

func (c *Client) SendAudio(audioBytes []byte) error {
	return c.playback.SendAudio(audioBytes)
}

func (c *Client) Mark(mark string, callback func(string)) error {
	return c.playback.Mark(mark, callback)
}

func (c *Client) ClearBuffer() {
	c.playback.ClearBuffer()
}

func (c *Client) PlaybackEncodingInfo() audio.EncodingInfo {
	return c.playback.EncodingInfo()
}

// Close is idempotent and releases every device resource unconditionally.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.capture.uninit()
		c.playback.uninit()
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
	})
}
