// Package portaudio is an alternative device backend for hosts where
// miniaudio misbehaves. It exposes the same capture/playback surface as the
// miniaudio client; output samples are normalized to float32, the range
// portaudio's default stream consumes.
package portaudio

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/voxhire/interview-core/core/audio"
)

const defaultBufferSize = 512

type Client struct {
	bufferSize int

	in       *portaudio.Stream
	inFrames []int16

	out       *portaudio.Stream
	outFrames []float32

	mu          sync.Mutex
	queuedAudio []float32
	marks       []playbackMark
	capturing   bool
	stopCapture chan struct{}

	writerOnce sync.Once
	closeOnce  sync.Once
	closed     chan struct{}
}

type playbackMark struct {
	name     string
	position int
	callback func(string)
}

func NewClient() (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	c := &Client{
		bufferSize: defaultBufferSize,
		inFrames:   make([]int16, defaultBufferSize),
		outFrames:  make([]float32, defaultBufferSize),
		closed:     make(chan struct{}),
	}

	var err error
	c.in, err = portaudio.OpenDefaultStream(1, 0, audio.CaptureSampleRate, c.bufferSize, c.inFrames)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open capture stream: %w", err)
	}

	c.out, err = portaudio.OpenDefaultStream(0, 1, audio.PlaybackSampleRate, c.bufferSize, c.outFrames)
	if err != nil {
		c.in.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open playback stream: %w", err)
	}

	if err := c.out.Start(); err != nil {
		c.in.Close()
		c.out.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start playback stream: %w", err)
	}

	return c, nil
}

func (c *Client) CaptureEncodingInfo() audio.EncodingInfo {
	return audio.CaptureEncodingInfo()
}

func (c *Client) PlaybackEncodingInfo() audio.EncodingInfo {
	return audio.PlaybackEncodingInfo()
}

func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	if c.capturing {
		c.mu.Unlock()
		return nil
	}
	if err := c.in.Start(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", audio.ErrPermissionDenied, err)
	}
	c.capturing = true
	stop := make(chan struct{})
	c.stopCapture = stop
	c.mu.Unlock()

	go func() {
		chunk := make([]byte, len(c.inFrames)*2)
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-c.closed:
				return
			default:
			}

			if err := c.in.Read(); err != nil {
				log.Printf("Failed to read from capture stream: %v", err)
				continue
			}
			for i, sample := range c.inFrames {
				chunk[i*2] = byte(sample)
				chunk[i*2+1] = byte(sample >> 8)
			}
			onAudio(append([]byte(nil), chunk...))
		}
	}()
	return nil
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.capturing {
		return nil
	}
	c.capturing = false
	close(c.stopCapture)
	if err := c.in.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture stream: %w", err)
	}
	return nil
}

func (c *Client) SendAudio(audioBytes []byte) error {
	samples, err := audio.Float32Samples(audioBytes)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.queuedAudio = append(c.queuedAudio, samples...)
	c.mu.Unlock()

	c.writerOnce.Do(func() { go c.writeLoop() })
	return nil
}

func (c *Client) Mark(mark string, callback func(string)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.marks = append(c.marks, playbackMark{
		name:     mark,
		position: len(c.queuedAudio),
		callback: callback,
	})
	c.writerOnce.Do(func() { go c.writeLoop() })
	return nil
}

func (c *Client) ClearBuffer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queuedAudio = nil
	c.marks = nil
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.closed:
			return
		default:
		}

		c.mu.Lock()
		consumed := copy(c.outFrames, c.queuedAudio)
		for i := consumed; i < len(c.outFrames); i++ {
			c.outFrames[i] = 0
		}
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
		c.mu.Unlock()

		if err := c.out.Write(); err != nil {
			log.Printf("Failed to write to playback stream: %v", err)
		}

		for _, mark := range passed {
			mark.callback(mark.name)
		}
	}
}

// Close releases both streams and the portaudio host unconditionally.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.StopCapture()
		c.in.Close()
		c.out.Stop()
		c.out.Close()
		portaudio.Terminate()
	})
}
