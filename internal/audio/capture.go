// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"

	"tuner/internal/config"
	applog "tuner/internal/log"
)

// CaptureSource reads fixed-length frames from a PortAudio input device in
// blocking mode. It implements tuner.Source. The detection loop is the sole
// reader; frame buffers are pre-allocated and reused, which is safe because
// frames are consumed by exactly one analysis pass before the next read.
type CaptureSource struct {
	cfg *config.Config

	device  *portaudio.DeviceInfo
	latency time.Duration
	stream  *portaudio.Stream

	buf   []float32 // interleaved device buffer (frames x channels)
	frame []float64 // mono frame handed to the detector

	recorder recorder // optional WAV tap, see recording.go
}

// NewCaptureSource creates a capture source for the configured input
// device. The device is not opened until Open is called.
func NewCaptureSource(cfg *config.Config) *CaptureSource {
	return &CaptureSource{
		cfg:   cfg,
		buf:   make([]float32, cfg.Audio.FramesPerBuffer*cfg.Audio.InputChannels),
		frame: make([]float64, cfg.Audio.FramesPerBuffer),
	}
}

// Open resolves the input device and starts the capture stream.
// Implements tuner.Source.
func (s *CaptureSource) Open() error {
	device, err := InputDevice(s.cfg.Audio.InputDevice)
	if err != nil {
		return err
	}
	s.device = device

	if s.cfg.Audio.LowLatency {
		s.latency = device.DefaultLowInputLatency
	} else {
		s.latency = device.DefaultHighInputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: s.cfg.Audio.InputChannels,
			Latency:  s.latency,
		},
		FramesPerBuffer: s.cfg.Audio.FramesPerBuffer,
		SampleRate:      s.cfg.Audio.SampleRate,
	}

	// Passing the buffer instead of a callback puts the stream in blocking
	// read mode.
	stream, err := portaudio.OpenStream(params, s.buf)
	if err != nil {
		return fmt.Errorf("failed to open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start capture stream: %w", err)
	}
	s.stream = stream

	applog.Infof("Capture: opened %q (%.0f Hz, %d frames/buffer, latency %s)",
		device.Name, s.cfg.Audio.SampleRate, s.cfg.Audio.FramesPerBuffer, s.latency)
	return nil
}

// ReadFrame blocks until a full frame has been captured and returns it as
// mono float64 samples. Multi-channel input keeps only the first channel.
// The returned slice is reused by the next call. Implements tuner.Source.
func (s *CaptureSource) ReadFrame() ([]float64, error) {
	if s.stream == nil {
		return nil, fmt.Errorf("capture stream is not open")
	}
	if err := s.stream.Read(); err != nil {
		return nil, fmt.Errorf("capture read failed: %w", err)
	}

	channels := s.cfg.Audio.InputChannels
	for i := range s.frame {
		s.frame[i] = float64(s.buf[i*channels])
	}

	if s.recorder.active() {
		if err := s.recorder.write(s.frame); err != nil {
			applog.Warnf("Capture: recording write failed: %v", err)
		}
	}

	return s.frame, nil
}

// Close stops any active recording and releases the capture stream.
// Implements tuner.Source.
func (s *CaptureSource) Close() error {
	if err := s.StopRecording(); err != nil {
		applog.Warnf("Capture: failed to finalize recording: %v", err)
	}

	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture stream: %w", err)
	}
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("failed to close capture stream: %w", err)
	}
	s.stream = nil
	return nil
}
