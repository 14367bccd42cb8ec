// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "tuner/internal/log"
)

// FileSource supplies frames decoded from a WAV file, so recordings can be
// run through the same detection pipeline as live capture. It implements
// tuner.Source; ReadFrame returns io.EOF once the file is exhausted, which
// the detection loop treats as the end of the run.
type FileSource struct {
	path      string
	frameSize int

	file    *os.File
	decoder *wav.Decoder
	intBuf  *goaudio.IntBuffer
	frame   []float64
	norm    float64
}

// NewFileSource creates a source reading frames of frameSize samples from
// the WAV file at path.
func NewFileSource(path string, frameSize int) *FileSource {
	return &FileSource{
		path:      path,
		frameSize: frameSize,
		frame:     make([]float64, frameSize),
	}
}

// Open opens and validates the WAV file. Calling Open on an already open
// source is a no-op, so the file can be probed for its sample rate before
// the detection loop opens it. Implements tuner.Source.
func (s *FileSource) Open() error {
	if s.decoder != nil {
		return nil
	}

	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open WAV file: %w", err)
	}

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		file.Close()
		return fmt.Errorf("%s is not a valid WAV file", s.path)
	}

	s.file = file
	s.decoder = decoder
	s.norm = float64(int(1) << (decoder.BitDepth - 1))
	s.intBuf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(decoder.NumChans),
			SampleRate:  int(decoder.SampleRate),
		},
		Data: make([]int, s.frameSize*int(decoder.NumChans)),
	}

	applog.Infof("File: opened %s (%d Hz, %d-bit, %d channel(s))",
		s.path, decoder.SampleRate, decoder.BitDepth, decoder.NumChans)
	return nil
}

// SampleRate returns the file's sample rate in Hz. Valid after Open.
func (s *FileSource) SampleRate() float64 {
	if s.decoder == nil {
		return 0
	}
	return float64(s.decoder.SampleRate)
}

// ReadFrame decodes the next frame, keeping only the first channel and
// normalizing to [-1, 1). A final partial frame is zero-padded; io.EOF is
// returned once the file has no samples left. Implements tuner.Source.
func (s *FileSource) ReadFrame() ([]float64, error) {
	if s.decoder == nil {
		return nil, fmt.Errorf("WAV source is not open")
	}

	n, err := s.decoder.PCMBuffer(s.intBuf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV samples: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	channels := s.intBuf.Format.NumChannels
	samples := n / channels
	for i := range s.frame {
		if i < samples {
			s.frame[i] = float64(s.intBuf.Data[i*channels]) / s.norm
		} else {
			s.frame[i] = 0
		}
	}

	return s.frame, nil
}

// Close releases the underlying file. Implements tuner.Source.
func (s *FileSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.decoder = nil
	return err
}
