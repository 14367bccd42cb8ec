// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const recordingBitDepth = 16

// recorder is the WAV tap that optionally mirrors captured frames to disk
// while tuning. The isRecording flag is atomic so StartRecording and
// StopRecording can be called from the controlling goroutine while the
// detection worker is mid-read.
type recorder struct {
	isRecording int32
	sampleRate  int
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *goaudio.IntBuffer
}

func (r *recorder) active() bool {
	return atomic.LoadInt32(&r.isRecording) == 1
}

// write appends one mono frame to the WAV file, converting float samples in
// [-1, 1] to 16-bit PCM.
func (r *recorder) write(frame []float64) error {
	for i, sample := range frame {
		r.sampleBuf.Data[i] = int(sample * 32767)
	}
	r.sampleBuf.Data = r.sampleBuf.Data[:len(frame)]
	return r.wavEncoder.Write(r.sampleBuf)
}

// StartRecording begins mirroring captured frames to a mono WAV file.
func (s *CaptureSource) StartRecording(filename string) error {
	if s.recorder.active() {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	s.recorder.sampleRate = int(s.cfg.Audio.SampleRate)
	s.recorder.outputFile = file
	s.recorder.wavEncoder = wav.NewEncoder(file, s.recorder.sampleRate, recordingBitDepth, 1, 1)
	s.recorder.sampleBuf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  s.recorder.sampleRate,
		},
		SourceBitDepth: recordingBitDepth,
		Data:           make([]int, s.cfg.Audio.FramesPerBuffer),
	}

	atomic.StoreInt32(&s.recorder.isRecording, 1)
	return nil
}

// StopRecording finalizes the WAV file. Safe to call when not recording.
func (s *CaptureSource) StopRecording() error {
	if !s.recorder.active() {
		return nil
	}
	atomic.StoreInt32(&s.recorder.isRecording, 0)

	if s.recorder.wavEncoder != nil {
		if err := s.recorder.wavEncoder.Close(); err != nil {
			return err
		}
		s.recorder.wavEncoder = nil
	}
	if s.recorder.outputFile != nil {
		if err := s.recorder.outputFile.Close(); err != nil {
			return err
		}
		s.recorder.outputFile = nil
	}
	return nil
}
