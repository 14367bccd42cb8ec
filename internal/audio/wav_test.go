// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV encodes samples into a WAV file for FileSource tests.
func writeTestWAV(t *testing.T, path string, samples []int, sampleRate, bitDepth, channels int) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test WAV: %v", err)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, sampleRate, bitDepth, channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: bitDepth,
		Data:           samples,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("Failed to encode test WAV: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("Failed to finalize test WAV: %v", err)
	}
}

func TestFileSourceReadsFrames(t *testing.T) {
	const frameSize = 512
	path := filepath.Join(t.TempDir(), "frames.wav")

	// Two full frames plus a half frame, constant half-scale amplitude.
	samples := make([]int, frameSize*2+frameSize/2)
	for i := range samples {
		samples[i] = 16384
	}
	writeTestWAV(t, path, samples, int(testSampleRate), 16, 1)

	source := NewFileSource(path, frameSize)
	if err := source.Open(); err != nil {
		t.Fatalf("Failed to open WAV source: %v", err)
	}
	defer source.Close()

	if got := source.SampleRate(); got != testSampleRate {
		t.Errorf("SampleRate = %f, want %f", got, testSampleRate)
	}

	for n := range 2 {
		frame, err := source.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d error: %v", n, err)
		}
		if len(frame) != frameSize {
			t.Fatalf("Frame %d length = %d, want %d", n, len(frame), frameSize)
		}
		for i, s := range frame {
			if math.Abs(s-0.5) > 1e-9 {
				t.Fatalf("Frame %d sample %d = %f, want 0.5", n, i, s)
			}
		}
	}

	// The final partial frame is zero-padded to a full frame.
	frame, err := source.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame partial error: %v", err)
	}
	for i := range frameSize / 2 {
		if math.Abs(frame[i]-0.5) > 1e-9 {
			t.Fatalf("Partial frame sample %d = %f, want 0.5", i, frame[i])
		}
	}
	for i := frameSize / 2; i < frameSize; i++ {
		if frame[i] != 0 {
			t.Fatalf("Padding sample %d = %f, want 0", i, frame[i])
		}
	}

	if _, err := source.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadFrame after end = %v, want io.EOF", err)
	}
}

func TestFileSourceStereoKeepsFirstChannel(t *testing.T) {
	const frameSize = 256
	path := filepath.Join(t.TempDir(), "stereo.wav")

	// Interleaved stereo: left channel at +1000, right at -1000.
	samples := make([]int, frameSize*2)
	for i := 0; i < len(samples); i += 2 {
		samples[i] = 1000
		samples[i+1] = -1000
	}
	writeTestWAV(t, path, samples, int(testSampleRate), 16, 2)

	source := NewFileSource(path, frameSize)
	if err := source.Open(); err != nil {
		t.Fatalf("Failed to open WAV source: %v", err)
	}
	defer source.Close()

	frame, err := source.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame error: %v", err)
	}

	want := 1000.0 / 32768.0
	for i, s := range frame {
		if math.Abs(s-want) > 1e-9 {
			t.Fatalf("Sample %d = %f, want %f (left channel only)", i, s, want)
		}
	}
}

func TestFileSourceErrors(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		source := NewFileSource(filepath.Join(t.TempDir(), "missing.wav"), 512)
		if err := source.Open(); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("Not a WAV file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bogus.wav")
		if err := os.WriteFile(path, []byte("not audio data"), 0o644); err != nil {
			t.Fatalf("Failed to write bogus file: %v", err)
		}

		source := NewFileSource(path, 512)
		err := source.Open()
		if err == nil || !strings.Contains(err.Error(), "not a valid WAV") {
			t.Errorf("Open = %v, want not a valid WAV error", err)
		}
	})

	t.Run("Read before open", func(t *testing.T) {
		source := NewFileSource("whatever.wav", 512)
		if _, err := source.ReadFrame(); err == nil {
			t.Error("Expected error reading before Open")
		}
	})

	t.Run("Close without open", func(t *testing.T) {
		source := NewFileSource("whatever.wav", 512)
		if err := source.Close(); err != nil {
			t.Errorf("Close without open = %v, want nil", err)
		}
	})
}
