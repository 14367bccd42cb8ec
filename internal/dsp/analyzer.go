// SPDX-License-Identifier: MIT

// Package dsp implements the spectral half of the pitch pipeline: windowed
// FFT analysis of a sample frame and dominant-frequency extraction from the
// resulting magnitude spectrum.
package dsp

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"tuner/pkg/bitint"
)

// ErrInvalidInput is returned for malformed numeric input, such as an empty
// sample frame.
var ErrInvalidInput = errors.New("invalid input")

// workspace holds pre-allocated buffers for the FFT so that Analyze performs
// no allocations in the hot path.
type workspace struct {
	input     []float64    // windowed input samples
	fftOutput []complex128 // complex FFT output
	magnitude []float64    // per-bin magnitudes
	window    []float64    // window coefficients, computed once per frame size
}

// Analyzer turns a fixed-length frame of samples into a magnitude spectrum.
// It is not safe for concurrent use; the detection loop processes frames one
// at a time, which is the intended usage.
type Analyzer struct {
	frameSize  int
	sampleRate float64
	fftObj     *fourier.FFT
	workspace  workspace
}

// NewAnalyzer creates an Analyzer for frames of frameSize samples at the
// given sample rate. The frame size must be a power of 2 for the FFT.
func NewAnalyzer(frameSize int, sampleRate float64, windowType WindowFunc) (*Analyzer, error) {
	if !bitint.IsPowerOfTwo(frameSize) {
		return nil, fmt.Errorf("frame size must be a power of 2, got %d", frameSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	window := make([]float64, frameSize)
	windowCoefficients(window, windowType)

	// A real-input FFT yields frameSize/2 + 1 complex values: the
	// positive-frequency half up to and including Nyquist.
	outputSize := frameSize/2 + 1

	return &Analyzer{
		frameSize:  frameSize,
		sampleRate: sampleRate,
		fftObj:     fourier.NewFFT(frameSize),
		workspace: workspace{
			input:     make([]float64, frameSize),
			fftOutput: make([]complex128, outputSize),
			magnitude: make([]float64, outputSize),
			window:    window,
		},
	}, nil
}

// Analyze applies the window to frame, runs the FFT, and returns the
// magnitude per frequency bin (bin i covers frequency i * sampleRate /
// frameSize). The returned slice is the analyzer's internal buffer and is
// valid until the next call. An empty frame fails with ErrInvalidInput.
func (a *Analyzer) Analyze(frame []float64) ([]float64, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrInvalidInput)
	}

	for i := range a.frameSize {
		if i < len(frame) {
			a.workspace.input[i] = frame[i] * a.workspace.window[i]
		} else {
			a.workspace.input[i] = 0 // zero-pad short frames
		}
	}

	a.fftObj.Coefficients(a.workspace.fftOutput, a.workspace.input)
	for i, c := range a.workspace.fftOutput {
		a.workspace.magnitude[i] = cmplx.Abs(c)
	}

	return a.workspace.magnitude, nil
}

// FrameSize returns the configured frame size in samples.
func (a *Analyzer) FrameSize() int {
	return a.frameSize
}

// SampleRate returns the configured sample rate in Hz.
func (a *Analyzer) SampleRate() float64 {
	return a.sampleRate
}

// BinFrequency returns the center frequency in Hz for a magnitude bin index.
func (a *Analyzer) BinFrequency(i int) float64 {
	if i < 0 || i >= len(a.workspace.fftOutput) {
		return 0
	}
	return float64(i) * (a.sampleRate / float64(a.frameSize))
}
