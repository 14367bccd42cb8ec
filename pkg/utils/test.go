// SPDX-License-Identifier: MIT

// Package utils holds shared test helpers for synthesizing audio frames.
package utils

import "math"

// GenerateSineWave returns a frame of size samples containing a pure tone at
// the given frequency, amplitude 0.9.
func GenerateSineWave(size int, sampleRate, frequency float64) []float64 {
	frame := make([]float64, size)
	for i := range frame {
		t := float64(i) / sampleRate
		frame[i] = 0.9 * math.Sin(2*math.Pi*frequency*t)
	}
	return frame
}

// GenerateComplexWave returns a frame with a 440 Hz fundamental plus two
// weaker harmonics, resembling a plucked string.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	frame := make([]float64, size)
	for i := range frame {
		t := float64(i) / sampleRate
		frame[i] = math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2
	}
	return frame
}

// GenerateSilence returns an all-zero frame of size samples.
func GenerateSilence(size int) []float64 {
	return make([]float64, size)
}
