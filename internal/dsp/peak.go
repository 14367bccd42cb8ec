// SPDX-License-Identifier: MIT
package dsp

import "fmt"

// PeakFrequency scans a magnitude spectrum and returns the frequency in Hz
// of the strongest bin. Bins below cutoffHz are excluded: they hold DC and
// sub-audible noise that would otherwise dominate the scan. Ties resolve to
// the lowest bin index, so an all-zero spectrum deterministically yields the
// first eligible bin's frequency rather than an error.
func PeakFrequency(magnitude []float64, frameSize int, sampleRate, cutoffHz float64) (float64, error) {
	if len(magnitude) == 0 {
		return 0, fmt.Errorf("%w: empty spectrum", ErrInvalidInput)
	}
	if frameSize <= 0 || sampleRate <= 0 {
		return 0, fmt.Errorf("%w: frame size and sample rate must be positive", ErrInvalidInput)
	}

	binWidth := sampleRate / float64(frameSize)

	// First bin at or above the cutoff.
	start := 0
	for float64(start)*binWidth < cutoffHz {
		start++
	}

	// Nyquist bin is the last physically meaningful one.
	end := frameSize / 2
	if end > len(magnitude)-1 {
		end = len(magnitude) - 1
	}
	if start > end {
		return 0, fmt.Errorf("%w: cutoff %.1f Hz excludes the entire spectrum", ErrInvalidInput, cutoffHz)
	}

	peak := start
	for i := start + 1; i <= end; i++ {
		// Strict > keeps the lowest index on ties.
		if magnitude[i] > magnitude[peak] {
			peak = i
		}
	}

	return float64(peak) * binWidth, nil
}
