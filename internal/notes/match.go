// SPDX-License-Identifier: MIT
package notes

import (
	"errors"
	"math"
)

var (
	// ErrOutOfRange is returned when a frequency is non-positive or too far
	// outside the span of the reference table to match meaningfully.
	ErrOutOfRange = errors.New("frequency out of range")

	// ErrInvalidInput is returned for non-positive frequencies where the
	// cents formula is undefined.
	ErrInvalidInput = errors.New("invalid input")
)

// matchSpanRatio bounds how far beyond the table ends a frequency may fall
// and still be matched: one octave below the lowest and one octave above the
// highest reference note.
const matchSpanRatio = 2.0

// Nearest returns the table note whose reference frequency has the minimal
// absolute distance from freq. On an exact tie the entry earlier in table
// order wins. Frequencies <= 0 or more than an octave outside the table span
// fail with ErrOutOfRange; anything else matches, however large the
// deviation.
func (t *Table) Nearest(freq float64) (Note, error) {
	if freq <= 0 {
		return Note{}, ErrOutOfRange
	}
	low, high := t.Span()
	if freq < low/matchSpanRatio || freq > high*matchSpanRatio {
		return Note{}, ErrOutOfRange
	}

	best := t.notes[0]
	bestDist := math.Abs(freq - best.Frequency)
	for _, n := range t.notes[1:] {
		// Strict < keeps the first entry on exact ties.
		if d := math.Abs(freq - n.Frequency); d < bestDist {
			best = n
			bestDist = d
		}
	}
	return best, nil
}

// Cents returns the tuning deviation of freq from the reference frequency
// ref, in cents: 1200 * log2(freq / ref). Positive means sharp, negative
// flat; 100 cents is one equal-tempered semitone. Fails with ErrInvalidInput
// if either frequency is non-positive.
func Cents(freq, ref float64) (float64, error) {
	if freq <= 0 || ref <= 0 {
		return 0, ErrInvalidInput
	}
	return 1200 * math.Log2(freq/ref), nil
}
