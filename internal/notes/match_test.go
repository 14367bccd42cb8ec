// SPDX-License-Identifier: MIT
package notes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const centsTolerance = 1e-9

func TestNearestExactMatch(t *testing.T) {
	table := NewTable()

	n, err := table.Nearest(440.0)
	require.NoError(t, err)
	assert.Equal(t, "A4", n.Name)

	n, err = table.Nearest(16.35)
	require.NoError(t, err)
	assert.Equal(t, "C0", n.Name)
}

func TestNearestBetweenNotes(t *testing.T) {
	table := NewTable()

	// 430 Hz sits between G#4 (415.30) and A4 (440.00), closer to A4.
	n, err := table.Nearest(430.0)
	require.NoError(t, err)
	assert.Equal(t, "A4", n.Name)

	n, err = table.Nearest(420.0)
	require.NoError(t, err)
	assert.Equal(t, "G#4", n.Name)
}

// TestNearestMidpointBoundary pins down the boundary policy: the matcher
// minimizes absolute distance, so the choice flips exactly at the arithmetic
// midpoint of adjacent references, and an exact tie goes to the earlier table
// entry.
func TestNearestMidpointBoundary(t *testing.T) {
	table := NewTable()
	entries := table.Notes()

	for i := 0; i < len(entries)-1; i++ {
		lo, hi := entries[i], entries[i+1]
		mid := (lo.Frequency + hi.Frequency) / 2

		// The computed midpoint may land an ulp to either side of the true
		// boundary, so derive the expected winner from the same distances the
		// matcher sees. A true tie must keep the earlier entry.
		want := lo.Name
		if hi.Frequency-mid < mid-lo.Frequency {
			want = hi.Name
		}

		n, err := table.Nearest(mid)
		require.NoError(t, err)
		assert.Equal(t, want, n.Name, "midpoint of %s/%s", lo.Name, hi.Name)

		// Deterministic: asking again gives the same answer.
		again, err := table.Nearest(mid)
		require.NoError(t, err)
		assert.Equal(t, n.Name, again.Name)

		// Either side of the midpoint is unambiguous.
		n, err = table.Nearest(math.Nextafter(mid, 0))
		require.NoError(t, err)
		assert.Equal(t, lo.Name, n.Name)

		n, err = table.Nearest(math.Nextafter(mid, math.Inf(1)))
		require.NoError(t, err)
		assert.Equal(t, hi.Name, n.Name)
	}
}

// TestNearestExactTieKeepsFirst uses exactly representable frequencies so the
// two distances are bit-identical.
func TestNearestExactTieKeepsFirst(t *testing.T) {
	table := &Table{notes: []Note{{"low", 100}, {"high", 200}}}

	n, err := table.Nearest(150)
	require.NoError(t, err)
	assert.Equal(t, "low", n.Name)
}

func TestNearestOutOfRange(t *testing.T) {
	table := NewTable()

	for _, freq := range []float64{0, -10, 16.35 / 2.5, 493.88 * 2.5} {
		_, err := table.Nearest(freq)
		assert.ErrorIs(t, err, ErrOutOfRange, "freq %.2f", freq)
	}

	// Inside the one-octave margin the matcher still returns the end note.
	n, err := table.Nearest(493.88 * 1.9)
	require.NoError(t, err)
	assert.Equal(t, "B4", n.Name)
}

func TestCentsExactMatch(t *testing.T) {
	c, err := Cents(440.0, 440.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, c, centsTolerance)
}

func TestCentsKnownDeviation(t *testing.T) {
	f0 := 220.0
	f := f0 * math.Pow(2, 50.0/1200.0)

	c, err := Cents(f, f0)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, c, 1e-6)

	// One full semitone sharp.
	c, err = Cents(f0*math.Pow(2, 1.0/12.0), f0)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, c, 1e-6)
}

func TestCentsFlatIsNegative(t *testing.T) {
	c, err := Cents(435.0, 440.0)
	require.NoError(t, err)
	assert.Negative(t, c)
}

func TestCentsInvalidInput(t *testing.T) {
	_, err := Cents(0, 440.0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Cents(440.0, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
