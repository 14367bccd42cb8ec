// SPDX-License-Identifier: MIT

// Package notes maps frequencies to the nearest note of the equal-tempered
// chromatic scale and computes tuning deviation in cents.
package notes

// Note pairs a note name with its 12-tone equal temperament reference
// frequency (A4 = 440 Hz).
type Note struct {
	Name      string
	Frequency float64 // Hz
}

// referenceNotes is the reference table, C0 through B4, in ascending
// chromatic order. It is read-only after init and safe for concurrent use
// without locking.
var referenceNotes = []Note{
	{"C0", 16.35}, {"C#0", 17.32}, {"D0", 18.35}, {"D#0", 19.45},
	{"E0", 20.60}, {"F0", 21.83}, {"F#0", 23.12}, {"G0", 24.50},
	{"G#0", 25.96}, {"A0", 27.50}, {"A#0", 29.14}, {"B0", 30.87},
	{"C1", 32.70}, {"C#1", 34.65}, {"D1", 36.71}, {"D#1", 38.89},
	{"E1", 41.20}, {"F1", 43.65}, {"F#1", 46.25}, {"G1", 49.00},
	{"G#1", 51.91}, {"A1", 55.00}, {"A#1", 58.27}, {"B1", 61.74},
	{"C2", 65.41}, {"C#2", 69.30}, {"D2", 73.42}, {"D#2", 77.78},
	{"E2", 82.41}, {"F2", 87.31}, {"F#2", 92.50}, {"G2", 98.00},
	{"G#2", 103.83}, {"A2", 110.00}, {"A#2", 116.54}, {"B2", 123.47},
	{"C3", 130.81}, {"C#3", 138.59}, {"D3", 146.83}, {"D#3", 155.56},
	{"E3", 164.81}, {"F3", 174.61}, {"F#3", 185.00}, {"G3", 196.00},
	{"G#3", 207.65}, {"A3", 220.00}, {"A#3", 233.08}, {"B3", 246.94},
	{"C4", 261.63}, {"C#4", 277.18}, {"D4", 293.66}, {"D#4", 311.13},
	{"E4", 329.63}, {"F4", 349.23}, {"F#4", 369.99}, {"G4", 392.00},
	{"G#4", 415.30}, {"A4", 440.00}, {"A#4", 466.16}, {"B4", 493.88},
}

// Table is the immutable note reference table. Construct one with NewTable
// at startup and share it freely; it is never mutated.
type Table struct {
	notes []Note
}

// NewTable returns the chromatic reference table, C0..B4.
func NewTable() *Table {
	return &Table{notes: referenceNotes}
}

// Notes returns the table entries in ascending chromatic order. Callers must
// not modify the returned slice.
func (t *Table) Notes() []Note {
	return t.notes
}

// Span returns the lowest and highest reference frequencies in the table.
func (t *Table) Span() (low, high float64) {
	return t.notes[0].Frequency, t.notes[len(t.notes)-1].Frequency
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return len(t.notes)
}
