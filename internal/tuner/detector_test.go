// SPDX-License-Identifier: MIT
package tuner

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tuner/internal/dsp"
	"tuner/internal/notes"
	"tuner/pkg/utils"
)

const (
	testFrameSize  = 2048
	testSampleRate = 44100.0
)

// scriptedSource plays back a fixed sequence of frames, then returns
// finalErr from every subsequent ReadFrame.
type scriptedSource struct {
	frames   [][]float64
	finalErr error
	openErr  error

	mu     sync.Mutex
	idx    int
	opened bool
	closed bool
}

func (s *scriptedSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return s.openErr
	}
	s.opened = true
	return nil
}

func (s *scriptedSource) ReadFrame() ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx < len(s.frames) {
		frame := s.frames[s.idx]
		s.idx++
		return frame, nil
	}
	return nil, s.finalErr
}

func (s *scriptedSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// toneSource produces the same pure tone frame forever.
type toneSource struct {
	frame []float64
}

func (s *toneSource) Open() error { return nil }

func (s *toneSource) ReadFrame() ([]float64, error) {
	// Roughly paces a real capture device without slowing the test down.
	time.Sleep(time.Millisecond)
	return s.frame, nil
}

func (s *toneSource) Close() error { return nil }

// recordingSink collects every result it receives.
type recordingSink struct {
	mu      sync.Mutex
	results []Result
}

func (s *recordingSink) Send(r Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return nil
}

func (s *recordingSink) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

func newTestDetector(t *testing.T, source Source, sink Sink, gateThreshold float64) *Detector {
	t.Helper()
	analyzer, err := dsp.NewAnalyzer(testFrameSize, testSampleRate, dsp.Hann)
	require.NoError(t, err)
	return NewDetector(analyzer, notes.NewTable(), source, sink, 20.0, gateThreshold)
}

func sine(freq float64) []float64 {
	return utils.GenerateSineWave(testFrameSize, testSampleRate, freq)
}

func TestDetectorPipelineOrdering(t *testing.T) {
	source := &scriptedSource{
		frames:   [][]float64{sine(220.0), sine(440.0), sine(329.63)},
		finalErr: io.EOF,
	}
	sink := &recordingSink{}
	d := newTestDetector(t, source, sink, 0)

	require.NoError(t, d.Start())
	d.Wait()

	results := sink.Results()
	require.Len(t, results, 3)
	assert.Equal(t, "A3", results[0].Note)
	assert.Equal(t, "A4", results[1].Note)
	assert.Equal(t, "E4", results[2].Note)
	for _, r := range results {
		assert.InDelta(t, 0.0, r.Cents, 50.0, "cents for a reference tone stay within half a semitone")
	}

	assert.ErrorIs(t, d.Err(), io.EOF)
	require.NoError(t, d.Stop())
	assert.Equal(t, StateIdle, d.State())
	assert.True(t, source.closed)
}

// TestDetectorIsolatedFailure injects one malformed frame between two valid
// ones; the two valid frames must still produce ordered results.
func TestDetectorIsolatedFailure(t *testing.T) {
	source := &scriptedSource{
		frames:   [][]float64{sine(440.0), {}, sine(220.0)},
		finalErr: io.EOF,
	}
	sink := &recordingSink{}
	d := newTestDetector(t, source, sink, 0)

	require.NoError(t, d.Start())
	d.Wait()
	require.NoError(t, d.Stop())

	results := sink.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "A4", results[0].Note)
	assert.Equal(t, "A3", results[1].Note)
}

// TestDetectorOutOfRangeSkipped feeds a tone far above the reference table;
// the frame is skipped without halting the run.
func TestDetectorOutOfRangeSkipped(t *testing.T) {
	source := &scriptedSource{
		frames:   [][]float64{sine(1500.0), sine(440.0)},
		finalErr: io.EOF,
	}
	sink := &recordingSink{}
	d := newTestDetector(t, source, sink, 0)

	require.NoError(t, d.Start())
	d.Wait()
	require.NoError(t, d.Stop())

	results := sink.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "A4", results[0].Note)
}

// TestDetectorSilence verifies an all-zero frame yields a deterministic
// result instead of an error or NaN.
func TestDetectorSilence(t *testing.T) {
	source := &scriptedSource{
		frames:   [][]float64{utils.GenerateSilence(testFrameSize)},
		finalErr: io.EOF,
	}
	sink := &recordingSink{}
	d := newTestDetector(t, source, sink, 0)

	require.NoError(t, d.Start())
	d.Wait()
	require.NoError(t, d.Stop())

	results := sink.Results()
	require.Len(t, results, 1)
	// The peak extractor falls back to the first bin above the 20 Hz cutoff
	// (~21.5 Hz at this frame size), whose nearest reference note is F0.
	assert.Equal(t, "F0", results[0].Note)
	assert.False(t, results[0].Frequency < 20.0)
}

func TestDetectorStopJoinsWorker(t *testing.T) {
	source := &toneSource{frame: sine(440.0)}
	sink := &recordingSink{}
	d := newTestDetector(t, source, sink, 0)

	require.NoError(t, d.Start())
	assert.Equal(t, StateRunning, d.State())

	require.Eventually(t, func() bool {
		return len(sink.Results()) >= 3
	}, time.Second, time.Millisecond, "expected results while running")

	require.NoError(t, d.Stop())
	assert.Equal(t, StateIdle, d.State())

	// No result may be emitted after Stop returns.
	count := len(sink.Results())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, count, len(sink.Results()))

	// Stop when idle is a no-op.
	require.NoError(t, d.Stop())
	assert.Equal(t, StateIdle, d.State())
}

func TestDetectorRestartAfterStop(t *testing.T) {
	source := &toneSource{frame: sine(220.0)}
	sink := &recordingSink{}
	d := newTestDetector(t, source, sink, 0)

	for range 3 {
		require.NoError(t, d.Start())
		require.Eventually(t, func() bool {
			return len(sink.Results()) > 0
		}, time.Second, time.Millisecond)
		require.NoError(t, d.Stop())
		assert.Equal(t, StateIdle, d.State())
	}
}

func TestDetectorStartWhileRunning(t *testing.T) {
	source := &toneSource{frame: sine(440.0)}
	d := newTestDetector(t, source, &recordingSink{}, 0)

	require.NoError(t, d.Start())
	assert.Error(t, d.Start())
	require.NoError(t, d.Stop())
}

func TestDetectorOpenFailure(t *testing.T) {
	openErr := errors.New("device unavailable")
	source := &scriptedSource{openErr: openErr}
	d := newTestDetector(t, source, &recordingSink{}, 0)

	err := d.Start()
	require.ErrorIs(t, err, openErr)
	assert.Equal(t, StateIdle, d.State())
}

// TestDetectorSourceLost verifies an acquisition failure halts the run and
// surfaces the error, and that Stop still returns the detector to idle.
func TestDetectorSourceLost(t *testing.T) {
	sourceErr := errors.New("stream died")
	source := &scriptedSource{finalErr: sourceErr}
	sink := &recordingSink{}
	d := newTestDetector(t, source, sink, 0)

	require.NoError(t, d.Start())
	d.Wait()

	assert.ErrorIs(t, d.Err(), sourceErr)
	assert.Empty(t, sink.Results())

	require.NoError(t, d.Stop())
	assert.Equal(t, StateIdle, d.State())
	assert.True(t, source.closed)
}

func TestDetectorAmplitudeGate(t *testing.T) {
	quiet := make([]float64, testFrameSize)
	for i, s := range sine(440.0) {
		quiet[i] = s * 0.1
	}
	source := &scriptedSource{
		frames:   [][]float64{quiet, sine(440.0)},
		finalErr: io.EOF,
	}
	sink := &recordingSink{}
	d := newTestDetector(t, source, sink, 0.5)

	require.NoError(t, d.Start())
	d.Wait()
	require.NoError(t, d.Stop())

	results := sink.Results()
	require.Len(t, results, 1, "quiet frame must be gated out")
	assert.Equal(t, "A4", results[0].Note)
}
