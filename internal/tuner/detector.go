// SPDX-License-Identifier: MIT

/*
Package tuner implements the continuous pitch detection loop: it pulls
fixed-size sample frames from an audio source, runs each through the spectral
analyzer, maps the dominant frequency to the nearest reference note, and
emits the result with its cents deviation to an output sink.

Concurrency model:
  - Exactly one background worker runs the capture+analyze+report loop.
  - Frames are processed strictly one at a time, in arrival order; results
    reach the sink in the same order.
  - The atomic run flag is the only mutable state shared with the caller and
    the sole cancellation mechanism. It is checked before each new frame; an
    in-progress frame always completes.
  - Stop joins the worker before touching the source, so the source is never
    read concurrently with its own teardown.
*/
package tuner

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"tuner/internal/dsp"
	applog "tuner/internal/log"
	"tuner/internal/notes"
)

// State is the detector lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Result is one per-frame detection report: the matched note, the detected
// peak frequency, and the signed tuning deviation in cents (positive means
// sharp). Results are transient; nothing is persisted.
type Result struct {
	Note      string  `json:"note"`
	Frequency float64 `json:"frequency"` // Hz
	Cents     float64 `json:"cents"`
}

// Source supplies fixed-length sample frames from an audio stream. ReadFrame
// blocks until a full frame is available; any error it returns is fatal to
// the current run.
type Source interface {
	Open() error
	ReadFrame() ([]float64, error)
	Close() error
}

// Sink receives detection results as they are produced, fire-and-forget.
// Send errors are logged, never fatal.
type Sink interface {
	Send(Result) error
}

// Detector orchestrates the pitch detection pipeline over a Source.
type Detector struct {
	analyzer      *dsp.Analyzer
	table         *notes.Table
	source        Source
	sink          Sink
	noiseCutoffHz float64
	gateThreshold float64 // skip frames quieter than this peak amplitude, 0 disables

	running atomic.Bool
	state   atomic.Int32
	wg      sync.WaitGroup

	mu     sync.Mutex
	runErr error
}

// NewDetector creates a Detector. The analyzer's frame size must match the
// frames produced by source. A gateThreshold of 0 disables the amplitude
// gate, so silent frames still produce results.
func NewDetector(analyzer *dsp.Analyzer, table *notes.Table, source Source, sink Sink, noiseCutoffHz, gateThreshold float64) *Detector {
	return &Detector{
		analyzer:      analyzer,
		table:         table,
		source:        source,
		sink:          sink,
		noiseCutoffHz: noiseCutoffHz,
		gateThreshold: gateThreshold,
	}
}

// State returns the current lifecycle state.
func (d *Detector) State() State {
	return State(d.state.Load())
}

// Err returns the fatal source error that halted the last run, if any.
func (d *Detector) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runErr
}

func (d *Detector) setErr(err error) {
	d.mu.Lock()
	d.runErr = err
	d.mu.Unlock()
}

// Start transitions Idle -> Running: it opens the audio source and spawns
// the worker goroutine. Returns an error if the detector is not idle or the
// source cannot be opened.
func (d *Detector) Start() error {
	if !d.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return fmt.Errorf("detector is %s, not idle", d.State())
	}
	d.setErr(nil)

	if err := d.source.Open(); err != nil {
		d.state.Store(int32(StateIdle))
		return fmt.Errorf("failed to open audio source: %w", err)
	}

	d.running.Store(true)
	d.wg.Add(1)
	go d.run()

	applog.Infof("Detector: running (frame size %d, sample rate %.0f Hz)",
		d.analyzer.FrameSize(), d.analyzer.SampleRate())
	return nil
}

// Stop transitions Running -> Stopping -> Idle: it clears the run flag,
// joins the worker, then releases the source. No result is emitted after
// Stop returns. Calling Stop when the detector is not running is a no-op.
func (d *Detector) Stop() error {
	if !d.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return nil
	}

	d.running.Store(false)
	d.wg.Wait()

	err := d.source.Close()
	d.state.Store(int32(StateIdle))

	if err != nil {
		return fmt.Errorf("failed to close audio source: %w", err)
	}
	applog.Infof("Detector: stopped")
	return nil
}

// Wait blocks until the worker goroutine has exited, either because Stop was
// called or because the source failed (e.g. end of a file source). The
// caller still owns the Stop call to release the source.
func (d *Detector) Wait() {
	d.wg.Wait()
}

// run is the worker loop. One frame per iteration: acquire, analyze, match,
// emit. Per-frame errors are logged and skipped; acquisition errors are
// fatal and halt the loop.
func (d *Detector) run() {
	defer d.wg.Done()

	for d.running.Load() {
		frame, err := d.source.ReadFrame()
		if err != nil {
			d.setErr(err)
			// A drained file source ends with io.EOF; that is a normal end
			// of run, not a failure.
			if d.running.Load() && !errors.Is(err, io.EOF) {
				applog.Errorf("Detector: audio source lost: %v", err)
			}
			return
		}
		if !d.running.Load() {
			return
		}

		if d.gateThreshold > 0 && peakAmplitude(frame) < d.gateThreshold {
			continue
		}

		result, err := d.process(frame)
		if err != nil {
			applog.Warnf("Detector: skipping frame: %v", err)
			continue
		}

		if err := d.sink.Send(result); err != nil {
			applog.Warnf("Detector: sink rejected result: %v", err)
		}
	}
}

// process runs one frame through the full pipeline.
func (d *Detector) process(frame []float64) (Result, error) {
	magnitude, err := d.analyzer.Analyze(frame)
	if err != nil {
		return Result{}, err
	}

	peak, err := dsp.PeakFrequency(magnitude, d.analyzer.FrameSize(), d.analyzer.SampleRate(), d.noiseCutoffHz)
	if err != nil {
		return Result{}, err
	}

	note, err := d.table.Nearest(peak)
	if err != nil {
		return Result{}, err
	}

	cents, err := notes.Cents(peak, note.Frequency)
	if err != nil {
		return Result{}, err
	}

	return Result{Note: note.Name, Frequency: peak, Cents: cents}, nil
}

func peakAmplitude(frame []float64) float64 {
	var peak float64
	for _, s := range frame {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}
