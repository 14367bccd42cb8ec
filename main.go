// SPDX-License-Identifier: MIT
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"tuner/cmd"
	"tuner/internal/audio"
	"tuner/internal/config"
	"tuner/internal/dsp"
	applog "tuner/internal/log"
	"tuner/internal/notes"
	"tuner/internal/transport"
	"tuner/internal/tui"
	"tuner/internal/tuner"
	"tuner/pkg/build"
)

// main is the entry point for the tuner.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Parse command line arguments and configuration
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Open the audio source
//   - Run the detection loop
//   - Start recording if enabled
//   - Render results to the console or TUI meter
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop recording if active
//   - Stop the detection loop and clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	build.Initialize()

	// One thread for the capture/detection loop, one for UI and I/O.
	runtime.GOMAXPROCS(2)

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("Main: %v", err)
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	switch cfg.Command {
	case "list":
		if err := runList(); err != nil {
			applog.Fatalf("Main: %v", err)
		}
	case "analyze":
		if err := runAnalyze(cfg); err != nil {
			applog.Fatalf("Main: %v", err)
		}
	default:
		if err := runLive(cfg); err != nil {
			applog.Fatalf("Main: %v", err)
		}
	}
}

// runList prints the host's audio devices.
func runList() error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()
	return audio.ListDevices()
}

// runAnalyze runs the detection pipeline over a WAV file and prints one
// line per frame. The run ends when the file is exhausted.
func runAnalyze(cfg *config.Config) error {
	source := audio.NewFileSource(cfg.AnalyzeFile, cfg.Audio.FramesPerBuffer)
	if err := source.Open(); err != nil {
		return err
	}
	defer source.Close()

	detector, err := newDetector(cfg, source.SampleRate(), source,
		transport.NewConsoleSink(os.Stdout, config.InTuneCents))
	if err != nil {
		return err
	}

	if err := detector.Start(); err != nil {
		return err
	}
	detector.Wait()
	fmt.Println()

	if err := detector.Stop(); err != nil {
		return err
	}
	// Running out of file is the normal end of an analyze run.
	if err := detector.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// runLive captures from the configured input device and displays results
// until interrupted.
func runLive(cfg *config.Config) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	source := audio.NewCaptureSource(cfg)

	var sink tuner.Sink
	var program *tea.Program
	if cfg.TUIMode {
		program = tea.NewProgram(tui.NewMeterModel(config.InTuneCents), tea.WithAltScreen())
		sink = tui.NewMeterSink(program)
		if cfg.Debug {
			// The meter owns the terminal, so debug copies go to the log.
			sink = transport.NewTee(sink, transport.NewLogSink())
		}
	} else {
		sink = transport.NewConsoleSink(os.Stdout, config.InTuneCents)
	}

	detector, err := newDetector(cfg, cfg.Audio.SampleRate, source, sink)
	if err != nil {
		return err
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	if err := detector.Start(); err != nil {
		return err
	}

	if cfg.Recording.Enabled {
		if err := source.StartRecording(cfg.Recording.OutputFile); err != nil {
			detector.Stop()
			return err
		}
	}

	if program != nil {
		// The meter owns the terminal; detection runs underneath it and
		// the run ends when the meter quits.
		if _, err := program.Run(); err != nil {
			detector.Stop()
			return err
		}
	} else {
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		<-done
		fmt.Println()
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if cfg.Recording.Enabled {
		if err := source.StopRecording(); err != nil {
			applog.Errorf("Main: error stopping recording: %v", err)
		} else {
			fmt.Printf("Recording saved to: %s\n", cfg.Recording.OutputFile)
		}
	}

	if err := detector.Stop(); err != nil {
		return err
	}
	return detector.Err()
}

// newDetector assembles the analysis pipeline from the configuration.
func newDetector(cfg *config.Config, sampleRate float64, source tuner.Source, sink tuner.Sink) (*tuner.Detector, error) {
	windowType, err := dsp.ParseWindowFunc(cfg.Detection.Window)
	if err != nil {
		return nil, err
	}

	analyzer, err := dsp.NewAnalyzer(cfg.Audio.FramesPerBuffer, sampleRate, windowType)
	if err != nil {
		return nil, err
	}

	return tuner.NewDetector(analyzer, notes.NewTable(), source, sink,
		cfg.Detection.NoiseCutoffHz, cfg.Detection.GateThreshold), nil
}
