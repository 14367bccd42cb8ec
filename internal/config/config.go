// SPDX-License-Identifier: MIT

// Package config holds runtime configuration for the tuner: audio capture
// settings, pitch detection settings, and the optional recording tap.
// Configuration is loaded from a YAML file, overridden by environment
// variables, then by command line flags.
package config

// Core constants that define the boundaries and defaults for the tuner.
const (
	// Defaults for audio capture.
	DefaultChannels        = 1           // Mono input
	DefaultDeviceID        = MinDeviceID // System default device
	DefaultFramesPerBuffer = 2048        // Frame size in samples, power of 2
	DefaultLowLatency      = false
	DefaultSampleRate      = 44100 // CD-quality audio

	// Defaults for pitch detection.
	DefaultWindow        = "hann" // FFT window function
	DefaultNoiseCutoffHz = 20.0   // Bins below this are DC/sub-audible noise
	DefaultGateThreshold = 0.0    // Amplitude gate, 0 disables

	// Cents deviation considered "in tune" by the console display.
	InTuneCents = 5.0

	// Hardware and processing limits.
	MinDeviceID     = -1     // -1 selects the system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer (power of 2)
)

// Config is the root application configuration, loaded from YAML.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	Audio     AudioConfig     `yaml:"audio"`
	Detection DetectionConfig `yaml:"detection"`
	Recording RecordingConfig `yaml:"recording"`

	// One-off command to run instead of the live tuner (e.g. "list",
	// "analyze"). Set by the CLI, not by the config file.
	Command string `yaml:"-"`
	// WAV file path for the "analyze" command.
	AnalyzeFile string `yaml:"-"`
	// Render the live bubbletea meter instead of plain console output.
	TUIMode bool `yaml:"-"`
}

// AudioConfig holds audio capture settings.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index, -1 for default
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Samples per analysis frame
	InputChannels   int     `yaml:"input_channels"`    // 1 for mono
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency from the device
}

// DetectionConfig holds pitch detection settings.
type DetectionConfig struct {
	Window        string  `yaml:"window"`          // FFT window function name (e.g. "hann")
	NoiseCutoffHz float64 `yaml:"noise_cutoff_hz"` // Ignore spectrum bins below this frequency
	GateThreshold float64 `yaml:"gate_threshold"`  // Skip frames quieter than this peak amplitude [0,1], 0 disables
}

// RecordingConfig holds settings for the optional WAV recording tap.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"`
}

// NewConfig creates a Config with default values. This is the base
// configuration before YAML, environment, and flag overrides are applied.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			InputChannels:   DefaultChannels,
			LowLatency:      DefaultLowLatency,
		},
		Detection: DetectionConfig{
			Window:        DefaultWindow,
			NoiseCutoffHz: DefaultNoiseCutoffHz,
			GateThreshold: DefaultGateThreshold,
		},
		Recording: RecordingConfig{
			Enabled:    false,
			OutputFile: "",
		},
	}
}
