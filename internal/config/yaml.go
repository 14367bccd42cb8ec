// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"tuner/pkg/bitint"
)

// LoadConfig loads configuration from a YAML file at path. If path is empty
// it searches the default location ("tuner.yaml"); if no file is found the
// built-in defaults are used. Environment variable overrides are applied
// after loading, and the final configuration is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		if _, err := os.Stat("tuner.yaml"); err == nil {
			path = "tuner.yaml"
		} else {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration against the supported limits.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.0f outside supported range [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if !bitint.IsPowerOfTwo(c.Audio.FramesPerBuffer) {
		return fmt.Errorf("audio.frames_per_buffer must be a power of 2, got %d (try %d)",
			c.Audio.FramesPerBuffer, bitint.NextPowerOfTwo(c.Audio.FramesPerBuffer))
	}
	if c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer %d exceeds maximum %d", c.Audio.FramesPerBuffer, MaxBufferFrames)
	}
	if c.Audio.InputChannels < 1 {
		return fmt.Errorf("audio.input_channels must be >= 1, got %d", c.Audio.InputChannels)
	}
	if c.Detection.NoiseCutoffHz < 0 {
		return fmt.Errorf("detection.noise_cutoff_hz must be >= 0, got %f", c.Detection.NoiseCutoffHz)
	}
	if c.Detection.GateThreshold < 0 || c.Detection.GateThreshold > 1 {
		return fmt.Errorf("detection.gate_threshold must be in [0, 1], got %f", c.Detection.GateThreshold)
	}
	if c.Recording.Enabled && c.Recording.OutputFile == "" {
		return fmt.Errorf("recording.output_file must be set when recording is enabled")
	}
	return nil
}

// applyEnvOverrides applies TUNER_* environment variables on top of the
// loaded configuration.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("TUNER_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("TUNER_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := os.LookupEnv("TUNER_SAMPLE_RATE"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Audio.SampleRate = fVal
		}
	}
	if val, ok := os.LookupEnv("TUNER_INPUT_DEVICE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Audio.InputDevice = iVal
		}
	}
}
