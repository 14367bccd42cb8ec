// SPDX-License-Identifier: MIT
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"tuner/internal/config"
	"tuner/pkg/build"
)

// ParseArgs builds the runtime configuration from the config file, the
// environment, and command line flags, in that order of precedence. The
// returned Config carries the selected command ("" for the live tuner).
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()
	options := config.NewConfig()

	var (
		configPath  string
		deviceID    int
		sampleRate  float64
		frames      int
		channels    int
		lowLatency  bool
		window      string
		noiseCutoff float64
		gate        float64
		record      bool
		outputFile  string
		tuiMode     bool
		verbose     bool
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time instrument tuner",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			*options = *loaded

			// Flags the user actually set win over file and environment.
			flags := cmd.Flags()
			if flags.Changed("device") {
				options.Audio.InputDevice = deviceID
			}
			if flags.Changed("sample-rate") {
				options.Audio.SampleRate = sampleRate
			}
			if flags.Changed("frames-per-buffer") {
				options.Audio.FramesPerBuffer = frames
			}
			if flags.Changed("channels") {
				options.Audio.InputChannels = channels
			}
			if flags.Changed("low-latency") {
				options.Audio.LowLatency = lowLatency
			}
			if flags.Changed("window") {
				options.Detection.Window = window
			}
			if flags.Changed("noise-cutoff") {
				options.Detection.NoiseCutoffHz = noiseCutoff
			}
			if flags.Changed("gate") {
				options.Detection.GateThreshold = gate
			}
			if flags.Changed("record") {
				options.Recording.Enabled = record
			}
			if flags.Changed("output") {
				options.Recording.OutputFile = outputFile
			}
			if flags.Changed("verbose") && verbose {
				options.Debug = true
				options.LogLevel = "debug"
			}
			options.TUIMode = tuiMode

			if options.Recording.Enabled && options.Recording.OutputFile == "" {
				options.Recording.OutputFile = "recording-" +
					time.Now().UTC().Format("02-01-2006-150405") + ".wav"
			}

			return options.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Live tuner, no subcommand.
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Detect pitches in a WAV file instead of live input",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "analyze"
			options.AnalyzeFile = args[0]
		},
	}
	rootCmd.AddCommand(analyzeCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML config file (default: tuner.yaml if present)")

	// Audio device configuration
	rootCmd.PersistentFlags().IntVarP(&deviceID, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().Float64VarP(&sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&frames, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"Samples per analysis frame, must be a power of 2")
	rootCmd.PersistentFlags().IntVarP(&channels, "channels", "c", config.DefaultChannels,
		"Number of input channels to open (analysis uses the first)")
	rootCmd.PersistentFlags().BoolVarP(&lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")

	// Detection configuration
	rootCmd.PersistentFlags().StringVarP(&window, "window", "w", config.DefaultWindow,
		"FFT window function (hann, hamming, blackman, nuttall)")
	rootCmd.PersistentFlags().Float64Var(&noiseCutoff, "noise-cutoff", config.DefaultNoiseCutoffHz,
		"Ignore spectrum content below this frequency (Hz)")
	rootCmd.PersistentFlags().Float64Var(&gate, "gate", config.DefaultGateThreshold,
		"Skip frames with peak amplitude below this threshold [0,1], 0 disables")

	// Recording configuration
	rootCmd.PersistentFlags().BoolVarP(&record, "record", "r", false,
		"Record captured audio to a WAV file while tuning")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "",
		"Recording file name. Default is recording-DD-MM-YYYY-HHMMSS.wav")

	// Display configuration
	rootCmd.Flags().BoolVarP(&tuiMode, "tui", "t", false,
		"Render a full-screen tuning meter instead of plain console output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}
