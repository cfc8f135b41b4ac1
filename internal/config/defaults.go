package config

const (
	defaultWorkDir = "~/.local/share/cutroom/work"
	defaultDataDir = "~/.local/share/cutroom/data"
	defaultLogDir  = "~/.local/share/cutroom/logs"

	defaultFFprobeBinary      = "ffprobe"
	defaultFFmpegBinary       = "ffmpeg"
	defaultOffsetFinderBinary = "audio-offset-finder"

	defaultProbeTimeout     = 120
	defaultCorrelateTimeout = 600
	defaultDownloadTimeout  = 300
	defaultMaxParallel      = 2

	defaultRenderPollInterval   = 3
	defaultRenderRequestTimeout = 30

	defaultNtfyTimeout = 10
)

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Tools: Tools{
			FFprobe:          defaultFFprobeBinary,
			FFmpeg:           defaultFFmpegBinary,
			OffsetFinder:     defaultOffsetFinderBinary,
			ProbeTimeout:     defaultProbeTimeout,
			CorrelateTimeout: defaultCorrelateTimeout,
		},
		Sync: Sync{
			MaxParallel:     defaultMaxParallel,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Render: Render{
			PollInterval:   defaultRenderPollInterval,
			RequestTimeout: defaultRenderRequestTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			Sync:           true,
			Render:         true,
			Errors:         true,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
