package config

const (
	defaultWorkspaceDir        = "~/.local/share/stitch/workspace"
	defaultOutputDir           = "~/.local/share/stitch/output"
	defaultLogDir              = "~/.local/share/stitch/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultAudioSampleRate     = 44100
	defaultAudioChannels       = 2
	defaultAudioBitrate        = "128k"
	defaultFetchTimeoutSeconds = 120
	defaultFetchUserAgent      = "stitch/dev"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			OutputDir:    defaultOutputDir,
			LogDir:       defaultLogDir,
		},
		Audio: Audio{
			SampleRate: defaultAudioSampleRate,
			Channels:   defaultAudioChannels,
			Bitrate:    defaultAudioBitrate,
		},
		Fetch: Fetch{
			TimeoutSeconds: defaultFetchTimeoutSeconds,
			UserAgent:      defaultFetchUserAgent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
