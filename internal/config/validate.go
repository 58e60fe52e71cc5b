package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkspaceDir == "" {
		return errors.New("paths.workspace_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.WorkspaceDir == c.Paths.OutputDir {
		return errors.New("paths.workspace_dir and paths.output_dir must differ (cleanup drains the workspace)")
	}
	return nil
}

func (c *Config) validateAudio() error {
	switch c.Audio.SampleRate {
	case 22050, 24000, 32000, 44100, 48000:
	default:
		return fmt.Errorf("audio.sample_rate %d is not a supported AAC rate", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels)
	}
	if c.Audio.Bitrate == "" {
		return errors.New("audio.bitrate must be set (e.g. \"128k\")")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.TimeoutSeconds <= 0 {
		return errors.New("fetch.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
