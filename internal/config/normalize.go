package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves ~ and environment variables and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	expanded := os.ExpandEnv(trimmed)
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("absolutize %q: %w", expanded, err)
	}
	return abs, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.WorkspaceDir, err = ExpandPath(c.Paths.WorkspaceDir); err != nil {
		return err
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Engine.FFmpegBinary = strings.TrimSpace(c.Engine.FFmpegBinary)
	c.Engine.FFprobeBinary = strings.TrimSpace(c.Engine.FFprobeBinary)
	c.Audio.Bitrate = strings.TrimSpace(c.Audio.Bitrate)
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
