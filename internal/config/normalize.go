package config

import "strings"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeSync()
	c.normalizeRender()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(valueOr(c.Paths.WorkDir, defaultWorkDir)); err != nil {
		return err
	}
	if c.Paths.DataDir, err = expandPath(valueOr(c.Paths.DataDir, defaultDataDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(valueOr(c.Paths.LogDir, defaultLogDir)); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFprobe = valueOr(c.Tools.FFprobe, defaultFFprobeBinary)
	c.Tools.FFmpeg = valueOr(c.Tools.FFmpeg, defaultFFmpegBinary)
	c.Tools.OffsetFinder = valueOr(c.Tools.OffsetFinder, defaultOffsetFinderBinary)
	if c.Tools.ProbeTimeout <= 0 {
		c.Tools.ProbeTimeout = defaultProbeTimeout
	}
	if c.Tools.CorrelateTimeout <= 0 {
		c.Tools.CorrelateTimeout = defaultCorrelateTimeout
	}
}

func (c *Config) normalizeSync() {
	if c.Sync.MaxParallel <= 0 {
		c.Sync.MaxParallel = defaultMaxParallel
	}
	if c.Sync.DownloadTimeout <= 0 {
		c.Sync.DownloadTimeout = defaultDownloadTimeout
	}
}

func (c *Config) normalizeRender() {
	c.Render.BaseURL = strings.TrimRight(strings.TrimSpace(c.Render.BaseURL), "/")
	c.Render.APIToken = strings.TrimSpace(c.Render.APIToken)
	if c.Render.PollInterval <= 0 {
		c.Render.PollInterval = defaultRenderPollInterval
	}
	if c.Render.RequestTimeout <= 0 {
		c.Render.RequestTimeout = defaultRenderRequestTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(valueOr(c.Logging.Format, "console"))
	c.Logging.Level = strings.ToLower(valueOr(c.Logging.Level, "info"))
}

func valueOr(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
