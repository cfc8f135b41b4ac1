package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"cutroom/internal/audio"
	"cutroom/internal/config"
	"cutroom/internal/logging"
	"cutroom/internal/notifications"
	"cutroom/internal/render"
	"cutroom/internal/store"
	"cutroom/internal/syncengine"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) loggerValue() *slog.Logger {
	logger, err := c.ensureLogger()
	if err != nil || logger == nil {
		return logging.NewNop()
	}
	return logger
}

// withStore opens the sqlite store for the duration of one command.
func (c *commandContext) withStore(fn func(*store.Store) error) error {
	if _, err := c.ensureConfig(); err != nil {
		return err
	}
	st, err := store.Open(c.config)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(st)
}

// withEditLock serializes timeline-mutating commands across processes on this
// host. Last save still wins; the lock only prevents interleaved writes.
func (c *commandContext) withEditLock(fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "edit.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire edit lock: %w", err)
	}
	if !ok {
		return errors.New("another cutroom process is editing; retry once it finishes")
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

func (c *commandContext) notifier() notifications.Service {
	cfg, err := c.ensureConfig()
	if err != nil || cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return notifications.NewService(cfg)
}

func (c *commandContext) newEngine(st *store.Store) (*syncengine.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.loggerValue()
	executor := audio.NewCommandExecutor()
	meter := audio.NewMeter(executor, cfg.Tools.FFprobe, cfg.Tools.FFmpeg,
		time.Duration(cfg.Tools.ProbeTimeout)*time.Second, logger)
	return syncengine.New(syncengine.Options{
		Store:       st,
		Selector:    audio.NewSelector(meter, logger),
		Correlator:  syncengine.NewOffsetFinder(executor, cfg.Tools.OffsetFinder, time.Duration(cfg.Tools.CorrelateTimeout)*time.Second),
		Downloader:  syncengine.NewHTTPDownloader(time.Duration(cfg.Sync.DownloadTimeout) * time.Second),
		WorkDir:     cfg.Paths.WorkDir,
		MaxParallel: cfg.Sync.MaxParallel,
		Logger:      logger,
	}), nil
}

func (c *commandContext) newOrchestrator(st *store.Store) (*render.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	farm, err := render.NewHTTPFarm(cfg.Render.BaseURL, cfg.Render.APIToken,
		time.Duration(cfg.Render.RequestTimeout)*time.Second)
	if err != nil {
		return nil, err
	}
	poll := time.Duration(cfg.Render.PollInterval) * time.Second
	return render.NewOrchestrator(st, farm, poll, c.loggerValue()), nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
