package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"dripfeed/internal/config"
	"dripfeed/internal/curriculum"
	"dripfeed/internal/delivery"
	"dripfeed/internal/logging"
	"dripfeed/internal/progress"
	"dripfeed/internal/scheduler"
	"dripfeed/internal/telegram"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
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

// app bundles the composed runtime dependencies shared by the run, tick,
// and send commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	repo     *curriculum.Repository
	store    progress.Store
	client   *telegram.Client
	pipeline *delivery.Pipeline
}

func (c *commandContext) openApp() (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Dir:    cfg.Logging.Dir,
	})
	if err != nil {
		return nil, err
	}

	repo, err := curriculum.Load(cfg)
	if err != nil {
		return nil, err
	}

	store, err := progress.Open(cfg)
	if err != nil {
		return nil, err
	}

	clientCfg := telegram.DefaultClientConfig(cfg.Telegram.Token)
	clientCfg.BaseURL = cfg.Telegram.BaseURL
	clientCfg.Timeout = time.Duration(cfg.Telegram.RequestTimeout) * time.Second
	clientCfg.RetryAttempts = cfg.Telegram.RetryAttempts
	clientCfg.Logger = logger
	client := telegram.NewClient(clientCfg)

	pipeline := delivery.New(repo, client, logger, cfg.Schedule.ChunkLimit)

	return &app{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		store:    store,
		client:   client,
		pipeline: pipeline,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close progress store", logging.Error(err))
	}
}

func (a *app) schedulerOptions() scheduler.Options {
	return scheduler.Options{
		CronExpr:     a.cfg.Schedule.Cron,
		Timezone:     a.cfg.Schedule.Timezone,
		SendDelay:    time.Duration(a.cfg.Schedule.SendDelaySeconds) * time.Second,
		TotalLessons: a.repo.TotalLessons(),
	}
}
