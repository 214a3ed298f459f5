package cli

import (
	"github.com/rileyhilliard/storelens/internal/config"
	"github.com/rileyhilliard/storelens/internal/dashboard"
	"github.com/rileyhilliard/storelens/internal/fetch"
	"github.com/rileyhilliard/storelens/internal/logger"
	"github.com/rileyhilliard/storelens/internal/source"
	"github.com/rileyhilliard/storelens/internal/ui"
	"github.com/rileyhilliard/storelens/internal/viewmodel"
)

// app carries the loaded config and the pieces every dashboard command needs.
type app struct {
	cfg      *config.Config
	cfgPath  string
	registry *source.Registry
	builder  *viewmodel.Builder
	log      logger.Logger
}

// loadApp loads and validates config, then builds the source registry.
func loadApp(log logger.Logger) (*app, error) {
	cfg, path, err := loadConfig()
	if err != nil {
		return nil, err
	}

	reg, err := source.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = defaultLogger()
	}
	if path != "" {
		log.Debug("config loaded from %s", path)
	}

	return &app{
		cfg:      cfg,
		cfgPath:  path,
		registry: reg,
		builder:  viewmodel.NewBuilder(cfg.Output.Currency),
		log:      log,
	}, nil
}

// loadConfig finds, loads and validates config, then applies output.color.
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, "", err
	}
	if err := config.Validate(cfg, source.TagStrings()...); err != nil {
		return nil, path, err
	}
	if !noColor {
		ui.SetColorMode(cfg.Output.Color)
	}
	return cfg, path, nil
}

func defaultLogger() logger.Logger {
	if verbose {
		return logger.NewEnvLogger("[storelens]")
	}
	return logger.Default()
}

// aggregator builds a fetch aggregator from config.
func (a *app) aggregator(opts ...fetch.Option) *fetch.Aggregator {
	return fetch.NewFromConfig(a.cfg, append([]fetch.Option{fetch.WithLogger(a.log)}, opts...)...)
}

// controller builds a dashboard controller over f.
func (a *app) controller(f dashboard.Fetcher) *dashboard.Controller {
	return dashboard.NewController(a.registry, f, a.builder, a.log)
}
