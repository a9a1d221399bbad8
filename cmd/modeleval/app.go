package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spboyer/modeleval/internal/cache"
	"github.com/spboyer/modeleval/internal/execution"
	"github.com/spboyer/modeleval/internal/history"
	"github.com/spboyer/modeleval/internal/models"
	"github.com/spboyer/modeleval/internal/projectconfig"
	"github.com/spboyer/modeleval/internal/recommend"
	"github.com/spboyer/modeleval/internal/telemetry"
)

// app bundles the collaborators built from configuration for one command.
type app struct {
	cfg       *projectconfig.ProjectConfig
	registry  *recommend.Registry
	store     *history.Store
	persister history.Persister
	engine    *recommend.Engine
	metrics   *telemetry.Metrics
	models    []string

	// gen is built lazily; commands that never call a model never start one.
	gen execution.Generator
}

// loadConfig reads the explicit --config path or searches upward from the
// working directory, then applies the --engine override.
func loadConfig(opts *globalOptions) (*projectconfig.ProjectConfig, error) {
	var (
		cfg *projectconfig.ProjectConfig
		err error
	)
	if opts.configPath != "" {
		cfg, err = projectconfig.LoadFile(opts.configPath)
	} else {
		cfg, err = projectconfig.Load(".")
	}
	if err != nil {
		return nil, err
	}

	if opts.engine != "" {
		cfg.Engine.Kind = strings.ToLower(opts.engine)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newApp loads configuration, the model registry and the performance history.
func newApp(ctx context.Context, opts *globalOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("building model registry: %w", err)
	}

	selected, err := selectModels(registry, opts.models)
	if err != nil {
		return nil, err
	}

	persister, err := history.Open(cfg.History.Backend, cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	store := history.NewStore()
	if err := history.LoadInto(ctx, persister, store); err != nil {
		closePersister(persister)
		return nil, fmt.Errorf("loading history: %w", err)
	}

	engine := recommend.NewEngine(registry, store,
		recommend.WithPreferenceBonus(*cfg.Recommend.PreferenceBonus),
		recommend.WithComplexityBonus(*cfg.Recommend.ComplexityBonus),
		recommend.WithPrior(*cfg.Recommend.Prior),
	)

	return &app{
		cfg:       cfg,
		registry:  registry,
		store:     store,
		persister: persister,
		engine:    engine,
		metrics:   telemetry.New(),
		models:    selected,
	}, nil
}

// generator returns the configured inference backend, building it on first use.
func (a *app) generator() (execution.Generator, error) {
	if a.gen != nil {
		return a.gen, nil
	}
	gen, err := newGenerator(a.cfg)
	if err != nil {
		return nil, err
	}
	if a.cfg.Cache.Enabled != nil && *a.cfg.Cache.Enabled {
		slog.Debug("response cache enabled", "dir", a.cfg.Cache.Dir)
		gen = execution.NewCachedGenerator(gen, cache.New(a.cfg.Cache.Dir))
	}
	a.gen = gen
	return gen, nil
}

// saveHistory persists the store. The in-memory history stays valid when it
// fails.
func (a *app) saveHistory(ctx context.Context) error {
	if err := history.SaveFrom(ctx, a.persister, a.store); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// close releases the generator and the history backend.
func (a *app) close(ctx context.Context) {
	if a.gen != nil {
		if err := execution.Shutdown(ctx, a.gen); err != nil {
			slog.Warn("failed to shut down inference engine", "error", err)
		}
	}
	closePersister(a.persister)
}

func closePersister(p history.Persister) {
	if c, ok := p.(history.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close history", "error", err)
		}
	}
}

// buildRegistry turns configured models into a registry. Without configured
// models the built-in reference registry is used.
func buildRegistry(cfg *projectconfig.ProjectConfig) (*recommend.Registry, error) {
	if len(cfg.Models) == 0 {
		return recommend.DefaultRegistry(), nil
	}

	profiles := make([]recommend.ModelProfile, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		speed, err := models.ParseSpeedTier(m.Speed)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", m.Name, err)
		}
		profiles = append(profiles, recommend.ModelProfile{
			Name:           m.Name,
			AvgLengthWords: m.AvgLengthWords,
			Speed:          speed,
			Style:          m.Style,
			Strengths:      m.Strengths,
		})
	}

	roles := make(map[recommend.Role]string, len(recommend.RequiredRoles))
	for role, model := range map[recommend.Role]string{
		recommend.RoleFast:       cfg.Roles.Fast,
		recommend.RoleDetailed:   cfg.Roles.Detailed,
		recommend.RoleStructured: cfg.Roles.Structured,
	} {
		if model != "" {
			roles[role] = model
		}
	}
	return recommend.NewRegistry(profiles, roles)
}

// selectModels validates --model values against the registry. No values
// means every registered model, in registration order.
func selectModels(registry *recommend.Registry, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return registry.Names(), nil
	}
	out := make([]string, 0, len(requested))
	for _, name := range requested {
		name = strings.TrimSpace(name)
		if _, ok := registry.Profile(name); !ok {
			return nil, fmt.Errorf("model %q is not registered (known: %s): %w",
				name, strings.Join(registry.Names(), ", "), models.ErrNoCandidateModels)
		}
		out = append(out, name)
	}
	return out, nil
}

// newGenerator builds the inference backend named by engine.kind.
func newGenerator(cfg *projectconfig.ProjectConfig) (execution.Generator, error) {
	switch strings.ToLower(cfg.Engine.Kind) {
	case projectconfig.EngineOffline:
		return execution.NewOfflineGenerator(), nil
	case projectconfig.EngineOpenAI:
		key := os.Getenv(cfg.Engine.APIKeyEnv)
		if key == "" && cfg.Engine.BaseURL == "" {
			return nil, fmt.Errorf("%w: engine %q needs %s or engine.base_url",
				models.ErrInvalidInput, projectconfig.EngineOpenAI, cfg.Engine.APIKeyEnv)
		}
		return execution.NewOpenAIGenerator(execution.OpenAIConfig{
			BaseURL:     cfg.Engine.BaseURL,
			APIKey:      key,
			RemoteIDs:   cfg.RemoteIDs(),
			MaxTokens:   defaultMaxTokens,
			Temperature: defaultTemperature,
		}), nil
	case projectconfig.EngineCopilot:
		return execution.NewCopilotGenerator(&execution.CopilotOptions{
			RemoteIDs: cfg.RemoteIDs(),
		}), nil
	default:
		return nil, errors.New("unknown engine type: " + cfg.Engine.Kind)
	}
}

// Sampling settings for hosted engines.
const (
	defaultMaxTokens   = 400
	defaultTemperature = 0.7
)
