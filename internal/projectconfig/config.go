// Package projectconfig provides the ProjectConfig struct and loader for
// .modeleval.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spboyer/modeleval/internal/models"
)

// FileName is the configuration file looked up by Load.
const FileName = ".modeleval.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultEngine    = "offline"
	DefaultTimeout   = 60
	DefaultWorkers   = 4
	DefaultAPIKeyEnv = "OPENAI_API_KEY"

	DefaultHistoryBackend = "json"
	DefaultHistoryPath    = ".modeleval/history.json"

	DefaultCacheDir = ".modeleval-cache"

	DefaultPreferenceBonus = 0.10
	DefaultComplexityBonus = 0.05
	DefaultPrior           = 0.5

	DefaultOutputDir = "results/"
	DefaultQuickSize = 5
)

// Engine kinds accepted in engine.kind.
const (
	EngineOffline = "offline"
	EngineOpenAI  = "openai"
	EngineCopilot = "copilot"
)

// DefaultFormats are the report formats written by --export.
var DefaultFormats = []string{"json", "markdown"}

// ModelConfig declares one candidate model.
type ModelConfig struct {
	Name           string   `yaml:"name"`
	RemoteID       string   `yaml:"remote_id,omitempty"`
	AvgLengthWords int      `yaml:"avg_length_words,omitempty"`
	Speed          string   `yaml:"speed,omitempty"`
	Style          string   `yaml:"style,omitempty"`
	Strengths      []string `yaml:"strengths,omitempty"`
}

// RolesConfig assigns the fast, detailed and structured roles.
type RolesConfig struct {
	Fast       string `yaml:"fast,omitempty"`
	Detailed   string `yaml:"detailed,omitempty"`
	Structured string `yaml:"structured,omitempty"`
}

// EngineConfig selects and tunes the inference backend.
type EngineConfig struct {
	Kind      string `yaml:"kind,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	Timeout   int    `yaml:"timeout,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
}

// HistoryConfig holds performance history persistence settings.
type HistoryConfig struct {
	Backend          string `yaml:"backend,omitempty"`
	Path             string `yaml:"path,omitempty"`
	ResetBetweenRuns *bool  `yaml:"reset_between_runs,omitempty"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// RecommendConfig tunes the recommendation bonuses.
type RecommendConfig struct {
	PreferenceBonus *float64 `yaml:"preference_bonus,omitempty"`
	ComplexityBonus *float64 `yaml:"complexity_bonus,omitempty"`
	Prior           *float64 `yaml:"prior,omitempty"`
}

// OutputConfig holds report export settings.
type OutputConfig struct {
	Dir     string   `yaml:"dir,omitempty"`
	Formats []string `yaml:"formats,omitempty"`
}

// CorpusConfig selects the prompt corpus.
type CorpusConfig struct {
	Path      string `yaml:"path,omitempty"`
	QuickSize int    `yaml:"quick_size,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .modeleval.yaml.
type ProjectConfig struct {
	Models    []ModelConfig   `yaml:"models,omitempty"`
	Roles     RolesConfig     `yaml:"roles,omitempty"`
	Engine    EngineConfig    `yaml:"engine,omitempty"`
	History   HistoryConfig   `yaml:"history,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty"`
	Recommend RecommendConfig `yaml:"recommend,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Corpus    CorpusConfig    `yaml:"corpus,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated. Models
// and Roles stay empty; callers fall back to the built-in registry.
func New() *ProjectConfig {
	return &ProjectConfig{
		Engine: EngineConfig{
			Kind:      DefaultEngine,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   DefaultTimeout,
			Workers:   DefaultWorkers,
		},
		History: HistoryConfig{
			Backend:          DefaultHistoryBackend,
			Path:             DefaultHistoryPath,
			ResetBetweenRuns: boolPtr(false),
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
		Recommend: RecommendConfig{
			PreferenceBonus: floatPtr(DefaultPreferenceBonus),
			ComplexityBonus: floatPtr(DefaultComplexityBonus),
			Prior:           floatPtr(DefaultPrior),
		},
		Output: OutputConfig{
			Dir:     DefaultOutputDir,
			Formats: append([]string(nil), DefaultFormats...),
		},
		Corpus: CorpusConfig{
			QuickSize: DefaultQuickSize,
		},
	}
}

// Load finds .modeleval.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return parse(cfg, data)
}

// LoadFile reads an explicit config path. Unlike Load, a missing file is an
// error.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return parse(New(), data)
}

func parse(cfg *ProjectConfig, data []byte) (*ProjectConfig, error) {
	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile walks up from dir looking for .modeleval.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Models replace the list wholesale.
	if len(src.Models) > 0 {
		dst.Models = src.Models
	}

	// Roles
	if src.Roles.Fast != "" {
		dst.Roles.Fast = src.Roles.Fast
	}
	if src.Roles.Detailed != "" {
		dst.Roles.Detailed = src.Roles.Detailed
	}
	if src.Roles.Structured != "" {
		dst.Roles.Structured = src.Roles.Structured
	}

	// Engine
	if src.Engine.Kind != "" {
		dst.Engine.Kind = src.Engine.Kind
	}
	if src.Engine.BaseURL != "" {
		dst.Engine.BaseURL = src.Engine.BaseURL
	}
	if src.Engine.APIKeyEnv != "" {
		dst.Engine.APIKeyEnv = src.Engine.APIKeyEnv
	}
	if src.Engine.Timeout != 0 {
		dst.Engine.Timeout = src.Engine.Timeout
	}
	if src.Engine.Workers != 0 {
		dst.Engine.Workers = src.Engine.Workers
	}

	// History
	if src.History.Backend != "" {
		dst.History.Backend = src.History.Backend
	}
	if src.History.Path != "" {
		dst.History.Path = src.History.Path
	}
	if src.History.ResetBetweenRuns != nil {
		dst.History.ResetBetweenRuns = src.History.ResetBetweenRuns
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}

	// Recommend
	if src.Recommend.PreferenceBonus != nil {
		dst.Recommend.PreferenceBonus = src.Recommend.PreferenceBonus
	}
	if src.Recommend.ComplexityBonus != nil {
		dst.Recommend.ComplexityBonus = src.Recommend.ComplexityBonus
	}
	if src.Recommend.Prior != nil {
		dst.Recommend.Prior = src.Recommend.Prior
	}

	// Output
	if src.Output.Dir != "" {
		dst.Output.Dir = src.Output.Dir
	}
	if len(src.Output.Formats) > 0 {
		dst.Output.Formats = src.Output.Formats
	}

	// Corpus
	if src.Corpus.Path != "" {
		dst.Corpus.Path = src.Corpus.Path
	}
	if src.Corpus.QuickSize != 0 {
		dst.Corpus.QuickSize = src.Corpus.QuickSize
	}
}

// Validate rejects values no component can act on. Errors wrap
// models.ErrInvalidInput.
func (c *ProjectConfig) Validate() error {
	switch strings.ToLower(c.Engine.Kind) {
	case EngineOffline, EngineOpenAI, EngineCopilot:
	default:
		return fmt.Errorf("%w: engine.kind %q (want offline, openai or copilot)", models.ErrInvalidInput, c.Engine.Kind)
	}
	if c.Engine.Timeout < 0 || c.Engine.Workers < 0 {
		return fmt.Errorf("%w: engine.timeout and engine.workers must not be negative", models.ErrInvalidInput)
	}
	switch strings.ToLower(c.History.Backend) {
	case "json", "sqlite", "none":
	default:
		return fmt.Errorf("%w: history.backend %q (want json, sqlite or none)", models.ErrInvalidInput, c.History.Backend)
	}
	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("%w: models[%d] has no name", models.ErrInvalidInput, i)
		}
		if seen[m.Name] {
			return fmt.Errorf("%w: model %q declared twice", models.ErrInvalidInput, m.Name)
		}
		seen[m.Name] = true
		if _, err := models.ParseSpeedTier(m.Speed); err != nil {
			return fmt.Errorf("models[%d]: %w", i, err)
		}
	}
	for _, f := range c.Output.Formats {
		switch strings.ToLower(f) {
		case "json", "markdown", "md", "html", "github", "junit":
		default:
			return fmt.Errorf("%w: unknown output format %q", models.ErrInvalidInput, f)
		}
	}
	return nil
}

// TimeoutDuration is the per-call inference timeout.
func (c *ProjectConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Engine.Timeout) * time.Second
}

// RemoteIDs maps local model names to provider model identifiers.
func (c *ProjectConfig) RemoteIDs() map[string]string {
	ids := make(map[string]string)
	for _, m := range c.Models {
		if m.RemoteID != "" {
			ids[m.Name] = m.RemoteID
		}
	}
	return ids
}

// ModelNames returns the configured model names in declaration order.
func (c *ProjectConfig) ModelNames() []string {
	names := make([]string, len(c.Models))
	for i, m := range c.Models {
		names[i] = m.Name
	}
	return names
}

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(f float64) *float64 {
	return &f
}
