package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the pagex configuration.
type Config struct {
	Inference  InferenceConfig  `yaml:"inference"`
	Render     RenderConfig     `yaml:"render"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Parser     ParserConfig     `yaml:"parser"`
	Batch      BatchConfig      `yaml:"batch"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
	Output     OutputConfig     `yaml:"output"`
	Store      StoreConfig      `yaml:"store"`
	Ops        OpsConfig        `yaml:"ops"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// Inference providers.
const (
	ProviderOpenAI = "openai"
	ProviderVertex = "vertex"
)

// InferenceConfig holds vision model settings.
type InferenceConfig struct {
	Provider    string       `yaml:"provider"` // openai, vertex (default: openai)
	APIKey      string       `yaml:"api_key"`
	BaseURL     string       `yaml:"base_url"`
	Model       string       `yaml:"model"`
	MaxTokens   int          `yaml:"max_tokens"`
	Temperature float32      `yaml:"temperature"`
	Prompt      string       `yaml:"prompt"` // {title_key} is substituted
	Vertex      VertexConfig `yaml:"vertex"`
}

// VertexConfig holds Vertex AI settings.
type VertexConfig struct {
	Project         string `yaml:"project"`
	Location        string `yaml:"location"`
	CredentialsFile string `yaml:"credentials_file"`
}

// RenderConfig holds rasterization settings.
type RenderConfig struct {
	DPI         float64 `yaml:"dpi"`
	JPEGQuality int     `yaml:"jpeg_quality"`
	Precheck    bool    `yaml:"precheck"`
}

// ExtractionConfig holds page key settings.
type ExtractionConfig struct {
	TitleKey    string `yaml:"title_key"`
	Placeholder string `yaml:"placeholder"`
}

// ParserConfig holds response parser settings.
type ParserConfig struct {
	StripCodeFences bool `yaml:"strip_code_fences"`
}

// BatchConfig holds batch driver settings.
type BatchConfig struct {
	Policy string `yaml:"policy"` // fail_fast, skip (default: fail_fast)
}

// DiscoveryConfig holds input directory settings.
type DiscoveryConfig struct {
	InputDir  string   `yaml:"input_dir"`
	SkipNames []string `yaml:"skip_names"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Path       string `yaml:"path"`
	Format     string `yaml:"format"` // json, xlsx, parquet
	NameField  string `yaml:"name_field"`
	PagesField string `yaml:"pages_field"`
	Indent     int    `yaml:"indent"`
}

// StoreConfig holds result store settings.
type StoreConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	TTLHours         int      `yaml:"ttl_hours"` // 0 = no expiry
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// OpsConfig holds the ops listener settings.
type OpsConfig struct {
	Port        int `yaml:"port"` // 0 = disabled
	ShutdownSec int `yaml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, prod).
// A .env file in the working directory is loaded first; a missing one is ignored.
func Load(env string) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// loadDotEnv exports variables from path without overriding the process environment.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Inference.Provider == "" {
		c.Inference.Provider = ProviderOpenAI
	}
	if c.Inference.Model == "" {
		switch c.Inference.Provider {
		case ProviderVertex:
			c.Inference.Model = "gemini-1.5-flash"
		default:
			c.Inference.Model = "gpt-4o-mini"
		}
	}
	if c.Inference.MaxTokens <= 0 {
		c.Inference.MaxTokens = 3000
	}
	if c.Inference.Vertex.Location == "" {
		c.Inference.Vertex.Location = "us-central1"
	}
	if c.Render.DPI <= 0 {
		c.Render.DPI = 150
	}
	if c.Render.JPEGQuality <= 0 {
		c.Render.JPEGQuality = 85
	}
	if c.Batch.Policy == "" {
		c.Batch.Policy = "fail_fast"
	}
	if c.Discovery.InputDir == "" {
		c.Discovery.InputDir = "pdfs"
	}
	if c.Output.Format == "" {
		c.Output.Format = "json"
	}
	if c.Output.Path == "" {
		c.Output.Path = "output." + c.Output.Format
	}
	if c.Output.Indent <= 0 {
		c.Output.Indent = 4
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = "pagex:"
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Ops.ShutdownSec <= 0 {
		c.Ops.ShutdownSec = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := c.Inference.validate(); err != nil {
		return err
	}
	if c.Render.DPI > 1200 {
		return fmt.Errorf("render.dpi must be at most 1200, got %g", c.Render.DPI)
	}
	if c.Render.JPEGQuality < 1 || c.Render.JPEGQuality > 100 {
		return fmt.Errorf("render.jpeg_quality must be between 1 and 100, got %d", c.Render.JPEGQuality)
	}
	switch c.Batch.Policy {
	case "fail_fast", "skip":
	default:
		return fmt.Errorf("batch.policy must be \"fail_fast\" or \"skip\", got %q", c.Batch.Policy)
	}
	switch c.Output.Format {
	case "json", "xlsx", "parquet":
	default:
		return fmt.Errorf("output.format must be json, xlsx or parquet, got %q", c.Output.Format)
	}
	if c.Store.Enabled && len(c.Store.Addrs) == 0 {
		return fmt.Errorf("store.addrs is required when store.enabled is true")
	}
	if c.Store.TTLHours < 0 {
		return fmt.Errorf("store.ttl_hours must not be negative, got %d", c.Store.TTLHours)
	}
	if c.Ops.Port < 0 || c.Ops.Port > 65535 {
		return fmt.Errorf("ops.port must be between 0 and 65535, got %d", c.Ops.Port)
	}
	return nil
}

func (c *InferenceConfig) validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("inference.api_key is required for provider %q", c.Provider)
		}
	case ProviderVertex:
		if c.Vertex.Project == "" {
			return fmt.Errorf("inference.vertex.project is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("inference.provider must be \"openai\" or \"vertex\", got %q", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("inference.temperature must be between 0 and 2, got %g", c.Temperature)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
