package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Dir is the per-project directory holding config.yml.
const Dir = ".ubidoc"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// LoaderOption configures a Loader.
type LoaderOption func(*loader)

// WithConfigFile reads path instead of searching .ubidoc under the root.
// A missing explicit file is an error.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) {
		l.configFile = path
	}
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, Dir))
	}

	v.SetEnvPrefix("UBIDOC")
	v.AutomaticEnv()
	// UBIDOC_OUTPUT_DIR for output.dir
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnv(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// bindEnv binds every key explicitly; AutomaticEnv alone does not make
// Unmarshal see keys that have no default. The CI variables come after the
// UBIDOC ones, so an explicit override wins.
func bindEnv(v *viper.Viper) {
	v.BindEnv("source.ignore")
	v.BindEnv("output.dir")
	v.BindEnv("output.formats")
	v.BindEnv("link.host")
	v.BindEnv("link.repository", "UBIDOC_LINK_REPOSITORY", "GITHUB_REPOSITORY")
	v.BindEnv("link.branch", "UBIDOC_LINK_BRANCH", "GITHUB_REF_NAME")
	v.BindEnv("workers")
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("source.ignore", defaults.Source.Ignore)
	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.formats", defaults.Output.Formats)
	v.SetDefault("link.host", defaults.Link.Host)
	v.SetDefault("link.repository", defaults.Link.Repository)
	v.SetDefault("link.branch", defaults.Link.Branch)
	v.SetDefault("workers", defaults.Workers)
}

// LoadConfig loads configuration rooted at the current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string, opts ...LoaderOption) (*Config, error) {
	return NewLoader(rootDir, opts...).Load()
}
