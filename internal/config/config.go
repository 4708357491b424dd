// Package config loads ubidoc settings from .ubidoc/config.yml under the
// scanned root, with UBIDOC_* environment overrides.
//
// Priority, highest first:
//  1. Environment variables (UBIDOC_*, plus GITHUB_REPOSITORY and
//     GITHUB_REF_NAME for links)
//  2. Config file (.ubidoc/config.yml or an explicit --config path)
//  3. Built-in defaults
package config

import (
	"github.com/mvp-joe/ubidoc/internal/discovery"
	"github.com/mvp-joe/ubidoc/internal/report"
)

// Config represents the complete ubidoc configuration.
type Config struct {
	Source  SourceConfig `yaml:"source" mapstructure:"source"`
	Output  OutputConfig `yaml:"output" mapstructure:"output"`
	Link    LinkConfig   `yaml:"link" mapstructure:"link"`
	Workers int          `yaml:"workers" mapstructure:"workers"` // 0 means one per CPU
}

// SourceConfig selects what is scanned.
type SourceConfig struct {
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns relative to the root
}

// OutputConfig selects where and in which formats the glossary is written.
type OutputConfig struct {
	Dir     string   `yaml:"dir" mapstructure:"dir"`         // ubi-doc/ is created inside it
	Formats []string `yaml:"formats" mapstructure:"formats"` // html, json, sqlite
}

// LinkConfig drives the source links in every report.
type LinkConfig struct {
	Host       string `yaml:"host" mapstructure:"host"`
	Repository string `yaml:"repository" mapstructure:"repository"` // owner/name
	Branch     string `yaml:"branch" mapstructure:"branch"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Ignore: append([]string(nil), discovery.DefaultIgnore...),
		},
		Output: OutputConfig{
			Dir:     ".",
			Formats: []string{report.FormatHTML},
		},
		Link: LinkConfig{
			Host: report.DefaultHost,
		},
	}
}

// LinkBuilder returns the link settings as a report.LinkBuilder.
func (c *Config) LinkBuilder() report.LinkBuilder {
	return report.LinkBuilder{
		Host:       c.Link.Host,
		Repository: c.Link.Repository,
		Branch:     c.Link.Branch,
	}
}
