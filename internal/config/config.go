// Package config is used to load the configuration file
package config

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/intrinsics/pkg/intrinsics"
	"github.com/blacktop/intrinsics/pkg/symbols"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v3"
)

// Patch output formats.
const (
	PatchFormatChunks  = "chunks"
	PatchFormatUnified = "unified"
)

type Symbols struct {
	Backend     string `yaml:"backend,omitempty" json:"backend,omitempty" mapstructure:"backend" jsonschema:"enum=nm,enum=native"`
	NM          string `yaml:"nm,omitempty" json:"nm,omitempty" mapstructure:"nm"`
	StripPrefix string `yaml:"strip_prefix,omitempty" json:"strip_prefix,omitempty" mapstructure:"strip_prefix"`
}

type Scan struct {
	Extension string            `yaml:"extension,omitempty" json:"extension,omitempty" mapstructure:"extension"`
	Exclude   []string          `yaml:"exclude,omitempty" json:"exclude,omitempty" mapstructure:"exclude"`
	Seeds     map[string]string `yaml:"seeds,omitempty" json:"seeds,omitempty" mapstructure:"seeds"`
}

type Patch struct {
	Files  []string `yaml:"files,omitempty" json:"files,omitempty" mapstructure:"files"`
	Format string   `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format" jsonschema:"enum=chunks,enum=unified"`
}

type Wrap struct {
	Classes            []string `yaml:"classes,omitempty" json:"classes,omitempty" mapstructure:"classes"`
	Prefix             string   `yaml:"prefix,omitempty" json:"prefix,omitempty" mapstructure:"prefix"`
	Guard              string   `yaml:"guard,omitempty" json:"guard,omitempty" mapstructure:"guard"`
	Regenerate         string   `yaml:"regenerate,omitempty" json:"regenerate,omitempty" mapstructure:"regenerate"`
	AllowArityMismatch bool     `yaml:"allow_arity_mismatch,omitempty" json:"allow_arity_mismatch,omitempty" mapstructure:"allow_arity_mismatch"`
}

// Artifacts are the file names written to the output directory.
type Artifacts struct {
	Report  string `yaml:"report,omitempty" json:"report,omitempty" mapstructure:"report"`
	Patch   string `yaml:"patch,omitempty" json:"patch,omitempty" mapstructure:"patch"`
	Header  string `yaml:"header,omitempty" json:"header,omitempty" mapstructure:"header"`
	Wrapper string `yaml:"wrapper,omitempty" json:"wrapper,omitempty" mapstructure:"wrapper"`
	// ReportHTML also renders the report as a standalone HTML page when set.
	ReportHTML string `yaml:"report_html,omitempty" json:"report_html,omitempty" mapstructure:"report_html"`
}

// Config is the configuration struct
type Config struct {
	Ruby       string    `yaml:"ruby,omitempty" json:"ruby,omitempty" mapstructure:"ruby"`
	RubySource string    `yaml:"ruby_source,omitempty" json:"ruby_source,omitempty" mapstructure:"ruby_source"`
	Output     string    `yaml:"output,omitempty" json:"output,omitempty" mapstructure:"output"`
	Symbols    Symbols   `yaml:"symbols,omitempty" json:"symbols,omitempty" mapstructure:"symbols"`
	Scan       Scan      `yaml:"scan,omitempty" json:"scan,omitempty" mapstructure:"scan"`
	Patch      Patch     `yaml:"patch,omitempty" json:"patch,omitempty" mapstructure:"patch"`
	Wrap       Wrap      `yaml:"wrap,omitempty" json:"wrap,omitempty" mapstructure:"wrap"`
	Artifacts  Artifacts `yaml:"artifacts,omitempty" json:"artifacts,omitempty" mapstructure:"artifacts"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	c := Config{}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.Output == "" {
		c.Output = "."
	}
	if c.Symbols.Backend == "" {
		c.Symbols.Backend = symbols.BackendNM
	}
	if c.Symbols.NM == "" {
		c.Symbols.NM = "nm"
	}
	if c.Symbols.StripPrefix == "" {
		c.Symbols.StripPrefix = symbols.DefaultStripPrefix()
	}
	if c.Scan.Extension == "" {
		c.Scan.Extension = ".c"
	}
	if c.Scan.Exclude == nil {
		c.Scan.Exclude = slices.Clone(intrinsics.DefaultExclude)
	}
	if c.Patch.Files == nil {
		c.Patch.Files = slices.Clone(intrinsics.DefaultPatchFiles)
	}
	if c.Patch.Format == "" {
		c.Patch.Format = PatchFormatChunks
	}
	if c.Wrap.Classes == nil {
		c.Wrap.Classes = slices.Clone(intrinsics.DefaultClasses)
	}
	if c.Wrap.Prefix == "" {
		c.Wrap.Prefix = intrinsics.DefaultPrefix
	}
	if c.Wrap.Guard == "" {
		c.Wrap.Guard = intrinsics.DefaultGuard
	}
	if c.Wrap.Regenerate == "" {
		c.Wrap.Regenerate = intrinsics.DefaultRegenerate
	}
	if c.Artifacts.Report == "" {
		c.Artifacts.Report = "intrinsic-report.md"
	}
	if c.Artifacts.Patch == "" {
		c.Artifacts.Patch = "export-intrinsics.patch"
	}
	if c.Artifacts.Header == "" {
		c.Artifacts.Header = "WrappedIntrinsics.h"
	}
	if c.Artifacts.Wrapper == "" {
		c.Artifacts.Wrapper = "PayloadIntrinsics.c"
	}
}

// Verify checks the configuration once defaults are applied.
func (c *Config) Verify() error {
	c.setDefaults()
	switch c.Symbols.Backend {
	case symbols.BackendNM, symbols.BackendNative:
	default:
		return fmt.Errorf("config: unknown symbols backend %q (expected %s or %s)", c.Symbols.Backend, symbols.BackendNM, symbols.BackendNative)
	}
	switch c.Patch.Format {
	case PatchFormatChunks, PatchFormatUnified:
	default:
		return fmt.Errorf("config: unknown patch format %q (expected %s or %s)", c.Patch.Format, PatchFormatChunks, PatchFormatUnified)
	}
	if len(c.Wrap.Classes) == 0 {
		return fmt.Errorf("config: wrap.classes must not be empty")
	}
	names := []string{c.Artifacts.Report, c.Artifacts.Patch, c.Artifacts.Header, c.Artifacts.Wrapper}
	if c.Artifacts.ReportHTML != "" {
		names = append(names, c.Artifacts.ReportHTML)
	}
	for i, name := range names {
		if slices.Contains(names[i+1:], name) {
			return fmt.Errorf("config: artifact %q is configured more than once", name)
		}
	}
	return nil
}

// ScanConfig returns the scanner settings.
func (c *Config) ScanConfig() *intrinsics.ScanConfig {
	conf := &intrinsics.ScanConfig{
		Extension: c.Scan.Extension,
		Exclude:   c.Scan.Exclude,
	}
	if len(c.Scan.Seeds) > 0 {
		conf.Seeds = make(map[string]string, len(intrinsics.DefaultSeeds)+len(c.Scan.Seeds))
		for k, v := range intrinsics.DefaultSeeds {
			conf.Seeds[k] = v
		}
		for k, v := range c.Scan.Seeds {
			conf.Seeds[k] = v
		}
	}
	return conf
}

// WrapConfig returns the generator settings.
func (c *Config) WrapConfig() *intrinsics.WrapConfig {
	return &intrinsics.WrapConfig{
		Classes:            c.Wrap.Classes,
		Prefix:             c.Wrap.Prefix,
		Guard:              c.Wrap.Guard,
		Regenerate:         c.Wrap.Regenerate,
		AllowArityMismatch: c.Wrap.AllowArityMismatch,
	}
}

// SymbolsConfig returns the symbol table settings.
func (c *Config) SymbolsConfig() *symbols.Config {
	return &symbols.Config{
		Backend:     c.Symbols.Backend,
		NM:          c.Symbols.NM,
		StripPrefix: c.Symbols.StripPrefix,
	}
}

// SetDefaults registers every key with viper so INTRINSICS_ environment
// variables are picked up for nested keys too.
func SetDefaults() {
	def := Default()
	viper.SetDefault("output", def.Output)
	viper.SetDefault("symbols.backend", def.Symbols.Backend)
	viper.SetDefault("symbols.nm", def.Symbols.NM)
	viper.SetDefault("symbols.strip_prefix", def.Symbols.StripPrefix)
	viper.SetDefault("scan.extension", def.Scan.Extension)
	viper.SetDefault("scan.exclude", def.Scan.Exclude)
	viper.SetDefault("patch.files", def.Patch.Files)
	viper.SetDefault("patch.format", def.Patch.Format)
	viper.SetDefault("wrap.classes", def.Wrap.Classes)
	viper.SetDefault("wrap.prefix", def.Wrap.Prefix)
	viper.SetDefault("wrap.guard", def.Wrap.Guard)
	viper.SetDefault("wrap.regenerate", def.Wrap.Regenerate)
	viper.SetDefault("wrap.allow_arity_mismatch", def.Wrap.AllowArityMismatch)
	viper.SetDefault("artifacts.report", def.Artifacts.Report)
	viper.SetDefault("artifacts.patch", def.Artifacts.Patch)
	viper.SetDefault("artifacts.header", def.Artifacts.Header)
	viper.SetDefault("artifacts.wrapper", def.Artifacts.Wrapper)
	viper.SetDefault("artifacts.report_html", "")
}

// LoadConfig loads the configuration from viper (config file, env and flags)
func LoadConfig() (*Config, error) {
	var c Config

	// lists from the environment arrive as "String, Array"
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		trimSpaceHook(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := viper.Unmarshal(&c, hook); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}

	if err := c.Verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return &c, nil
}

// Load config file.
func Load(file string) (*Config, error) {
	f, err := os.Open(file) // #nosec
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log.WithField("file", file).Debug("loading config file")
	return LoadReader(f)
}

// LoadReader config via io.Reader.
func LoadReader(fd io.Reader) (*Config, error) {
	data, err := io.ReadAll(fd)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: failed to parse: %w", err)
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	log.WithField("config", c).Debug("loaded config file")
	return &c, nil
}

func trimSpaceHook() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		s, ok := data.(string)
		if !ok || f.Kind() != reflect.String || t.Kind() != reflect.Slice {
			return data, nil
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return strings.Join(parts, ","), nil
	}
}
