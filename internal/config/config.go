package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"doccat/internal/application/reconcile"
)

const (
	DefaultCatalog     = "Doc/index.html"
	DefaultDocRoot     = "Doc"
	DefaultDerivedRoot = "Doc/md_outputs"
	DefaultBackend     = BackendJSON
	DefaultLogLevel    = "info"
	DefaultModel       = "haiku"

	// ConfigName is the config file base name (doccat.yaml)
	ConfigName = "doccat"
	// EnvPrefix prefixes environment overrides, e.g. DOCCAT_DOC_ROOT
	EnvPrefix = "DOCCAT"
)

// State backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file, environment variables,
// or bound command line flags.
type Config struct {
	Catalog     string           `mapstructure:"catalog"`
	DocRoot     string           `mapstructure:"doc_root"`
	DerivedRoot string           `mapstructure:"derived_root"`
	State       StateConfig      `mapstructure:"state"`
	Categories  CategoriesConfig `mapstructure:"categories"`
	Scan        ScanConfig       `mapstructure:"scan"`
	Log         LogConfig        `mapstructure:"log"`
	Assistant   AssistantConfig  `mapstructure:"assistant"`
}

// StateConfig selects the fingerprint store
type StateConfig struct {
	Backend string `mapstructure:"backend"`
	// Path overrides the sidecar location inside the document root
	Path string `mapstructure:"path"`
}

// CategoriesConfig feeds the category policy
type CategoriesConfig struct {
	Default   string           `mapstructure:"default"`
	Rules     []reconcile.Rule `mapstructure:"rules"`
	Overrides []Override       `mapstructure:"overrides"`
}

// Override pins a data path, file name, or name glob to a category. It is a
// list item rather than a map key because viper splits keys on dots.
type Override struct {
	Match    string `mapstructure:"match"`
	Category string `mapstructure:"category"`
}

// ScanConfig tunes the filesystem scanner
type ScanConfig struct {
	IgnoreFile string `mapstructure:"ignore_file"`
}

// LogConfig stores logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// AssistantConfig stores entry proposer settings
type AssistantConfig struct {
	Model string `mapstructure:"model"`
}

// flagKeys maps command line flag names to config keys
var flagKeys = map[string]string{
	"catalog":   "catalog",
	"doc":       "doc_root",
	"derived":   "derived_root",
	"log-level": "log.level",
	"log-file":  "log.file",
}

// BindFlags binds the known flags present in fs to their config keys, so a
// flag set on the command line wins over the file and the environment
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// SetDefaults registers default values and environment handling on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("catalog", DefaultCatalog)
	v.SetDefault("doc_root", DefaultDocRoot)
	v.SetDefault("derived_root", DefaultDerivedRoot)
	v.SetDefault("state.backend", DefaultBackend)
	v.SetDefault("state.path", "")
	v.SetDefault("categories.default", reconcile.DefaultCategory)
	v.SetDefault("scan.ignore_file", ".doccatignore")
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.file", "")
	v.SetDefault("assistant.model", DefaultModel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration into a Config. An explicit configPath must
// exist; otherwise doccat.yaml is looked up in the working directory and in
// the user config directory, and a missing file means defaults.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := userConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.State.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("state.backend must be %q or %q, got %q", BackendJSON, BackendSQLite, c.State.Backend)
	}
	if strings.TrimSpace(c.Catalog) == "" {
		return errors.New("catalog path is required")
	}
	if strings.TrimSpace(c.DocRoot) == "" {
		return errors.New("doc_root is required")
	}
	return nil
}

// Policy builds the category policy described by the config
func (c *Config) Policy() *reconcile.LexicalPolicy {
	p := reconcile.NewLexicalPolicy()
	if len(c.Categories.Rules) > 0 {
		p.Rules = c.Categories.Rules
	}
	if c.Categories.Default != "" {
		p.Default = c.Categories.Default
	}
	if len(c.Categories.Overrides) > 0 {
		p.Overrides = make(map[string]string, len(c.Categories.Overrides))
		for _, o := range c.Categories.Overrides {
			p.Overrides[o.Match] = o.Category
		}
	}
	return p
}

// StatePath returns the fingerprint sidecar location for the configured
// backend
func (c *Config) StatePath(jsonName, sqliteName string) string {
	if c.State.Path != "" {
		return c.State.Path
	}
	name := jsonName
	if c.State.Backend == BackendSQLite {
		name = sqliteName
	}
	return filepath.Join(c.DocRoot, name)
}

func userConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, ConfigName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, ConfigName)
	}
	return ""
}
