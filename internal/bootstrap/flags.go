package bootstrap

import (
	"io"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"doccat/internal/config"
	"doccat/internal/logging"
)

// Flags are the layout flags shared by the TUI and the MCP server
type Flags struct {
	fs         *pflag.FlagSet
	configPath string
}

// NewFlags registers the layout flags on a new flag set
func NewFlags(name string) *Flags {
	f := &Flags{fs: pflag.NewFlagSet(name, pflag.ExitOnError)}
	f.fs.StringVar(&f.configPath, "config", "", "config file (default ./doccat.yaml)")
	f.fs.String("catalog", config.DefaultCatalog, "path to the HTML catalog")
	f.fs.String("doc", config.DefaultDocRoot, "document root")
	f.fs.String("derived", config.DefaultDerivedRoot, "root of derived renditions")
	f.fs.String("log-level", config.DefaultLogLevel, "log level")
	f.fs.String("log-file", "", "write a rotating JSON log to this file")
	return f
}

// Parse parses args and loads the configuration they select
func (f *Flags) Parse(args []string) (*config.Config, error) {
	if err := f.fs.Parse(args); err != nil {
		return nil, err
	}
	v := viper.New()
	if err := config.BindFlags(v, f.fs); err != nil {
		return nil, err
	}
	return config.Load(v, f.configPath)
}

// Start parses args, sets up logging to console, and wires the app. The
// returned closer releases the log file.
func Start(name string, args []string, console io.Writer) (*App, io.Closer, error) {
	cfg, err := NewFlags(name).Parse(args)
	if err != nil {
		return nil, nil, err
	}
	logger, closer, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: console,
	})
	if err != nil {
		return nil, nil, err
	}
	app, err := New(cfg, logger.With().Str("app", name).Logger())
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return app, closer, nil
}
