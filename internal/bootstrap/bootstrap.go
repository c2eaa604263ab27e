// Package bootstrap wires configuration into the adapters and the command
// runner shared by the CLI, the TUI, and the MCP server.
package bootstrap

import (
	"errors"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"

	"doccat/internal/adapters/claudecli"
	"doccat/internal/adapters/filesystem"
	"doccat/internal/adapters/sqlite"
	"doccat/internal/adapters/statefile"
	"doccat/internal/adapters/viewer"
	"doccat/internal/application/commands"
	"doccat/internal/config"
	"doccat/internal/ports"
)

// App holds the wired components
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Runner *commands.Runner
	Opener ports.DocumentOpener

	closers []io.Closer
}

// New builds the runner and its adapters from cfg
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	docRoot := filesystem.ExpandHome(cfg.DocRoot)
	catalogPath := filesystem.ExpandHome(cfg.Catalog)
	derivedRoot := filesystem.ExpandHome(cfg.DerivedRoot)

	state, err := NewStateStore(cfg)
	if err != nil {
		return nil, err
	}

	scanner := filesystem.NewScanner(docRoot, derivedRoot, catalogPath,
		filesystem.WithIgnoreFile(cfg.Scan.IgnoreFile),
		filesystem.WithExcludedPaths(state.Location(), cfg.Log.File),
		filesystem.WithScanLogger(logger.With().Str("component", "scanner").Logger()),
	)
	runner := commands.NewRunner(
		filesystem.NewCatalogStore(catalogPath),
		state,
		scanner,
		commands.WithPolicy(cfg.Policy()),
		commands.WithProposer(claudecli.NewProposer(claudecli.WithModel(cfg.Assistant.Model))),
		commands.WithLogger(logger),
	)

	logger.Debug().
		Str("catalog", catalogPath).
		Str("doc_root", docRoot).
		Str("derived_root", derivedRoot).
		Str("state", state.Location()).
		Msg("configured")

	return &App{
		Config:  cfg,
		Logger:  logger,
		Runner:  runner,
		Opener:  viewer.NewOpener(docRoot, catalogPath),
		closers: []io.Closer{state},
	}, nil
}

// NewStateStore opens the configured fingerprint store
func NewStateStore(cfg *config.Config) (ports.FingerprintStore, error) {
	path := filesystem.ExpandHome(cfg.StatePath(statefile.FileName, sqlite.FileName))
	switch cfg.State.Backend {
	case config.BackendSQLite:
		return sqlite.NewStore(path), nil
	case config.BackendJSON, "":
		return statefile.NewStore(path), nil
	default:
		return nil, errors.New("unknown state backend: " + cfg.State.Backend)
	}
}

// DocRoot returns the expanded, absolute document root
func (a *App) DocRoot() string {
	root, err := filepath.Abs(filesystem.ExpandHome(a.Config.DocRoot))
	if err != nil {
		return a.Config.DocRoot
	}
	return root
}

// Close releases the state store
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
