package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"doccat/internal/bootstrap"
	"doccat/internal/config"
	"doccat/internal/logging"
)

// session carries the state shared by one invocation's commands
type session struct {
	v          *viper.Viper
	configPath string
	dryRun     bool
	noColor    bool

	app       *bootstrap.App
	logCloser io.Closer
}

// NewRootCmd builds the command tree. Every call returns an independent
// tree with its own configuration.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&session{v: viper.New()})
}

func newRootCmd(s *session) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "doccat-cli",
		Short: "Keep an HTML document catalog in sync with a document folder",
		Long: `doccat-cli maintains an HTML catalog of documents. It scans the document
root, adds entries for new files, removes entries for deleted ones, merges
duplicate categories and moves entries between categories.

Every change backs up the catalog before writing it. With --dry-run nothing
is written.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for help commands
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return s.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("catalog", config.DefaultCatalog, "path to the HTML catalog")
	flags.String("doc", config.DefaultDocRoot, "document root to scan")
	flags.String("derived", config.DefaultDerivedRoot, "root of derived renditions")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write logs to this file, rotated")
	flags.StringVar(&s.configPath, "config", "", "config file (default ./doccat.yaml)")
	flags.BoolVarP(&s.dryRun, "dry-run", "n", false, "plan and preview without writing")
	flags.BoolVar(&s.noColor, "no-color", false, "disable colored log output")

	_ = config.BindFlags(s.v, flags)

	rootCmd.AddCommand(
		newScanCmd(s),
		newSyncCmd(s),
		newMergeCmd(s),
		newRelocateCmd(s),
		newListUnreferencedCmd(s),
		newOrphansCmd(s),
		newConnectCmd(s),
		newRemoveCmd(s),
		newInitCmd(s),
		newListCmd(s),
		newOpenCmd(s),
	)
	return rootCmd
}

func (s *session) init(cmd *cobra.Command) error {
	cfg, err := config.Load(s.v, s.configPath)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: cmd.ErrOrStderr(),
		NoColor: s.noColor,
	})
	if err != nil {
		return err
	}
	s.logCloser = closer

	app, err := bootstrap.New(cfg, logger.With().Str("command", cmd.Name()).Logger())
	if err != nil {
		return err
	}
	s.app = app
	return nil
}

func (s *session) close() {
	if s.app != nil {
		_ = s.app.Close()
	}
	if s.logCloser != nil {
		_ = s.logCloser.Close()
	}
}

// Run executes the CLI with args and returns the process exit code
func Run(args []string, stdout, stderr io.Writer) int {
	s := &session{v: viper.New()}
	defer s.close()

	rootCmd := newRootCmd(s)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err, s.dryRun)
}
