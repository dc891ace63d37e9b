package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dqx0.com/go/rawclient/internal/config"
	"dqx0.com/go/rawclient/internal/journal"
	"dqx0.com/go/rawclient/internal/obs"
)

// app carries state shared by all subcommands once the root has run.
type app struct {
	configPath  string
	journalPath string
	logLevel    string

	cfg    *config.Config
	logger obs.Logger
	zl     *zap.Logger // nil unless the zap backend is in use
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "rawhttp",
		Short:         "Send raw HTTP/1.1 requests, one per connection",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.zl != nil {
				_ = a.zl.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.journalPath, "journal", "", "SQLite journal path (overrides config)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(newSendCmd(a), newJournalCmd(a))
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.journalPath != "" {
		cfg.Journal.Path = a.journalPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	level, err := obs.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	switch cfg.Log.Format {
	case "std":
		a.logger = obs.StdLogger{L: log.New(os.Stderr, "", log.LstdFlags), Min: level, Pref: "rawhttp "}
	case "zap":
		zl, err := obs.NewZap(level, cfg.Log.Development)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		a.zl = zl
		a.logger = obs.ZapLogger{L: zl}
	default:
		return fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}
	a.cfg = cfg
	return nil
}

// openJournal returns nil when no journal path is configured.
func (a *app) openJournal() (*journal.Journal, error) {
	if a.cfg.Journal.Path == "" {
		return nil, nil
	}
	j, err := journal.Open(a.cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("journal %s: %w", a.cfg.Journal.Path, err)
	}
	return j, nil
}
