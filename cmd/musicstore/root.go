package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"musicstore-sql/internal/compose"
	"musicstore-sql/internal/config"
	"musicstore-sql/internal/exercises"
)

type rootOptions struct {
	configPath string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "musicstore",
		Short: "compose music-store questions as subqueries, CTEs or temporary tables",
		Long: `
Answers analytical questions over the music-store catalog by composing
intermediate result sets inline, as named WITH bindings, or as temporary
tables that live for one session.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database file (overrides config and MUSICSTORE_DB)")

	root.AddCommand(
		newSeedCmd(opts),
		newListCmd(),
		newRunCmd(opts),
		newVerifyCmd(opts),
		newShellCmd(opts),
		newServeCmd(opts),
	)
	return root
}

func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if path := strings.TrimSpace(o.dbPath); path != "" {
		cfg.Database.Path = path
	}
	return cfg, nil
}

// withRunner opens the engine described by the config for the duration of
// fn.
func (o *rootOptions) withRunner(fn func(cfg config.Config, engine *compose.Engine, runner *exercises.Runner) error) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}
	engine, err := compose.Open(cfg.EngineOptions())
	if err != nil {
		return err
	}
	defer engine.Close()

	return fn(cfg, engine, exercises.NewRunner(engine, nil))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
