package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"musicstore-sql/internal/cli"
	"musicstore-sql/internal/compose"
	"musicstore-sql/internal/config"
	"musicstore-sql/internal/exercises"
	"musicstore-sql/internal/httpapi"
	"musicstore-sql/internal/musicstore"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "create the catalog tables and load the sample data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			db, err := musicstore.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer musicstore.Close(db)

			if err := musicstore.Reset(ctx, db); err != nil {
				return err
			}
			if err := musicstore.Seed(ctx, db, musicstore.Fixture()); err != nil {
				return err
			}
			counts, err := musicstore.Counts(ctx, db)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "seeded %s\n", cfg.Database.Path)
			for _, table := range musicstore.Tables {
				fmt.Fprintf(out, "  %-13s %d\n", table, counts[table])
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list exercises and their recommended strategy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, exercise := range exercises.Default().All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s %-12s %s\n", exercise.ID, exercise.Recommended(), exercise.Title)
			}
			return nil
		},
	}
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		strategyName string
		printSQL     bool
	)
	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "answer one exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := compose.ParseStrategy(strategyName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if printSQL {
				_, plan, err := exercises.NewRunner(nil, nil).Plan(args[0], strategy)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "-- %s\n", plan.Strategy)
				for _, statement := range plan.Script() {
					fmt.Fprintf(out, "%s;\n", statement)
				}
				return nil
			}

			return opts.withRunner(func(_ config.Config, _ *compose.Engine, runner *exercises.Runner) error {
				answer, err := runner.Answer(commandContext(cmd), args[0], strategy)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "-- %s\n", answer.Strategy)
				for idx, result := range answer.Results {
					if idx > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintln(out, result.String())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&strategyName, "strategy", "", "inline, named or materialized (default: recommended)")
	cmd.Flags().BoolVar(&printSQL, "sql", false, "print the composed SQL instead of running it")
	return cmd
}

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [id]",
		Short: "check that every strategy returns the same answer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withRunner(func(_ config.Config, _ *compose.Engine, runner *exercises.Runner) error {
				ids := runner.Catalog().IDs()
				if len(args) == 1 {
					ids = args
				}

				var failed error
				for _, id := range ids {
					if _, err := runner.Verify(commandContext(cmd), id); err != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", id, err)
						failed = errors.CombineErrors(failed, err)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", id)
				}
				return failed
			})
		},
	}
}

func newShellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "interactive prompt over one session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withRunner(func(_ config.Config, engine *compose.Engine, runner *exercises.Runner) error {
				return cli.Run(commandContext(cmd), engine, runner, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve exercises over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withRunner(func(cfg config.Config, _ *compose.Engine, runner *exercises.Runner) error {
				if addr != "" {
					cfg.Server.Addr = addr
				}
				server := &http.Server{
					Addr:              cfg.Server.Addr,
					Handler:           httpapi.NewRouter(runner),
					ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
				}

				ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
				defer stop()
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = server.Shutdown(shutdownCtx)
				}()

				log.Printf("musicstore listening on %s (db %s)", cfg.Server.Addr, cfg.Database.Path)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return errors.Wrap(err, "server failed")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config and ADDR)")
	return cmd
}
