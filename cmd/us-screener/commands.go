package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"us-screener/internal/app"
	"us-screener/internal/report"
	"us-screener/internal/server"
)

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "us-screener",
		Short: "Screen US equities for overbought and oversold conditions",
		Long: `us-screener keeps a local cache of daily price history for the Nasdaq-traded universe,
fills only the missing days on each run, and flags tickers whose latest RSI and Bollinger Band
readings are overbought or oversold.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $CONFIG_PATH or "+app.DefaultConfigPath+")")

	withApp := func(run func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := InitializeApp(app.ConfigPath(configPath))
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			defer cleanup()
			return run(cmd, a, args)
		}
	}

	rootCmd.AddCommand(newPopulateCmd(withApp))
	rootCmd.AddCommand(newScreenCmd(withApp))
	rootCmd.AddCommand(newShowCmd(withApp))
	rootCmd.AddCommand(newErrorsCmd(withApp))
	rootCmd.AddCommand(newScheduleCmd(withApp))
	rootCmd.AddCommand(newServeCmd(withApp))
	return rootCmd
}

type appRunner func(run func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error

// interruptible cancels the command context on SIGINT/SIGTERM.
func interruptible(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func newPopulateCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "populate [TICKER...]",
		Short: "Bring the price cache up to date for the universe or the given tickers",
		RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			ctx, stop := interruptible(cmd)
			defer stop()
			res, err := a.Populate(ctx, args)
			if res != nil {
				report.WriteSummary(cmd.OutOrStdout(), res.Summary())
			}
			return err
		}),
	}
}

func newScreenCmd(withApp appRunner) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "screen [TICKER...]",
		Short: "Classify tickers and store the filteredTicks table",
		Long: `Reconcile every ticker's price cache, then flag it Overbought when RSI >= upper threshold
and the close is above the upper Bollinger Band, or Oversold when RSI <= lower threshold and the
close is below the lower band.`,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			ctx, stop := interruptible(cmd)
			defer stop()
			run := a.ScreenAndStore
			if dryRun {
				run = a.Screen
			}
			res, err := run(ctx, args)
			if res != nil {
				report.WriteSummary(cmd.OutOrStdout(), res.Summary())
				report.WriteClassified(cmd.OutOrStdout(), res.Rows)
			}
			return err
		}),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print results without storing the filteredTicks table")
	return cmd
}

func newShowCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored filteredTicks table",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			rows, err := a.FilteredTicks()
			if err != nil {
				return err
			}
			report.WriteClassified(cmd.OutOrStdout(), rows)
			return nil
		}),
	}
}

func newErrorsCmd(withApp appRunner) *cobra.Command {
	var clearSet bool
	cmd := &cobra.Command{
		Use:   "errors [TICKER...]",
		Short: "List the error set, or remove tickers from it with --clear",
		RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			if clearSet {
				n, err := a.ClearErrors(args...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d tickers from the error set\n", n)
				return nil
			}
			set, err := a.Errors()
			if err != nil {
				return err
			}
			report.WriteErrorSet(cmd.OutOrStdout(), set)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&clearSet, "clear", false, "remove the given tickers (all when none given)")
	return cmd
}

func newScheduleCmd(withApp appRunner) *cobra.Command {
	var now bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run screen-and-store on the configured cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			return a.RunFlow(cmd.Context(), now)
		}),
	}
	cmd.Flags().BoolVar(&now, "now", true, "run once immediately before waiting for the schedule")
	return cmd
}

func newServeCmd(withApp appRunner) *cobra.Command {
	var addr string
	var withSchedule bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored results over HTTP",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			if addr == "" {
				addr = a.Config.HTTPAddr
			}
			ctx, stop := interruptible(cmd)
			defer stop()
			srv := server.New(a, a.Recorder, a.Logger)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Run(ctx, addr) })
			if withSchedule {
				g.Go(func() error { return a.RunFlow(ctx, false) })
			}
			return g.Wait()
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")
	cmd.Flags().BoolVar(&withSchedule, "schedule", false, "also run the screening schedule")
	return cmd
}
