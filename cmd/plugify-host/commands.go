package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/plugify-dev/plugify/internal/config"
	"github.com/plugify-dev/plugify/internal/fsutil"
	"github.com/plugify-dev/plugify/internal/lifecycle/diag"
	"github.com/plugify-dev/plugify/internal/lifecycle/housekeep"
	"github.com/plugify-dev/plugify/internal/logging"
	"github.com/plugify-dev/plugify/internal/manifestio"
	"github.com/plugify-dev/plugify/pkg/plugify"
)

// buildEngine loads Options from configFile and wires every ambient
// collaborator (filesystem, manifest parser, logger) into a fresh Engine,
// leaving Initialize to the caller.
func buildEngine(configFile string) (*plugify.Engine, *config.Options, *logging.Default, error) {
	opts, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("plugify-host: %w", err)
	}

	log := logging.New(opts.Log.Level, opts.Log.Pretty)

	eng := plugify.New(plugify.Options{
		ExtensionsDir:    opts.ExtensionsDir,
		FS:               fsutil.New(),
		Parser:           manifestio.New(),
		Log:              log,
		Dirs:             plugify.Dirs{Base: opts.BaseDir, Configs: opts.ConfigsDir, Data: opts.DataDir, Logs: opts.LogsDir, Cache: opts.CacheDir},
		PreferOwnSymbols: false,
		LoadFlags:        opts.ParseLoadFlags(),
	})
	return eng, opts, log, nil
}

// newRunCmd brings the extension tree up, optionally starts the diag HTTP
// server and the housekeeping cron job, and blocks until SIGINT/SIGTERM,
// tearing everything down on the way out — adapted from the teacher's
// context-cancel-on-signal idiom (monitor.go), generalized from a polling
// loop to a single long block since the engine drives its own Update via
// housekeep rather than the command loop.
func newRunCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Initialize the extension tree and run until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, opts, log, err := buildEngine(*configFile)
			if err != nil {
				return err
			}

			if _, err := eng.Initialize(); err != nil {
				return fmt.Errorf("plugify-host: initialize: %w", err)
			}
			defer func() {
				if err := eng.Terminate(); err != nil {
					log.Log("plugify-host: terminate: "+err.Error(), plugify.SeverityError)
				}
			}()

			var housekeeper *housekeep.Housekeeper
			if opts.Housekeep.Enabled {
				housekeeper = housekeep.New(eng.Inner(), log)
				if err := housekeeper.Start(opts.Housekeep.CronSpec); err != nil {
					return fmt.Errorf("plugify-host: housekeep: %w", err)
				}
				defer housekeeper.Stop()
			}

			var diagServer *http.Server
			if opts.Diag.Enabled {
				diagServer = &http.Server{Addr: opts.Diag.Addr, Handler: diag.NewRouter(eng.Inner())}
				go func() {
					if err := diagServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Log("plugify-host: diag server: "+err.Error(), plugify.SeverityError)
					}
				}()
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = diagServer.Shutdown(ctx)
				}()
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigs
				cancel()
			}()

			log.Log(fmt.Sprintf("plugify-host: running with %d extensions", len(eng.Extensions())), plugify.SeverityInfo)
			<-ctx.Done()
			return nil
		},
	}
}

// newListCmd initializes the tree and prints a table of every extension's
// final state, without blocking.
func newListCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Initialize the extension tree and print each extension's state",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, _, err := buildEngine(*configFile)
			if err != nil {
				return err
			}
			if _, err := eng.Initialize(); err != nil {
				return fmt.Errorf("plugify-host: initialize: %w", err)
			}
			defer eng.Terminate()

			w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tSTATE\tVERSION")
			for _, e := range eng.Extensions() {
				s := e.Snapshot()
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.Kind, s.State, s.Version)
			}
			return w.Flush()
		},
	}
}

// newReportCmd initializes the tree, prints per-state timing for every
// extension, and exits — a one-shot alternative to polling the diag HTTP
// server.
func newReportCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Initialize the extension tree and print per-state timing",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, _, err := buildEngine(*configFile)
			if err != nil {
				return err
			}
			if _, err := eng.Initialize(); err != nil {
				return fmt.Errorf("plugify-host: initialize: %w", err)
			}
			defer eng.Terminate()

			w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTATE\tTOTAL_MS\tERRORS")
			for _, e := range eng.Extensions() {
				s := e.Snapshot()
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\n", s.Name, s.State, s.TotalMs, len(s.Errors))
			}
			return w.Flush()
		},
	}
}
