package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-brains/internal/config"
	"github.com/teslashibe/go-brains/internal/log"
	"github.com/teslashibe/go-brains/pkg/brains"
	"github.com/teslashibe/go-brains/pkg/sim"
	"github.com/teslashibe/go-brains/pkg/telemetry"
	"github.com/teslashibe/go-brains/pkg/web"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		ticks      int
		record     string
		listen     string
		pace       time.Duration
		parallel   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Long: `Run a simulation file until its tick count is reached or the process is
interrupted. Frames can be recorded to SQLite and streamed to a live dashboard.`,
		Example: `  robosim run --config configs/sim.yaml
  robosim run --config configs/sim.yaml --ticks 0 --listen :8080
  robosim run --config configs/sim.yaml --record ticks.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ticks") {
				cfg.Ticks = ticks
			}
			if cmd.Flags().Changed("parallel") {
				cfg.Parallel = parallel
			}
			if listen == "" && os.Getenv("BRAINS_LISTEN") != "" {
				listen = config.Listen()
			}
			// A dashboard is only watchable in real time.
			if listen != "" && !cmd.Flags().Changed("pace") {
				pace = cfg.Tick
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r, err := sim.FromConfig(cfg, filepath.Dir(configPath), sim.WithPace(pace))
			if err != nil {
				return err
			}

			if record != "" {
				rec, err := telemetry.OpenRecorder(ctx, record)
				if err != nil {
					return err
				}
				defer rec.Close()
				r.AddSink(rec)
			}

			if listen != "" {
				srv := web.NewServer(r, brains.List(), log.L())
				r.AddSink(srv)
				srv.StartAsync(listen)
				defer srv.Shutdown()
			}

			err = r.Run(ctx, cfg.Ticks)
			if errors.Is(err, context.Canceled) {
				log.Info("simulation interrupted", "steps", r.Steps())
				err = nil
			}
			if err != nil {
				return err
			}
			return summarize(cmd.OutOrStdout(), r.Last())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "configs/sim.yaml", "Simulation file")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "Steps to run, 0 runs until interrupted (default from config)")
	cmd.Flags().StringVar(&record, "record", "", "Record frames to this SQLite database")
	cmd.Flags().StringVar(&listen, "listen", "", "Serve the live dashboard on this address")
	cmd.Flags().DurationVar(&pace, "pace", 0, "Minimum wall time per step")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Tick controllers concurrently (default from config)")
	return cmd
}

// loadConfig reads the simulation file and initialises logging from the
// flag, the file or the environment, in that order.
func loadConfig(cmd *cobra.Command, path string) (config.Sim, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Sim{}, err
	}
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = cfg.LogLevel
	}
	if level == "" {
		level = config.LogLevel()
	}
	log.Init(level)
	return cfg, nil
}

func summarize(w io.Writer, f telemetry.Frame) error {
	fmt.Fprintf(w, "tick %d (%s), %d items on the floor\n", f.Tick, f.Time, f.Items)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROBOT\tSTATE\tPOSITION\tODOMETER\tHELD\tHALTED")
	for _, rb := range f.Robots {
		fmt.Fprintf(tw, "%s\t%s\t(%.0f, %.0f)\t%.0f\t%d\t%s\n",
			rb.Name, rb.State, rb.Body.Position[0], rb.Body.Position[1],
			rb.Body.Odometer, rb.Body.Held, rb.Halted)
	}
	return tw.Flush()
}
