package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/okian/radial/internal/config"
	"github.com/okian/radial/pkg/logger"
)

// cli carries state shared by the subcommands once the root has loaded it.
type cli struct {
	configPath string
	cfg        *config.Config
}

func main() {
	os.Exit(run())
}

func run() int {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "radial",
		Short: "balanced deliberation groups from approval votes",
		Long: `
radial projects approval ballots onto their two principal axes, cuts the
opinion plane into equal-population sectors for a homogeneous first round and
mixes those sectors into heterogeneous groups for the second round.
`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (default $RADIAL_CONFIG)")
	root.AddCommand(c.serveCmd(), c.groupCmd(), c.sampleCmd())
	return root
}

// setup loads configuration (defaults -> optional file -> env) and
// initializes logging on stderr so stdout stays free for CSV output.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(ctx, c.configPath)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return err
	}
	if err := logger.InitWith(cmd.ErrOrStderr(), cfg.LogFormat); err != nil {
		return err
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	c.cfg = cfg
	return nil
}
