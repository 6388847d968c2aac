// Package cmd implements the frommer-watch CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/frommer-watch/internal/config"
	"github.com/donaldgifford/frommer-watch/internal/engine"
	"github.com/donaldgifford/frommer-watch/internal/fetch"
	"github.com/donaldgifford/frommer-watch/internal/match"
	"github.com/donaldgifford/frommer-watch/internal/metrics"
	"github.com/donaldgifford/frommer-watch/internal/notify"
	"github.com/donaldgifford/frommer-watch/pkg/logger"
)

const pushTimeout = 10 * time.Second

// rootOptions holds flag values shared by every command. Each command tree
// owns its own viper instance.
type rootOptions struct {
	cfgFile string
	envFile string
	dryRun  bool
	strict  bool
	v       *viper.Viper

	newFetcher func(config.HTTPConfig, *slog.Logger) engine.Fetcher
}

func newRootOptions() *rootOptions {
	return &rootOptions{
		v:          viper.New(),
		newFetcher: newHTTPFetcher,
	}
}

func newHTTPFetcher(hc config.HTTPConfig, log *slog.Logger) engine.Fetcher {
	return fetch.New(
		fetch.WithTimeout(hc.Timeout),
		fetch.WithUserAgent(hc.UserAgent),
		fetch.WithMaxBodyBytes(hc.MaxBodyBytes),
		fetch.WithLogger(log),
	)
}

// NewRootCommand builds the command tree. Running the root command performs
// exactly one check-and-notify cycle.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newRootOptions())
}

func newRootCommand(o *rootOptions) *cobra.Command {

	root := &cobra.Command{
		Use:   "frommer-watch",
		Short: "Check marketplaces for Frommer Stop parts and notify via Telegram",
		Long: "frommer-watch searches eBay, GunBroker and Numrich for the configured\n" +
			"keywords, keeps listings whose titles match, and sends one Telegram\n" +
			"summary per run. It is meant to be triggered by cron or CI and exits 0\n" +
			"even when a site or the notification fails (see --strict).",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          o.runRoot,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.cfgFile, "config", "", "YAML config file (defaults apply when empty)")
	pf.StringVar(&o.envFile, "env-file", ".env",
		"dotenv file loaded if present; never overrides the real environment")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.String("output", "table", "output format (table, json)")

	f := root.Flags()
	f.BoolVar(&o.dryRun, "dry-run", false, "print the summary to stdout instead of sending it")
	f.String("pushgateway", "", "Prometheus Pushgateway URL to push run metrics to")
	f.BoolVar(&o.strict, "strict", false, "exit non-zero when the run fails")

	cobra.CheckErr(o.v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level")))
	cobra.CheckErr(o.v.BindPFlag(config.KeyLogFormat, pf.Lookup("log-format")))
	cobra.CheckErr(o.v.BindPFlag(config.KeyPushgatewayURL, f.Lookup("pushgateway")))
	cobra.CheckErr(o.v.BindPFlag("output", pf.Lookup("output")))
	cobra.CheckErr(config.BindEnv(o.v))

	root.AddCommand(versionCommand())
	root.AddCommand(sitesCommand(o))
	root.AddCommand(parseCommand(o))

	return root
}

// Execute runs the root command, cancelling on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		logger.New("error", "text").Error("command failed", "error", err)
		return err
	}
	return nil
}

// resolve loads the dotenv file and builds the effective configuration.
func (o *rootOptions) resolve() (*config.Config, error) {
	if _, err := config.LoadDotEnv(o.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Resolve(o.cfgFile, o.v)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}

// bootstrapLogger is used until the configuration is known.
func (o *rootOptions) bootstrapLogger(w io.Writer) *slog.Logger {
	return logger.NewWithWriter(w,
		o.v.GetString(config.KeyLogLevel),
		o.v.GetString(config.KeyLogFormat),
	)
}

func (o *rootOptions) jsonOutput() bool {
	return o.v.GetString("output") == "json"
}

// runRoot performs one cycle. Errors and panics are logged, panics with a
// stack trace, and unless --strict is set neither fails the process.
func (o *rootOptions) runRoot(cmd *cobra.Command, _ []string) (err error) {
	log := o.bootstrapLogger(cmd.ErrOrStderr())

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			log.Error("run failed", "error", err, "stack", string(debug.Stack()))
		} else if err != nil {
			log.Error("run failed", "error", err)
		}

		if !o.strict {
			err = nil
		}
	}()

	cfg, err := o.resolve()
	if err != nil {
		return err
	}

	log = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	return o.runCycle(cmd, cfg, log)
}

func (o *rootOptions) runCycle(cmd *cobra.Command, cfg *config.Config, log *slog.Logger) error {
	ctx := cmd.Context()

	reg, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("building site registry: %w", err)
	}

	m, err := match.New(cfg.Keywords)
	if err != nil {
		return fmt.Errorf("compiling keywords: %w", err)
	}

	f := o.newFetcher(cfg.HTTP, log)

	var n notify.Notifier
	if o.dryRun {
		n = notify.NewWriterNotifier(cmd.OutOrStdout())
	} else {
		n = notify.New(cfg.Notify, log)
	}

	eng := engine.NewEngine(reg, m, f, n,
		engine.WithLogger(log),
		engine.WithSubject(cfg.Subject),
	)

	report, runErr := eng.RunOnce(ctx)

	if cfg.Metrics.PushgatewayURL != "" {
		pushMetrics(ctx, log, cfg.Metrics)
	}

	if runErr != nil {
		return runErr
	}

	log.Info("run complete",
		"run_id", report.RunID,
		"found", len(report.Found),
		"notified", report.Notified,
		"duration", report.Duration,
	)

	if o.jsonOutput() {
		return outputJSON(cmd.OutOrStdout(), newReportView(report))
	}
	return nil
}

// pushMetrics is best effort; a Pushgateway outage never fails a run.
func pushMetrics(ctx context.Context, log *slog.Logger, mc config.MetricsConfig) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()

	grouping := map[string]string{}
	if host, err := os.Hostname(); err == nil {
		grouping["instance"] = host
	}

	if err := metrics.Push(ctx, mc.PushgatewayURL, mc.Job, grouping); err != nil {
		log.Warn("metrics push failed", "error", err)
		return
	}
	log.Debug("metrics pushed", "url", mc.PushgatewayURL, "job", mc.Job)
}
