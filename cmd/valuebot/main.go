package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/valuebot/config"
)

// options son los flags globales, comunes a todos los subcomandos.
type options struct {
	configPath string
	bankroll   float64
	dryRun     bool
	force      bool
	format     string
	schedule   string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config/config.yaml", "path to config file")
	flag.Float64Var(&opts.bankroll, "bankroll", 0, "current bankroll (overrides config)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "use local fixtures and an in-memory store")
	flag.BoolVar(&opts.force, "force", false, "ignore today's cached run")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("log-format", "", "log format: text|json (overrides config)")
	flag.StringVar(&opts.format, "format", "", "report format: table|compact|json (overrides config)")
	flag.StringVar(&opts.schedule, "schedule", "", "cron expression with seconds; keeps running and reports on schedule")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", opts.configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if opts.format != "" {
		cfg.Report.Format = opts.format
	}
	if opts.bankroll > 0 {
		cfg.Bankroll.Amount = opts.bankroll
	}
	setupLogger(cfg.Log)

	cmd, args := "today", []string(nil)
	if flag.NArg() > 0 {
		cmd, args = flag.Arg(0), flag.Args()[1:]
	}

	slog.Debug("valuebot starting",
		"config", opts.configPath,
		"command", cmd,
		"bankroll", cfg.Bankroll.Amount,
		"dry_run", opts.dryRun,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := newApp(ctx, cfg, opts)
	if err != nil {
		slog.Error("failed to start", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	switch cmd {
	case "today":
		err = runToday(ctx, app, opts)
	case "register":
		err = runRegister(ctx, app, args)
	case "settle":
		err = runSettle(ctx, app, args)
	case "stats":
		err = runStats(ctx, app, args)
	case "history":
		err = runHistory(ctx, app, args)
	case "pending":
		err = runPending(ctx, app)
	case "serve":
		err = runServe(ctx, app, opts)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error(cmd+" failed", "err", err)
		os.Exit(1)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: valuebot [flags] [command] [args]\n\n")
	fmt.Fprintf(out, "Commands:\n")
	fmt.Fprintf(out, "  today                          daily report (default)\n")
	fmt.Fprintf(out, "  register -n N | -m N           register opportunity or multiple N of today's report\n")
	fmt.Fprintf(out, "  register -match M -market K -odds O -prob P [-stake S]\n")
	fmt.Fprintf(out, "                                 register a manual bet\n")
	fmt.Fprintf(out, "  settle -id ID -result R        settle a bet as won|lost|void\n")
	fmt.Fprintf(out, "  stats [-phase P]               betting statistics\n")
	fmt.Fprintf(out, "  history [-n N]                 last N bets\n")
	fmt.Fprintf(out, "  pending                        open bets\n")
	fmt.Fprintf(out, "  serve                          REST API (+ scheduled reports with -schedule)\n\n")
	fmt.Fprintf(out, "Flags:\n")
	flag.PrintDefaults()
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
