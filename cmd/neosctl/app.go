package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	neos "github.com/neos-go/neos-go"
	"github.com/neos-go/neos-go/internal/config"
	"github.com/neos-go/neos-go/internal/telemetry"
	"github.com/neos-go/neos-go/logger"
	"github.com/neos-go/neos-go/retry"
)

var errUsage = errors.New("usage error")

// app is the state shared by every command of a single invocation.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	telemetry *telemetry.Provider
	retry     retry.Retry
	stdout    io.Writer
	stderr    io.Writer
}

type globalFlags struct {
	configPath  string
	dotEnv      bool
	baseUrl     string
	sessionFile string
	logLevel    string
	trace       string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&g.configPath, "config", "c", "", "path to a YAML config file")
	fs.BoolVar(&g.dotEnv, "dotenv", true, "load NEOS_* variables from ./.env")
	fs.StringVar(&g.baseUrl, "base-url", "", "Neos API base URL")
	fs.StringVar(&g.sessionFile, "session-file", "", "where the login session is stored")
	fs.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&g.trace, "trace", "", "export traces: stdout or otlp")
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	var flags globalFlags
	fs := pflag.NewFlagSet("neosctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	flags.register(fs)

	if err := fs.Parse(args); err != nil {
		_, _ = fmt.Fprintf(stderr, "neosctl: %v\n\n", err)
		printUsage(stderr, fs)
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 || rest[0] == "help" || rest[0] == "--help" || rest[0] == "-h" {
		printUsage(stdout, fs)
		if len(rest) == 0 {
			return 2
		}
		return 0
	}

	cmd, ok := findCommand(rest[0])
	if !ok {
		_, _ = fmt.Fprintf(stderr, "neosctl: unknown command %q, run \"neosctl help\"\n", rest[0])
		return 2
	}

	a, err := newApp(ctx, flags, cmd.name == "export", stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "neosctl: %v\n", err)
		return 1
	}
	defer a.close()

	if err := cmd.run(ctx, a, rest[1:]); err != nil {
		_, _ = fmt.Fprintf(stderr, "neosctl %s: %v\n", cmd.name, err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func newApp(ctx context.Context, flags globalFlags, metrics bool, stdout io.Writer, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(flags.configPath, flags.dotEnv)
	if err != nil {
		return nil, err
	}
	if flags.baseUrl != "" {
		cfg.BaseUrl = flags.baseUrl
	}
	if flags.sessionFile != "" {
		cfg.SessionFile = flags.sessionFile
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.trace != "" {
		cfg.Tracing.Enabled = true
		cfg.Tracing.Exporter = flags.trace
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	slogger := newSlogger(cfg.Log, stderr)
	log := logger.NewSlog(slogger)

	provider, err := telemetry.Setup(ctx, cfg.Tracing, telemetry.Options{
		Version:     version,
		Metrics:     metrics,
		TraceWriter: stderr,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		log:       log,
		telemetry: provider,
		retry: retry.NewExponentialRetry(
			retry.WithLogger(log),
			retry.WithInitialDuration(cfg.Retry.InitialBackoff),
			retry.WithMaxDuration(cfg.Retry.MaxBackoff),
		),
		stdout: stdout,
		stderr: stderr,
	}, nil
}

func newSlogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
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
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) close() {
	if err := a.telemetry.Shutdown(context.Background()); err != nil {
		a.log.Warnf("%v", err)
	}
}

func (a *app) clientOptions() []neos.ConfigOption {
	return []neos.ConfigOption{
		neos.WithBaseUrl(a.cfg.BaseUrl),
		neos.WithTimeout(a.cfg.Timeout),
		neos.WithMinRequestInterval(a.cfg.MinRequestInterval),
		neos.WithDefaultRateLimitDelay(a.cfg.DefaultRateLimitDelay),
		neos.WithLogger(a.log),
		neos.WithTracerProvider(a.telemetry.TracerProvider()),
		neos.WithMeterProvider(a.telemetry.MeterProvider()),
	}
}

func (a *app) unauthenticated() *neos.Unauthenticated {
	return neos.NewUnauthenticated(a.cfg.UserAgent, a.clientOptions()...)
}

// authenticated restores the client saved by "neosctl login".
func (a *app) authenticated() (*neos.Authenticated, error) {
	session, err := config.LoadSession(a.cfg.SessionFile)
	if err != nil {
		return nil, err
	}
	return neos.NewAuthenticated(a.cfg.UserAgent, *session, a.clientOptions()...), nil
}

// client is the authenticated client if a session is saved, else an
// unauthenticated one.
func (a *app) client() neos.AnyClient {
	if c, err := a.authenticated(); err == nil {
		return neos.NewAnyAuthenticated(c)
	}
	return neos.NewAnyUnauthenticated(a.unauthenticated())
}

// do runs fn, retrying rate limits and transient failures.
func (a *app) do(ctx context.Context, name string, fn func() error) error {
	return a.retry.Do(ctx, a.cfg.Retry.Attempts, name, func(attempt int) (error, retry.ExitStrategy) {
		err := fn()
		return err, retry.Transient(err)
	})
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	_, _ = fmt.Fprintln(w, "Usage: neosctl [global flags] <command> [flags] [args]")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Global flags:")
	_, _ = fmt.Fprint(w, fs.FlagUsages())
}
