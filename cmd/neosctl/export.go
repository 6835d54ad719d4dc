package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"golang.org/x/sync/errgroup"

	neos "github.com/neos-go/neos-go"
	"github.com/neos-go/neos-go/internal/telemetry"
	"github.com/neos-go/neos-go/types"
)

const healthPath = "/health"

// exporter polls public Neos statistics and exposes them as gauges.
type exporter struct {
	app    *app
	client neos.AnyClient

	onlineUsers     prometheus.Gauge
	onlineInstances prometheus.Gauge
	sessions        *prometheus.GaugeVec
	sessionUsers    *prometheus.GaugeVec
	pollErrors      *prometheus.CounterVec
	lastPoll        prometheus.Gauge

	healthy atomic.Bool
}

func newExporter(a *app, client neos.AnyClient, registry prometheus.Registerer) (*exporter, error) {
	e := &exporter{
		app:    a,
		client: client,
		onlineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "neos",
			Name:      "online_users",
			Help:      "Users currently online.",
		}),
		onlineInstances: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "neos",
			Name:      "online_instances",
			Help:      "Neos instances currently running.",
		}),
		sessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "neos",
			Name:      "public_sessions",
			Help:      "Public sessions by access level and headless host.",
		}, []string{"access_level", "headless"}),
		sessionUsers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "neos",
			Name:      "public_session_users",
			Help:      "Active users in public sessions by access level.",
		}, []string{"access_level"}),
		pollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neos",
			Name:      "exporter_poll_errors_total",
			Help:      "Failed polls by target.",
		}, []string{"target"}),
		lastPoll: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "neos",
			Name:      "exporter_last_poll_timestamp_seconds",
			Help:      "Unix time of the last successful poll.",
		}),
	}

	for _, c := range []prometheus.Collector{
		e.onlineUsers, e.onlineInstances, e.sessions, e.sessionUsers, e.pollErrors, e.lastPoll,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return e, nil
}

// poll refreshes every gauge. A failed target keeps its previous value.
func (e *exporter) poll(ctx context.Context) error {
	var errs []error

	stats, err := fetchStats(ctx, e.app, e.client)
	if err != nil {
		e.pollErrors.WithLabelValues("stats").Inc()
		errs = append(errs, err)
	} else {
		e.onlineUsers.Set(float64(stats.OnlineUsers))
		e.onlineInstances.Set(float64(stats.OnlineInstances))
	}

	var sessions []types.SessionInfo
	err = e.app.do(ctx, "list-sessions", func() (err error) {
		sessions, err = e.client.Sessions().List(ctx)
		return err
	})
	if err != nil {
		e.pollErrors.WithLabelValues("sessions").Inc()
		errs = append(errs, err)
	} else {
		e.setSessions(sessions)
	}

	err = errors.Join(errs...)
	e.healthy.Store(err == nil)
	if err == nil {
		e.lastPoll.SetToCurrentTime()
	}
	return err
}

func (e *exporter) setSessions(sessions []types.SessionInfo) {
	e.sessions.Reset()
	e.sessionUsers.Reset()
	for _, s := range sessions {
		if s.HasEnded {
			continue
		}
		level := s.AccessLevel.String()
		e.sessions.WithLabelValues(level, strconv.FormatBool(s.IsHeadlessHost)).Inc()
		e.sessionUsers.WithLabelValues(level).Add(float64(s.ActiveUsers))
	}
}

func (e *exporter) router(gatherer prometheus.Gatherer, metricsPath string) *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware(telemetry.ServiceName,
		otelmux.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != healthPath && r.URL.Path != metricsPath
		}),
	))

	r.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc(healthPath, e.health).Methods(http.MethodGet)
	return r
}

func (e *exporter) health(w http.ResponseWriter, _ *http.Request) {
	if !e.healthy.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("last poll failed\n"))
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}

// loop polls every interval until ctx is done.
func (e *exporter) loop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := e.poll(ctx); err != nil && ctx.Err() == nil {
			e.app.log.Warnf("poll failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	addr := fs.String("address", a.cfg.Exporter.Address, "listen address")
	path := fs.String("metrics-path", a.cfg.Exporter.MetricsPath, "path serving metrics")
	interval := fs.Duration("interval", a.cfg.Exporter.PollInterval, "time between polls")
	if _, err := parseFlags(fs, args, 0, 0); err != nil {
		return err
	}
	if *interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", errUsage)
	}

	registry := a.telemetry.Registry()
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	e, err := newExporter(a, a.client(), registry)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           e.router(registry, *path),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.loop(gctx, *interval)
	})
	g.Go(func() error {
		a.log.Infof("serving metrics on %s%s", *addr, *path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
