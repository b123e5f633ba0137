package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"buildhook/internal/action"
	"buildhook/internal/config"
	"buildhook/internal/coordinator"
	"buildhook/internal/env"
	"buildhook/internal/events"
	"buildhook/internal/httpapi"
	"buildhook/internal/logsink"
	"buildhook/internal/script"
	"buildhook/internal/status"
	"buildhook/internal/uvars"
)

// app holds the wired daemon components.
type app struct {
	log   zerolog.Logger
	host  *env.Host
	store *events.Store
	vars  *uvars.Store
	coord *coordinator.Coordinator
	hub   *httpapi.Hub
	srv   *http.Server

	// configPath is re-read on every value received from reloads.
	configPath string
	reloads    <-chan os.Signal
}

func newLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = zerolog.InfoLevel
	}
	if strings.EqualFold(cfg.LogFormat, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// newApp wires the daemon. base must not carry the log sink hook.
func newApp(cfg config.Config, base zerolog.Logger) *app {
	level, err := cfg.Level()
	if err != nil {
		level = zerolog.InfoLevel
	}
	sink := logsink.New(level)
	log := sink.Attach(base, logsink.OriginHost)

	host := env.NewHost(cfg.Properties)
	host.SetAllowActions(!cfg.IgnoreActions)
	store := events.NewStore(cfg.Events, cfg.IsEnabled())
	tracker := status.NewTracker()
	vars := uvars.New()
	engine := script.NewEngine(script.EngineConfig{
		Events:         store,
		Status:         tracker,
		Vars:           vars,
		Properties:     host,
		PostProcessing: cfg.PostProcessing,
	})
	exec := action.New(action.Config{
		Shell:   cfg.Shell,
		Timeout: cfg.ActionTimeout(),
		Engine:  engine,
		Logger:  log.With().Str("component", "action").Logger(),
	})
	hub := httpapi.NewHub()
	coord := coordinator.New(coordinator.Config{
		Provider:    store,
		Executor:    exec,
		Environment: host,
		Status:      tracker,
		Publisher:   hub,
		Logger:      base.With().Str("component", "coordinator").Logger(),
		Sink:        sink,
	})

	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
	mux := httpapi.NewMux(httpapi.Deps{
		Service:   coord,
		Eval:      engine,
		Variables: vars,
		Host:      host,
		Logs:      sink,
		Events:    hub,
	})
	return &app{
		log:   log,
		host:  host,
		store: store,
		vars:  vars,
		coord: coord,
		hub:   hub,
		srv:   &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
	}
}

// run serves until ctx is done or a component fails.
func (a *app) run(ctx context.Context) error {
	httpapi.SetBaseContext(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.coord.Run(gctx) })
	g.Go(func() error { return a.hub.Run(gctx) })
	g.Go(func() error {
		a.log.Info().Str("addr", a.srv.Addr).Int("events", a.eventCount()).Msg("buildhookd listening")
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-a.reloads:
				if err := a.reload(); err != nil {
					a.log.Error().Err(err).Str("config", a.configPath).Msg("config reload failed")
				}
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(sctx); err != nil {
			a.log.Error().Err(err).Msg("graceful shutdown error")
		}
		a.coord.Close()
		return nil
	})
	return g.Wait()
}

func (a *app) eventCount() int {
	n := 0
	for _, c := range events.Categories {
		n += a.store.Len(c)
	}
	return n
}

// reload re-reads the config and swaps in its events, global switch and build
// properties. Status slots are indexed by position, so the build session is
// reset as well. Listen address, logging and CORS settings need a restart.
func (a *app) reload() error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.store.Replace(cfg.Events)
	a.store.SetEnabled(cfg.IsEnabled())
	for k, v := range cfg.Properties {
		name, project, _ := strings.Cut(k, ":")
		a.host.SetProperty(name, project, v)
	}
	if !a.coord.Reset() {
		a.log.Warn().Msg("config reloaded while actions are disallowed; session kept")
	}
	a.log.Info().Int("events", a.eventCount()).Bool("enabled", cfg.IsEnabled()).Msg("config reloaded")
	return nil
}
