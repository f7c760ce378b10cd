package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/gymcrowd/api/predict"
	"github.com/kilianp07/gymcrowd/config"
	"github.com/kilianp07/gymcrowd/core/events"
	"github.com/kilianp07/gymcrowd/core/factory"
	"github.com/kilianp07/gymcrowd/core/history"
	coremetrics "github.com/kilianp07/gymcrowd/core/metrics"
	coremon "github.com/kilianp07/gymcrowd/core/monitoring"
	"github.com/kilianp07/gymcrowd/core/prediction"
	_ "github.com/kilianp07/gymcrowd/infra/history"
	"github.com/kilianp07/gymcrowd/infra/logger"
	"github.com/kilianp07/gymcrowd/infra/metrics"
	"github.com/kilianp07/gymcrowd/infra/monitoring"
	"github.com/kilianp07/gymcrowd/infra/mqtt"
	"github.com/kilianp07/gymcrowd/internal/eventbus"
)

// Service wires the prediction server to its transports, metrics and history.
type Service struct {
	Server    *prediction.Server
	Lifecycle *prediction.Lifecycle

	cfg       *config.Config
	bus       *eventbus.Bus[events.Event]
	store     history.Store
	sink      coremetrics.MetricsSink
	monitor   coremon.Monitor
	log       logger.Logger
	collected <-chan struct{}
	closeOnce sync.Once
}

// Option customizes New.
type Option func(*options)

type options struct {
	source prediction.Source
}

// WithSource replaces the artifact file named in the configuration.
func WithSource(src prediction.Source) Option {
	return func(o *options) { o.source = src }
}

// New loads the model once and prepares every configured component.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	o := options{source: FileSource(cfg.Model.Path)}
	for _, opt := range opts {
		opt(&o)
	}
	logg := logger.New("service")

	monitor, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	sink, err := newSink(cfg.Metrics)
	if err != nil {
		monitor.Flush(2 * time.Second)
		return nil, fmt.Errorf("metrics: %w", err)
	}
	var store history.Store
	if cfg.History.Enabled() {
		if store, err = history.NewStore(cfg.History.ModuleConfig()); err != nil {
			coremetrics.CloseSink(sink)
			monitor.Flush(2 * time.Second)
			return nil, fmt.Errorf("history: %w", err)
		}
	}

	bus := eventbus.New[events.Event]()
	// Not tied to ctx so buffered events are drained on Close.
	collected := metrics.StartEventCollector(context.Background(), bus, metrics.Collector{
		Sink:  sink,
		Store: store,
		Log:   logger.New("collector"),
	})
	s := &Service{cfg: cfg, bus: bus, store: store, sink: sink, monitor: monitor, log: logg, collected: collected}

	srv, lc, err := LoadPredictor(ctx, o.source, time.Duration(cfg.Model.LoadTimeoutSeconds)*time.Second,
		prediction.WithLogger(logger.New("predictor")),
		prediction.WithMonitor(monitor),
		prediction.WithPublisher(bus),
	)
	s.Lifecycle = lc
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Server = srv
	s.announce()
	return s, nil
}

// newSink builds the configured sinks and adds a Prometheus sink when the
// /metrics endpoint is enabled.
func newSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	cfgs := cfg.Sinks
	if cfg.PrometheusAddress != "" && !hasSink(cfgs, "prometheus") {
		cfgs = append(append([]factory.ModuleConfig{}, cfgs...), factory.ModuleConfig{Type: "prometheus"})
	}
	return coremetrics.NewMetricsSink(cfgs)
}

func hasSink(cfgs []factory.ModuleConfig, typ string) bool {
	for _, c := range cfgs {
		if c.Type == typ {
			return true
		}
	}
	return false
}

func (s *Service) announce() {
	info := s.Lifecycle.Info()
	ev := events.ModelStateEvent{
		Time:      time.Now(),
		State:     s.Lifecycle.State().String(),
		ModelKind: info.Kind,
		Source:    info.Source,
		Err:       s.Lifecycle.LoadError(),
	}
	s.bus.Publish(ev)
	if ev.Err != nil {
		s.monitor.CaptureException(ev.Err, map[string]string{"model_path": s.cfg.Model.Path, "model_state": ev.State})
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	return predict.NewRouter(predict.Options{
		Predictor:      s.Server,
		Store:          s.store,
		AllowedOrigins: s.cfg.HTTP.AllowedOrigins,
		RateLimitRPS:   s.cfg.HTTP.RateLimit.RPS,
		RateLimitBurst: s.cfg.HTTP.RateLimit.Burst,
		Planner:        s.cfg.Planner,
		Log:            logger.New("api"),
	})
}

// Run starts the enabled transports and blocks until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	defer s.monitor.Recover()
	errCh := make(chan error, 2)

	if s.cfg.HTTP.Address != "" {
		srv := &http.Server{Addr: s.cfg.HTTP.Address, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			s.log.Infof("HTTP API listening on %s", s.cfg.HTTP.Address)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http: %w", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.log.Errorf("http shutdown: %v", err)
			}
		}()
	}

	if s.cfg.MQTT.Enabled {
		responder, err := mqtt.NewResponder(s.cfg.MQTT, s.Server)
		if err != nil {
			return fmt.Errorf("mqtt responder: %w", err)
		}
		defer responder.Disconnect()
	}

	if addr := s.cfg.Metrics.PrometheusAddress; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr, nil); err != nil {
				errCh <- fmt.Errorf("prometheus: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Close drains pending events and releases resources held by the service.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.bus.Close()
		<-s.collected
		coremetrics.CloseSink(s.sink)
		if s.store != nil {
			err = s.store.Close()
		}
		s.monitor.Flush(2 * time.Second)
	})
	return err
}
