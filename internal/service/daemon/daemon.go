package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	prom "github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/audio"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/metrics"
	"github.com/oshokin/alarm-clock/internal/notify"
	"github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/repository/tone"
	"github.com/oshokin/alarm-clock/internal/service/alarmclock"
	"github.com/oshokin/alarm-clock/internal/service/playback"
	"github.com/oshokin/alarm-clock/internal/service/scheduler"
	"github.com/oshokin/alarm-clock/internal/version"
	"github.com/oshokin/alarm-clock/internal/wallclock"
)

// Options controls the alarmd process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the gRPC listen address from the settings.
	ListenAddress string
	// SoundDirectory overrides the tone directory from the settings.
	SoundDirectory string
	// LogLevel overrides the log level from the settings.
	LogLevel string
	// AllowMultiple skips the single-instance check.
	AllowMultiple bool

	// Player plays tones; the system audio output when nil.
	Player playback.Player
	// Clock drives the scheduler and playback; the real clock when nil.
	Clock clockwork.Clock
	// Ready, when set, receives the bound control address once serving.
	Ready func(addr string)
}

// metricsShutdownTimeout bounds the metrics server shutdown.
const metricsShutdownTimeout = 5 * time.Second

// metricsReadHeaderTimeout bounds slow metrics scrapers.
const metricsReadHeaderTimeout = 5 * time.Second

// Run starts alarmd and blocks until ctx is cancelled, a Shutdown request
// arrives or the control server fails. Startup failures are returned before
// anything is served.
//
//nolint:funlen // Wiring reads best top to bottom.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarmd")

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	if !opts.AllowMultiple {
		if err = ensureSingleInstance(); err != nil {
			return err
		}
	}

	location, err := settings.TimeLocation()
	if err != nil {
		return err
	}

	catalog, err := tone.Scan(settings.SoundDirectory)
	if err != nil {
		return fmt.Errorf("prepare sound directory: %w", err)
	}

	logger.InfoKV(ctx, "Sound directory scanned", "dir", catalog.Dir(), "tones", catalog.Tones())

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	player := opts.Player
	if player == nil {
		player = audio.NewPlayer()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	source := wallclock.New(clock, location)
	recorder := metrics.NewRecorder(prom.NewRegistry())
	hub := events.NewHub(clock.Now)
	store := alarms.NewStore()

	controller := playback.NewController(catalog, player,
		playback.WithMaxRing(settings.MaxRingDuration),
		playback.WithClock(clock),
		playback.WithObserver(recorder),
	)
	defer controller.Close()

	service := alarmclock.NewService(store, catalog, controller, source, alarmclock.Options{
		Snooze:   settings.SnoozeDuration,
		Hub:      hub,
		Recorder: recorder,
		Shutdown: cancel,
	})

	sched := scheduler.New(store, source, controller, scheduler.Options{
		PollInterval: settings.PollInterval,
		Hub:          hub,
		Recorder:     recorder,
	})

	var relay *notify.Relay

	if settings.NATS.URL != "" {
		relay, err = notify.Connect(ctx, settings.NATS.URL, settings.NATS.Subject)
		if err != nil {
			return err
		}

		defer relay.Close()
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", settings.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.ListenAddress, err)
	}

	apiServer := api.NewServer(service, hub)
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(api.UnaryServerInterceptor(recorder)),
		grpc.ChainStreamInterceptor(api.StreamServerInterceptor(recorder)),
	)
	api.RegisterAlarmClockServer(grpcServer, apiServer)

	var workers sync.WaitGroup

	defer workers.Wait()

	workers.Go(func() {
		if err := sched.Run(ctx); err != nil {
			logger.ErrorKV(ctx, "Scheduler failed", "error", err)
			cancel()
		}
	})

	if settings.MetricsAddress != "" {
		serveMetrics(ctx, &workers, settings.MetricsAddress, recorder)
	}

	if relay != nil {
		workers.Go(func() { relay.Run(ctx, hub) })
	}

	// Stop serving once the root context ends, whatever ended it.
	workers.Go(func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		apiServer.Close()
		grpcServer.GracefulStop()
	})

	logger.InfoKV(ctx, "Alarm clock listening",
		"version", version.Short(),
		"listen_address", lis.Addr().String(),
		"location", location.String(),
		"poll_interval", settings.PollInterval,
	)

	if opts.Ready != nil {
		opts.Ready(lis.Addr().String())
	}

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		cancel()

		return fmt.Errorf("serve gRPC: %w", err)
	}

	cancel()
	logger.Info(ctx, "Alarm clock stopped")

	return nil
}

// loadSettings reads the settings file and applies command line overrides.
func loadSettings(opts *Options) (*config.Config, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.ListenAddress != "" {
		settings.ListenAddress = opts.ListenAddress
	}

	if opts.SoundDirectory != "" {
		settings.SoundDirectory = opts.SoundDirectory
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if err = config.Validate(settings); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	level, _ := logger.ParseLogLevel(settings.LogLevel)
	logger.SetLevel(level)

	return settings, nil
}

// serveMetrics exposes the recorder on addr until ctx ends.
func serveMetrics(ctx context.Context, workers *sync.WaitGroup, addr string, recorder *metrics.Recorder) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	workers.Go(func() {
		logger.InfoKV(ctx, "Serving metrics", "address", addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorKV(ctx, "Metrics server failed", "error", err)
		}
	})

	workers.Go(func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "Metrics server shutdown failed", "error", err)
		}
	})
}
