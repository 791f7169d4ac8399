// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/witchframe/internal/config"
	"github.com/tomtom215/witchframe/internal/crashdump"
	"github.com/tomtom215/witchframe/internal/diagnostics"
	"github.com/tomtom215/witchframe/internal/endpoint"
	"github.com/tomtom215/witchframe/internal/envelope"
	"github.com/tomtom215/witchframe/internal/health"
	"github.com/tomtom215/witchframe/internal/logging"
	"github.com/tomtom215/witchframe/internal/management"
	"github.com/tomtom215/witchframe/internal/metrics"
	"github.com/tomtom215/witchframe/internal/pipeline"
	"github.com/tomtom215/witchframe/internal/readiness"
	"github.com/tomtom215/witchframe/internal/shutdown"
	"github.com/tomtom215/witchframe/internal/supervisor"
	"github.com/tomtom215/witchframe/internal/transport"
	wtrace "github.com/tomtom215/witchframe/internal/trace"
)

// Options configures a Server before it is built. Every path defaults to
// the framework's conventional layout under the process's working
// directory; callers embedding the framework in a larger binary
// typically only need to set Endpoints and the three registry slices.
type Options struct {
	InstallPath string
	RuntimePath string
	KeyPath     string
	LogDir      string
	DumpDir     string
	SocketPath  string

	Endpoints       []endpoint.Definition
	HealthChecks    []health.Check
	ReadinessChecks []readiness.Check
	Diagnostics     []diagnostics.Diagnostic
}

// DefaultOptions returns an Options populated with the framework's
// conventional on-disk layout.
func DefaultOptions() Options {
	return Options{
		InstallPath: config.DefaultInstallPath,
		RuntimePath: config.DefaultRuntimePath,
		KeyPath:     config.DefaultKeyPath,
		LogDir:      "var/log",
		DumpDir:     "var/log",
		SocketPath:  "var/data/tmp/minidump.sock",
	}
}

// Server wires every other internal package into a single runnable
// process. See doc.go for the package-level overview.
type Server struct {
	opts Options

	install   *config.Install
	decrypter *config.Decrypter
	runtime   *config.Refreshable[*config.Runtime]
	reloader  *config.Reloader

	logger zerolog.Logger

	healthRegistry      *health.Registry
	readinessRegistry   *readiness.Registry
	diagnosticsRegistry *diagnostics.Registry
	liveTail            *diagnostics.LiveTail
	securityLog         *logging.SecurityLogger
	panics              *health.PanicsCheck
	latency             *pipeline.LatencyTracker

	requestAppender *envelope.AsyncAppender
	serviceAppender *envelope.AsyncAppender
	logCleanup      *envelope.Cleanup

	sequencer *shutdown.Sequencer
	tree      *supervisor.SupervisorTree

	mainHandler http.Handler
	mainSrv     *http.Server
	mainLis     net.Listener

	mgmtSrv *http.Server
	mgmtLis net.Listener

	dumpDir    string
	socketPath string
}

// New loads configuration and assembles a Server ready to Run. It binds
// the main listener (and the management listener, when a management port
// is configured) and starts the shared log appender's consumer goroutine,
// but accepts no connections: serving, the crash-dump sibling and the
// supervisor tree start in Run.
func New(opts Options) (*Server, error) {
	decrypter, err := config.NewDecrypter(opts.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("server: loading encryption key: %w", err)
	}

	install, err := config.LoadInstall(opts.InstallPath, decrypter)
	if err != nil {
		return nil, fmt.Errorf("server: loading install config: %w", err)
	}

	runtimeCfg, err := config.LoadRuntime(opts.RuntimePath, decrypter)
	if err != nil {
		return nil, fmt.Errorf("server: loading runtime config: %w", err)
	}

	logging.Init(logging.Config{
		Level:     runtimeCfg.Logging.Level,
		Format:    formatFor(install.Server.ConsoleLog),
		Timestamp: true,
		Output:    os.Stderr,
	})
	logger := logging.Logger().With().
		Str("product", install.Product.Name).
		Str("version", install.Product.Version).
		Logger()

	s := &Server{
		opts:      opts,
		install:   install,
		decrypter: decrypter,
		runtime:   config.NewRefreshable(runtimeCfg),
		logger:    logger,

		healthRegistry:      health.NewRegistry(),
		readinessRegistry:   readiness.NewRegistry(),
		diagnosticsRegistry: diagnostics.NewRegistry(),
		liveTail:            diagnostics.NewLiveTail(),
		securityLog:         logging.NewSecurityLoggerWithLogger(logger),
		panics:              &health.PanicsCheck{},
		latency:             pipeline.NewLatencyTracker(2048),

		sequencer: shutdown.NewSequencer(logger),

		dumpDir:    opts.DumpDir,
		socketPath: opts.SocketPath,
	}

	s.reloader = config.NewReloader(opts.RuntimePath, decrypter, s.runtime, logger)

	if err := s.buildAppenders(); err != nil {
		return nil, err
	}
	s.registerBuiltinChecks()
	for _, c := range opts.HealthChecks {
		s.healthRegistry.Register(c)
	}
	for _, c := range opts.ReadinessChecks {
		s.readinessRegistry.Register(c)
	}
	for _, d := range opts.Diagnostics {
		s.diagnosticsRegistry.Register(d)
	}

	table := endpoint.BuildTable(opts.Endpoints)
	s.mainHandler = pipeline.AsHandler(pipeline.New(table, pipeline.Config{
		ProductName:     install.Product.Name,
		ProductVersion:  install.Product.Version,
		IdleTimeout:     install.Server.IdleTimeout,
		SampleRate:      func() float64 { return s.runtime.Current().Logging.TraceSampleRate },
		SampleBudget:    wtrace.NewBudget(runtimeCfg.Logging.TraceSampleBudgetPerSecond),
		RequestAppender: s.requestAppender,
		ServiceAppender: s.serviceAppender,
		EndpointHealth:  pipeline.NewEndpointHealthTrackers(),
		Latency:         s.latency,
		GzipEnabled:     install.Server.GzipEnabled,
	}))

	if err := s.buildListeners(); err != nil {
		return nil, err
	}

	logSlog := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logSlog, supervisor.DefaultTreeConfig())
	if err != nil {
		return nil, fmt.Errorf("server: building supervisor tree: %w", err)
	}
	s.tree = tree

	return s, nil
}

func formatFor(consoleLog bool) string {
	if consoleLog {
		return "console"
	}
	return "json"
}

// buildAppenders assembles the request/service log appenders: a fan-out
// over the rolling file, stdout (in console-log mode), metrics and the
// live tail, behind one shared AsyncAppender so a slow disk never blocks
// a request handler, plus the retention sweep over the rolling file's
// rotated output.
func (s *Server) buildAppenders() error {
	logPath := filepath.Join(s.opts.LogDir, "request-and-service.log")
	rolling, err := envelope.NewRollingFile(envelope.RollingFileConfig{
		Path:       logPath,
		MaxSizeMB:  100,
		MaxBackups: 10,
		Compress:   true,
	})
	if err != nil {
		return fmt.Errorf("server: building rolling file appender: %w", err)
	}

	fileSink := envelope.NewJSONAppender(rolling)
	var fanOut []envelope.Appender
	fanOut = append(fanOut, fileSink)
	if s.install.Server.ConsoleLog {
		fanOut = append(fanOut, envelope.NewStdoutAppender())
	}
	fanOut = append(fanOut, envelope.NewMetricsAppender())
	fanOut = append(fanOut, s.liveTail)

	shared := envelope.FanOut(fanOut...)
	sharedSync := envelopeSyncAdapter{append: shared, closer: rolling}

	async := envelope.NewAsyncAppender("request-and-service", sharedSync, 4096,
		metrics.RecordAppenderDrop, metrics.SetAppenderQueueDepth)

	s.requestAppender = async
	s.serviceAppender = async
	s.logCleanup = envelope.NewCleanup(s.opts.LogDir, "*.gz", s.logger)
	return nil
}

// envelopeSyncAdapter adapts a plain envelope.Appender plus a separate
// io.Closer (the rolling file owns the handle that needs closing; the
// fan-out itself owns nothing) into the envelope.Sync AsyncAppender
// requires.
type envelopeSyncAdapter struct {
	append envelope.Appender
	closer interface{ Close() error }
}

func (a envelopeSyncAdapter) Append(e envelope.Envelope) { a.append.Append(e) }
func (a envelopeSyncAdapter) Close() error               { return a.closer.Close() }

// registerBuiltinChecks wires the framework's own health/readiness
// checks: config-reload status, recovered-panic tracking, and one
// SERVICE_DEPENDENCY check per configured downstream in
// config.Runtime.Services.
func (s *Server) registerBuiltinChecks() {
	s.healthRegistry.Register(&health.ConfigReloadCheck{Status: func() (bool, string) {
		status := s.reloader.Status()
		return status.Healthy, errString(status.Err)
	}})
	s.healthRegistry.Register(s.panics)

	for _, svc := range s.runtime.Current().Services {
		s.healthRegistry.Register(&health.ServiceDependencyCheck{
			ServiceName: svc.Name,
			URIs:        svc.URIs,
		})
	}

	s.diagnosticsRegistry.Register(&diagnostics.MetricNamesDiagnostic{Gatherer: metrics.Registry()})
	s.diagnosticsRegistry.Register(&diagnostics.GoroutineDumpDiagnostic{})
	s.diagnosticsRegistry.Register(&diagnostics.BuildInfoDiagnostic{})

	s.readinessRegistry.Register(readiness.CheckFunc{
		CheckName: "CONFIG_LOADED",
		Fn:        func() (bool, string) { return true, "" },
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// buildListeners opens the main request-serving listener (wrapped with
// the framework's full accept-path policy) and, if configured, a
// separate management listener for the /status and /debug endpoints.
func (s *Server) buildListeners() error {
	var tlsConfig *tls.Config
	if s.install.Server.CertFile != "" {
		cfg, err := transport.TLSConfig(s.install.Server.CertFile, s.install.Server.KeyFile,
			s.install.Server.ClientAuthTrustStore, s.install.Server.HTTP2Enabled)
		if err != nil {
			return fmt.Errorf("server: building TLS config: %w", err)
		}
		tlsConfig = cfg
	}

	mainRaw, err := net.Listen("tcp", fmt.Sprintf(":%d", s.install.Server.Port))
	if err != nil {
		return fmt.Errorf("server: listening on main port: %w", err)
	}
	s.mainLis = newEngineListener(mainRaw, s.install.Server.ConnectionLimit,
		s.install.Server.IdleConnectionTimeout, tlsConfig, s.onAcceptError)

	s.mainSrv = &http.Server{Handler: s.mainHandler}

	if s.install.Server.ManagementPort != 0 {
		mgmtRaw, err := net.Listen("tcp", fmt.Sprintf(":%d", s.install.Server.ManagementPort))
		if err != nil {
			return fmt.Errorf("server: listening on management port: %w", err)
		}
		s.mgmtLis = mgmtRaw
		s.mgmtSrv = &http.Server{Handler: s.managementHandler()}
	}

	return nil
}

func (s *Server) onAcceptError(err error) {
	s.logger.Warn().Err(err).Msg("transient accept error, retrying")
}

// managementHandler builds the mux for the management port: Prometheus
// metrics plus the liveness/readiness/health/diagnostic endpoints.
func (s *Server) managementHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	mux.Handle("/", management.MuxWithSecurityLog(s.healthRegistry, s.readinessRegistry, s.diagnosticsRegistry, s.liveTail,
		func() string { return s.runtime.Current().HealthCheckSecret },
		func() string { return s.runtime.Current().DiagnosticsSecret },
		s.securityLog,
	))
	return mux
}

// Run spawns the crash-dump sibling, reconciles any dump left dangling
// by a previous crash, starts the supervisor tree, and blocks until ctx
// is canceled or a fatal service error occurs, then drives the shutdown
// sequence.
func (s *Server) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.dumpDir, 0o755); err != nil {
		return fmt.Errorf("server: creating dump directory: %w", err)
	}
	if err := crashdump.ReconcileDumps(s.dumpDir, s.serviceAppender); err != nil {
		s.logger.Warn().Err(err).Msg("crash dump reconciliation failed")
	}

	siblingCmd, err := crashdump.SpawnSibling(s.socketPath)
	if err != nil {
		s.logger.Warn().Err(err).Msg("crash-dump sibling unavailable, continuing without it")
	} else {
		crashdump.InstallCrashHandler(s.socketPath, s.dumpDir)
		defer func() { _ = siblingCmd.Process.Kill() }()
	}

	s.tree.AddObservabilityService(s.logCleanup)
	s.tree.AddConfigService(s.reloader)
	s.tree.AddServerService(&listenerService{name: "main-http", listener: s.mainLis, server: s.mainSrv, shutdownTimeout: s.install.Server.ShutdownGracePeriod})
	if s.mgmtSrv != nil {
		s.tree.AddServerService(&listenerService{name: "management-http", listener: s.mgmtLis, server: s.mgmtSrv, shutdownTimeout: s.install.Server.ShutdownGracePeriod})
	}

	treeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := s.tree.ServeBackground(treeCtx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("supervisor tree exited unexpectedly")
		}
	}
	cancel()

	// Canceling treeCtx drives each listenerService's own Serve(ctx) branch
	// into stop-accepting-then-drain (see listenerService.Serve below);
	// draining errCh here blocks until every service has actually stopped
	// (bounded by the tree's own ShutdownTimeout) before this function
	// flushes appenders, so logs from in-flight requests are captured
	// before the queue is torn down.
	var runErr error
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
			s.logger.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	s.runShutdownSequence(ctx)

	if report, err := s.tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			s.logger.Warn().Str("service", fmt.Sprint(svc.Service)).Msg("service did not stop within the shutdown timeout")
		}
	}

	return runErr
}

// runShutdownSequence flushes buffered log appenders once every listener
// service has already stopped accepting and drained via the supervisor
// tree; StopAccepting and Drain are left nil here since that work is the
// tree's responsibility, not a second pass over the same listeners.
func (s *Server) runShutdownSequence(ctx context.Context) {
	// Run's ctx is usually already canceled here; the flush gets its own
	// grace-period deadline so it is not abandoned before it starts.
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.install.Server.ShutdownGracePeriod)
	defer cancel()
	s.sequencer.Run(flushCtx, shutdown.Steps{
		FlushAppenders: func(ctx context.Context) error {
			return s.requestAppender.Shutdown(ctx)
		},
	}, s.install.Server.ShutdownGracePeriod)
}

// listenerService adapts a pre-built net.Listener and *http.Server into
// a suture.Service, following the teacher's HTTPServerService pattern:
// http.Server.Serve blocks on the listener, so it runs in a goroutine
// and Serve's suture-facing goroutine waits on either that completing
// or the context being canceled, in which case it drives Shutdown.
type listenerService struct {
	name            string
	listener        net.Listener
	server          *http.Server
	shutdownTimeout time.Duration
}

func (l *listenerService) String() string { return l.name }

func (l *listenerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		err := l.server.Serve(l.listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
		defer cancel()
		if err := l.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: shutdown: %w", l.name, err)
		}
		<-errCh
		return ctx.Err()
	}
}

var _ suture.Service = (*listenerService)(nil)
