package cmd

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/config"
	"github.com/felixgeelhaar/skilladmin/internal/contract"
	"github.com/felixgeelhaar/skilladmin/internal/errors"
	"github.com/felixgeelhaar/skilladmin/internal/guard"
	"github.com/felixgeelhaar/skilladmin/internal/log"
	"github.com/felixgeelhaar/skilladmin/internal/metrics"
	"github.com/felixgeelhaar/skilladmin/internal/session"
	"github.com/felixgeelhaar/skilladmin/internal/telemetry"
	"github.com/felixgeelhaar/skilladmin/internal/ux"
	"github.com/felixgeelhaar/skilladmin/internal/version"
)

const shutdownTimeout = 5 * time.Second

// runtime is everything a command needs, built once per invocation from
// config, environment and flags.
type runtime struct {
	cc      *CommandContext
	cfg     *config.Config
	log     *log.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	store   session.Store
	client  *api.Client
	guard   *guard.Guard
	out     ux.Formatter

	command         string
	started         time.Time
	shutdownTracing func(context.Context) error
}

// loadConfig layers .env, the config file, SKILLADMIN_* variables and
// finally the persistent flags, then validates the result.
func loadConfig(cc *CommandContext) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cc.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, cc)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, cc *CommandContext) {
	if cc.APIURL != "" {
		cfg.API.BaseURL = cc.APIURL
	}
	if cc.Format != "" {
		cfg.Defaults.Format = strings.ToLower(cc.Format)
	}
	if cc.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(cc.LogLevel)
	}
	if cc.Verbose {
		cfg.Logging.Level = "debug"
	}
	if cc.NoColor {
		cfg.Defaults.NoColor = true
	}
	if cc.Ephemeral {
		cfg.Session.Backend = session.BackendMemory
	}
}

func newLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.Logging.Level)
	lc.Format = log.ParseFormat(cfg.Logging.Format)
	lc.ServiceVersion = version.Version
	lc.AddSource = lc.Level == log.LevelDebug
	return log.New(lc)
}

func sessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		Backend:    cfg.Session.Backend,
		Path:       cfg.Session.Path,
		SQLitePath: cfg.Session.SQLite.Path,
		Redis: session.RedisConfig{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
			Prefix:   cfg.Session.Redis.Prefix,
		},
	}
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version.Version
	tc.Enabled = cfg.Telemetry.Enabled
	tc.Endpoint = cfg.Telemetry.Endpoint
	tc.Insecure = cfg.Telemetry.Insecure
	tc.SampleRate = cfg.Telemetry.SampleRate
	return tc
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	ctx := cmd.Context()

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cc)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)
	log.SetDefaultLogger(logger)

	out, err := ux.NewFormatter(cfg.Defaults.Format, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: cfg.Defaults.NoColor,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputInvalid, "invalid --format", err)
	}

	shutdown, err := telemetry.InitProvider(ctx, telemetryConfig(cfg))
	if err != nil {
		// Tracing is optional; a bad collector setting must not block the command.
		logger.WithError(err).Warn("tracing disabled")
		shutdown = func(context.Context) error { return nil }
	}

	store, err := session.Open(ctx, sessionConfig(cfg))
	if err != nil {
		_ = shutdown(ctx)
		return nil, errors.NewStoreUnavailableError(cfg.Session.Backend, err)
	}

	reg, m := metrics.NewRegistry()
	opts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
		api.WithMetrics(m),
	}
	if cfg.API.UserAgent != "" {
		opts = append(opts, api.WithUserAgent(cfg.API.UserAgent))
	}
	if cfg.API.StrictContract {
		c, err := contract.Load(ctx)
		if err != nil {
			_ = session.Close(store)
			_ = shutdown(ctx)
			return nil, errors.Wrap(errors.ErrCodeNotInContract, "failed to load the API contract", err)
		}
		opts = append(opts, api.WithContract(c))
	}

	client, err := api.New(cfg.API.BaseURL, store, opts...)
	if err != nil {
		_ = session.Close(store)
		_ = shutdown(ctx)
		return nil, errors.NewConfigInvalidError(err.Error())
	}
	g := guard.New(store, client.Auth(), guard.WithLogger(logger), guard.WithMetrics(m))
	client.SetUnauthorizedHandler(g.HandleUnauthorized)

	logger.Debug("runtime ready",
		"command", cmd.CommandPath(),
		"api", client.BaseURL(),
		"session_backend", cfg.Session.Backend,
		"config", cfg.Path,
	)

	return &runtime{
		cc:              cc,
		cfg:             cfg,
		log:             logger,
		reg:             reg,
		metrics:         m,
		store:           store,
		client:          client,
		guard:           g,
		out:             out,
		command:         cmd.CommandPath(),
		started:         time.Now(),
		shutdownTracing: shutdown,
	}, nil
}

// close records the command outcome and releases the store and tracer.
func (r *runtime) close(err error) {
	r.metrics.ObserveCommand(r.command, err == nil, time.Since(r.started))
	var ae *errors.AdminError
	if stderrors.As(err, &ae) {
		r.metrics.ObserveError(string(ae.Code), r.command)
	}
	if cerr := session.Close(r.store); cerr != nil {
		r.log.WithError(cerr).Warn("failed to close session store")
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := r.shutdownTracing(ctx); serr != nil {
		r.log.WithError(serr).Debug("tracer shutdown failed")
	}
}

// requireSession fails unless a session is stored.
func (r *runtime) requireSession(ctx context.Context) error {
	st, err := r.guard.Start(ctx)
	if err != nil {
		return errors.NewStoreUnavailableError(r.cfg.Session.Backend, err)
	}
	if st != guard.Authenticated {
		return errors.NewNotLoggedInError()
	}
	return nil
}

type runFunc func(ctx context.Context, rt *runtime, args []string) error

// withRuntime adapts fn to cobra, building the runtime and tracing the
// command around it.
func withRuntime(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}

		ctx, span := telemetry.StartCommandSpan(cmd.Context(), rt.command)
		defer func() {
			if err != nil {
				telemetry.RecordError(span, err)
			} else {
				telemetry.RecordSuccess(span)
			}
			span.End()
			rt.close(err)
		}()

		return fn(ctx, rt, args)
	}
}

// withSession is withRuntime for commands that need a logged-in admin.
func withSession(fn runFunc) func(*cobra.Command, []string) error {
	return withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
		if err := rt.requireSession(ctx); err != nil {
			return err
		}
		return fn(ctx, rt, args)
	})
}
