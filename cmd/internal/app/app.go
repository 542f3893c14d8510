// Package app wires the FAKIE server runtime: config, logging, stores, HTTP routes and middleware.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fakie/cmd/identity"
	"fakie/cmd/internal/audit"
	authapi "fakie/cmd/internal/auth/api"
	"fakie/cmd/internal/auth/access"
	"fakie/cmd/internal/auth/session"
	"fakie/cmd/internal/catalog"
	"fakie/cmd/internal/migrate"
	"fakie/cmd/internal/ratelimit"
	"fakie/cmd/internal/seed"
	"fakie/cmd/security/password"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
)

// denylistSize bounds the in-memory revocation cache.
const denylistSize = 100_000

// App is the FAKIE server runtime: it owns the stores, the HTTP handler and their lifecycles.
type App struct {
	cfg Config
	log *slog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client

	metrics *Metrics
	counter *ratelimit.MemoryStore

	credentials *identity.Credentials
	spotStore   catalog.Store[catalog.Spot]
	gearStore   catalog.Store[catalog.Gear]

	auth  *authapi.Handler
	spots *catalog.Handler[catalog.Spot, catalog.SpotInput]
	gear  *catalog.Handler[catalog.Gear, catalog.GearInput]

	handler http.Handler
}

// New constructs a fully wired App from config. It connects to Postgres and
// Redis when configured; Close releases them.
func New(ctx context.Context, cfg Config, log *slog.Logger) (_ *App, err error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogColor)
	}
	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("password config: %w", err)
	}
	authCfg := authapi.LoadConfigFromEnv()

	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.MetricsEnabled {
		a.metrics = NewMetrics()
	}

	if err := a.openBackends(ctx, sessCfg); err != nil {
		return nil, err
	}

	accounts, err := a.newStores()
	if err != nil {
		return nil, err
	}
	a.credentials, err = identity.NewCredentials(accounts, pwCfg)
	if err != nil {
		return nil, err
	}

	var sessOpts []session.Option
	switch sessCfg.Denylist {
	case session.DenylistMemory:
		sessOpts = append(sessOpts, session.WithDenylist(session.NewMemoryDenylist(denylistSize, sessCfg.TTL)))
	case session.DenylistRedis:
		deny, err := session.NewRedisDenylist(a.redis, "")
		if err != nil {
			return nil, err
		}
		sessOpts = append(sessOpts, session.WithDenylist(deny))
	}
	tokens, err := session.NewManager(sessCfg, sessOpts...)
	if err != nil {
		return nil, err
	}

	sink := a.auditSink()
	gate := access.NewGate(tokens, access.WithLogger(log))

	limiter, err := a.newLimiter(authCfg, sink)
	if err != nil {
		return nil, err
	}

	a.auth, err = authapi.NewHandler(log, authCfg, a.credentials, tokens,
		authapi.WithAuditSink(sink),
		authapi.WithLimiter(limiter),
		authapi.WithGate(gate),
	)
	if err != nil {
		return nil, err
	}
	if a.spots, err = catalog.NewSpotHandler(log, a.spotStore, gate, catalog.WithMaxBodyBytes(authCfg.MaxBodyBytes)); err != nil {
		return nil, err
	}
	if a.gear, err = catalog.NewGearHandler(log, a.gearStore, gate, catalog.WithMaxBodyBytes(authCfg.MaxBodyBytes)); err != nil {
		return nil, err
	}

	if cfg.SeedDemo {
		res, err := a.Seed(ctx)
		if err != nil {
			return nil, err
		}
		log.Info("seed.done", "accounts", res.Accounts, "spots", res.Spots, "gear", res.Gear)
	}

	mux := http.NewServeMux()
	a.registerHTTP(mux)
	a.handler = a.middleware(mux)

	log.Info("app.ready",
		"store", a.storeBackend(),
		"ratelimit_store", cfg.RateLimitStore,
		"session_denylist", string(sessCfg.Denylist),
		"session_revocable", tokens.Revocable(),
		"session_ttl", sessCfg.TTL.String(),
	)
	return a, nil
}

func (a *App) openBackends(ctx context.Context, sessCfg session.Config) error {
	if a.cfg.DatabaseURL != "" {
		pool, err := NewDBPool(ctx, a.cfg)
		if err != nil {
			return err
		}
		a.pool = pool
		a.log.Info("db.enabled.postgres_store")

		if a.cfg.AutoMigrate {
			db, err := migrate.OpenDB(pool)
			if err != nil {
				return err
			}
			err = migrate.Up(ctx, db, a.log)
			_ = db.Close()
			if err != nil {
				return err
			}
		}
	} else {
		a.log.Info("db.disabled.inmemory_store")
	}

	if a.cfg.RateLimitStore == BackendRedis || sessCfg.Denylist == session.DenylistRedis {
		if a.cfg.RedisURL == "" {
			return errors.New("config: redis backend selected but FAKIE_REDIS_URL is empty")
		}
		client, err := NewRedisClient(ctx, a.cfg.RedisURL)
		if err != nil {
			return err
		}
		a.redis = client
	}
	return nil
}

func (a *App) newStores() (identity.Store, error) {
	if a.pool == nil {
		a.spotStore = catalog.NewMemoryStore[catalog.Spot]("spot")
		a.gearStore = catalog.NewMemoryStore[catalog.Gear]("gear")
		return identity.NewMemoryStore(), nil
	}

	accounts, err := identity.NewPostgresStore(a.pool, identity.WithSchema(a.cfg.DBSchema))
	if err != nil {
		return nil, err
	}
	if a.spotStore, err = catalog.NewPostgresSpotStore(a.pool, catalog.WithSchema(a.cfg.DBSchema)); err != nil {
		return nil, err
	}
	if a.gearStore, err = catalog.NewPostgresGearStore(a.pool, catalog.WithSchema(a.cfg.DBSchema)); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (a *App) auditSink() audit.Sink {
	sinks := audit.Multi{audit.LogSink{Log: a.log}}
	if a.metrics != nil {
		sinks = append(sinks, a.metrics.AuditSink())
	}
	if a.pool != nil {
		pg, err := audit.NewPostgresSink(a.pool, a.cfg.DBSchema, a.log)
		if err == nil {
			sinks = append(sinks, pg)
		} else {
			a.log.Error("audit.postgres.disabled", "err", err)
		}
	}
	return sinks
}

func (a *App) newLimiter(authCfg authapi.Config, sink audit.Sink) (*ratelimit.Limiter, error) {
	var store ratelimit.CounterStore
	if a.cfg.RateLimitStore == BackendRedis {
		rs, err := ratelimit.NewRedisStore(a.redis, "")
		if err != nil {
			return nil, err
		}
		store = rs
	} else {
		a.counter = ratelimit.NewMemoryStore()
		store = a.counter
	}

	onReject := func(r *http.Request, route, ip string, c ratelimit.Counter) {
		if a.metrics != nil {
			a.metrics.RejectHook()(r, route, ip, c)
		}
		sink.Record(r.Context(), audit.Event{
			Action:    audit.ActionRateLimitReject,
			IP:        ip,
			UserAgent: r.UserAgent(),
			At:        time.Now().UTC(),
			Meta:      map[string]any{"route": route, "count": c.Count},
		})
	}

	return ratelimit.New(store,
		ratelimit.WithLogger(a.log),
		ratelimit.WithTrustProxy(authCfg.TrustProxy),
		ratelimit.WithRejectHook(onReject),
	), nil
}

// middleware builds the outer chain. Metrics, logging and recovery sit directly
// around the mux and pass the request through unchanged so r.Pattern is set.
func (a *App) middleware(mux http.Handler) http.Handler {
	var h http.Handler = WithRecover(mux, a.log)
	h = WithRequestLogging(h, a.log)
	if a.metrics != nil {
		h = a.metrics.WithMetrics(h)
	}
	h = WithCORS(h, a.cfg, a.log)
	h = WithRequestID(h)
	return WithSecurityHeaders(h)
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Seed loads the demo data set into the configured stores.
func (a *App) Seed(ctx context.Context) (seed.Result, error) {
	return seed.Seeder{
		Accounts: a.credentials,
		Spots:    a.spotStore,
		Gear:     a.gearStore,
		Log:      a.log,
	}.Run(ctx)
}

func (a *App) storeBackend() string {
	if a.pool != nil {
		return BackendPostgres
	}
	return BackendMemory
}

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if a.counter != nil {
		go a.counter.Run(sweepCtx, ratelimit.SweepInterval)
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "store", a.storeBackend())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		a.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		a.Close()
		return err
	}

	a.Close()
	a.log.Info("server.stopped")
	return nil
}

// Close releases the Postgres pool and Redis client. Safe to call more than once.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("redis.close.fail", "err", err)
		}
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
