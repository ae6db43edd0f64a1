package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/ibranibeny/text2sql"
	"github.com/ibranibeny/text2sql/internal/catalog"
	"github.com/ibranibeny/text2sql/internal/config"
	"github.com/ibranibeny/text2sql/internal/genai"
	"github.com/ibranibeny/text2sql/internal/logging"
	"github.com/ibranibeny/text2sql/internal/metrics"
	"github.com/ibranibeny/text2sql/internal/sqlexec"
	"github.com/ibranibeny/text2sql/internal/sqlgen"
	"github.com/ibranibeny/text2sql/internal/synth"
)

// appRuntime holds the wired pipeline and the resources behind it. Each
// command builds one and closes it on exit.
type appRuntime struct {
	cfg   *config.Config
	log   *logrus.Logger
	pool  *pgxpool.Pool
	agent *text2sql.Agent
}

func newRuntime(ctx context.Context) (*appRuntime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel)

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, text2sql.NewConfigurationError("invalid database URL", err)
	}

	g, err := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{}),
		genkit.WithDefaultModel(cfg.Model.Name),
	)
	if err != nil {
		pool.Close()
		return nil, text2sql.NewConfigurationError("language model initialization failed", err)
	}
	model := genai.New(g, cfg.Model.Name)

	introspector := catalog.NewPgIntrospector(pool, cfg.Database.Name, cfg.Database.Schema, cfg.Database.SampleColumns)
	agent, err := text2sql.New(
		text2sql.WithCatalog(catalog.New(introspector, log)),
		text2sql.WithGenerator(sqlgen.New(model, log)),
		text2sql.WithExecutor(sqlexec.New(pool, log)),
		text2sql.WithSynthesizer(synth.New(model, log)),
		text2sql.WithLogger(log),
		text2sql.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
	)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &appRuntime{cfg: cfg, log: log, pool: pool, agent: agent}, nil
}

func (rt *appRuntime) Close() {
	rt.pool.Close()
}

// serveHTTP runs an HTTP server until SIGINT/SIGTERM, then shuts it down
// gracefully.
func serveHTTP(ctx context.Context, log logrus.FieldLogger, addr string, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	}
}
