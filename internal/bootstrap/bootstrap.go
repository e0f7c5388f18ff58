package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/blood-insights/internal/config"
	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/core/narration"
	"github.com/kirillkom/blood-insights/internal/core/ports"
	"github.com/kirillkom/blood-insights/internal/core/render"
	"github.com/kirillkom/blood-insights/internal/core/session"
	"github.com/kirillkom/blood-insights/internal/core/usecase"
	"github.com/kirillkom/blood-insights/internal/infrastructure/backend/contract"
	"github.com/kirillkom/blood-insights/internal/infrastructure/backend/predict"
	"github.com/kirillkom/blood-insights/internal/infrastructure/backend/rest"
	"github.com/kirillkom/blood-insights/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/blood-insights/internal/infrastructure/inspect/report"
	"github.com/kirillkom/blood-insights/internal/infrastructure/kv/localfs"
	redisstore "github.com/kirillkom/blood-insights/internal/infrastructure/kv/redis"
	"github.com/kirillkom/blood-insights/internal/infrastructure/resilience"
	"github.com/kirillkom/blood-insights/internal/infrastructure/speech/command"
	"github.com/kirillkom/blood-insights/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.HTTPServerMetrics

	Session  *session.Store
	Backend  ports.Backend
	Auth     *usecase.AuthService
	Catalog  *usecase.CatalogService
	Analysis *usecase.AnalysisService
	History  *usecase.HistoryService
	Narrator *narration.Narrator

	closeFn func()
}

// New wires the application. service names the process in logs and metrics.
func New(ctx context.Context, cfg config.Config, service string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(kv)

	validator, err := contract.Load(ctx)
	if err != nil {
		closeKV()
		return nil, fmt.Errorf("load backend contract: %w", err)
	}

	httpMetrics := metrics.NewHTTPServerMetrics(service)
	backendMetrics := metrics.NewBackendMetrics(httpMetrics.Registry(), service)

	timeout := time.Duration(cfg.BackendTimeoutSeconds) * time.Second
	var backend ports.Backend
	switch cfg.BackendMode {
	case config.BackendModePredict:
		backend = predict.New(cfg.PredictURL, timeout, validator)
	case config.BackendModeREST, "":
		resilienceCfg := resilience.DefaultConfig()
		resilienceCfg.BreakerEnabled = cfg.BackendBreakerEnabled
		backend = rest.New(cfg.BackendURL, store, validator, rest.Options{
			Timeout:  timeout,
			Executor: resilience.NewExecutor(resilienceCfg),
			Observer: backendMetrics,
			Service:  service,
		})
	default:
		closeKV()
		return nil, fmt.Errorf("unknown BACKEND_MODE %q", cfg.BackendMode)
	}

	engine, err := command.New(cfg.SpeechCommand, logger)
	if err != nil {
		closeKV()
		return nil, fmt.Errorf("init speech engine: %w", err)
	}
	if !engine.Available() {
		logger.Warn("speech_engine_unavailable", "command", cfg.SpeechCommand)
	}

	narrator := narration.NewNarrator(engine, logger, func(language, outcome string) {
		httpMetrics.RecordSpeech(service, language, outcome)
	})

	analysis := usecase.NewAnalysisService(backend, backend, usecase.AnalysisOptions{
		Inspector: report.NewInspector(),
		MaxBytes:  cfg.UploadMaxBytes,
		Observer: func(source string, result domain.AnalysisResult) {
			gauge := render.RiskGauge(result.RiskLevel, result.OverallRiskScore)
			httpMetrics.RecordAnalysis(service, source, gauge.Level, result.OverallRiskScore)
			if !gauge.Known {
				logger.Warn("unknown_risk_level", "risk_level", string(result.RiskLevel))
			}
		},
	})

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: httpMetrics,

		Session:  store,
		Backend:  backend,
		Auth:     usecase.NewAuthService(backend, store),
		Catalog:  usecase.NewCatalogService(backend),
		Analysis: analysis,
		History:  usecase.NewHistoryService(backend, xlsx.NewExporter()),
		Narrator: narrator,

		closeFn: func() {
			narrator.Stop()
			closeKV()
		},
	}, nil
}

func openKV(ctx context.Context, cfg config.Config) (ports.KVStore, func(), error) {
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		store, err := redisstore.New(ctx, redisstore.Options{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init redis session store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case config.SessionStoreFile, "":
		store, err := localfs.New(cfg.SessionDir)
		if err != nil {
			return nil, nil, fmt.Errorf("init session dir: %w", err)
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
