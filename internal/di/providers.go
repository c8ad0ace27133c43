package di

import (
	"fmt"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	domsvc "StockSage/internal/domain/service"
	"StockSage/internal/handler/api"
	internalrepo "StockSage/internal/repository"
	icache "StockSage/internal/service/cache"
	"StockSage/internal/service/finnhub"
	"StockSage/internal/service/ratelimit"
	"StockSage/internal/services/advisor"
	"StockSage/internal/services/history"
	"StockSage/internal/services/model"
	"StockSage/internal/services/recommend"
	"StockSage/internal/usecase"
	pkgcache "StockSage/pkg/cache"
	pkgch "StockSage/pkg/clickhouse"
	"StockSage/pkg/config"
	xhttp "StockSage/pkg/http"
	pkgkafka "StockSage/pkg/kafka"
	applogger "StockSage/pkg/logger"
	pkgmetrics "StockSage/pkg/metrics"
	"StockSage/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	return applogger.New(&applogger.Config{Level: level, Format: "json", Output: "stdout"})
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient() *xhttp.Client {
	return xhttp.NewClient()
}

// ProvideRateLimiter creates the shared token-bucket limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideMetricsRecorder creates the Prometheus metrics recorder.
func ProvideMetricsRecorder() *pkgmetrics.Recorder {
	return pkgmetrics.New()
}

// ProvideCache creates the result cache: layered memory+Redis when
// Redis is enabled, in-memory only otherwise.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	memSize := cfg.Cache.MemorySize
	if memSize <= 0 {
		memSize = 1000
	}
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(memSize)), nil
	}
	redisCache, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(redisCache, pkgcache.WithLayeredMemorySize(memSize)), nil
}

// ProvideBarStore creates the ClickHouse bar cache, or nil when
// ClickHouse is disabled.
func ProvideBarStore(cfg *config.Config, log *applogger.Logger) (domrepo.BarStore, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	store := internalrepo.NewCHBarStore(client)
	store.SetLogger(log)
	return store, nil
}

// ProvideArtifactStore creates the filesystem model-artifact store.
func ProvideArtifactStore(cfg *config.Config, log *applogger.Logger) (domrepo.ArtifactStore, error) {
	return internalrepo.NewFSArtifactStore(cfg.Models.Dir, log)
}

// ProvideRestClient creates the Finnhub REST data provider.
func ProvideRestClient(cfg *config.Config, httpClient *xhttp.Client, limiter *ratelimit.Limiter, log *applogger.Logger) *finnhub.RestClient {
	return finnhub.NewRestClient(finnhub.RestConfig{
		APIKey:            cfg.Finnhub.APIKey,
		BaseURL:           cfg.Finnhub.BaseURL,
		RequestsPerMinute: cfg.Finnhub.RequestsPerMinute,
	}, httpClient, limiter, log)
}

// ProvideHistoryProvider layers the bar cache over the REST provider
// when ClickHouse is enabled.
func ProvideHistoryProvider(rest *finnhub.RestClient, bars domrepo.BarStore, log *applogger.Logger) domsvc.HistoryProvider {
	if bars == nil {
		return rest
	}
	return history.NewCachedProvider(rest, bars, log)
}

// ProvideQuoteProvider exposes the REST client as the quote source.
func ProvideQuoteProvider(rest *finnhub.RestClient) domsvc.QuoteProvider {
	return rest
}

// ProvideStream creates the Finnhub WebSocket stream for the watchlist
// symbols, or nil when streaming is disabled.
func ProvideStream(cfg *config.Config, rec *pkgmetrics.Recorder, log *applogger.Logger) *finnhub.Stream {
	if !cfg.Finnhub.StreamEnabled {
		return nil
	}
	symbols := make([]string, 0, len(cfg.Watchlist))
	for _, s := range cfg.Watchlist {
		symbols = append(symbols, s.Symbol)
	}
	return finnhub.NewStream(finnhub.StreamConfig{
		APIKey:         cfg.Finnhub.APIKey,
		WebsocketURL:   cfg.Finnhub.WebSocketURL,
		Symbols:        symbols,
		ReconnectDelay: cfg.Finnhub.ReconnectDelay,
		PingInterval:   cfg.Finnhub.PingInterval,
	}, rec, log)
}

// ProvideAdvisor creates the OpenRouter advisory provider, or nil when
// it is disabled.
func ProvideAdvisor(cfg *config.Config, httpClient *xhttp.Client, limiter *ratelimit.Limiter, log *applogger.Logger) domsvc.AdvisoryProvider {
	if !cfg.OpenRouter.Enabled || cfg.OpenRouter.APIKey == "" {
		return nil
	}
	client := advisor.NewClient(advisor.Config{
		APIKey:            cfg.OpenRouter.APIKey,
		Model:             cfg.OpenRouter.Model,
		Endpoint:          cfg.OpenRouter.Endpoint,
		RequestsPerMinute: cfg.OpenRouter.RequestsPerMinute,
	}, httpClient, limiter, log)
	if cfg.Cache.Redis.Enabled {
		// Share opinions across instances instead of per-process memory.
		client.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		}))
	}
	return client
}

// ProvidePredictor creates the model lifecycle manager.
func ProvidePredictor(store domrepo.ArtifactStore, adv domsvc.AdvisoryProvider, log *applogger.Logger) domsvc.Predictor {
	return model.NewManager(store, adv, log)
}

// ProvideEngine creates the recommendation engine.
func ProvideEngine() *recommend.Engine {
	return recommend.NewEngine()
}

// ProvidePublisher creates the Kafka recommendation publisher, or nil
// when Kafka is disabled.
func ProvidePublisher(cfg *config.Config) (domrepo.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideAnalyzer creates the analysis use case.
func ProvideAnalyzer(
	hist domsvc.HistoryProvider,
	quotes domsvc.QuoteProvider,
	stream *finnhub.Stream,
	predictor domsvc.Predictor,
	engine *recommend.Engine,
	cache pkgcache.Service,
	publisher domrepo.EventPublisher,
	log *applogger.Logger,
) *usecase.AnalyzerUseCase {
	return usecase.NewAnalyzerUseCase(hist, quotes, stream, predictor, engine, cache, publisher, log)
}

// ProvideWatchlist creates the watchlist use case from the configured
// symbol lists.
func ProvideWatchlist(cfg *config.Config, analyzer *usecase.AnalyzerUseCase, log *applogger.Logger) *usecase.WatchlistUseCase {
	return usecase.NewWatchlistUseCase(analyzer, toSymbolInfos(cfg.Symbols), toSymbolInfos(cfg.Watchlist), log)
}

// ProvideTrainer creates the training use case.
func ProvideTrainer(hist domsvc.HistoryProvider, predictor domsvc.Predictor) *usecase.TrainUseCase {
	return usecase.NewTrainUseCase(hist, predictor)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	log *applogger.Logger,
	analyzer *usecase.AnalyzerUseCase,
	watchlist *usecase.WatchlistUseCase,
	trainer *usecase.TrainUseCase,
	bars domrepo.BarStore,
) xhttp.Handler {
	return api.NewAnalysisEchoHandler(log, analyzer, watchlist, trainer, bars)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	stream *finnhub.Stream,
	bars domrepo.BarStore,
	publisher domrepo.EventPublisher,
) *server.App {
	return server.New(cfg, log, handler, stream, bars, publisher)
}

func toSymbolInfos(entries []config.SymbolEntry) []models.SymbolInfo {
	out := make([]models.SymbolInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.SymbolInfo{Symbol: e.Symbol, Name: e.Name})
	}
	return out
}
