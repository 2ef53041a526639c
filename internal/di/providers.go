package di

import (
	"context"
	"fmt"
	"time"

	"CoinLake/internal/domain/repository"
	"CoinLake/internal/handler/api"
	internalrepo "CoinLake/internal/repository"
	"CoinLake/internal/service/cache"
	"CoinLake/internal/service/coinbase"
	"CoinLake/internal/service/ratelimit"
	"CoinLake/internal/usecase"
	pkgch "CoinLake/pkg/clickhouse"
	"CoinLake/pkg/config"
	xhttp "CoinLake/pkg/http"
	pkgkafka "CoinLake/pkg/kafka"
	"CoinLake/pkg/logger"
	"CoinLake/pkg/metrics"
	"CoinLake/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stdout",
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideObjectStore creates the ClickHouse-backed object store.
func ProvideObjectStore(chClient *pkgch.Client, cfg *config.Config) repository.ObjectStore {
	return internalrepo.NewClickHouseStore(chClient.DB(), cfg.ClickHouse.Database)
}

// ProvideBatchPublisher creates the Kafka batch mirror when the kafka
// backend is selected; otherwise nil.
func ProvideBatchPublisher(cfg *config.Config) (repository.BatchPublisher, error) {
	if cfg.Backend.Type != "kafka" {
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
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideLatestCache creates the Redis latest-tick cache when enabled.
func ProvideLatestCache(cfg *config.Config) repository.LatestCache {
	if !cfg.Redis.Enabled {
		return nil
	}
	return cache.NewLatestCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
}

// ProvideStreamFactory creates per-product Coinbase websocket streams.
func ProvideStreamFactory(cfg *config.Config) repository.StreamFactory {
	return func(product string) repository.FeedStream {
		return coinbase.NewStream(cfg.Coinbase.WebSocketURL, product, cfg.Coinbase.PingInterval)
	}
}

// ProvideFlusher creates the batch flusher.
func ProvideFlusher(
	store repository.ObjectStore,
	pub repository.BatchPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.Flusher {
	return usecase.NewFlusher(store, pub, metrics, log, cfg.Backend.Type)
}

// ProvideSupervisor creates the subscription supervisor.
func ProvideSupervisor(
	cfg *config.Config,
	dial repository.StreamFactory,
	flusher *usecase.Flusher,
	metrics repository.Metrics,
	log *logger.Logger,
	latest repository.LatestCache,
) *usecase.Supervisor {
	return usecase.NewSupervisor(
		cfg.Coinbase.Products,
		dial,
		flusher,
		metrics,
		log,
		cfg.Backend.BatchSize,
		usecase.WithCache(latest),
		usecase.WithRestartDelay(cfg.Coinbase.ReconnectDelay),
	)
}

// ProvideCandleSource creates the Coinbase REST candle client.
func ProvideCandleSource(cfg *config.Config) repository.CandleSource {
	return coinbase.NewCandleClient(cfg.Coinbase.RESTURL, cfg.Coinbase.RequestTimeout)
}

// ProvideRatePolicy creates the randomized inter-request delay.
func ProvideRatePolicy(cfg *config.Config) repository.RatePolicy {
	return ratelimit.NewRandomDelay(cfg.Backfill.DelayMin, cfg.Backfill.DelayMax)
}

// ProvideBackfillRetriever creates the historical retriever.
func ProvideBackfillRetriever(
	source repository.CandleSource,
	store repository.ObjectStore,
	pacer repository.RatePolicy,
	metrics repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.BackfillRetriever {
	return usecase.NewBackfillRetriever(source, store, pacer, metrics, log, cfg.Backfill.PageCap)
}

// ProvideAPIHandler creates the HTTP handler.
func ProvideAPIHandler(
	log *logger.Logger,
	retriever *usecase.BackfillRetriever,
	sup *usecase.Supervisor,
	latest repository.LatestCache,
	store repository.ObjectStore,
) xhttp.Handler {
	return api.NewIngestEchoHandler(log, retriever, sup, latest, store)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	sup *usecase.Supervisor,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	pub repository.BatchPublisher,
	store repository.ObjectStore,
) *server.App {
	return server.New(cfg, log, sup, handler, chClient, pub, store)
}
