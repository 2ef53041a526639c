package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"CoinLake/internal/domain/models"
	drepo "CoinLake/internal/domain/repository"
	internalrepo "CoinLake/internal/repository"
	"CoinLake/pkg/logger"
)

// HistoricalContainer is the namespace for backfilled candle datasets.
const HistoricalContainer = "historical"

// BackfillRetriever pulls a historical candle range window by window,
// strictly sequentially, pausing between requests. A single bad upstream
// status aborts the whole call with no partial result; empty pages are
// logged as gaps and skipped.
type BackfillRetriever struct {
	source  drepo.CandleSource
	store   drepo.ObjectStore
	pacer   drepo.RatePolicy
	metrics drepo.Metrics
	log     *logger.Logger
	pageCap int
}

// NewBackfillRetriever creates a retriever with the given page cap.
func NewBackfillRetriever(
	source drepo.CandleSource,
	store drepo.ObjectStore,
	pacer drepo.RatePolicy,
	metrics drepo.Metrics,
	log *logger.Logger,
	pageCap int,
) *BackfillRetriever {
	return &BackfillRetriever{
		source:  source,
		store:   store,
		pacer:   pacer,
		metrics: metrics,
		log:     log,
		pageCap: pageCap,
	}
}

// Retrieve returns all candles for the product in [start, end] inclusive,
// chronologically ordered and deduplicated by timestamp. The result is
// independent of how the range was paginated internally.
func (r *BackfillRetriever) Retrieve(ctx context.Context, product string, start, end time.Time, granularity int) ([]models.Candle, error) {
	windows, err := PartitionRange(start, end, granularity, r.pageCap)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	var out []models.Candle
	seen := make(map[int64]struct{})

	for i, w := range windows {
		candles, err := r.source.Fetch(ctx, product, w)
		if err != nil {
			var ue *drepo.UpstreamError
			if errors.As(err, &ue) {
				ue.Window = w
				r.metrics.RecordError("backfill_upstream")
				r.log.Error("backfill aborted",
					logger.String("product", product),
					logger.Int("status", ue.Status),
					logger.String("window", w.String()),
				)
				return nil, ue
			}
			return nil, fmt.Errorf("backfill %s window %s: %w", product, w, err)
		}

		if len(candles) == 0 {
			r.log.Warn("no data for window, advancing",
				logger.String("product", product),
				logger.String("window", w.String()),
			)
		} else {
			// pages arrive newest-first; order before appending so the
			// concatenation stays chronological
			sort.Slice(candles, func(a, b int) bool {
				return candles[a].Time.Before(candles[b].Time)
			})
			for _, c := range candles {
				if c.Time.Before(start) || c.Time.After(end) {
					continue
				}
				ts := c.Time.Unix()
				if _, dup := seen[ts]; dup {
					continue
				}
				seen[ts] = struct{}{}
				out = append(out, c)
			}
		}

		if i < len(windows)-1 {
			if err := r.pacer.Pause(ctx); err != nil {
				return nil, err
			}
		}
	}

	r.metrics.RecordLatency("backfill", time.Since(began).Seconds())
	r.log.Info("backfill complete",
		logger.String("product", product),
		logger.Int("windows", len(windows)),
		logger.Int("candles", len(out)),
	)
	return out, nil
}

// Archive bulk-writes a retrieved dataset into the historical container and
// returns the storage key.
func (r *BackfillRetriever) Archive(ctx context.Context, product string, candles []models.Candle) (string, error) {
	if len(candles) == 0 {
		return "", fmt.Errorf("nothing to archive for %s", product)
	}
	payload, err := json.Marshal(candles)
	if err != nil {
		return "", fmt.Errorf("encode candles: %w", err)
	}
	key := internalrepo.ObjectKey(product, candles[len(candles)-1].Time)
	if err := r.store.Insert(ctx, HistoricalContainer, key, payload); err != nil {
		r.metrics.RecordError("archive")
		return "", err
	}
	return key, nil
}
