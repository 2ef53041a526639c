package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"CoinLake/internal/domain/models"
	drepo "CoinLake/internal/domain/repository"
	"CoinLake/pkg/logger"
)

// Supervisor owns the set of live subscriptions. It runs one independent
// pipeline (feed stream -> batcher -> flusher) per product, restarts a
// pipeline when its stream dies, and never lets one product's failure touch
// the others. The batcher outlives reconnects, so a partial batch is not
// lost when the stream is re-dialed; only shutdown can drop it, and then
// only after a best-effort drain.
type Supervisor struct {
	products     []string
	dial         drepo.StreamFactory
	flusher      *Flusher
	cache        drepo.LatestCache
	metrics      drepo.Metrics
	log          *logger.Logger
	batchSize    int
	restartDelay time.Duration
	drainTimeout time.Duration

	mu     sync.Mutex
	states map[string]*pipelineState
}

type pipelineState struct {
	connected atomic.Bool
	restarts  atomic.Int64
	ticks     atomic.Int64
	flushes   atomic.Int64
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithCache attaches a latest-tick cache.
func WithCache(c drepo.LatestCache) SupervisorOption {
	return func(s *Supervisor) { s.cache = c }
}

// WithRestartDelay overrides the delay between pipeline restarts.
func WithRestartDelay(d time.Duration) SupervisorOption {
	return func(s *Supervisor) { s.restartDelay = d }
}

// WithDrainTimeout overrides the shutdown drain grace period.
func WithDrainTimeout(d time.Duration) SupervisorOption {
	return func(s *Supervisor) { s.drainTimeout = d }
}

// NewSupervisor creates a Supervisor for the configured product list.
func NewSupervisor(
	products []string,
	dial drepo.StreamFactory,
	flusher *Flusher,
	metrics drepo.Metrics,
	log *logger.Logger,
	batchSize int,
	opts ...SupervisorOption,
) *Supervisor {
	s := &Supervisor{
		products:     products,
		dial:         dial,
		flusher:      flusher,
		metrics:      metrics,
		log:          log,
		batchSize:    batchSize,
		restartDelay: 5 * time.Second,
		drainTimeout: 10 * time.Second,
		states:       make(map[string]*pipelineState, len(products)),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, p := range products {
		s.states[p] = &pipelineState{}
	}
	return s
}

// Run blocks until ctx is cancelled and all pipelines have exited.
func (s *Supervisor) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, product := range s.products {
		wg.Add(1)
		go func(product string) {
			defer wg.Done()
			s.runPipeline(ctx, product)
		}(product)
	}
	s.log.Info("supervisor started", logger.Strings("products", s.products))
	wg.Wait()
	return nil
}

// runPipeline keeps one product's pipeline alive until shutdown. The
// batcher is created once so accumulated ticks survive stream restarts.
func (s *Supervisor) runPipeline(ctx context.Context, product string) {
	state := s.states[product]

	batcher := NewBatcher(product, s.batchSize)
	batcher.OnFull(func(b *models.Batch) {
		state.flushes.Add(1)
		if err := s.flusher.Flush(ctx, b); err != nil {
			// batch is lost by policy; surfaced, never re-queued
			s.log.Error("flush failed", logger.String("product", product), logger.Error(err))
		}
	})

	for {
		err := s.consumeStream(ctx, product, state, batcher)
		if ctx.Err() != nil {
			s.drain(product, batcher)
			return
		}
		if err != nil {
			s.metrics.RecordError("stream")
			s.log.Warn("stream ended, restarting",
				logger.String("product", product),
				logger.Error(err),
				logger.Duration("delay", s.restartDelay),
			)
		}
		state.restarts.Add(1)

		select {
		case <-ctx.Done():
			s.drain(product, batcher)
			return
		case <-time.After(s.restartDelay):
		}
	}
}

// consumeStream runs one connection's lifetime: dial, subscribe, pump ticks
// into the batcher until the stream dies or ctx is cancelled.
func (s *Supervisor) consumeStream(ctx context.Context, product string, state *pipelineState, batcher *Batcher) error {
	stream := s.dial(product)
	defer stream.Close()

	if err := stream.Connect(ctx); err != nil {
		return err
	}
	if err := stream.Subscribe(ctx); err != nil {
		return err
	}
	state.connected.Store(true)
	defer state.connected.Store(false)
	s.log.Info("subscribed", logger.String("product", product))

	ticks, errs := stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				// error channel closed without a value; keep consuming ticks
				errs = nil
				continue
			}
			if err != nil {
				return err
			}
		case t, ok := <-ticks:
			if !ok {
				return drepo.ErrConnectionLost
			}
			if t == nil {
				continue
			}
			batcher.Observe(t)
			state.ticks.Add(1)
			if price, ok := t.Price(); ok {
				s.metrics.RecordLastPrice(product, price)
			}
			s.cacheLatest(ctx, t)
		}
	}
}

// cacheLatest records the newest tick payload, best-effort.
func (s *Supervisor) cacheLatest(ctx context.Context, t *models.Tick) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(t.Payload)
	if err != nil {
		return
	}
	if err := s.cache.SetLatest(ctx, t.ProductID, payload); err != nil {
		s.metrics.RecordError("cache")
	}
}

// drain flushes the remaining partial batch within the grace period. A
// failure here drops the partial batch, which is the documented shutdown
// trade-off.
func (s *Supervisor) drain(product string, batcher *Batcher) {
	partial := batcher.Drain()
	if partial == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
	defer cancel()
	if err := s.flusher.Flush(ctx, partial); err != nil {
		s.log.Warn("drain flush failed, partial batch dropped",
			logger.String("product", product),
			logger.Int("ticks", partial.Len()),
			logger.Error(err),
		)
		return
	}
	s.log.Info("drained partial batch",
		logger.String("product", product),
		logger.Int("ticks", partial.Len()),
	)
}

// Status reports the live pipeline states for the API.
func (s *Supervisor) Status() []models.PipelineStatus {
	out := make([]models.PipelineStatus, 0, len(s.products))
	for _, p := range s.products {
		st := s.states[p]
		out = append(out, models.PipelineStatus{
			Product:   p,
			Connected: st.connected.Load(),
			Restarts:  st.restarts.Load(),
			Ticks:     st.ticks.Load(),
			Flushes:   st.flushes.Load(),
		})
	}
	return out
}
