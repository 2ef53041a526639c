package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"CoinLake/internal/domain/models"
	drepo "CoinLake/internal/domain/repository"
)

// memStore is an in-memory ObjectStore keyed by container/key.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	keys    []string
	failing bool
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) CreateContainer(ctx context.Context, name string) error { return nil }

func (s *memStore) Insert(ctx context.Context, container, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	full := container + "/" + key
	if _, dup := s.objects[full]; !dup {
		s.keys = append(s.keys, full)
	}
	s.objects[full] = payload
	return nil
}

func (s *memStore) Health(ctx context.Context) error { return nil }
func (s *memStore) Close() error                     { return nil }

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

var errStoreDown = errors.New("store down")

// fetchFunc adapts a function to CandleSource.
type fetchFunc func(ctx context.Context, product string, w models.TimeWindow) ([]models.Candle, error)

func (f fetchFunc) Fetch(ctx context.Context, product string, w models.TimeWindow) ([]models.Candle, error) {
	return f(ctx, product, w)
}

// countingPacer records pauses without sleeping.
type countingPacer struct {
	pauses atomic.Int64
}

func (p *countingPacer) Pause(ctx context.Context) error {
	p.pauses.Add(1)
	return ctx.Err()
}

// nopMetrics satisfies the Metrics interface for tests.
type nopMetrics struct{}

func (nopMetrics) RecordBatchStored(backend, product string, ticks int) {}
func (nopMetrics) RecordError(kind string)                              {}
func (nopMetrics) RecordLastPrice(product string, price float64)        {}
func (nopMetrics) RecordLatency(op string, seconds float64)             {}

// scriptedStream replays a fixed run of ticks, then reports a lost
// connection. Used to drive supervisor pipelines without a network.
type scriptedStream struct {
	ticks []*models.Tick
	block bool // hold the connection open after the script instead of failing
}

func (s *scriptedStream) Connect(ctx context.Context) error   { return nil }
func (s *scriptedStream) Subscribe(ctx context.Context) error { return nil }
func (s *scriptedStream) Close() error                        { return nil }
func (s *scriptedStream) IsConnected() bool                   { return true }

func (s *scriptedStream) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick, len(s.ticks)+1)
	errs := make(chan error, 1)
	go func() {
		for _, t := range s.ticks {
			select {
			case ticks <- t:
			case <-ctx.Done():
				close(ticks)
				close(errs)
				return
			}
		}
		if s.block {
			<-ctx.Done()
		} else {
			errs <- drepo.ErrConnectionLost
		}
		close(ticks)
		close(errs)
	}()
	return ticks, errs
}
