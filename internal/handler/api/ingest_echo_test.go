package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"CoinLake/internal/domain/models"
	drepo "CoinLake/internal/domain/repository"
	"CoinLake/internal/usecase"
	"CoinLake/pkg/logger"

	"github.com/labstack/echo/v4"
)

// countingStore records inserts per container.
type countingStore struct {
	mu      sync.Mutex
	inserts map[string]int
}

func newCountingStore() *countingStore {
	return &countingStore{inserts: make(map[string]int)}
}

func (s *countingStore) CreateContainer(ctx context.Context, name string) error { return nil }

func (s *countingStore) Insert(ctx context.Context, container, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts[container]++
	return nil
}

func (s *countingStore) Health(ctx context.Context) error { return nil }
func (s *countingStore) Close() error                     { return nil }

type staticSource struct{}

func (staticSource) Fetch(ctx context.Context, product string, w models.TimeWindow) ([]models.Candle, error) {
	return []models.Candle{
		{Time: w.Start, Low: 1, High: 3, Open: 2, Close: 2.5, Volume: 10},
	}, nil
}

type noPause struct{}

func (noPause) Pause(ctx context.Context) error { return ctx.Err() }

type noMetrics struct{}

func (noMetrics) RecordBatchStored(backend, product string, ticks int) {}
func (noMetrics) RecordError(kind string)                              {}
func (noMetrics) RecordLastPrice(product string, price float64)        {}
func (noMetrics) RecordLatency(op string, seconds float64)             {}

func newTestHandler(store drepo.ObjectStore) *echo.Echo {
	retriever := usecase.NewBackfillRetriever(staticSource{}, store, noPause{}, noMetrics{}, logger.Nop(), 300)
	sup := usecase.NewSupervisor(nil, nil, nil, noMetrics{}, logger.Nop(), 1)
	h := NewIngestEchoHandler(logger.Nop(), retriever, sup, nil, store)

	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func doBackfill(t *testing.T, e *echo.Echo, query string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/backfill?"+query, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

const backfillRange = "product=BTC-USD&start=2021-03-01T00:00:00Z&end=2021-03-01T01:00:00Z"

func TestBackfillArchivesByDefault(t *testing.T) {
	store := newCountingStore()
	e := newTestHandler(store)

	data := doBackfill(t, e, backfillRange)
	if data["stored"] != true {
		t.Errorf("stored = %v, want true", data["stored"])
	}
	if store.inserts[usecase.HistoricalContainer] != 1 {
		t.Errorf("historical inserts = %d, want 1", store.inserts[usecase.HistoricalContainer])
	}
}

func TestBackfillStoreFalseSkipsArchive(t *testing.T) {
	store := newCountingStore()
	e := newTestHandler(store)

	data := doBackfill(t, e, backfillRange+"&store=false")
	if data["stored"] != false {
		t.Errorf("stored = %v, want false", data["stored"])
	}
	if n := store.inserts[usecase.HistoricalContainer]; n != 0 {
		t.Errorf("historical inserts = %d, want 0", n)
	}
	if data["count"] != float64(1) {
		t.Errorf("count = %v, want 1 (retrieval must still run)", data["count"])
	}
}

func TestBackfillStoreTrueExplicit(t *testing.T) {
	store := newCountingStore()
	e := newTestHandler(store)

	data := doBackfill(t, e, backfillRange+"&store=true")
	if data["stored"] != true {
		t.Errorf("stored = %v, want true", data["stored"])
	}
	if store.inserts[usecase.HistoricalContainer] != 1 {
		t.Errorf("historical inserts = %d, want 1", store.inserts[usecase.HistoricalContainer])
	}
}

func TestBackfillRejectsMissingProduct(t *testing.T) {
	e := newTestHandler(newCountingStore())

	req := httptest.NewRequest(http.MethodGet, "/api/backfill?start=2021-03-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", envelope.Status)
	}
}
