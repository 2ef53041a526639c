package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinLake/internal/domain/models"
	drepo "CoinLake/internal/domain/repository"
	"CoinLake/pkg/logger"
)

// candlesFor synthesizes one candle per bucket of the window, newest first,
// the way the exchange returns pages.
func candlesFor(w models.TimeWindow) []models.Candle {
	step := time.Duration(w.Granularity) * time.Second
	var out []models.Candle
	for ts := w.End.Add(-step); !ts.Before(w.Start); ts = ts.Add(-step) {
		out = append(out, models.Candle{
			Time: ts, Low: 1, High: 3, Open: 2, Close: 2.5, Volume: 10,
		})
	}
	return out
}

func newTestRetriever(source drepo.CandleSource, store drepo.ObjectStore, pacer drepo.RatePolicy) *BackfillRetriever {
	return NewBackfillRetriever(source, store, pacer, nopMetrics{}, logger.Nop(), 300)
}

func TestRetrieveConcatenatesWindowsChronologically(t *testing.T) {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(700 * 300 * time.Second) // 3 windows at cap 300

	var fetches int
	source := fetchFunc(func(ctx context.Context, product string, w models.TimeWindow) ([]models.Candle, error) {
		fetches++
		return candlesFor(w), nil
	})
	pacer := &countingPacer{}
	r := newTestRetriever(source, newMemStore(), pacer)

	candles, err := r.Retrieve(context.Background(), "BTC-USD", start, end, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetches != 3 {
		t.Errorf("fetched %d windows, want 3", fetches)
	}
	// one pause between consecutive requests, none after the last
	if got := pacer.pauses.Load(); got != 2 {
		t.Errorf("paused %d times, want 2", got)
	}
	if len(candles) != 700 {
		t.Fatalf("got %d candles, want 700", len(candles))
	}
	for i := 1; i < len(candles); i++ {
		if !candles[i].Time.After(candles[i-1].Time) {
			t.Fatalf("candles not strictly ascending at %d: %v then %v", i, candles[i-1].Time, candles[i].Time)
		}
	}
}

func TestRetrieveAbortsOnUpstreamStatus(t *testing.T) {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(1500 * 300 * time.Second) // 5 windows

	var fetches int
	source := fetchFunc(func(ctx context.Context, product string, w models.TimeWindow) ([]models.Candle, error) {
		fetches++
		if fetches == 3 {
			return nil, &drepo.UpstreamError{Status: 429}
		}
		return candlesFor(w), nil
	})
	r := newTestRetriever(source, newMemStore(), &countingPacer{})

	candles, err := r.Retrieve(context.Background(), "BTC-USD", start, end, 300)
	if candles != nil {
		t.Fatalf("expected no partial result, got %d candles", len(candles))
	}
	var ue *drepo.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != 429 {
		t.Errorf("status = %d, want 429", ue.Status)
	}
	if ue.Window.Start.IsZero() {
		t.Error("aborting error should carry the failing window")
	}
	if fetches != 3 {
		t.Errorf("fetched %d windows, want 3 (no requests after abort)", fetches)
	}
}

func TestRetrieveSkipsEmptyWindows(t *testing.T) {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(600 * 300 * time.Second) // 2 windows

	var fetches int
	source := fetchFunc(func(ctx context.Context, product string, w models.TimeWindow) ([]models.Candle, error) {
		fetches++
		if fetches == 1 {
			return nil, nil // delisted period, no data
		}
		return candlesFor(w), nil
	})
	r := newTestRetriever(source, newMemStore(), &countingPacer{})

	candles, err := r.Retrieve(context.Background(), "BTC-USD", start, end, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 300 {
		t.Errorf("got %d candles, want 300 from the non-empty window", len(candles))
	}
}

func TestRetrieveDeduplicatesOverlappingPages(t *testing.T) {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(400 * 300 * time.Second) // 2 windows

	source := fetchFunc(func(ctx context.Context, product string, w models.TimeWindow) ([]models.Candle, error) {
		page := candlesFor(w)
		// upstream repeats the boundary candle on both sides of the split
		page = append(page, models.Candle{Time: w.Start, Low: 1, High: 3, Open: 2, Close: 2.5, Volume: 10})
		return page, nil
	})
	r := newTestRetriever(source, newMemStore(), &countingPacer{})

	candles, err := r.Retrieve(context.Background(), "BTC-USD", start, end, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := make(map[int64]bool)
	for _, c := range candles {
		if seen[c.Time.Unix()] {
			t.Fatalf("duplicate candle at %v", c.Time)
		}
		seen[c.Time.Unix()] = true
	}
}

func TestRetrieveRejectsInvalidInput(t *testing.T) {
	r := newTestRetriever(nil, newMemStore(), &countingPacer{})
	now := time.Now()

	if _, err := r.Retrieve(context.Background(), "BTC-USD", now, now, 300); !errors.Is(err, drepo.ErrInvalidRange) {
		t.Errorf("got %v, want ErrInvalidRange", err)
	}
	if _, err := r.Retrieve(context.Background(), "BTC-USD", now, now.Add(time.Hour), 7); !errors.Is(err, drepo.ErrInvalidGranularity) {
		t.Errorf("got %v, want ErrInvalidGranularity", err)
	}
}

func TestArchiveWritesOneObject(t *testing.T) {
	store := newMemStore()
	r := newTestRetriever(nil, store, &countingPacer{})

	candles := []models.Candle{
		{Time: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), Close: 2},
		{Time: time.Date(2021, 3, 1, 0, 5, 0, 0, time.UTC), Close: 3},
	}
	key, err := r.Archive(context.Background(), "BTC-USD", candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key == "" {
		t.Fatal("expected a storage key")
	}
	if store.count() != 1 {
		t.Errorf("store holds %d objects, want 1", store.count())
	}

	if _, err := r.Archive(context.Background(), "BTC-USD", nil); err == nil {
		t.Error("archiving an empty dataset should fail")
	}
}
