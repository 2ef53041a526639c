package coinbase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CoinLake/internal/domain/models"
	drepo "CoinLake/internal/domain/repository"
)

func testWindow() models.TimeWindow {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	return models.TimeWindow{Start: start, End: start.Add(time.Hour), Granularity: 300}
}

func TestFetchDecodesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/BTC-USD/candles" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("granularity") != "300" {
			t.Errorf("granularity = %q, want 300", q.Get("granularity"))
		}
		if q.Get("start") == "" || q.Get("end") == "" {
			t.Error("start/end query params missing")
		}
		w.Write([]byte(`[[1614560400, 1, 3, 2, 2.5, 10], [1614560100, 1, 3, 2, 2.5, 11]]`))
	}))
	defer srv.Close()

	client := NewCandleClient(srv.URL, 5*time.Second)
	candles, err := client.Fetch(context.Background(), "BTC-USD", testWindow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(candles))
	}
	if candles[0].Volume != 10 || candles[1].Volume != 11 {
		t.Errorf("unexpected candles: %+v", candles)
	}
}

func TestFetchReturnsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewCandleClient(srv.URL, 5*time.Second)
	_, err := client.Fetch(context.Background(), "BTC-USD", testWindow())

	var ue *drepo.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("got %v, want UpstreamError", err)
	}
	if ue.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", ue.Status)
	}
}

func TestFetchAcceptsAllSuccessStatuses(t *testing.T) {
	for _, code := range []int{200, 201, 202, 203, 204} {
		code := code
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			if code != 204 {
				w.Write([]byte(`[]`))
			}
		}))

		client := NewCandleClient(srv.URL, 5*time.Second)
		candles, err := client.Fetch(context.Background(), "BTC-USD", testWindow())
		srv.Close()

		if err != nil {
			t.Errorf("status %d: unexpected error %v", code, err)
		}
		if len(candles) != 0 {
			t.Errorf("status %d: got %d candles, want 0", code, len(candles))
		}
	}
}

func TestFetchRejectsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "not a candle list"}`))
	}))
	defer srv.Close()

	client := NewCandleClient(srv.URL, 5*time.Second)
	if _, err := client.Fetch(context.Background(), "BTC-USD", testWindow()); err == nil {
		t.Fatal("expected decode error")
	}
}
