package coinbase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"CoinLake/internal/domain/models"
	drepo "CoinLake/internal/domain/repository"
	xhttp "CoinLake/pkg/http"
)

// CandleClient fetches historical candle pages from the exchange REST API.
type CandleClient struct {
	baseURL string
	http    *xhttp.Client
}

// NewCandleClient creates a candle source against the given API base URL.
func NewCandleClient(baseURL string, timeout time.Duration) *CandleClient {
	return &CandleClient{
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Fetch requests one window of candles. Any status outside the success set
// is returned as *repository.UpstreamError; the caller decides whether to
// abort.
func (c *CandleClient) Fetch(ctx context.Context, product string, w models.TimeWindow) ([]models.Candle, error) {
	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/products/%s/candles", c.baseURL, product),
		QueryParams: map[string]string{
			"start":       w.Start.UTC().Format(time.RFC3339),
			"end":         w.End.UTC().Format(time.RFC3339),
			"granularity": fmt.Sprintf("%d", w.Granularity),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("candles request %s: %w", product, err)
	}
	defer resp.Body.Close()

	if !successStatus(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &drepo.UpstreamError{Status: resp.StatusCode, Window: w}
	}

	var candles []models.Candle
	if err := json.NewDecoder(resp.Body).Decode(&candles); err != nil {
		if errors.Is(err, io.EOF) {
			// 204-style empty body, treated as a gap
			return nil, nil
		}
		return nil, fmt.Errorf("decode candles %s: %w", product, err)
	}
	return candles, nil
}

// successStatus mirrors the exchange's accepted status set.
func successStatus(code int) bool {
	switch code {
	case 200, 201, 202, 203, 204:
		return true
	}
	return false
}
