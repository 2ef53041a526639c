package repository

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestObjectKeyShape(t *testing.T) {
	ts := time.Date(2021, 3, 1, 12, 30, 0, 0, time.UTC)
	key := ObjectKey("BTC-USD", ts)

	if !strings.HasPrefix(key, "BTC-USD_") {
		t.Errorf("key %q should start with the product", key)
	}
	if !strings.HasSuffix(key, ".json") {
		t.Errorf("key %q should end with .json", key)
	}

	parts := strings.SplitN(strings.TrimPrefix(key, "BTC-USD_"), "_", 2)
	if len(parts) != 2 {
		t.Fatalf("key %q missing timestamp or token", key)
	}
	sec, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		t.Fatalf("key %q timestamp not numeric: %v", key, err)
	}
	if sec != ts.Unix() {
		t.Errorf("key timestamp = %d, want %d", sec, ts.Unix())
	}
}

func TestObjectKeyUniqueness(t *testing.T) {
	ts := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := ObjectKey("ETH-USD", ts)
		if seen[key] {
			t.Fatalf("duplicate key %q for identical inputs", key)
		}
		seen[key] = true
	}
}
