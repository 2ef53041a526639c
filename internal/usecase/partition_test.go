package usecase

import (
	"errors"
	"testing"
	"time"

	drepo "CoinLake/internal/domain/repository"
)

func TestPartitionRangeSingleWindow(t *testing.T) {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(100 * 300 * time.Second)

	windows, err := PartitionRange(start, end, 300, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if !windows[0].Start.Equal(start) || !windows[0].End.Equal(end) {
		t.Errorf("window %v does not cover [%v, %v)", windows[0], start, end)
	}
	if windows[0].Samples() != 100 {
		t.Errorf("expected 100 samples, got %d", windows[0].Samples())
	}
}

func TestPartitionRangeSplitsAtPageCap(t *testing.T) {
	// 301 buckets at 300s with a 300-sample cap needs exactly two windows.
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(301 * 300 * time.Second)

	windows, err := PartitionRange(start, end, 300, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if windows[0].Samples() != 300 {
		t.Errorf("first window has %d samples, want 300", windows[0].Samples())
	}
	if windows[1].Samples() != 1 {
		t.Errorf("second window has %d samples, want 1", windows[1].Samples())
	}
}

func TestPartitionRangeContiguousAndOrdered(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 4, 15, 7, 30, 0, 0, time.UTC)

	windows, err := PartitionRange(start, end, 3600, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) == 0 {
		t.Fatal("expected at least one window")
	}
	if !windows[0].Start.Equal(start) {
		t.Errorf("first window starts at %v, want %v", windows[0].Start, start)
	}
	if !windows[len(windows)-1].End.Equal(end) {
		t.Errorf("last window ends at %v, want %v", windows[len(windows)-1].End, end)
	}
	for i := 1; i < len(windows); i++ {
		if !windows[i].Start.Equal(windows[i-1].End) {
			t.Errorf("gap between window %d and %d: %v != %v", i-1, i, windows[i-1].End, windows[i].Start)
		}
	}
	for _, w := range windows {
		if w.Samples() > 300 {
			t.Errorf("window %v spans %d samples, cap is 300", w, w.Samples())
		}
	}
}

func TestPartitionRangeRejectsBadInput(t *testing.T) {
	now := time.Now()

	if _, err := PartitionRange(now, now, 300, 300); !errors.Is(err, drepo.ErrInvalidRange) {
		t.Errorf("equal start/end: got %v, want ErrInvalidRange", err)
	}
	if _, err := PartitionRange(now, now.Add(-time.Hour), 300, 300); !errors.Is(err, drepo.ErrInvalidRange) {
		t.Errorf("end before start: got %v, want ErrInvalidRange", err)
	}
	if _, err := PartitionRange(now, now.Add(time.Hour), 42, 300); !errors.Is(err, drepo.ErrInvalidGranularity) {
		t.Errorf("bad granularity: got %v, want ErrInvalidGranularity", err)
	}
}
