package usecase

import (
	"time"

	"CoinLake/internal/domain/models"
	drepo "CoinLake/internal/domain/repository"
)

// allowedGranularities is the exchange's fixed candle bucket set, seconds.
var allowedGranularities = map[int]struct{}{
	60: {}, 300: {}, 900: {}, 3600: {}, 21600: {}, 86400: {},
}

// PartitionRange splits [start, end) into consecutive windows that each fit
// within pageCap candle samples at the given granularity. Windows are
// returned in ascending chronological order, contiguous and
// non-overlapping; the last window may span fewer samples.
func PartitionRange(start, end time.Time, granularity, pageCap int) ([]models.TimeWindow, error) {
	if !end.After(start) {
		return nil, drepo.ErrInvalidRange
	}
	if _, ok := allowedGranularities[granularity]; !ok {
		return nil, drepo.ErrInvalidGranularity
	}
	if pageCap < 1 {
		pageCap = 1
	}

	step := time.Duration(granularity) * time.Second * time.Duration(pageCap)

	var windows []models.TimeWindow
	for ws := start; ws.Before(end); ws = ws.Add(step) {
		we := ws.Add(step)
		if we.After(end) {
			we = end
		}
		windows = append(windows, models.TimeWindow{
			Start:       ws,
			End:         we,
			Granularity: granularity,
		})
	}
	return windows, nil
}
