package repository

import (
	"errors"
	"fmt"

	"CoinLake/internal/domain/models"
)

var (
	// ErrConnectionLost signals that a feed stream died and its pipeline
	// should be restarted by the supervisor.
	ErrConnectionLost = errors.New("feed connection lost")

	// ErrInvalidRange rejects backfill ranges where end <= start.
	ErrInvalidRange = errors.New("invalid time range: end must be after start")

	// ErrInvalidGranularity rejects granularities outside the API's
	// supported set.
	ErrInvalidGranularity = errors.New("granularity must be one of 60, 300, 900, 3600, 21600, 86400")
)

// UpstreamError aborts a backfill call when the API answers with a
// non-success status. Window identifies where to resume manually.
type UpstreamError struct {
	Status int
	Window models.TimeWindow
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d on window %s", e.Status, e.Window)
}
