package models

// BackfillRequest asks for a historical candle range for one product.
type BackfillRequest struct {
	Product     string `query:"product" validate:"required"`
	Start       string `query:"start" validate:"required"`
	End         string `query:"end"`
	Granularity int    `query:"granularity" default:"300"`
	Store       *bool  `query:"store"`
}

// StoreResult reports whether the retrieved range should be archived.
// Defaults to true when the caller did not say.
func (r *BackfillRequest) StoreResult() bool {
	return r.Store == nil || *r.Store
}

// BackfillResponse reports the retrieved range.
type BackfillResponse struct {
	Product     string   `json:"product"`
	Granularity int      `json:"granularity"`
	Count       int      `json:"count"`
	Stored      bool     `json:"stored"`
	Key         string   `json:"key,omitempty"`
	Candles     []Candle `json:"candles"`
}

// LatestRequest asks for the most recent cached tick of one product.
type LatestRequest struct {
	Product string `query:"product" validate:"required"`
}

// PipelineStatus describes one live subscription pipeline.
type PipelineStatus struct {
	Product   string `json:"product"`
	Connected bool   `json:"connected"`
	Restarts  int64  `json:"restarts"`
	Ticks     int64  `json:"ticks"`
	Flushes   int64  `json:"flushes"`
}
