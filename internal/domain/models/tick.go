package models

import (
	"encoding/json"
	"time"
)

// Tick is a single ticker frame from the venue feed. The raw payload is
// carried as-is; only the product identifier and event time are lifted out.
type Tick struct {
	ProductID string
	Time      time.Time
	Payload   map[string]any
}

// Price returns the tick price if the payload carries one.
func (t *Tick) Price() (float64, bool) {
	v, ok := t.Payload["price"]
	if !ok {
		return 0, false
	}
	switch p := v.(type) {
	case float64:
		return p, true
	case string:
		var f float64
		if err := json.Unmarshal([]byte(p), &f); err == nil {
			return f, true
		}
	case json.Number:
		if f, err := p.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Batch is an ordered run of ticks for one product, bounded by the
// configured batch size. A batch is flushed whole or not at all.
type Batch struct {
	ProductID string
	Ticks     []*Tick
}

// Len returns the number of ticks held.
func (b *Batch) Len() int { return len(b.Ticks) }

// Last returns the most recent tick, or nil for an empty batch.
func (b *Batch) Last() *Tick {
	if len(b.Ticks) == 0 {
		return nil
	}
	return b.Ticks[len(b.Ticks)-1]
}

// Encode serializes the batch as a JSON array of raw tick payloads.
func (b *Batch) Encode() ([]byte, error) {
	payloads := make([]map[string]any, len(b.Ticks))
	for i, t := range b.Ticks {
		payloads[i] = t.Payload
	}
	return json.Marshal(payloads)
}
