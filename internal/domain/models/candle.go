package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Candle is one OHLCV bar. The exchange encodes candles on the wire as
// six-element arrays [time, low, high, open, close, volume] with time in
// unix seconds.
type Candle struct {
	Time   time.Time
	Low    float64
	High   float64
	Open   float64
	Close  float64
	Volume float64
}

// UnmarshalJSON decodes the exchange 6-tuple form.
func (c *Candle) UnmarshalJSON(b []byte) error {
	var tuple [6]float64
	if err := json.Unmarshal(b, &tuple); err != nil {
		return fmt.Errorf("candle tuple: %w", err)
	}
	c.Time = time.Unix(int64(tuple[0]), 0).UTC()
	c.Low = tuple[1]
	c.High = tuple[2]
	c.Open = tuple[3]
	c.Close = tuple[4]
	c.Volume = tuple[5]
	return nil
}

// MarshalJSON re-encodes the candle in the exchange 6-tuple form.
func (c Candle) MarshalJSON() ([]byte, error) {
	return json.Marshal([6]float64{
		float64(c.Time.Unix()), c.Low, c.High, c.Open, c.Close, c.Volume,
	})
}

// TimeWindow is a [Start, End) range sized so that one candles request
// stays within the API page cap at the given granularity.
type TimeWindow struct {
	Start       time.Time
	End         time.Time
	Granularity int // seconds per bucket
}

// Samples returns the number of candle buckets the window spans.
func (w TimeWindow) Samples() int {
	if w.Granularity <= 0 {
		return 0
	}
	d := w.End.Sub(w.Start)
	n := int(d / (time.Duration(w.Granularity) * time.Second))
	if d%(time.Duration(w.Granularity)*time.Second) != 0 {
		n++
	}
	return n
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s)@%ds", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), w.Granularity)
}
