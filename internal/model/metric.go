package model

import "encoding/json"

// Metric is a derived number that may be unavailable, e.g. an SMA over more bars
// than exist or a position inside a flat range.
type Metric struct {
	Value     float64
	Available bool
}

// Some returns an available metric.
func Some(v float64) Metric { return Metric{Value: v, Available: true} }

// Unavailable is the marker for a value that could not be derived.
var Unavailable = Metric{}

// Or returns the value, or fallback when unavailable.
func (m Metric) Or(fallback float64) float64 {
	if !m.Available {
		return fallback
	}
	return m.Value
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Available {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Unavailable
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Some(v)
	return nil
}
