// Package fleet implements the monitoring core of the Sublymus admin console:
// metric samples, bounded per-entity timelines, the snapshot store the poller
// feeds, and the pure view projection the API serves from.
package fleet

import "encoding/json"

// Well-known metric keys. Services report cpu/memory/replicas;
// the host reports cpu/memory/disk/temp.
const (
	MetricCPU      = "cpu"      // percent; may transiently exceed 100
	MetricMemory   = "memory"   // bytes for services, percent for the host
	MetricReplicas = "replicas" // non-negative integer
	MetricDisk     = "disk"     // percent
	MetricTemp     = "temp"     // °C
)

// Sample is one timestamped measurement for a service or host.
// Immutable once created.
type Sample struct {
	Timestamp int64 // epoch milliseconds
	Metrics   map[string]float64
}

// NewSample builds a sample from a timestamp and metric pairs.
func NewSample(ts int64, metrics map[string]float64) Sample {
	m := make(map[string]float64, len(metrics))
	for k, v := range metrics {
		m[k] = v
	}
	return Sample{Timestamp: ts, Metrics: m}
}

// Metric returns the named metric, or 0 if the sample does not carry it.
func (s Sample) Metric(key string) float64 {
	return s.Metrics[key]
}

// clone returns an independent copy so stored samples cannot be
// mutated through a shared map.
func (s Sample) clone() Sample {
	return NewSample(s.Timestamp, s.Metrics)
}

// The backend sends samples flat: {"timestamp": 171..., "cpu": 12.5, ...}.
// Every numeric field other than timestamp is a metric.

// MarshalJSON encodes the sample in its flat wire form.
func (s Sample) MarshalJSON() ([]byte, error) {
	flat := make(map[string]float64, len(s.Metrics)+1)
	for k, v := range s.Metrics {
		flat[k] = v
	}
	flat["timestamp"] = float64(s.Timestamp)
	return json.Marshal(flat)
}

// UnmarshalJSON decodes the flat wire form.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var flat map[string]float64
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	s.Timestamp = int64(flat["timestamp"])
	delete(flat, "timestamp")
	s.Metrics = flat
	return nil
}
