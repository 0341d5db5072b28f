// Package cache provides the bounded, time-expiring response cache used by
// the insight engine. The default in-process implementation is LRU.
package cache

// Store defines the interface for insight response caching.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Len() int
	Clear()
	Stats() Stats
}

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate_percent"`
}
