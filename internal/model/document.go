package model

import "time"

// CachedDocument is a binary document kept for offline viewing. CachedAt is
// the eviction key: the cache drops the oldest-admitted entry first.
type CachedDocument struct {
	ID       string    `json:"id"`
	FileName string    `json:"file_name"`
	Size     int64     `json:"size"`
	Payload  []byte    `json:"payload,omitempty"`
	CachedAt time.Time `json:"cached_at"`
}
