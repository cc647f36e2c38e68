package core

import "time"

// CachedResponse is a stored API response body.
type CachedResponse struct {
	Key        string
	Body       []byte
	StatusCode int
	CachedAt   time.Time
	ExpiresAt  time.Time
}

// CacheStats summarizes the response cache.
type CacheStats struct {
	Entries int64      `json:"entries"`
	Expired int64      `json:"expired"`
	Bytes   int64      `json:"bytes"`
	Oldest  *time.Time `json:"oldest,omitempty"`
	Newest  *time.Time `json:"newest,omitempty"`
}
