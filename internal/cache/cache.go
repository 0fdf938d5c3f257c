// Package cache provides a small in-memory TTL cache for API
// responses, keyed by a digest of the request parameters.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Key derives a stable cache key from any JSON-encodable request
// shape. encoding/json sorts map keys, so equivalent requests hash
// identically.
func Key(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// ResponseCache is an expiring LRU of serialized responses.
type ResponseCache struct {
	lru *expirable.LRU[string, []byte]
}

// New creates a response cache holding up to size entries for ttl.
func New(size int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get returns the cached payload for a request key, if present.
func (c *ResponseCache) Get(key interface{}) ([]byte, bool) {
	k := Key(key)
	if k == "" {
		return nil, false
	}
	return c.lru.Get(k)
}

// Set stores a payload under the request key.
func (c *ResponseCache) Set(key interface{}, payload []byte) {
	if k := Key(key); k != "" {
		c.lru.Add(k, payload)
	}
}
