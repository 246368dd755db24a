package cache

import "time"

// LayeredCache checks layers in order (fastest first) and writes through to all of them
type LayeredCache struct {
	layers []Cache
}

// NewLayeredCache creates a layered cache, e.g. memory over disk or memory over redis
func NewLayeredCache(layers ...Cache) *LayeredCache {
	return &LayeredCache{layers: layers}
}

// Get returns the first hit and promotes it into the faster layers
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	for i, layer := range c.layers {
		val, found := layer.Get(key)
		if !found {
			continue
		}
		for _, upper := range c.layers[:i] {
			_ = upper.Set(key, val, 0)
		}
		return val, true
	}
	return nil, false
}

// Set stores a value in every layer
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	for _, layer := range c.layers {
		if err := layer.Set(key, value, ttl); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a value from every layer
func (c *LayeredCache) Delete(key string) error {
	var first error
	for _, layer := range c.layers {
		if err := layer.Delete(key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Clear empties every layer
func (c *LayeredCache) Clear() error {
	var first error
	for _, layer := range c.layers {
		if err := layer.Clear(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
