package ui

import (
	"hash/fnv"
	"strconv"
	"sync"
)

// RenderCache memoizes glamour output per slide and viewport width.
// Rendering a slide is the slowest part of a keypress, and users flip back
// and forth over the same few slides.
type RenderCache struct {
	mu      sync.Mutex
	entries map[uint64]string
	order   []uint64
	maxSize int
}

// NewRenderCache creates a cache holding at most maxSize entries.
func NewRenderCache(maxSize int) *RenderCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &RenderCache{
		entries: make(map[uint64]string, maxSize),
		maxSize: maxSize,
	}
}

// ComputeKey derives a cache key from the slide identity, its content and
// the render parameters.
func ComputeKey(id string, content []byte, width int, style string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	h.Write([]byte{0})
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(width)))
	h.Write([]byte{0})
	h.Write([]byte(style))
	return h.Sum64()
}

// Get retrieves cached content if available.
func (rc *RenderCache) Get(key uint64) (string, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	v, ok := rc.entries[key]
	return v, ok
}

// Set stores rendered content, evicting the oldest entry when full.
func (rc *RenderCache) Set(key uint64, content string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if _, ok := rc.entries[key]; !ok {
		if len(rc.order) >= rc.maxSize {
			oldest := rc.order[0]
			rc.order = rc.order[1:]
			delete(rc.entries, oldest)
		}
		rc.order = append(rc.order, key)
	}
	rc.entries[key] = content
}

// Len returns the number of cached entries.
func (rc *RenderCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}

// Clear empties the cache.
func (rc *RenderCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.entries = make(map[uint64]string, rc.maxSize)
	rc.order = nil
}

// GetOrCompute retrieves from cache or computes if missing. Failed
// computations are not cached.
func (rc *RenderCache) GetOrCompute(key uint64, compute func() (string, error)) (string, error) {
	if content, ok := rc.Get(key); ok {
		return content, nil
	}
	content, err := compute()
	if err != nil {
		return "", err
	}
	rc.Set(key, content)
	return content, nil
}
