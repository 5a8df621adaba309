package test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// PublishedEvent is a captured Publish call.
type PublishedEvent struct {
	Type     string
	TenantID string
	Key      string
	Payload  any
}

// EventRecorder captures published events.
type EventRecorder struct {
	mu     sync.Mutex
	Events []PublishedEvent
	Err    error
}

// Publish records the event and returns the configured error.
func (r *EventRecorder) Publish(_ context.Context, eventType, tenantID, key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, PublishedEvent{Type: eventType, TenantID: tenantID, Key: key, Payload: payload})
	return r.Err
}

// Close is a no-op.
func (r *EventRecorder) Close() error { return nil }

// Types lists recorded event types in order.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}

// MemoryCache is a map backed cache that ignores TTLs.
type MemoryCache struct {
	mu      sync.Mutex
	Values  map[string]string
	Deletes []string
	GetErr  error
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{Values: map[string]string{}}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return "", c.GetErr
	}
	return c.Values[key], nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Values[key] = value
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.Values, k)
		c.Deletes = append(c.Deletes, k)
	}
	return nil
}

func (c *MemoryCache) Key(parts ...string) string {
	return fmt.Sprintf("test:%s", strings.Join(parts, ":"))
}
