// Package cache holds the process-local count cache shared by all
// concurrent request handlers. The cache is an explicitly constructed,
// injectable component: it is created once at process start and passed
// to the services, never reached through a package global.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/avray/eventreg-server/internal/model"
)

// Counts is a TTL cache of total-row counts per scope key. Entries
// expire after a fixed window regardless of access; there is no
// eviction beyond that, since the key space is bounded by the number of
// live events.
//
// A read racing an invalidation from another request may still observe
// the old value. That staleness window is bounded by the TTL and is a
// documented relaxation, not a bug.
type Counts struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]countEntry
}

type countEntry struct {
	count     int64
	expiresAt time.Time
}

// NewCounts creates an empty cache whose entries live for ttl.
func NewCounts(ttl time.Duration) *Counts {
	return &Counts{
		ttl:     ttl,
		entries: make(map[string]countEntry),
	}
}

// Get returns the cached count for key, if present and not expired.
// Expired entries are dropped lazily here rather than by a sweeper.
func (c *Counts) Get(key string) (int64, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		// Recheck under the write lock: a concurrent Set may have
		// refreshed the entry since the read above.
		if cur, stillThere := c.entries[key]; stillThere && time.Now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return 0, false
	}
	return e.count, true
}

// Set stores count under key for one TTL window. Callers must only Set
// counts observed from a successful scan.
func (c *Counts) Set(key string, count int64) {
	c.mu.Lock()
	c.entries[key] = countEntry{count: count, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops the entry for key.
func (c *Counts) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateScope drops every entry whose key starts with prefix. It is
// called synchronously with every successful mutation of the scope, so
// filtered variants of the scope's count never outlive the mutation.
func (c *Counts) InvalidateScope(prefix string) {
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// EventListScope is the key prefix covering all event listing counts.
const EventListScope = "events"

// EventListKey derives the scope key for an event listing count from
// the fixed filter set.
func EventListKey(filter model.EventFilter) string {
	var b strings.Builder
	b.WriteString(EventListScope)
	if filter.From != nil {
		fmt.Fprintf(&b, "|from=%d", filter.From.UTC().UnixNano())
	}
	if filter.To != nil {
		fmt.Fprintf(&b, "|to=%d", filter.To.UTC().UnixNano())
	}
	if filter.Query != "" {
		fmt.Fprintf(&b, "|q=%s", strings.ToLower(filter.Query))
	}
	if filter.CreatedBy != nil {
		fmt.Fprintf(&b, "|by=%d", *filter.CreatedBy)
	}
	return b.String()
}

// RegistrationScope is the key prefix covering all registration counts
// of one event. Mutations of the event's registrations invalidate this
// whole prefix.
func RegistrationScope(eventID int64) string {
	return fmt.Sprintf("event:%d:registrations", eventID)
}

// RegistrationKey derives the scope key for a registration count of one
// event under the given filter.
func RegistrationKey(eventID int64, filter model.RegistrationFilter) string {
	key := RegistrationScope(eventID)
	if filter.Query != "" {
		key += "|q=" + strings.ToLower(filter.Query)
	}
	return key
}
