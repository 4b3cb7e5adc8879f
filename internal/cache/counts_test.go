package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avray/eventreg-server/internal/model"
)

func TestCounts_SetGet(t *testing.T) {
	c := NewCounts(time.Minute)

	_, ok := c.Get("events")
	assert.False(t, ok)

	c.Set("events", 12)
	count, ok := c.Get("events")
	require.True(t, ok)
	assert.Equal(t, int64(12), count)
}

func TestCounts_TTLExpiry(t *testing.T) {
	c := NewCounts(20 * time.Millisecond)

	c.Set("events", 7)
	count, ok := c.Get("events")
	require.True(t, ok)
	assert.Equal(t, int64(7), count)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get("events")
	assert.False(t, ok)
}

func TestCounts_Invalidate(t *testing.T) {
	c := NewCounts(time.Minute)

	c.Set("event:1:registrations", 3)
	c.Invalidate("event:1:registrations")

	_, ok := c.Get("event:1:registrations")
	assert.False(t, ok)
}

func TestCounts_InvalidateScope(t *testing.T) {
	c := NewCounts(time.Minute)

	c.Set("event:1:registrations", 3)
	c.Set("event:1:registrations|q=smith", 1)
	c.Set("event:12:registrations", 9)

	c.InvalidateScope(RegistrationScope(1))

	_, ok := c.Get("event:1:registrations")
	assert.False(t, ok)
	_, ok = c.Get("event:1:registrations|q=smith")
	assert.False(t, ok)

	count, ok := c.Get("event:12:registrations")
	require.True(t, ok)
	assert.Equal(t, int64(9), count)
}

func TestCounts_ConcurrentAccess(t *testing.T) {
	c := NewCounts(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := RegistrationScope(int64(n % 4))
			for j := 0; j < 200; j++ {
				c.Set(key, int64(j))
				c.Get(key)
				c.Invalidate(key)
				c.InvalidateScope(EventListScope)
			}
		}(i)
	}
	wg.Wait()
}

func TestEventListKey(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	creator := int64(8)

	plain := EventListKey(model.EventFilter{})
	assert.Equal(t, EventListScope, plain)

	filtered := EventListKey(model.EventFilter{From: &from, To: &to, Query: "GoConf", CreatedBy: &creator})
	assert.NotEqual(t, plain, filtered)
	assert.Contains(t, filtered, "q=goconf")
	assert.Contains(t, filtered, fmt.Sprintf("by=%d", creator))

	// Same filter must map to the same key.
	assert.Equal(t, filtered, EventListKey(model.EventFilter{From: &from, To: &to, Query: "GoConf", CreatedBy: &creator}))
}

func TestRegistrationKey(t *testing.T) {
	assert.Equal(t, "event:5:registrations", RegistrationKey(5, model.RegistrationFilter{}))
	assert.Equal(t, "event:5:registrations|q=ann", RegistrationKey(5, model.RegistrationFilter{Query: "Ann"}))
}
