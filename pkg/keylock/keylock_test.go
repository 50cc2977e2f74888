package keylock

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSerializesSameKey(t *testing.T) {
	registry := NewRegistry()
	key := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.Lock(key)
			counter++
			registry.Unlock(key)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestIndependentKeysDoNotBlock(t *testing.T) {
	registry := NewRegistry()
	a, b := uuid.New(), uuid.New()

	registry.Lock(a)

	done := make(chan struct{})
	go func() {
		registry.Lock(b)
		registry.Unlock(b)
		close(done)
	}()

	<-done // would deadlock if key b waited on key a
	registry.Unlock(a)
}

func TestEntriesAreReleased(t *testing.T) {
	registry := NewRegistry()
	key := uuid.New()

	registry.Lock(key)
	registry.Unlock(key)

	registry.mu.Lock()
	defer registry.mu.Unlock()
	assert.Empty(t, registry.locks, "unused entries must not accumulate")
}
