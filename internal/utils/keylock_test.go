package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	const workers = 50
	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			km.Lock("emp-1|2025-06-02")
			counter++
			km.Unlock("emp-1|2025-06-02")
		}()
	}
	wg.Wait()

	require.Equal(t, workers, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	km.Lock("a")
	done := make(chan struct{})
	go func() {
		// A different key must not block behind "a".
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()
	<-done
	km.Unlock("a")
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := NewKeyedMutex()

	km.Lock("x")
	km.Unlock("x")

	km.mu.Lock()
	defer km.mu.Unlock()
	require.Empty(t, km.locks, "entries must be reclaimed on last unlock")
}

func TestKeyedMutexUnlockUnheldPanics(t *testing.T) {
	km := NewKeyedMutex()
	require.Panics(t, func() { km.Unlock("never-locked") })
}
