package utils

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex(t *testing.T) {
	t.Run("should serialize holders of the same key", func(t *testing.T) {
		km := NewKeyedMutex()
		var inside atomic.Int32
		var maxInside atomic.Int32

		wg := sync.WaitGroup{}
		for range 50 {
			wg.Go(func() {
				unlock := km.Lock("tenant-a")
				defer unlock()
				n := inside.Add(1)
				if n > maxInside.Load() {
					maxInside.Store(n)
				}
				inside.Add(-1)
			})
		}
		wg.Wait()

		assert.Equal(t, int32(1), maxInside.Load())
	})

	t.Run("should not block different keys", func(t *testing.T) {
		km := NewKeyedMutex()
		unlockA := km.Lock("a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlock := km.Lock("b")
			unlock()
			close(done)
		}()
		<-done
	})

	t.Run("should drop entries after unlock", func(t *testing.T) {
		km := NewKeyedMutex()
		unlock := km.Lock("a")
		assert.Equal(t, 1, km.len())
		unlock()
		assert.Equal(t, 0, km.len())
	})
}
