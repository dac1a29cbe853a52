package application

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializerReentrantCallDoesNotBlock(t *testing.T) {
	s := NewSerializer()
	innerRan := false

	err := s.Do(context.Background(), func(ctx context.Context) error {
		assert.True(t, s.Reentrant(ctx))
		return s.Do(ctx, func(context.Context) error {
			innerRan = true
			return nil
		})
	})

	require.NoError(t, err)
	assert.True(t, innerRan)
}

func TestSerializerRunsIndependentCallersOneAtATime(t *testing.T) {
	s := NewSerializer()
	var active int32
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(context.Background(), func(context.Context) error {
				current := atomic.AddInt32(&active, 1)
				for {
					seen := atomic.LoadInt32(&maxActive)
					if current <= seen || atomic.CompareAndSwapInt32(&maxActive, seen, current) {
						break
					}
				}
				atomic.AddInt32(&active, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
}

func TestSerializerForeignContextIsNotReentrant(t *testing.T) {
	a := NewSerializer()
	b := NewSerializer()

	_ = a.Do(context.Background(), func(ctx context.Context) error {
		assert.False(t, b.Reentrant(ctx))
		return nil
	})

	var nilSerializer *Serializer
	ran := false
	require.NoError(t, nilSerializer.Do(context.Background(), func(context.Context) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
}
