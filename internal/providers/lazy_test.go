package providers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLazyInitRunsOnceUnderContention(t *testing.T) {
	var calls atomic.Int32
	l := lazy[int]{init: func(context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.get(context.Background())
			require.NoError(t, err)
			require.Equal(t, 42, v)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), calls.Load())
}

func TestLazyInitRetriesAfterFailure(t *testing.T) {
	attempts := 0
	l := lazy[string]{init: func(context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("model not pulled yet")
		}
		return "ready", nil
	}}
	_, err := l.get(context.Background())
	require.Error(t, err)
	v, err := l.get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ready", v)
	require.Equal(t, 2, attempts)
}
