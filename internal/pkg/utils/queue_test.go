package utils

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDQueue_FIFO(t *testing.T) {
	q := NewIDQueue()
	q.Push("1")
	q.Push("2")
	q.Push("3")
	require.Equal(t, 3, q.Len())
	for _, exp := range []string{"1", "2", "3"} {
		v, err := q.Pop(context.Background())
		require.Nil(t, err)
		assert.Equal(t, exp, v)
	}
	assert.Equal(t, 0, q.Len())
}

func TestIDQueue_PopBlocks(t *testing.T) {
	q := NewIDQueue()
	ctx, cf := context.WithTimeout(context.Background(), time.Millisecond*50)
	defer cf()
	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIDQueue_PopWakesOnPush(t *testing.T) {
	q := NewIDQueue()
	ctx, cf := context.WithTimeout(context.Background(), time.Second*5)
	defer cf()
	resCh := make(chan string, 1)
	go func() {
		v, err := q.Pop(ctx)
		assert.Nil(t, err)
		resCh <- v
	}()
	time.Sleep(time.Millisecond * 20)
	q.Push("olia")
	select {
	case v := <-resCh:
		assert.Equal(t, "olia", v)
	case <-ctx.Done():
		require.Fail(t, "timeout")
	}
}

func TestIDQueue_ConcurrentConsumers(t *testing.T) {
	q := NewIDQueue()
	ctx, cf := context.WithTimeout(context.Background(), time.Second*10)
	defer cf()

	const n = 100
	var lock sync.Mutex
	got := map[string]int{}
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, err := q.Pop(ctx)
				if err != nil {
					return
				}
				lock.Lock()
				got[v]++
				if len(got) == n {
					cf()
				}
				lock.Unlock()
			}
		}()
	}
	for i := 0; i < n; i++ {
		q.Push(fmt.Sprintf("id-%d", i))
	}
	wg.Wait()

	require.Equal(t, n, len(got))
	for k, c := range got {
		assert.Equal(t, 1, c, "id %s popped %d times", k, c)
	}
}
