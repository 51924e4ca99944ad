package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuardSerializesPerGuruji(t *testing.T) {
	g := NewGuard()

	var mu sync.Mutex
	counters := map[uint]int{}
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		for _, guruji := range []uint{1, 2} {
			wg.Add(1)
			go func(id uint) {
				defer wg.Done()
				unlock := g.Lock(id)
				defer unlock()
				mu.Lock()
				counters[id]++
				mu.Unlock()
			}(guruji)
		}
	}
	wg.Wait()

	assert.Equal(t, 50, counters[1])
	assert.Equal(t, 50, counters[2])
}

func TestGuardReturnsSameLockForSameGuruji(t *testing.T) {
	g := NewGuard()

	unlock := g.Lock(7)
	done := make(chan struct{})
	go func() {
		u := g.Lock(7)
		u()
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("second Lock(7) acquired while the first was held")
	default:
	}

	unlock()
	<-done
}
