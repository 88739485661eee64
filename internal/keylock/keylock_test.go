package keylock_test

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/anatomyflash/internal/keylock"
)

func TestStriped_SerializesSameKey(t *testing.T) {
	var s keylock.Striped
	counter := 0

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock("user-1")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestStriped_ReleasesAfterUnlock(t *testing.T) {
	var s keylock.Striped
	for i := range 10000 {
		unlock := s.Lock(strconv.Itoa(i))
		unlock()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 10000 {
			s.Lock(strconv.Itoa(i))()
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stripe left locked")
	}
}
