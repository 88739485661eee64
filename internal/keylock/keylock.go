// Package keylock serializes work per key with a fixed set of mutexes, so
// memory stays constant no matter how many distinct keys are seen.
package keylock

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const stripes = 256

// Striped maps each key onto one of a fixed number of mutexes. Two keys may
// share a stripe; callers must not hold one key's lock while taking another.
// The zero value is ready to use.
type Striped struct {
	mus [stripes]sync.Mutex
}

// Lock blocks until key's stripe is free and returns its unlock func.
func (s *Striped) Lock(key string) func() {
	mu := &s.mus[xxhash.Sum64String(key)%stripes]
	mu.Lock()
	return mu.Unlock
}
