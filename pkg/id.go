package pkg

import (
	"sync"
	"time"
)

// IDGenerator hands out millisecond timestamps as ids. Two calls within the
// same millisecond still get distinct, increasing values.
type IDGenerator struct {
	mutex sync.Mutex
	last  int64
	now   func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// NewIDGeneratorWithClock is used in tests to get predictable ids.
func NewIDGeneratorWithClock(now func() time.Time) *IDGenerator {
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() int64 {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
