package toast

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out toast ids.
type IDGenerator interface {
	NextID() ID
}

// CounterIDs yields "1", "2", ... . Each Toaster gets its own counter so
// tests never share a sequence.
type CounterIDs struct {
	n atomic.Uint64
}

// NewCounterIDs creates a counter starting at 1.
func NewCounterIDs() *CounterIDs {
	return &CounterIDs{}
}

func (c *CounterIDs) NextID() ID {
	return ID(strconv.FormatUint(c.n.Add(1), 10))
}

// UUIDIDs yields random UUIDs.
type UUIDIDs struct{}

func (UUIDIDs) NextID() ID {
	return ID(uuid.NewString())
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() ID

func (f IDFunc) NextID() ID {
	return f()
}
