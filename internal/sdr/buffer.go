package sdr

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNilSweep is returned when inserting a nil sweep result.
var ErrNilSweep = errors.New("cannot insert nil sweep")

// Node represents an internal linked list node for the frequency sweep buffer.
type node struct {
	sweep *SweepResult
	next  *node
}

// FrequencyBuffer is a thread-safe reordering window for sweep chunks. Sweep
// tools do not always print chunks in frequency order; the buffer keeps the
// chunks it holds sorted by frequency and treats a chunk that is more than
// half the scanned range below another as the start of the next sweep.
//
// The window must stay well below half a sweep for that rule to hold.
type FrequencyBuffer struct {
	baseFreq float64 // Minimum frequency in Hz for the sweep range
	maxFreq  float64 // Maximum frequency in Hz for the sweep range

	capacity   int // Maximum number of sweeps to store
	flushCount int // Number of sweeps to remove when buffer reaches capacity

	mu   sync.Mutex
	head *node
	size int
}

// NewFrequencyBuffer creates a new frequency sweep buffer for the specified frequency range.
// The buffer will store up to capacity chunks and remove flushCount chunks when full.
//
// Parameters:
//   - startFreq: minimum frequency in Hz
//   - endFreq: maximum frequency in Hz
//   - capacity: maximum number of chunks to store
//   - flushCount: number of chunks to remove when buffer is full
//
// Returns an error if parameters are invalid.
func NewFrequencyBuffer(startFreq, endFreq float64, capacity, flushCount int) (*FrequencyBuffer, error) {
	if capacity <= 0 || flushCount <= 0 || flushCount > capacity {
		return nil, fmt.Errorf("invalid buffer parameters: bufferCap=%d, toFlush=%d", capacity, flushCount)
	}
	if startFreq >= endFreq {
		return nil, fmt.Errorf("invalid frequency range: start=%f, end=%f", startFreq, endFreq)
	}
	return &FrequencyBuffer{
		baseFreq:   startFreq,
		maxFreq:    endFreq,
		capacity:   capacity,
		flushCount: flushCount,
	}, nil
}

// Insert adds a chunk to the buffer in frequency order. A chunk that lands
// after a newer one has its timestamp moved forward by a microsecond so that
// timestamps never decrease along the buffer.
func (fb *FrequencyBuffer) Insert(sweep *SweepResult) error {
	if sweep == nil {
		return ErrNilSweep
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	fb.insert(sweep)
	return nil
}

// Push inserts a chunk and, when the buffer is full afterwards, flushes and
// returns the oldest chunks.
func (fb *FrequencyBuffer) Push(sweep *SweepResult) ([]*SweepResult, error) {
	if sweep == nil {
		return nil, ErrNilSweep
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	fb.insert(sweep)
	if fb.size < fb.capacity {
		return nil, nil
	}
	return fb.flush(), nil
}

func (fb *FrequencyBuffer) insert(sweep *SweepResult) {
	if fb.head == nil || fb.compareSweepOrder(sweep, fb.head.sweep) == -1 {
		fb.head = &node{sweep: sweep, next: fb.head}
		fb.size++
		return
	}

	current := fb.head
	for current.next != nil && fb.compareSweepOrder(current.next.sweep, sweep) != 1 {
		current = current.next
	}

	if sweep.Timestamp.Before(current.sweep.Timestamp) {
		sweep.Timestamp = current.sweep.Timestamp.Add(time.Microsecond)
	}

	current.next = &node{sweep: sweep, next: current.next}
	fb.size++
}

// IsFull returns true if the buffer has reached its capacity.
func (fb *FrequencyBuffer) IsFull() bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	return fb.size >= fb.capacity
}

// Flush removes and returns the oldest chunks from the buffer.
// Returns nil if the buffer is empty. The number of chunks returned
// is determined by the flushCount parameter and buffer state.
func (fb *FrequencyBuffer) Flush() []*SweepResult {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	return fb.flush()
}

func (fb *FrequencyBuffer) flush() []*SweepResult {
	if fb.head == nil || fb.size == 0 {
		return nil
	}

	count := fb.flushCount
	if fb.size > fb.capacity {
		count += fb.size - fb.capacity
	}
	count = min(count, fb.size)

	results := make([]*SweepResult, 0, count)
	current := fb.head
	for i := 0; i < count && current != nil; i++ {
		results = append(results, current.sweep)
		current = current.next
	}

	fb.head = current
	fb.size -= len(results)
	return results
}

// DrainAll removes and returns all chunks from the buffer.
// Returns nil if the buffer is empty.
func (fb *FrequencyBuffer) DrainAll() []*SweepResult {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.head == nil || fb.size == 0 {
		return nil
	}

	results := make([]*SweepResult, 0, fb.size)
	for current := fb.head; current != nil; current = current.next {
		results = append(results, current.sweep)
	}

	fb.head = nil
	fb.size = 0
	return results
}

// Size returns the current number of chunks in the buffer.
func (fb *FrequencyBuffer) Size() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.size
}

// Clear removes all chunks from the buffer.
func (fb *FrequencyBuffer) Clear() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.head = nil
	fb.size = 0
}

// getSweepOrder returns the bin index of the chunk's first bin center.
func (fb *FrequencyBuffer) getSweepOrder(s *SweepResult) int {
	if s == nil || s.BinWidth <= 0 {
		return 0
	}
	return int((s.CenterFrequency() - fb.baseFreq) / s.BinWidth)
}

// compareSweepOrder determines the relative ordering of two chunks.
// Returns:
//
//	1 if 'a' belongs after 'b' (next in sequence or new sweep)
//	-1 if 'a' belongs before 'b' (part of previous sweep)
//	0 if either sweep is nil
func (fb *FrequencyBuffer) compareSweepOrder(a, b *SweepResult) int {
	if a == nil || b == nil {
		return 0
	}

	ac := fb.getSweepOrder(a)
	bc := fb.getSweepOrder(b)

	var rolloverThreshold int
	if a.BinWidth > 0 {
		rolloverThreshold = int((fb.maxFreq - fb.baseFreq) / a.BinWidth / 2)
	}

	diff := ac - bc
	switch {
	case diff < -rolloverThreshold: // 'a' starts the next sweep
		return 1
	case diff > rolloverThreshold: // 'a' ends the previous sweep
		return -1
	case diff > 0:
		return 1
	case diff < 0:
		return -1
	case a.Timestamp.Before(b.Timestamp):
		return -1
	default:
		return 1
	}
}
