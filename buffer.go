package drum

import "fmt"

// slot is one buffered operation. present marks whether aux was supplied;
// absent aux is fed as a zero-length entry.
type slot[K, V, A any] struct {
	key     K
	value   V
	aux     A
	op      OpCode
	present bool
}

// buffers holds the pending operations of every bucket.
type buffers[K, V, A any] struct {
	capacity int
	slots    [][]slot[K, V, A]
	next     []int
}

func newBuffers[K, V, A any](numBuckets, capacity int) *buffers[K, V, A] {
	return &buffers[K, V, A]{
		capacity: capacity,
		next:     make([]int, numBuckets),
	}
}

// add stores an operation in bucket b and reports whether the bucket is now
// full. Buffers are allocated on the first add after a release.
func (bs *buffers[K, V, A]) add(b int, s slot[K, V, A]) (int, bool) {
	if bs.slots == nil {
		bs.slots = make([][]slot[K, V, A], len(bs.next))
		for i := range bs.slots {
			bs.slots[i] = make([]slot[K, V, A], bs.capacity)
		}
	}
	n := bs.next[b]
	if n >= bs.capacity {
		// A full bucket always forces a feed before the next add.
		panic(fmt.Sprintf("drum: bucket %d overflow: slot %d of %d", b, n, bs.capacity))
	}
	bs.slots[b][n] = s
	bs.next[b] = n + 1
	return n, n+1 == bs.capacity
}

// pending returns the buffered operations of bucket b.
func (bs *buffers[K, V, A]) pending(b int) []slot[K, V, A] {
	if bs.slots == nil {
		return nil
	}
	return bs.slots[b][:bs.next[b]]
}

// len returns the number of buffered operations across all buckets.
func (bs *buffers[K, V, A]) len() int {
	n := 0
	for _, c := range bs.next {
		n += c
	}
	return n
}

// reset empties bucket b, dropping references held by its slots.
func (bs *buffers[K, V, A]) reset(b int) {
	if bs.slots != nil {
		clear(bs.slots[b][:bs.next[b]])
	}
	bs.next[b] = 0
}

// release frees all buffers. Pending operations must have been fed.
func (bs *buffers[K, V, A]) release() {
	bs.slots = nil
	clear(bs.next)
}

// state is the feed/merge trigger, advanced after every operation.
type state uint8

const (
	stateIdle state = iota
	stateNeedsFeed
	stateNeedsMerge
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateNeedsFeed:
		return "needs_feed"
	case stateNeedsMerge:
		return "needs_merge"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}
