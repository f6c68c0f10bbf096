package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Uint32 returns a pseudo-random uint32.
func (r *RNG) Uint32() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint32()
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(r.rand.Intn(256))
	}
	return b
}

// String returns a lowercase ASCII string with length in [minLen, maxLen].
func (r *RNG) String(minLen, maxLen int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringLocked(minLen, maxLen)
}

func (r *RNG) stringLocked(minLen, maxLen int) string {
	n := minLen
	if maxLen > minLen {
		n += r.rand.Intn(maxLen - minLen + 1)
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a' + byte(r.rand.Intn(26))
	}
	return string(b)
}

// URLs returns n URLs drawn from a pool of distinct URLs, so duplicates
// occur about n/distinct times each.
func (r *RNG) URLs(n, distinct int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	pool := make([]string, distinct)
	for i := range pool {
		pool[i] = fmt.Sprintf("http://%s.example/%s/%d", r.stringLocked(3, 8), r.stringLocked(0, 12), i)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = pool[r.rand.Intn(distinct)]
	}
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Inverse transform over the cumulative mass.
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}
