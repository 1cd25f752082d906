package tests

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Randomizer источник случайности для рандомизированных тестов, безопасен
// для конкурентного использования.
type Randomizer struct {
	mu     sync.Mutex
	random *rand.Rand
}

func NewRandomizer() *Randomizer {
	return NewSeededRandomizer(uint64(time.Now().UnixNano())) //nolint:gosec // for tests
}

func NewSeededRandomizer(seed uint64) *Randomizer {
	return &Randomizer{random: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))} //nolint:gosec // for tests
}

func (r *Randomizer) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.random.Float64()
}

// Duration случайная длительность в [0, maxD).
func (r *Randomizer) Duration(maxD time.Duration) time.Duration {
	if maxD <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return time.Duration(r.random.Int64N(int64(maxD)))
}

// Weighted индекс, выбранный пропорционально весам. Без положительных весов 0.
func (r *Randomizer) Weighted(weights ...float64) int {
	var total float64
	for _, w := range weights {
		total += max(w, 0)
	}

	if total == 0 {
		return 0
	}

	roll := r.Float64() * total

	for i, w := range weights {
		roll -= max(w, 0)
		if roll < 0 {
			return i
		}
	}

	return len(weights) - 1
}
