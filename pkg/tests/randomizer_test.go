package tests_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mm_scanner/pkg/tests"
)

func TestRandomizerWeighted(t *testing.T) {
	rq := require.New(t)
	random := tests.NewSeededRandomizer(42)

	counts := make([]int, 3)
	for range 1000 {
		counts[random.Weighted(0, 1, 3)]++
	}

	rq.Zero(counts[0])
	rq.Greater(counts[2], counts[1])
	rq.Equal(0, random.Weighted())
	rq.Equal(0, random.Weighted(-1, 0))
}

func TestRandomizerDuration(t *testing.T) {
	rq := require.New(t)
	random := tests.NewSeededRandomizer(7)

	for range 100 {
		d := random.Duration(time.Millisecond)
		rq.GreaterOrEqual(d, time.Duration(0))
		rq.Less(d, time.Millisecond)
	}

	rq.Zero(random.Duration(0))
}
