package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clockBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestDeterministicClock_StartsAtBase(t *testing.T) {
	clock := NewDeterministicClock(clockBase, time.Second)
	assert.Equal(t, clockBase, clock.Current())
}

func TestDeterministicClock_NowAdvancesOneStep(t *testing.T) {
	clock := NewDeterministicClock(clockBase, time.Second)

	// First reading is one step past base
	assert.Equal(t, clockBase.Add(1*time.Second), clock.Now())
	assert.Equal(t, clockBase.Add(1*time.Second), clock.Current())

	// Subsequent readings keep stepping
	assert.Equal(t, clockBase.Add(2*time.Second), clock.Now())
	assert.Equal(t, clockBase.Add(3*time.Second), clock.Now())
	assert.Equal(t, clockBase.Add(3*time.Second), clock.Current())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock(clockBase, time.Minute)

	// Advance clock
	clock.Now()
	clock.Now()
	clock.Now()
	assert.Equal(t, clockBase.Add(3*time.Minute), clock.Current())

	// Reset
	clock.Reset()
	assert.Equal(t, clockBase, clock.Current())

	// First reading after reset is base+step again
	assert.Equal(t, clockBase.Add(1*time.Minute), clock.Now())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock(clockBase, time.Second)
	const numGoroutines = 100
	const callsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make([][]time.Time, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		results[i] = make([]time.Time, callsPerGoroutine)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				results[idx][j] = clock.Now()
			}
		}(i)
	}

	wg.Wait()

	// Collect all readings
	allReadings := make(map[time.Time]bool)
	for i := 0; i < numGoroutines; i++ {
		for j := 0; j < callsPerGoroutine; j++ {
			val := results[i][j]
			require.False(t, allReadings[val], "duplicate reading %v", val)
			allReadings[val] = true
		}
	}

	// Verify every step from 1 to numGoroutines*callsPerGoroutine was handed out
	expectedTotal := numGoroutines * callsPerGoroutine
	assert.Len(t, allReadings, expectedTotal)
	for i := 1; i <= expectedTotal; i++ {
		want := clockBase.Add(time.Duration(i) * time.Second)
		assert.True(t, allReadings[want], "missing reading %v", want)
	}
}

func TestDeterministicClock_Deterministic(t *testing.T) {
	// Run twice and verify same sequence
	clock1 := NewDeterministicClock(clockBase, time.Second)
	clock2 := NewDeterministicClock(clockBase, time.Second)

	for i := 0; i < 100; i++ {
		assert.Equal(t, clock1.Now(), clock2.Now())
	}
}
