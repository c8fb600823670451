package presence

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		PresenceTimeout: 60 * time.Second,
		SweepInterval:   30 * time.Second,
	}
}

func testService(now time.Time) *Service {
	svc := NewService(testConfig())
	svc.now = func() time.Time { return now }
	return svc
}

func event(employeeID, floorID int, observedAt time.Time) models.PresenceEvent {
	return models.PresenceEvent{
		EmployeeID: employeeID,
		Name:       "Employee",
		FloorID:    floorID,
		Room:       "North Wing",
		CameraID:   1,
		Confidence: 0.9,
		ObservedAt: observedAt,
	}
}

func TestIngestAndOccupancy(t *testing.T) {
	base := time.Now()
	svc := testService(base)

	svc.Ingest(event(101, 3, base.Add(-10*time.Second)))
	svc.Ingest(event(102, 3, base.Add(-20*time.Second)))
	svc.Ingest(event(201, 4, base.Add(-5*time.Second)))

	snapshot := svc.Occupancy(3)
	require.Equal(t, 2, snapshot.PeopleCount)
	assert.Equal(t, 3, snapshot.FloorID)
	assert.Equal(t, 101, snapshot.People[0].EmployeeID)
	assert.Equal(t, 102, snapshot.People[1].EmployeeID)

	assert.Equal(t, 1, svc.Occupancy(4).PeopleCount)
	assert.Equal(t, 0, svc.Occupancy(9).PeopleCount)
}

func TestIngestLastWriteWins(t *testing.T) {
	base := time.Now()
	svc := testService(base)

	svc.Ingest(event(101, 3, base.Add(-10*time.Second)))

	// Older event delivered late must not roll the entry back.
	stale := event(101, 7, base.Add(-30*time.Second))
	svc.Ingest(stale)

	snapshot := svc.Occupancy(3)
	require.Equal(t, 1, snapshot.PeopleCount)
	assert.Equal(t, 3, snapshot.People[0].FloorID)

	// Equal timestamp is also discarded.
	svc.Ingest(event(101, 7, base.Add(-10*time.Second)))
	assert.Equal(t, 1, svc.Occupancy(3).PeopleCount)
	assert.Equal(t, 0, svc.Occupancy(7).PeopleCount)
}

func TestEmployeeOnSingleFloor(t *testing.T) {
	base := time.Now()
	svc := testService(base)

	svc.Ingest(event(101, 3, base.Add(-20*time.Second)))
	svc.Ingest(event(101, 4, base.Add(-10*time.Second)))

	// Moving floors replaces the entry, never duplicates it.
	assert.Equal(t, 0, svc.Occupancy(3).PeopleCount)
	assert.Equal(t, 1, svc.Occupancy(4).PeopleCount)
	assert.Equal(t, 1, svc.Size())
}

func TestOccupancyExpiresAtQueryTime(t *testing.T) {
	base := time.Now()
	svc := testService(base)

	svc.Ingest(event(101, 3, base.Add(-61*time.Second)))
	svc.Ingest(event(102, 3, base.Add(-59*time.Second)))

	// No sweep has run, but the stale entry is already invisible.
	snapshot := svc.Occupancy(3)
	require.Equal(t, 1, snapshot.PeopleCount)
	assert.Equal(t, 102, snapshot.People[0].EmployeeID)

	// The stale entry is still physically present until a sweep.
	assert.Equal(t, 2, svc.Size())
}

func TestFloors(t *testing.T) {
	base := time.Now()
	svc := testService(base)

	svc.Ingest(event(101, 5, base))
	svc.Ingest(event(102, 2, base))
	svc.Ingest(event(103, 2, base))
	svc.Ingest(event(104, 8, base.Add(-2*time.Minute)))

	assert.Equal(t, []int{2, 5}, svc.Floors())
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	base := time.Now()
	svc := testService(base)

	svc.Ingest(event(101, 3, base.Add(-2*time.Minute)))
	svc.Ingest(event(102, 3, base.Add(-3*time.Minute)))
	svc.Ingest(event(103, 3, base.Add(-30*time.Second)))

	removed := svc.Sweep(base)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, svc.Size())

	// Second sweep is a no-op.
	assert.Equal(t, 0, svc.Sweep(base))
}

func TestSweepKeepsRefreshedEntry(t *testing.T) {
	base := time.Now()
	svc := testService(base)

	svc.Ingest(event(101, 3, base.Add(-2*time.Minute)))

	// Refresh before the sweep runs; the re-check under the write lock
	// must keep the entry.
	svc.Ingest(event(101, 3, base))

	assert.Equal(t, 0, svc.Sweep(base))
	assert.Equal(t, 1, svc.Size())
}

func TestConcurrentIngestAndQuery(t *testing.T) {
	base := time.Now()
	svc := testService(base)

	const workers = 10
	const perWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				svc.Ingest(event(w*perWorker+i, w%3, base))
			}
		}(w)
	}

	// Readers run concurrently with the writers.
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				svc.Occupancy(1)
				svc.Floors()
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, workers*perWorker, svc.Size())
}
