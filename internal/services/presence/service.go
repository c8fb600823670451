package presence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/models"
)

// Service is the authoritative "who is where, as of when" registry.
// It is written by every camera's face pipeline and read by occupancy
// queries and the periodic sweep, all behind one RWMutex. Nothing
// outside this package touches the backing map.
type Service struct {
	cfg *config.Config

	mu      sync.RWMutex
	entries map[int]models.PresenceEntry // keyed by employee ID

	// Clock injection for tests
	now func() time.Time
}

// NewService creates a new presence tracking service
func NewService(cfg *config.Config) *Service {
	s := &Service{
		cfg:     cfg,
		entries: make(map[int]models.PresenceEntry),
		now:     time.Now,
	}

	log.Info().
		Dur("presence_timeout", cfg.PresenceTimeout).
		Dur("sweep_interval", cfg.SweepInterval).
		Msg("Presence tracking service initialized")

	return s
}

// Ingest upserts the registry entry for the event's employee.
// Last-write-wins by event timestamp: asynchronous detector dispatch can
// reorder delivery, so an event older than the stored entry is discarded.
func (s *Service) Ingest(event models.PresenceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[event.EmployeeID]; ok {
		if !event.ObservedAt.After(existing.LastSeen) {
			return
		}
	}

	s.entries[event.EmployeeID] = models.PresenceEntry{
		EmployeeID: event.EmployeeID,
		Name:       event.Name,
		FloorID:    event.FloorID,
		Room:       event.Room,
		CameraID:   event.CameraID,
		Confidence: event.Confidence,
		LastSeen:   event.ObservedAt,
	}
}

// Occupancy returns everyone currently on the floor. Staleness is
// enforced here at query time, independent of when the sweep last ran:
// an entry older than the presence timeout is never returned even if
// it is still physically in the map.
func (s *Service) Occupancy(floorID int) models.OccupancySnapshot {
	now := s.now()

	s.mu.RLock()
	people := make([]models.PresenceEntry, 0, 8)
	for _, entry := range s.entries {
		if entry.FloorID != floorID {
			continue
		}
		if now.Sub(entry.LastSeen) > s.cfg.PresenceTimeout {
			continue
		}
		people = append(people, entry)
	}
	s.mu.RUnlock()

	sort.Slice(people, func(i, j int) bool {
		return people[i].EmployeeID < people[j].EmployeeID
	})

	return models.OccupancySnapshot{
		FloorID:     floorID,
		PeopleCount: len(people),
		People:      people,
	}
}

// Floors returns the IDs of all floors with at least one live entry.
func (s *Service) Floors() []int {
	now := s.now()

	s.mu.RLock()
	seen := make(map[int]struct{})
	for _, entry := range s.entries {
		if now.Sub(entry.LastSeen) > s.cfg.PresenceTimeout {
			continue
		}
		seen[entry.FloorID] = struct{}{}
	}
	s.mu.RUnlock()

	floors := make([]int, 0, len(seen))
	for floorID := range seen {
		floors = append(floors, floorID)
	}
	sort.Ints(floors)
	return floors
}

// Sweep physically removes expired entries to bound memory. Victim keys
// are collected under the read lock first and deleted under the write
// lock afterwards, so the map is never mutated while being iterated.
func (s *Service) Sweep(now time.Time) int {
	s.mu.RLock()
	victims := make([]int, 0)
	for employeeID, entry := range s.entries {
		if now.Sub(entry.LastSeen) > s.cfg.PresenceTimeout {
			victims = append(victims, employeeID)
		}
	}
	s.mu.RUnlock()

	if len(victims) == 0 {
		return 0
	}

	s.mu.Lock()
	removed := 0
	for _, employeeID := range victims {
		// Re-check: the entry may have been refreshed between locks.
		entry, ok := s.entries[employeeID]
		if !ok || now.Sub(entry.LastSeen) <= s.cfg.PresenceTimeout {
			continue
		}
		delete(s.entries, employeeID)
		removed++

		log.Info().
			Int("employee_id", employeeID).
			Int("floor_id", entry.FloorID).
			Time("last_seen", entry.LastSeen).
			Msg("Employee left (presence timeout)")
	}
	s.mu.Unlock()

	return removed
}

// Run sweeps the registry on a fixed interval until the context ends.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	log.Debug().Msg("Presence sweep loop started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Presence sweep loop stopped")
			return
		case <-ticker.C:
			if removed := s.Sweep(s.now()); removed > 0 {
				log.Debug().Int("removed", removed).Msg("Presence sweep removed stale entries")
			}
		}
	}
}

// Size returns the number of entries currently held, expired or not.
func (s *Service) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
