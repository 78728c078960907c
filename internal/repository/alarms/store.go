package alarms

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Store is the ordered collection of scheduled alarms.
// The zero value is ready to use.
type Store struct {
	// mu serialises every access to alarms.
	mu sync.Mutex
	// alarms holds the scheduled alarms in insertion order.
	alarms []domain.Alarm
}

// NewStore creates an empty store.
func NewStore() *Store {
	return new(Store)
}

// Add parses at, validates tone and appends a new alarm.
// Nothing is stored when validation fails.
func (s *Store) Add(at, tone string) (domain.Alarm, error) {
	timeOfDay, err := domain.ParseTimeOfDay(at)
	if err != nil {
		return domain.Alarm{}, err
	}

	a, err := domain.New(timeOfDay, tone)
	if err != nil {
		return domain.Alarm{}, err
	}

	s.Insert(a)

	return a, nil
}

// Insert appends an already validated alarm.
func (s *Store) Insert(a domain.Alarm) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alarms = append(s.alarms, a)
}

// Remove deletes the first alarm with exactly this time and tone.
func (s *Store) Remove(at domain.TimeOfDay, tone string) (domain.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.alarms, func(a domain.Alarm) bool { return a.Matches(at, tone) })
	if i < 0 {
		return domain.Alarm{}, fmt.Errorf("%w: %s with tone %s", domain.ErrNotFound, at, tone)
	}

	return s.removeAt(i), nil
}

// Delete removes the alarm with the given identifier.
func (s *Store) Delete(id uuid.UUID) (domain.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.alarms, func(a domain.Alarm) bool { return a.ID == id })
	if i < 0 {
		return domain.Alarm{}, fmt.Errorf("%w: id %s", domain.ErrNotFound, id)
	}

	return s.removeAt(i), nil
}

// Snapshot returns a copy of the alarms in insertion order.
func (s *Store) Snapshot() []domain.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.alarms)
}

// Due returns the alarms scheduled exactly at now. They stay in the store;
// the caller removes what it fires.
func (s *Store) Due(now domain.TimeOfDay) []domain.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []domain.Alarm

	for _, a := range s.alarms {
		if a.Time == now {
			due = append(due, a)
		}
	}

	return due
}

// Len returns the number of scheduled alarms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.alarms)
}

// removeAt must be called with mu held.
func (s *Store) removeAt(i int) domain.Alarm {
	removed := s.alarms[i]
	s.alarms = slices.Delete(s.alarms, i, i+1)

	return removed
}
