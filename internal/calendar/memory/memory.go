// Package memory provides an in-memory calendar fake for tests and for
// running without a configured external calendar.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"shiftplan/internal/calendar"
	"shiftplan/internal/core"
)

var ErrUnavailable = errors.New("calendar unavailable")

type Store struct {
	mu     sync.Mutex
	nextID int
	events map[string]calendar.Event

	// Fail makes every call return ErrUnavailable, simulating a revoked
	// capability.
	Fail bool
}

var _ calendar.EventWriter = (*Store)(nil)

func New() *Store {
	return &Store{nextID: 1, events: make(map[string]calendar.Event)}
}

func (s *Store) CreateEvent(_ context.Context, _ string, assignmentID int64, date string, shift core.Shift) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return "", ErrUnavailable
	}
	ev, err := calendar.BuildEvent(assignmentID, date, shift, nil)
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("mem:%d", s.nextID)
	s.nextID++
	s.events[id] = ev
	return id, nil
}

func (s *Store) UpdateEvent(_ context.Context, _ string, eventID string, assignmentID int64, date string, shift core.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return ErrUnavailable
	}
	if _, ok := s.events[eventID]; !ok {
		return core.ErrNotFound
	}
	ev, err := calendar.BuildEvent(assignmentID, date, shift, nil)
	if err != nil {
		return err
	}
	s.events[eventID] = ev
	return nil
}

func (s *Store) DeleteEvent(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return ErrUnavailable
	}
	delete(s.events, eventID)
	return nil
}

// Event returns the stored payload, for assertions in tests.
func (s *Store) Event(eventID string) (calendar.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	return ev, ok
}

// Len reports how many events exist.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
