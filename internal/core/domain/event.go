package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventCreated   EventStatus = "created"
	EventRejected  EventStatus = "rejected"
	EventCancelled EventStatus = "cancelled"
)

type Event struct {
	ID          uuid.UUID
	OrganizerID uuid.UUID
	LocationID  uuid.UUID
	VenueName   string
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	MinimumAge  int
	Categories  []string
	Status      EventStatus
}

// CanTransition reports whether the lifecycle allows moving from the
// current status to next.
func (s EventStatus) CanTransition(next EventStatus) bool {
	switch s {
	case EventPending:
		return next == EventCreated || next == EventRejected
	case EventCreated:
		return next == EventCancelled
	}

	return false
}

func (e *Event) IsOnSale() bool {
	return e.Status == EventCreated
}

func (e *Event) Transition(next EventStatus) error {
	if !e.Status.CanTransition(next) {
		return &StateTransitionError{From: e.Status, To: next}
	}

	e.Status = next
	return nil
}
