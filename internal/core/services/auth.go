package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

func requireOrganizer(p domain.Principal) (domain.Organizer, error) {
	organizer, ok := p.(domain.Organizer)
	if !ok {
		return domain.Organizer{}, fmt.Errorf("organizer role required: %w", domain.ErrUnauthorized)
	}

	return organizer, nil
}

func requireAdministrator(p domain.Principal) error {
	if _, ok := p.(domain.Administrator); !ok {
		return fmt.Errorf("administrator role required: %w", domain.ErrUnauthorized)
	}

	return nil
}

func requireOwner(organizer domain.Organizer, event *domain.Event) error {
	if event.OrganizerID != organizer.ID {
		return fmt.Errorf("event %s belongs to another organizer: %w", event.ID, domain.ErrUnauthorized)
	}

	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
