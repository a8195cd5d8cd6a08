package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `event_id, organizer_id, location_id, venue_name, name, description,
	start_date, end_date, minimum_age, categories, status`

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
	INSERT INTO events (` + eventColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		event.ID,
		event.OrganizerID,
		event.LocationID,
		event.VenueName,
		event.Name,
		event.Description,
		event.StartDate,
		event.EndDate,
		event.MinimumAge,
		pq.Array(event.Categories),
		event.Status,
	)
	if err != nil {
		return classify(fmt.Errorf("failed to insert event: %w", err))
	}

	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE event_id = $1`
	return r.get(ctx, query, eventID)
}

func (r *EventRepository) GetForUpdate(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE event_id = $1 FOR UPDATE`
	return r.get(ctx, query, eventID)
}

func (r *EventRepository) get(ctx context.Context, query string, eventID uuid.UUID) (*domain.Event, error) {
	var event domain.Event

	err := conn(ctx, r.db).QueryRowContext(ctx, query, eventID).Scan(
		&event.ID,
		&event.OrganizerID,
		&event.LocationID,
		&event.VenueName,
		&event.Name,
		&event.Description,
		&event.StartDate,
		&event.EndDate,
		&event.MinimumAge,
		pq.Array(&event.Categories),
		&event.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}

		return nil, classify(err)
	}

	return &event, nil
}

func (r *EventRepository) UpdateStatus(ctx context.Context, eventID uuid.UUID, status domain.EventStatus) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE events SET status = $1 WHERE event_id = $2`, status, eventID)
	if err != nil {
		return classify(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

func (r *EventRepository) CountOwnedTickets(ctx context.Context, eventID uuid.UUID) (int, error) {
	query := `
	SELECT COUNT(t.ticket_id)
	FROM tickets t
	JOIN ticket_types tt ON tt.type_id = t.type_id
	WHERE tt.event_id = $1 AND t.owner_id IS NOT NULL
	`

	var count int
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, classify(err)
	}

	return count, nil
}
