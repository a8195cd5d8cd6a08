package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

type TicketTypeRepository struct {
	db *sql.DB
}

func NewTicketTypeRepository(db *sql.DB) *TicketTypeRepository {
	return &TicketTypeRepository{db: db}
}

const ticketTypeColumns = `tt.type_id, tt.event_id, tt.description, tt.max_count, tt.issued_count,
	tt.price, tt.currency, tt.available_from`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicketType(row rowScanner, extra ...any) (*domain.TicketType, error) {
	var tt domain.TicketType

	dest := []any{
		&tt.ID,
		&tt.EventID,
		&tt.Description,
		&tt.MaxCount,
		&tt.IssuedCount,
		&tt.Price,
		&tt.Currency,
		&tt.AvailableFrom,
	}

	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	return &tt, nil
}

func (r *TicketTypeRepository) Create(ctx context.Context, ticketType *domain.TicketType) error {
	query := `
	INSERT INTO ticket_types (type_id, event_id, description, max_count, issued_count, price, currency, available_from)
	VALUES ($1, $2, $3, $4, 0, $5, $6, $7)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		ticketType.ID,
		ticketType.EventID,
		ticketType.Description,
		ticketType.MaxCount,
		ticketType.Price,
		ticketType.Currency,
		ticketType.AvailableFrom,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}

		return classify(fmt.Errorf("failed to insert ticket type: %w", err))
	}

	return nil
}

func (r *TicketTypeRepository) GetByID(ctx context.Context, typeID uuid.UUID) (*domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types tt WHERE tt.type_id = $1`

	tt, err := scanTicketType(conn(ctx, r.db).QueryRowContext(ctx, query, typeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketTypeNotFound
		}

		return nil, classify(err)
	}

	return tt, nil
}

func (r *TicketTypeRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.TicketType, error) {
	query := `
	SELECT ` + ticketTypeColumns + `
	FROM ticket_types tt
	WHERE tt.event_id = $1
	ORDER BY tt.available_from, tt.type_id
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, classify(err)
	}

	defer rows.Close()

	var types []domain.TicketType
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, err
		}

		types = append(types, *tt)
	}

	return types, rows.Err()
}

// GetForSale takes a shared lock on the event row so that a concurrent
// cancellation waits for this transaction, and vice versa.
func (r *TicketTypeRepository) GetForSale(ctx context.Context, typeID uuid.UUID) (*domain.SaleTarget, error) {
	query := `
	SELECT ` + ticketTypeColumns + `, e.status
	FROM ticket_types tt
	JOIN events e ON e.event_id = tt.event_id
	WHERE tt.type_id = $1
	FOR SHARE OF e
	`

	var status domain.EventStatus

	tt, err := scanTicketType(conn(ctx, r.db).QueryRowContext(ctx, query, typeID), &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketTypeNotFound
		}

		return nil, classify(err)
	}

	return &domain.SaleTarget{TicketType: *tt, EventStatus: status}, nil
}

// Reserve is the allocator's only capacity check. The increment and the
// bound are evaluated in one statement; a concurrent reservation on the
// same type waits for the row lock and re-evaluates the bound against the
// committed count.
func (r *TicketTypeRepository) Reserve(ctx context.Context, typeID uuid.UUID, quantity int) (int, error) {
	query := `
	UPDATE ticket_types
	SET issued_count = issued_count + $2
	WHERE type_id = $1 AND issued_count + $2 <= max_count
	RETURNING max_count - issued_count
	`

	var remaining int
	err := conn(ctx, r.db).QueryRowContext(ctx, query, typeID, quantity).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, classify(fmt.Errorf("failed to reserve capacity: %w", err))
	}

	err = conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT max_count - issued_count FROM ticket_types WHERE type_id = $1`, typeID,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrTicketTypeNotFound
		}

		return 0, classify(err)
	}

	return 0, &domain.InsufficientInventoryError{
		TicketTypeID: typeID,
		Requested:    quantity,
		Remaining:    max(remaining, 0),
	}
}

func (r *TicketTypeRepository) Delete(ctx context.Context, typeID uuid.UUID) error {
	query := `
	DELETE FROM ticket_types
	WHERE type_id = $1
		AND issued_count = 0
		AND NOT EXISTS (SELECT 1 FROM tickets WHERE type_id = $1)
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, typeID)
	if err != nil {
		return classify(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	err = conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM ticket_types WHERE type_id = $1)`, typeID,
	).Scan(&exists)
	if err != nil {
		return classify(err)
	}

	if !exists {
		return domain.ErrTicketTypeNotFound
	}

	return domain.ErrTicketsExist
}
