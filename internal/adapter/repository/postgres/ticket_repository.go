package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

type TicketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `ticket_id, type_id, owner_id, seat, resell_price`

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket domain.Ticket
		owner  uuid.NullUUID
		seat   sql.NullString
		price  decimal.NullDecimal
	)

	if err := row.Scan(&ticket.ID, &ticket.TypeID, &owner, &seat, &price); err != nil {
		return nil, err
	}

	if owner.Valid {
		ticket.OwnerID = &owner.UUID
	}

	if seat.Valid {
		ticket.Seat = &seat.String
	}

	if price.Valid {
		ticket.ResellPrice = &price.Decimal
	}

	return &ticket, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}

	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: *s, Valid: true}
}

func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []domain.Ticket) error {
	query := `
	INSERT INTO tickets (` + ticketColumns + `)
	VALUES ($1, $2, $3, $4, $5)
	`

	stmt, err := conn(ctx, r.db).PrepareContext(ctx, query)
	if err != nil {
		return classify(fmt.Errorf("failed to prepare ticket statement: %w", err))
	}

	defer stmt.Close()

	for _, t := range tickets {
		_, err := stmt.ExecContext(ctx, t.ID, t.TypeID, nullUUID(t.OwnerID), nullString(t.Seat), nullDecimal(t.ResellPrice))
		if err != nil {
			return classify(fmt.Errorf("failed to insert ticket %s: %w", t.ID, err))
		}
	}

	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, ticketID uuid.UUID) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id = $1`

	ticket, err := scanTicket(conn(ctx, r.db).QueryRowContext(ctx, query, ticketID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}

		return nil, classify(err)
	}

	return ticket, nil
}

func (r *TicketRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE owner_id = $1 ORDER BY created_at, ticket_id`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, classify(err)
	}

	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}

		tickets = append(tickets, *ticket)
	}

	return tickets, rows.Err()
}

func (r *TicketRepository) SetResellPrice(ctx context.Context, ticketID, ownerID uuid.UUID, price *decimal.Decimal) (*domain.Ticket, error) {
	query := `
	UPDATE tickets
	SET resell_price = $3
	WHERE ticket_id = $1 AND owner_id = $2
	RETURNING ` + ticketColumns

	ticket, err := scanTicket(conn(ctx, r.db).QueryRowContext(ctx, query, ticketID, ownerID, nullDecimal(price)))
	if err == nil {
		return ticket, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, classify(err)
	}

	exists, err := r.exists(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, domain.ErrTicketNotFound
	}

	return nil, fmt.Errorf("ticket %s is not owned by caller: %w", ticketID, domain.ErrUnauthorized)
}

// Transfer locks the ticket only if it is still listed by someone other
// than the buyer, then moves it. A purchase that lost the race finds no
// row to lock and reports domain.ErrAlreadySold.
func (r *TicketRepository) Transfer(ctx context.Context, ticketID, buyerID uuid.UUID) (*domain.Transfer, error) {
	query := `
	WITH listed AS (
		SELECT ticket_id, owner_id, resell_price
		FROM tickets
		WHERE ticket_id = $1
			AND resell_price IS NOT NULL
			AND owner_id IS DISTINCT FROM $2
		FOR UPDATE
	)
	UPDATE tickets t
	SET owner_id = $2, resell_price = NULL
	FROM listed
	WHERE t.ticket_id = listed.ticket_id
	RETURNING t.type_id, t.seat, listed.owner_id, listed.resell_price
	`

	var (
		seat   sql.NullString
		seller uuid.NullUUID
	)

	transfer := domain.Transfer{}
	transfer.Ticket.ID = ticketID
	transfer.Ticket.OwnerID = &buyerID

	err := conn(ctx, r.db).QueryRowContext(ctx, query, ticketID, buyerID).Scan(
		&transfer.Ticket.TypeID,
		&seat,
		&seller,
		&transfer.Price,
	)
	if err == nil {
		if seat.Valid {
			transfer.Ticket.Seat = &seat.String
		}
		transfer.SellerID = seller.UUID

		return &transfer, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, classify(fmt.Errorf("failed to transfer ticket: %w", err))
	}

	exists, err := r.exists(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, domain.ErrTicketNotFound
	}

	return nil, domain.ErrAlreadySold
}

func (r *TicketRepository) ListListings(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	var (
		where = []string{"t.resell_price IS NOT NULL"}
		args  []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.EventID != nil {
		add("tt.event_id = $%d", *filter.EventID)
	}
	if filter.OwnerID != nil {
		add("t.owner_id = $%d", *filter.OwnerID)
	}
	if filter.MinPrice != nil {
		add("t.resell_price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("t.resell_price <= $%d", *filter.MaxPrice)
	}

	query := `
	SELECT t.ticket_id, tt.event_id, t.owner_id, t.resell_price, tt.price, tt.currency,
		tt.description, e.name, e.start_date, t.seat
	FROM tickets t
	JOIN ticket_types tt ON tt.type_id = t.type_id
	JOIN events e ON e.event_id = tt.event_id
	WHERE ` + strings.Join(where, " AND ") + `
	ORDER BY t.resell_price, t.ticket_id
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}

	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var (
			l    domain.Listing
			seat sql.NullString
		)

		if err := rows.Scan(
			&l.TicketID,
			&l.EventID,
			&l.OwnerID,
			&l.ResellPrice,
			&l.OriginalPrice,
			&l.Currency,
			&l.TicketTypeDescription,
			&l.EventName,
			&l.EventDate,
			&seat,
		); err != nil {
			return nil, err
		}

		if seat.Valid {
			l.Seat = &seat.String
		}

		listings = append(listings, l)
	}

	return listings, rows.Err()
}

func (r *TicketRepository) exists(ctx context.Context, ticketID uuid.UUID) (bool, error) {
	var exists bool

	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE ticket_id = $1)`, ticketID,
	).Scan(&exists)
	if err != nil {
		return false, classify(err)
	}

	return exists, nil
}
