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

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

const cartItemColumns = `cart_item_id, cart_id, ticket_type_id, ticket_id, quantity, created_at`

func scanCartItem(row rowScanner) (*domain.CartItem, error) {
	var (
		item       domain.CartItem
		ticketType uuid.NullUUID
		ticket     uuid.NullUUID
	)

	if err := row.Scan(&item.ID, &item.CartID, &ticketType, &ticket, &item.Quantity, &item.CreatedAt); err != nil {
		return nil, err
	}

	if ticketType.Valid {
		item.TicketTypeID = &ticketType.UUID
	}

	if ticket.Valid {
		item.TicketID = &ticket.UUID
	}

	return &item, nil
}

// GetOrCreate relies on the unique customer_id constraint, so concurrent
// first adds by one customer end up sharing a single cart.
func (r *CartRepository) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error) {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
	INSERT INTO shopping_carts (cart_id, customer_id)
	VALUES ($1, $2)
	ON CONFLICT (customer_id) DO NOTHING
	`, uuid.New(), customerID)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to create cart: %w", err))
	}

	return r.GetByCustomer(ctx, customerID)
}

func (r *CartRepository) GetByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error) {
	return r.get(ctx, `SELECT cart_id, customer_id FROM shopping_carts WHERE customer_id = $1`, customerID)
}

// GetByCustomerForUpdate makes a concurrent checkout of the same cart wait
// for this transaction, after which it finds the consumed lines gone.
func (r *CartRepository) GetByCustomerForUpdate(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error) {
	return r.get(ctx, `SELECT cart_id, customer_id FROM shopping_carts WHERE customer_id = $1 FOR UPDATE`, customerID)
}

func (r *CartRepository) get(ctx context.Context, query string, customerID uuid.UUID) (*domain.ShoppingCart, error) {
	var cart domain.ShoppingCart

	err := conn(ctx, r.db).QueryRowContext(ctx, query, customerID).Scan(&cart.ID, &cart.CustomerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}

		return nil, classify(err)
	}

	return &cart, nil
}

func (r *CartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE cart_id = $1 ORDER BY seq`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, classify(err)
	}

	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}

		items = append(items, *item)
	}

	return items, rows.Err()
}

func (r *CartRepository) FindResaleItem(ctx context.Context, cartID, ticketID uuid.UUID) (*domain.CartItem, error) {
	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE cart_id = $1 AND ticket_id = $2`
	return r.findOne(ctx, query, cartID, ticketID)
}

func (r *CartRepository) findOne(ctx context.Context, query string, args ...any) (*domain.CartItem, error) {
	item, err := scanCartItem(conn(ctx, r.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCartItemNotFound
		}

		return nil, classify(err)
	}

	return item, nil
}

func (r *CartRepository) AddItem(ctx context.Context, item *domain.CartItem) error {
	if item.IsResale() {
		return r.addResaleItem(ctx, item)
	}

	// Concurrent first adds of one type race on uq_cart_items_type; the
	// loser merges its quantity into the winner's line.
	query := `
	INSERT INTO cart_items (cart_item_id, cart_id, ticket_type_id, ticket_id, quantity, created_at)
	VALUES ($1, $2, $3, NULL, $4, $5)
	ON CONFLICT (cart_id, ticket_type_id) WHERE ticket_type_id IS NOT NULL
	DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	RETURNING ` + cartItemColumns

	merged, err := scanCartItem(conn(ctx, r.db).QueryRowContext(ctx, query,
		item.ID,
		item.CartID,
		nullUUID(item.TicketTypeID),
		item.Quantity,
		item.CreatedAt,
	))
	if err != nil {
		return classify(fmt.Errorf("failed to insert cart item: %w", err))
	}

	*item = *merged
	return nil
}

func (r *CartRepository) addResaleItem(ctx context.Context, item *domain.CartItem) error {
	query := `
	INSERT INTO cart_items (cart_item_id, cart_id, ticket_type_id, ticket_id, quantity, created_at)
	VALUES ($1, $2, NULL, $3, $4, $5)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		item.ID,
		item.CartID,
		nullUUID(item.TicketID),
		item.Quantity,
		item.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCartItem
		}

		return classify(fmt.Errorf("failed to insert cart item: %w", err))
	}

	return nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_item_id = $1 AND cart_id = $2`, itemID, cartID,
	)
	if err != nil {
		return classify(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrCartItemNotFound
	}

	return nil
}

func (r *CartRepository) ClearItems(ctx context.Context, cartID uuid.UUID, itemIDs []uuid.UUID) error {
	ids := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = id.String()
	}

	result, err := conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND cart_item_id = ANY($2::uuid[])`,
		cartID, pq.Array(ids),
	)
	if err != nil {
		return classify(fmt.Errorf("failed to clear cart items: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected != int64(len(itemIDs)) {
		return domain.ErrCartChanged
	}

	return nil
}
