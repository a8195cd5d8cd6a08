package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInsufficientInventory  = errors.New("insufficient inventory")
	ErrAllocationContention   = errors.New("allocation contention")
	ErrCannotBuyOwnTicket     = errors.New("cannot buy own ticket")
	ErrNotListed              = errors.New("ticket is not listed for resale")
	ErrAlreadySold            = errors.New("ticket already sold")
	ErrSoldTicketsExist       = errors.New("sold tickets exist")
	ErrTicketsExist           = errors.New("tickets exist for ticket type")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidInput           = errors.New("invalid input")

	ErrEventNotFound      = fmt.Errorf("event %w", ErrNotFound)
	ErrTicketTypeNotFound = fmt.Errorf("ticket type %w", ErrNotFound)
	ErrTicketNotFound     = fmt.Errorf("ticket %w", ErrNotFound)
	ErrCartNotFound       = fmt.Errorf("shopping cart %w", ErrNotFound)
	ErrCartItemNotFound   = fmt.Errorf("cart item %w", ErrNotFound)

	ErrInvalidQuantity   = fmt.Errorf("quantity must be at least 1: %w", ErrInvalidInput)
	ErrInvalidPrice      = fmt.Errorf("price must not be negative: %w", ErrInvalidInput)
	ErrResellPriceNeeded = fmt.Errorf("resell price required: %w", ErrInvalidInput)
	ErrInvalidTimeWindow = fmt.Errorf("event start must be before end: %w", ErrInvalidInput)
	ErrEmptyCart         = fmt.Errorf("shopping cart is empty: %w", ErrInvalidInput)
	ErrDuplicateCartItem = fmt.Errorf("ticket already in cart: %w", ErrInvalidInput)
	ErrEventNotOnSale    = fmt.Errorf("event is not open for sale: %w", ErrInvalidStateTransition)
	ErrSalesNotOpen      = fmt.Errorf("ticket sales have not started: %w", ErrInvalidInput)
	ErrCartChanged       = fmt.Errorf("cart changed during checkout: %w", ErrAllocationContention)
)

type StateTransitionError struct {
	From EventStatus
	To   EventStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot move event from %s to %s", e.From, e.To)
}

func (e *StateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

type InsufficientInventoryError struct {
	TicketTypeID uuid.UUID
	Requested    int
	Remaining    int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("ticket type %s: requested %d, remaining %d", e.TicketTypeID, e.Requested, e.Remaining)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}

type SoldTicketsExistError struct {
	EventID uuid.UUID
	Count   int
}

func (e *SoldTicketsExistError) Error() string {
	return fmt.Sprintf("cannot cancel event %s: %d sold tickets must be refunded first", e.EventID, e.Count)
}

func (e *SoldTicketsExistError) Is(target error) bool {
	return target == ErrSoldTicketsExist
}

// CheckoutLineError identifies the cart line that made a checkout fail.
type CheckoutLineError struct {
	ItemID   uuid.UUID
	Position int
	Err      error
}

func (e *CheckoutLineError) Error() string {
	return fmt.Sprintf("cart line %d (%s): %v", e.Position, e.ItemID, e.Err)
}

func (e *CheckoutLineError) Unwrap() error {
	return e.Err
}
