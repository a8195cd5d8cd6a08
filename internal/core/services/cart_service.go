package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/srgjo27/ticket_marketplace/internal/core/ports"
	"github.com/srgjo27/ticket_marketplace/internal/platform/metrics"
)

const notifyTimeout = 30 * time.Second

type CartService struct {
	tx          ports.TxManager
	carts       ports.CartRepository
	ticketTypes ports.TicketTypeRepository
	tickets     ports.TicketRepository
	events      ports.EventRepository
	allocator   *Allocator
	resale      *ResaleService
	notifier    ports.Notifier
	retry       retryPolicy
	logger      *slog.Logger

	pending sync.WaitGroup
}

func NewCartService(
	tx ports.TxManager,
	carts ports.CartRepository,
	ticketTypes ports.TicketTypeRepository,
	tickets ports.TicketRepository,
	events ports.EventRepository,
	allocator *Allocator,
	resale *ResaleService,
	notifier ports.Notifier,
	logger *slog.Logger,
) *CartService {
	if logger == nil {
		logger = slog.Default()
	}

	return &CartService{
		tx:          tx,
		carts:       carts,
		ticketTypes: ticketTypes,
		tickets:     tickets,
		events:      events,
		allocator:   allocator,
		resale:      resale,
		notifier:    notifier,
		retry:       allocator.retry,
		logger:      logger,
	}
}

// Get returns the customer's cart. A customer without a cart gets an empty one.
func (s *CartService) Get(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error) {
	cart, err := s.carts.GetByCustomer(ctx, customerID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return &domain.ShoppingCart{CustomerID: customerID}, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := s.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	cart.Items = items
	return cart, nil
}

// AddPrimaryItem adds quantity tickets of a type, merging into an existing
// line for the same type.
func (s *CartService) AddPrimaryItem(ctx context.Context, customerID, ticketTypeID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	if _, err := s.ticketTypes.GetByID(ctx, ticketTypeID); err != nil {
		return nil, err
	}

	var item *domain.CartItem

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		cart, err := s.carts.GetOrCreate(txCtx, customerID)
		if err != nil {
			return err
		}

		added := domain.NewPrimaryItem(cart.ID, ticketTypeID, quantity)
		if err := s.carts.AddItem(txCtx, &added); err != nil {
			return err
		}

		item = &added
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cart item added", "customer_id", customerID, "ticket_type_id", ticketTypeID, "quantity", item.Quantity)

	return item, nil
}

// AddResaleItem puts one specific listed ticket into the cart.
func (s *CartService) AddResaleItem(ctx context.Context, customerID, ticketID uuid.UUID) (*domain.CartItem, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if ticket.OwnedBy(customerID) {
		return nil, domain.ErrCannotBuyOwnTicket
	}

	if !ticket.IsListed() {
		return nil, domain.ErrNotListed
	}

	var item *domain.CartItem

	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		cart, err := s.carts.GetOrCreate(txCtx, customerID)
		if err != nil {
			return err
		}

		existing, err := s.carts.FindResaleItem(txCtx, cart.ID, ticketID)
		if err != nil && !errors.Is(err, domain.ErrCartItemNotFound) {
			return err
		}

		if existing != nil {
			return domain.ErrDuplicateCartItem
		}

		added := domain.NewResaleItem(cart.ID, ticketID)
		if err := s.carts.AddItem(txCtx, &added); err != nil {
			return err
		}

		item = &added
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) error {
	cart, err := s.carts.GetByCustomer(ctx, customerID)
	if err != nil {
		return err
	}

	if err := s.carts.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return err
	}

	s.logger.Info("cart item removed", "customer_id", customerID, "cart_item_id", itemID)
	return nil
}

// Checkout turns every cart line into tickets inside one transaction.
// Lines are processed in insertion order; the first failing line aborts
// the checkout and leaves both the cart and the inventory untouched.
// Confirmations are sent after commit and never fail the checkout.
func (s *CartService) Checkout(ctx context.Context, customerID uuid.UUID, contact domain.BuyerContact) (*domain.CheckoutResult, error) {
	start := time.Now()

	var result *domain.CheckoutResult

	err := s.retry.run(ctx, "checkout", func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(txCtx context.Context) error {
			r, err := s.checkout(txCtx, customerID)
			if err != nil {
				return err
			}

			result = r
			return nil
		})
	})
	if err != nil {
		metrics.TrackCheckout("failed", time.Since(start))
		s.logger.Warn("checkout failed", "customer_id", customerID, "error", err)
		return nil, err
	}

	metrics.TrackCheckout("success", time.Since(start))
	if len(result.Issued) > 0 {
		metrics.TrackAllocation("success", len(result.Issued))
	}
	for range result.Transfers {
		metrics.TrackResale("purchase", "success")
	}

	s.logger.Info("checkout completed",
		"customer_id", customerID,
		"issued", len(result.Issued),
		"transferred", len(result.Transfers),
	)

	typeIDs := make([]uuid.UUID, 0, len(result.Issued))
	for _, t := range result.Issued {
		typeIDs = append(typeIDs, t.TypeID)
	}
	s.allocator.invalidate(ctx, uniqueIDs(typeIDs)...)

	s.dispatchConfirmations(ctx, result, contact)

	return result, nil
}

func (s *CartService) checkout(ctx context.Context, customerID uuid.UUID) (*domain.CheckoutResult, error) {
	cart, err := s.carts.GetByCustomerForUpdate(ctx, customerID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil, domain.ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}

	items, err := s.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	result := &domain.CheckoutResult{CustomerID: customerID}
	consumed := make([]uuid.UUID, 0, len(items))

	for i, item := range items {
		if item.IsResale() {
			transfer, err := s.resale.purchase(ctx, *item.TicketID, customerID)
			if err != nil {
				return nil, &domain.CheckoutLineError{ItemID: item.ID, Position: i + 1, Err: err}
			}

			result.Transfers = append(result.Transfers, *transfer)
		} else {
			issued, err := s.allocator.allocate(ctx, *item.TicketTypeID, item.Quantity, customerID)
			if err != nil {
				return nil, &domain.CheckoutLineError{ItemID: item.ID, Position: i + 1, Err: err}
			}

			result.Issued = append(result.Issued, issued...)
		}

		consumed = append(consumed, item.ID)
	}

	if err := s.carts.ClearItems(ctx, cart.ID, consumed); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	return result, nil
}

func (s *CartService) dispatchConfirmations(ctx context.Context, result *domain.CheckoutResult, contact domain.BuyerContact) {
	if s.notifier == nil || contact.Email == "" {
		return
	}

	issued := make(map[uuid.UUID]bool, len(result.Issued))
	for _, t := range result.Issued {
		issued[t.ID] = true
	}

	tickets := result.Tickets()
	notifyCtx := context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(notifyCtx, notifyTimeout)
		defer cancel()

		events := make(map[uuid.UUID]*domain.Event)
		for _, ticket := range tickets {
			confirmation, err := s.confirmationFor(ctx, ticket, events)
			if err == nil {
				confirmation.To = contact
				confirmation.Resale = !issued[ticket.ID]
				err = s.notifier.SendTicketConfirmation(ctx, confirmation)
			}

			if err != nil {
				metrics.TrackNotificationFailure()
				s.logger.Error("failed to send ticket confirmation",
					"ticket_id", ticket.ID,
					"email", contact.Email,
					"error", err,
				)
			}
		}
	}()
}

func (s *CartService) confirmationFor(ctx context.Context, ticket domain.Ticket, events map[uuid.UUID]*domain.Event) (ports.TicketConfirmation, error) {
	event, ok := events[ticket.TypeID]
	if !ok {
		ticketType, err := s.ticketTypes.GetByID(ctx, ticket.TypeID)
		if err != nil {
			return ports.TicketConfirmation{}, err
		}

		event, err = s.events.GetByID(ctx, ticketType.EventID)
		if err != nil {
			return ports.TicketConfirmation{}, err
		}

		events[ticket.TypeID] = event
	}

	return ports.TicketConfirmation{
		TicketID:  ticket.ID,
		EventName: event.Name,
		EventDate: event.StartDate,
		Venue:     event.VenueName,
		Seat:      ticket.Seat,
	}, nil
}

// WaitNotifications blocks until confirmations dispatched so far are done.
func (s *CartService) WaitNotifications() {
	s.pending.Wait()
}
