package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/srgjo27/ticket_marketplace/internal/core/ports"
	"github.com/srgjo27/ticket_marketplace/internal/platform/metrics"
)

// ResaleService lists, delists and transfers already issued tickets.
// A ticket is listed while its resell price is set.
type ResaleService struct {
	tx      ports.TxManager
	tickets ports.TicketRepository
	retry   retryPolicy
	logger  *slog.Logger
}

func NewResaleService(tx ports.TxManager, tickets ports.TicketRepository, logger *slog.Logger) *ResaleService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ResaleService{
		tx:      tx,
		tickets: tickets,
		retry:   defaultRetryPolicy(),
		logger:  logger,
	}
}

// List puts the ticket on the marketplace. Listing an already listed
// ticket overwrites its price.
func (s *ResaleService) List(ctx context.Context, ticketID uuid.UUID, price *decimal.Decimal, actorID uuid.UUID) (*domain.Ticket, error) {
	if price == nil {
		return nil, domain.ErrResellPriceNeeded
	}

	if price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}

	ticket, err := s.tickets.SetResellPrice(ctx, ticketID, actorID, price)
	if err != nil {
		metrics.TrackResale("list", "failed")
		return nil, err
	}

	metrics.TrackResale("list", "success")
	s.logger.Info("ticket listed for resale", "ticket_id", ticketID, "owner_id", actorID, "price", price.StringFixed(2))

	return ticket, nil
}

// Delist takes the ticket off the marketplace. Delisting a ticket that is
// not listed succeeds and leaves it unchanged.
func (s *ResaleService) Delist(ctx context.Context, ticketID uuid.UUID, actorID uuid.UUID) (*domain.Ticket, error) {
	ticket, err := s.tickets.SetResellPrice(ctx, ticketID, actorID, nil)
	if err != nil {
		metrics.TrackResale("delist", "failed")
		return nil, err
	}

	metrics.TrackResale("delist", "success")
	return ticket, nil
}

// Purchase transfers a listed ticket to buyerID. Of any number of
// concurrent purchases of one ticket exactly one succeeds; the others fail
// with domain.ErrAlreadySold.
func (s *ResaleService) Purchase(ctx context.Context, ticketID uuid.UUID, buyerID uuid.UUID) (*domain.Transfer, error) {
	var transfer *domain.Transfer

	err := s.retry.run(ctx, "resale_purchase", func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(txCtx context.Context) error {
			t, err := s.purchase(txCtx, ticketID, buyerID)
			if err != nil {
				return err
			}

			transfer = t
			return nil
		})
	})
	if err != nil {
		metrics.TrackResale("purchase", purchaseStatus(err))
		return nil, err
	}

	metrics.TrackResale("purchase", "success")
	s.logger.Info("resale ticket purchased",
		"ticket_id", ticketID,
		"seller_id", transfer.SellerID,
		"buyer_id", buyerID,
		"price", transfer.Price.StringFixed(2),
	)

	return transfer, nil
}

func (s *ResaleService) purchase(ctx context.Context, ticketID uuid.UUID, buyerID uuid.UUID) (*domain.Transfer, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if ticket.OwnedBy(buyerID) {
		return nil, domain.ErrCannotBuyOwnTicket
	}

	return s.tickets.Transfer(ctx, ticketID, buyerID)
}

func (s *ResaleService) Marketplace(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	filter.OwnerID = nil
	return s.tickets.ListListings(ctx, filter)
}

func (s *ResaleService) MyListings(ctx context.Context, ownerID uuid.UUID) ([]domain.Listing, error) {
	return s.tickets.ListListings(ctx, domain.ListingFilter{OwnerID: &ownerID})
}

func (s *ResaleService) MyTickets(ctx context.Context, ownerID uuid.UUID) ([]domain.Ticket, error) {
	return s.tickets.ListByOwner(ctx, ownerID)
}

func purchaseStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadySold):
		return "already_sold"
	case errors.Is(err, domain.ErrCannotBuyOwnTicket):
		return "own_ticket"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	}

	return "error"
}
