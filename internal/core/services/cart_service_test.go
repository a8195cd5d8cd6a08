package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/srgjo27/ticket_marketplace/internal/core/ports"
	"github.com/srgjo27/ticket_marketplace/internal/core/ports/mocks"
	"github.com/srgjo27/ticket_marketplace/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var buyerContact = domain.BuyerContact{Email: "buyer@example.com", Name: "Buyer"}

func TestCart_GetWithoutCartIsEmpty(t *testing.T) {
	f := newFixture(t)
	customer := uuid.New()

	cart, err := f.carts.Get(context.Background(), customer)

	require.NoError(t, err)
	assert.Equal(t, customer, cart.CustomerID)
	assert.Empty(t, cart.Items)
}

func TestCart_PrimaryItemsMergeByType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tt := f.onSaleEvent(t, 10)
	customer := uuid.New()

	first, err := f.carts.AddPrimaryItem(ctx, customer, tt.ID, 2)
	require.NoError(t, err)

	merged, err := f.carts.AddPrimaryItem(ctx, customer, tt.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 5, merged.Quantity)

	cart, err := f.carts.Get(ctx, customer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 0, f.issuedCount(t, tt.ID))
}

func TestCart_AddPrimaryItemValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tt := f.onSaleEvent(t, 10)

	_, err := f.carts.AddPrimaryItem(ctx, uuid.New(), tt.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.carts.AddPrimaryItem(ctx, uuid.New(), uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrTicketTypeNotFound)
}

func TestCart_AddResaleItemValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tt := f.onSaleEvent(t, 10)
	customer := uuid.New()

	listed, seller := f.listedTicket(t, tt.ID, 40)

	_, err := f.carts.AddResaleItem(ctx, seller, listed.ID)
	assert.ErrorIs(t, err, domain.ErrCannotBuyOwnTicket)

	owned, err := f.allocator.Allocate(ctx, tt.ID, 1, uuid.New())
	require.NoError(t, err)
	_, err = f.carts.AddResaleItem(ctx, customer, owned[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotListed)

	_, err = f.carts.AddResaleItem(ctx, customer, uuid.New())
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)

	item, err := f.carts.AddResaleItem(ctx, customer, listed.ID)
	require.NoError(t, err)
	assert.True(t, item.IsResale())
	assert.Equal(t, 1, item.Quantity)

	_, err = f.carts.AddResaleItem(ctx, customer, listed.ID)
	assert.ErrorIs(t, err, domain.ErrDuplicateCartItem)
}

func TestCart_RemoveItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tt := f.onSaleEvent(t, 10)
	customer := uuid.New()

	item, err := f.carts.AddPrimaryItem(ctx, customer, tt.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.carts.RemoveItem(ctx, customer, item.ID))

	err = f.carts.RemoveItem(ctx, customer, item.ID)
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)

	err = f.carts.RemoveItem(ctx, uuid.New(), item.ID)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCheckout_IssuesTransfersAndClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event, tt := f.onSaleEvent(t, 10)
	listed, seller := f.listedTicket(t, tt.ID, 35)
	customer := uuid.New()

	_, err := f.carts.AddPrimaryItem(ctx, customer, tt.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.AddResaleItem(ctx, customer, listed.ID)
	require.NoError(t, err)

	result, err := f.carts.Checkout(ctx, customer, buyerContact)
	require.NoError(t, err)

	assert.Len(t, result.Issued, 2)
	require.Len(t, result.Transfers, 1)
	assert.Equal(t, seller, result.Transfers[0].SellerID)
	assert.True(t, result.Transfers[0].Ticket.OwnedBy(customer))

	owned, err := f.resale.MyTickets(ctx, customer)
	require.NoError(t, err)
	assert.Len(t, owned, 3)
	assert.Equal(t, 3, f.issuedCount(t, tt.ID))

	cart, err := f.carts.Get(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	f.carts.WaitNotifications()
	sent := f.notifier.confirmations()
	require.Len(t, sent, 3)

	resales := 0
	for _, c := range sent {
		assert.Equal(t, buyerContact, c.To)
		assert.Equal(t, event.Name, c.EventName)
		assert.Equal(t, event.VenueName, c.Venue)
		if c.Resale {
			resales++
			assert.Equal(t, listed.ID, c.TicketID)
		}
	}
	assert.Equal(t, 1, resales)
}

func TestCheckout_FailingLineRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event, tt := f.onSaleEvent(t, 10)
	small := f.addType(t, event.ID, 2)
	listed, seller := f.listedTicket(t, tt.ID, 35)
	customer := uuid.New()

	_, err := f.carts.AddPrimaryItem(ctx, customer, tt.ID, 1)
	require.NoError(t, err)
	_, err = f.carts.AddResaleItem(ctx, customer, listed.ID)
	require.NoError(t, err)
	bad, err := f.carts.AddPrimaryItem(ctx, customer, small.ID, 3)
	require.NoError(t, err)

	_, err = f.carts.Checkout(ctx, customer, buyerContact)

	var lineErr *domain.CheckoutLineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, bad.ID, lineErr.ItemID)
	assert.Equal(t, 3, lineErr.Position)
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)

	assert.Equal(t, 1, f.issuedCount(t, tt.ID))
	assert.Equal(t, 0, f.issuedCount(t, small.ID))

	stored, err := f.store.Tickets().GetByID(ctx, listed.ID)
	require.NoError(t, err)
	assert.True(t, stored.OwnedBy(seller))
	assert.True(t, stored.IsListed())

	cart, err := f.carts.Get(ctx, customer)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 3)

	f.carts.WaitNotifications()
	assert.Empty(t, f.notifier.confirmations())
}

func TestCheckout_LastTicketGoesToOneCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tt := f.onSaleEvent(t, 1)

	customers := []uuid.UUID{uuid.New(), uuid.New()}
	for _, c := range customers {
		_, err := f.carts.AddPrimaryItem(ctx, c, tt.ID, 1)
		require.NoError(t, err)
	}

	errs := race(len(customers), func(i int) error {
		_, err := f.carts.Checkout(context.Background(), customers[i], buyerContact)
		return err
	})

	assert.Equal(t, 1, countNil(errs))
	assert.True(t, allMatch(errs, domain.ErrInsufficientInventory))

	remaining, err := f.ticketTypes.Availability(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	f.carts.WaitNotifications()
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tt := f.onSaleEvent(t, 10)
	customer := uuid.New()

	_, err := f.carts.Checkout(ctx, customer, buyerContact)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	item, err := f.carts.AddPrimaryItem(ctx, customer, tt.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.carts.RemoveItem(ctx, customer, item.ID))

	_, err = f.carts.Checkout(ctx, customer, buyerContact)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCheckout_NotificationFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tt := f.onSaleEvent(t, 10)
	customer := uuid.New()

	notifier := mocks.NewNotifier(t)
	notifier.On("SendTicketConfirmation", mock.Anything, mock.MatchedBy(func(c ports.TicketConfirmation) bool {
		return c.To == buyerContact && !c.Resale
	})).Return(errors.New("smtp unavailable")).Times(2)

	carts := services.NewCartService(f.store, f.store.Carts(), f.store.TicketTypes(), f.store.Tickets(), f.store.Events(),
		f.allocator, f.resale, notifier, nil)

	_, err := carts.AddPrimaryItem(ctx, customer, tt.ID, 2)
	require.NoError(t, err)

	result, err := carts.Checkout(ctx, customer, buyerContact)
	require.NoError(t, err)
	assert.Len(t, result.Issued, 2)

	carts.WaitNotifications()
}

func TestCheckout_SkipsNotificationsWithoutEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tt := f.onSaleEvent(t, 10)
	customer := uuid.New()

	_, err := f.carts.AddPrimaryItem(ctx, customer, tt.ID, 1)
	require.NoError(t, err)

	_, err = f.carts.Checkout(ctx, customer, domain.BuyerContact{})
	require.NoError(t, err)

	f.carts.WaitNotifications()
	assert.Empty(t, f.notifier.confirmations())
}

func TestCart_ConcurrentAddsMergeIntoOneLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tt := f.onSaleEvent(t, 10)
	customer := uuid.New()

	errs := race(8, func(int) error {
		_, err := f.carts.AddPrimaryItem(context.Background(), customer, tt.ID, 1)
		return err
	})
	assert.Equal(t, 8, countNil(errs))

	cart, err := f.carts.Get(ctx, customer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 8, cart.Items[0].Quantity)
}

func TestCheckout_ConcurrentCheckoutsConsumeCartOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tt := f.onSaleEvent(t, 10)
	customer := uuid.New()

	_, err := f.carts.AddPrimaryItem(ctx, customer, tt.ID, 2)
	require.NoError(t, err)

	errs := race(2, func(int) error {
		_, err := f.carts.Checkout(context.Background(), customer, buyerContact)
		return err
	})

	assert.Equal(t, 1, countNil(errs))
	assert.True(t, allMatch(errs, domain.ErrEmptyCart))
	assert.Equal(t, 2, f.issuedCount(t, tt.ID))

	f.carts.WaitNotifications()
}

type releasesKey struct{}

// rowLockTx gives each transaction a list of row locks that are released
// when it ends, the way PostgreSQL holds FOR UPDATE locks until commit.
type rowLockTx struct{}

func (rowLockTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(releasesKey{}).(*[]func()); ok {
		return fn(ctx)
	}

	var releases []func()
	err := fn(context.WithValue(ctx, releasesKey{}, &releases))
	for _, release := range releases {
		release()
	}

	return err
}

// lockingCarts locks a customer's cart row in GetByCustomerForUpdate. Its
// first ListItems call waits until two checkouts have asked for the lock,
// so without the lock both would read the same lines.
type lockingCarts struct {
	ports.CartRepository

	mu        sync.Mutex
	rows      map[uuid.UUID]*sync.Mutex
	lockCalls atomic.Int32
	listCalls atomic.Int32
}

func (c *lockingCarts) GetByCustomerForUpdate(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error) {
	c.mu.Lock()
	row, ok := c.rows[customerID]
	if !ok {
		row = &sync.Mutex{}
		c.rows[customerID] = row
	}
	c.mu.Unlock()

	c.lockCalls.Add(1)
	row.Lock()
	if releases, ok := ctx.Value(releasesKey{}).(*[]func()); ok {
		*releases = append(*releases, row.Unlock)
	} else {
		row.Unlock()
	}

	return c.CartRepository.GetByCustomerForUpdate(ctx, customerID)
}

func (c *lockingCarts) ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	if c.listCalls.Add(1) == 1 {
		deadline := time.Now().Add(2 * time.Second)
		for c.lockCalls.Load() < 2 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
	}

	return c.CartRepository.ListItems(ctx, cartID)
}

func TestCheckout_CartRowLockSerializesCheckouts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tt := f.onSaleEvent(t, 10)
	customer := uuid.New()

	carts := &lockingCarts{CartRepository: f.store.Carts(), rows: make(map[uuid.UUID]*sync.Mutex)}
	svc := services.NewCartService(rowLockTx{}, carts, f.store.TicketTypes(), f.store.Tickets(), f.store.Events(),
		f.allocator, f.resale, nil, nil)

	_, err := svc.AddPrimaryItem(ctx, customer, tt.ID, 2)
	require.NoError(t, err)

	errs := race(2, func(int) error {
		_, err := svc.Checkout(context.Background(), customer, buyerContact)
		return err
	})

	assert.Equal(t, 1, countNil(errs))
	assert.True(t, allMatch(errs, domain.ErrEmptyCart))
	assert.Equal(t, int32(2), carts.lockCalls.Load())
	assert.Equal(t, 2, f.issuedCount(t, tt.ID))

	owned, err := f.resale.MyTickets(ctx, customer)
	require.NoError(t, err)
	assert.Len(t, owned, 2)
}
