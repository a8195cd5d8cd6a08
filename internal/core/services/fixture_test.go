package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/ticket_marketplace/internal/adapter/repository/memory"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/srgjo27/ticket_marketplace/internal/core/ports"
	"github.com/srgjo27/ticket_marketplace/internal/core/services"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []ports.TicketConfirmation
}

func (n *recordingNotifier) SendTicketConfirmation(_ context.Context, c ports.TicketConfirmation) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, c)
	return nil
}

func (n *recordingNotifier) confirmations() []ports.TicketConfirmation {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]ports.TicketConfirmation(nil), n.sent...)
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	store       *memory.Store
	allocator   *services.Allocator
	resale      *services.ResaleService
	events      *services.EventService
	ticketTypes *services.TicketTypeService
	carts       *services.CartService
	notifier    *recordingNotifier
	organizer   domain.Organizer
	admin       domain.Administrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	notifier := &recordingNotifier{}

	allocator := services.NewAllocator(store, store.TicketTypes(), store.Tickets(), nil, nil,
		services.WithRetryDelay(0))
	resale := services.NewResaleService(store, store.Tickets(), nil)

	return &fixture{
		store:       store,
		allocator:   allocator,
		resale:      resale,
		events:      services.NewEventService(store, store.Events(), store.TicketTypes(), nil),
		ticketTypes: services.NewTicketTypeService(store.Events(), store.TicketTypes(), nil, nil),
		carts: services.NewCartService(store, store.Carts(), store.TicketTypes(), store.Tickets(), store.Events(),
			allocator, resale, notifier, nil),
		notifier:  notifier,
		organizer: domain.Organizer{ID: uuid.New(), Email: "org@example.com", Name: "Org"},
		admin:     domain.Administrator{ID: uuid.New(), Email: "admin@example.com"},
	}
}

func eventInput(totalTickets int) services.CreateEventInput {
	start := time.Now().Add(7 * 24 * time.Hour)

	return services.CreateEventInput{
		LocationID:          uuid.New(),
		VenueName:           "Main Hall",
		Name:                "Spring Concert",
		StartDate:           start,
		EndDate:             start.Add(3 * time.Hour),
		Categories:          []string{"music"},
		TotalTickets:        totalTickets,
		StandardTicketPrice: decimal.NewFromInt(50),
		TicketSalesStart:    time.Now().Add(-time.Hour),
	}
}

// pendingEvent creates an event awaiting approval with its standard type.
func (f *fixture) pendingEvent(t *testing.T, totalTickets int) (*domain.Event, *domain.TicketType) {
	t.Helper()

	event, ticketType, err := f.events.Create(context.Background(), f.organizer, eventInput(totalTickets))
	require.NoError(t, err)

	return event, ticketType
}

// onSaleEvent creates and authorizes an event.
func (f *fixture) onSaleEvent(t *testing.T, totalTickets int) (*domain.Event, *domain.TicketType) {
	t.Helper()

	event, ticketType := f.pendingEvent(t, totalTickets)
	event, err := f.events.Authorize(context.Background(), f.admin, event.ID)
	require.NoError(t, err)

	return event, ticketType
}

func (f *fixture) addType(t *testing.T, eventID uuid.UUID, maxCount int) *domain.TicketType {
	t.Helper()

	ticketType, err := f.ticketTypes.Create(context.Background(), f.organizer, services.CreateTicketTypeInput{
		EventID:     eventID,
		Description: "VIP",
		MaxCount:    maxCount,
		Price:       decimal.NewFromInt(120),
	})
	require.NoError(t, err)

	return ticketType
}

// listedTicket issues one ticket to a new seller and lists it at price.
func (f *fixture) listedTicket(t *testing.T, typeID uuid.UUID, price int64) (domain.Ticket, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	seller := uuid.New()
	issued, err := f.allocator.Allocate(ctx, typeID, 1, seller)
	require.NoError(t, err)

	p := decimal.NewFromInt(price)
	ticket, err := f.resale.List(ctx, issued[0].ID, &p, seller)
	require.NoError(t, err)

	return *ticket, seller
}

func (f *fixture) issuedCount(t *testing.T, typeID uuid.UUID) int {
	t.Helper()

	tt, err := f.store.TicketTypes().GetByID(context.Background(), typeID)
	require.NoError(t, err)

	return tt.IssuedCount
}

// race runs fn n times concurrently and returns the errors in call order.
func race(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}

	close(start)
	wg.Wait()

	return errs
}

func countNil(errs []error) int {
	n := 0
	for _, err := range errs {
		if err == nil {
			n++
		}
	}
	return n
}

func allMatch(errs []error, target error) bool {
	for _, err := range errs {
		if err != nil && !errors.Is(err, target) {
			return false
		}
	}
	return true
}
