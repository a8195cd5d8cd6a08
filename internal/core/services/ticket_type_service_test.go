package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/srgjo27/ticket_marketplace/internal/core/ports/mocks"
	"github.com/srgjo27/ticket_marketplace/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketTypeService_Create(t *testing.T) {
	f := newFixture(t)
	event, _ := f.onSaleEvent(t, 10)

	vip := f.addType(t, event.ID, 20)

	assert.Equal(t, event.ID, vip.EventID)
	assert.Equal(t, 20, vip.MaxCount)
	assert.Equal(t, 20, vip.Remaining())
	assert.Equal(t, domain.DefaultCurrency, vip.Currency)
}

func TestTicketTypeService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event, _ := f.onSaleEvent(t, 10)

	valid := services.CreateTicketTypeInput{
		EventID:     event.ID,
		Description: "Balcony",
		MaxCount:    5,
		Price:       decimal.NewFromInt(30),
	}

	in := valid
	in.MaxCount = 0
	_, err := f.ticketTypes.Create(ctx, f.organizer, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = valid
	in.Price = decimal.NewFromInt(-5)
	_, err = f.ticketTypes.Create(ctx, f.organizer, in)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	in = valid
	in.EventID = uuid.New()
	_, err = f.ticketTypes.Create(ctx, f.organizer, in)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	_, err = f.ticketTypes.Create(ctx, domain.Organizer{ID: uuid.New()}, valid)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.ticketTypes.Create(ctx, domain.Customer{ID: uuid.New()}, valid)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTicketTypeService_CreateOnCancelledEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event, _ := f.onSaleEvent(t, 10)

	_, err := f.events.Cancel(ctx, f.organizer, event.ID)
	require.NoError(t, err)

	_, err = f.ticketTypes.Create(ctx, f.organizer, services.CreateTicketTypeInput{
		EventID:  event.ID,
		MaxCount: 5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestTicketTypeService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event, tt := f.onSaleEvent(t, 10)
	unused := f.addType(t, event.ID, 5)

	_, err := f.allocator.Allocate(ctx, tt.ID, 1, uuid.New())
	require.NoError(t, err)

	err = f.ticketTypes.Delete(ctx, f.organizer, tt.ID)
	assert.ErrorIs(t, err, domain.ErrTicketsExist)

	err = f.ticketTypes.Delete(ctx, domain.Organizer{ID: uuid.New()}, unused.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, f.ticketTypes.Delete(ctx, f.organizer, unused.ID))

	_, err = f.store.TicketTypes().GetByID(ctx, unused.ID)
	assert.ErrorIs(t, err, domain.ErrTicketTypeNotFound)

	err = f.ticketTypes.Delete(ctx, f.organizer, unused.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTicketTypeService_ListByUnknownEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.ticketTypes.ListByEvent(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestAvailability_CacheHit(t *testing.T) {
	mockTypes := mocks.NewTicketTypeRepository(t)
	mockCache := mocks.NewAvailabilityCache(t)
	service := services.NewTicketTypeService(nil, mockTypes, mockCache, nil)

	ctx := context.Background()
	typeID := uuid.New()

	mockCache.On("GetRemaining", ctx, typeID).Return(7, true, nil).Once()

	remaining, err := service.Availability(ctx, typeID)

	assert.NoError(t, err)
	assert.Equal(t, 7, remaining)
	mockTypes.AssertNotCalled(t, "GetByID", ctx, typeID)
}

func TestAvailability_CacheMissFillsCache(t *testing.T) {
	mockTypes := mocks.NewTicketTypeRepository(t)
	mockCache := mocks.NewAvailabilityCache(t)
	service := services.NewTicketTypeService(nil, mockTypes, mockCache, nil)

	ctx := context.Background()
	typeID := uuid.New()

	mockCache.On("GetRemaining", ctx, typeID).Return(0, false, nil).Once()
	mockTypes.On("GetByID", ctx, typeID).Return(&domain.TicketType{ID: typeID, MaxCount: 10, IssuedCount: 4}, nil).Once()
	mockCache.On("SetRemaining", ctx, typeID, 6).Return(nil).Once()

	remaining, err := service.Availability(ctx, typeID)

	assert.NoError(t, err)
	assert.Equal(t, 6, remaining)
}

func TestAvailability_CacheFailureFallsBackToStore(t *testing.T) {
	mockTypes := mocks.NewTicketTypeRepository(t)
	mockCache := mocks.NewAvailabilityCache(t)
	service := services.NewTicketTypeService(nil, mockTypes, mockCache, nil)

	ctx := context.Background()
	typeID := uuid.New()
	down := errors.New("redis down")

	mockCache.On("GetRemaining", ctx, typeID).Return(0, false, down).Once()
	mockTypes.On("GetByID", ctx, typeID).Return(&domain.TicketType{ID: typeID, MaxCount: 3}, nil).Once()
	mockCache.On("SetRemaining", ctx, typeID, 3).Return(down).Once()

	remaining, err := service.Availability(ctx, typeID)

	assert.NoError(t, err)
	assert.Equal(t, 3, remaining)
}

func TestAvailability_UnknownType(t *testing.T) {
	mockTypes := mocks.NewTicketTypeRepository(t)
	service := services.NewTicketTypeService(nil, mockTypes, nil, nil)

	ctx := context.Background()
	typeID := uuid.New()

	mockTypes.On("GetByID", ctx, typeID).Return(nil, domain.ErrTicketTypeNotFound).Once()

	_, err := service.Availability(ctx, typeID)

	assert.ErrorIs(t, err, domain.ErrTicketTypeNotFound)
}
