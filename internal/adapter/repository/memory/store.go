// Package memory keeps the marketplace in process. Every transaction holds
// the store lock for its whole duration and is rolled back by restoring a
// snapshot, so all operations are serializable.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

type txKey struct{}

type state struct {
	events      map[uuid.UUID]domain.Event
	ticketTypes map[uuid.UUID]domain.TicketType
	tickets     map[uuid.UUID]domain.Ticket
	ticketSeq   map[uuid.UUID]int64
	carts       map[uuid.UUID]domain.ShoppingCart
	cartOwners  map[uuid.UUID]uuid.UUID
	items       map[uuid.UUID]domain.CartItem
	itemSeq     map[uuid.UUID]int64
	seq         int64
}

func newState() state {
	return state{
		events:      make(map[uuid.UUID]domain.Event),
		ticketTypes: make(map[uuid.UUID]domain.TicketType),
		tickets:     make(map[uuid.UUID]domain.Ticket),
		ticketSeq:   make(map[uuid.UUID]int64),
		carts:       make(map[uuid.UUID]domain.ShoppingCart),
		cartOwners:  make(map[uuid.UUID]uuid.UUID),
		items:       make(map[uuid.UUID]domain.CartItem),
		itemSeq:     make(map[uuid.UUID]int64),
	}
}

// clone copies the maps. Entities are stored by value and pointer fields
// are always replaced, never mutated in place, so a shallow copy is a
// complete snapshot.
func (s state) clone() state {
	return state{
		events:      maps.Clone(s.events),
		ticketTypes: maps.Clone(s.ticketTypes),
		tickets:     maps.Clone(s.tickets),
		ticketSeq:   maps.Clone(s.ticketSeq),
		carts:       maps.Clone(s.carts),
		cartOwners:  maps.Clone(s.cartOwners),
		items:       maps.Clone(s.items),
		itemSeq:     maps.Clone(s.itemSeq),
		seq:         s.seq,
	}
}

func (s *state) next() int64 {
	s.seq++
	return s.seq
}

type Store struct {
	mu    sync.Mutex
	state state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.state = snapshot
		return err
	}

	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// do runs fn against the state, taking the lock unless ctx already
// belongs to a transaction of this store.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.inTx(ctx) {
		return fn(&s.state)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(&s.state)
}

func (s *Store) Events() *EventRepository {
	return &EventRepository{store: s}
}

func (s *Store) TicketTypes() *TicketTypeRepository {
	return &TicketTypeRepository{store: s}
}

func (s *Store) Tickets() *TicketRepository {
	return &TicketRepository{store: s}
}

func (s *Store) Carts() *CartRepository {
	return &CartRepository{store: s}
}
