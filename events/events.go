package events

import (
	"context"
	"sync"

	"bankroll/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeStakingIncome    EventType = "staking_income"
	EventTypeRoundDistributed EventType = "round_distributed"
	EventTypeDonation         EventType = "donation"
	EventTypePrizePayout      EventType = "prize_payout"
	EventTypeCommissionSweep  EventType = "commission_sweep"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// StakingIncomeEvent is published when a staking batch nets a positive
// distributable sum.
type StakingIncomeEvent struct {
	Amount     int64
	StakeTotal int64
}

func (e StakingIncomeEvent) Type() EventType {
	return EventTypeStakingIncome
}

// RoundDistributedEvent is published after a round's profit has been shared
// across invested accounts.
type RoundDistributedEvent struct {
	RoundID     int64
	Currency    models.Currency
	RoundProfit int64
	Investors   int
}

func (e RoundDistributedEvent) Type() EventType {
	return EventTypeRoundDistributed
}

// DonationEvent is published when someone donates to the weekly prize pool.
type DonationEvent struct {
	AccountID int64
	Amount    int64
	Currency  models.Currency
	WeekTotal int64
}

func (e DonationEvent) Type() EventType {
	return EventTypeDonation
}

// PrizePayoutEvent is published once per paid-out week.
type PrizePayoutEvent struct {
	Week     int
	Year     int
	Currency models.Currency
	Total    int64
}

func (e PrizePayoutEvent) Type() EventType {
	return EventTypePrizePayout
}

// CommissionSweepEvent is published when a weekly commission run completes.
type CommissionSweepEvent struct {
	Currency models.Currency
	Users    int
	Total    int64
}

func (e CommissionSweepEvent) Type() EventType {
	return EventTypeCommissionSweep
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after the database commit, so a
// rolled-back operation never announces itself.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events outlive the transaction context.
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard is called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
