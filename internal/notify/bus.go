// Package notify fans adoption workflow events out to in-process
// subscribers. Publishing never fails the caller: subscriber errors are
// logged and the remaining subscribers still run.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/logging"
)

type EventType string

const (
	AdoptionRequested EventType = "adoption.requested"
	AdoptionAccepted  EventType = "adoption.accepted"
	AdoptionRejected  EventType = "adoption.rejected"
	AdoptionWithdrawn EventType = "adoption.withdrawn"
)

// Event describes one change to an adoption request.
type Event struct {
	Type        EventType          `json:"type"`
	RequestID   primitive.ObjectID `json:"requestId"`
	PetID       primitive.ObjectID `json:"petId"`
	PetName     string             `json:"petName"`
	RequesterID primitive.ObjectID `json:"requesterId"`
	OwnerID     primitive.ObjectID `json:"ownerId"`
	Message     string             `json:"message,omitempty"`
	At          time.Time          `json:"at"`
}

type Handler func(ctx context.Context, e Event) error

// Publisher is what the services depend on.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type subscription struct {
	id      int
	handler Handler
}

// Bus is a synchronous, in-order event fan-out.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID int
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers h and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish calls every subscriber in subscription order.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := b.call(ctx, s.handler, e); err != nil {
			b.logger.ErrorContext(ctx, "event subscriber failed",
				"event", e.Type,
				"request_id", e.RequestID.Hex(),
				logging.Err(err),
			)
		}
	}
}

// call isolates a panicking subscriber from the publisher.
func (b *Bus) call(ctx context.Context, h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return h(ctx, e)
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("subscriber panicked: %v", p.value)
}

// Len is the number of current subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
