// Package event fans client-side notifications out to in-process subscribers.
package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ssbags/storefront/internal/domain"
	"github.com/ssbags/storefront/pkg/logger"
)

// Event types.
const (
	TypeCartChanged = "cart.changed"
	TypeCartCleared = "cart.cleared"
	TypeNotice      = "notice"
)

// Notice levels.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelError   = "error"
)

// Event is one notification. Data holds a CartChangedData or NoticeData.
type Event struct {
	ID            string
	Type          string
	Timestamp     time.Time
	CorrelationID string
	Data          any
}

// CartChangedData is the payload of a cart.changed event.
type CartChangedData struct {
	Items     domain.Cart
	ItemCount int
	Totals    domain.Totals
}

// NoticeData is the payload of a notice event.
type NoticeData struct {
	Level   string
	Message string
}

// Handler receives published events.
type Handler func(ctx context.Context, e Event)

// Publisher delivers events synchronously to subscribers in subscription
// order. A nil *Publisher drops everything.
type Publisher struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *slog.Logger
}

// NewPublisher creates a publisher with no subscribers.
func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// Subscribe registers h for every later event.
func (p *Publisher) Subscribe(h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, h)
}

func (p *Publisher) publish(ctx context.Context, eventType string, data any) {
	if p == nil {
		return
	}
	e := Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Timestamp:     time.Now().UTC(),
		CorrelationID: logger.CorrelationIDFromContext(ctx),
		Data:          data,
	}

	p.mu.RLock()
	handlers := make([]Handler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, e)
	}

	if p.logger != nil {
		p.logger.DebugContext(ctx, "published event",
			slog.String("event_id", e.ID),
			slog.String("event_type", e.Type),
			slog.Int("subscribers", len(handlers)),
		)
	}
}

// PublishCartChanged announces the cart contents after a mutation.
func (p *Publisher) PublishCartChanged(ctx context.Context, items domain.Cart) {
	p.publish(ctx, TypeCartChanged, CartChangedData{
		Items:     items.Clone(),
		ItemCount: items.ItemCount(),
		Totals:    domain.ComputeTotals(items),
	})
}

// PublishCartCleared announces that the cart was emptied.
func (p *Publisher) PublishCartCleared(ctx context.Context) {
	p.publish(ctx, TypeCartCleared, nil)
}

// Notify publishes a short user-facing message.
func (p *Publisher) Notify(ctx context.Context, level, message string) {
	p.publish(ctx, TypeNotice, NoticeData{Level: level, Message: message})
}
