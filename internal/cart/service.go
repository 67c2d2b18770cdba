// Package cart keeps the shopping cart in memory and in durable storage.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"

	"github.com/ssbags/storefront/internal/domain"
	"github.com/ssbags/storefront/internal/event"
	"github.com/ssbags/storefront/internal/storage"
	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// ProductResolver finds the product behind an id. A miss is an error
// wrapping errors.ErrNotFound.
type ProductResolver interface {
	Lookup(ctx context.Context, id int) (domain.Product, error)
}

// Service is the cart store. Every mutation writes the new cart to storage
// first and replaces the in-memory copy only when the write succeeded.
type Service struct {
	mu       sync.Mutex
	store    storage.Store
	products ProductResolver
	events   *event.Publisher
	logger   *slog.Logger
	items    domain.Cart
}

// NewService creates an empty cart store. Call Load to pick up a stored cart.
func NewService(store storage.Store, products ProductResolver, events *event.Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		products: products,
		events:   events,
		logger:   logger,
		items:    domain.Cart{},
	}
}

// Load reads the stored cart. A missing value gives an empty cart; a value
// that does not decode or breaks the cart invariants is logged and dropped.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Get(ctx, storage.KeyCart)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.items = domain.Cart{}
			return nil
		}
		return fmt.Errorf("load cart: %w", err)
	}

	items, err := decodeCart(data)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable stored cart",
			slog.String("error", err.Error()),
		)
		s.items = domain.Cart{}
		return nil
	}

	s.items = items
	s.logger.DebugContext(ctx, "cart loaded", slog.Int("items", len(items)))
	return nil
}

func decodeCart(data []byte) (domain.Cart, error) {
	var items domain.Cart
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = domain.Cart{}
	}
	if err := items.Validate(); err != nil {
		return nil, err
	}
	return items, nil
}

// Items returns a copy of the cart in display order.
func (s *Service) Items() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// ItemCount returns the total quantity, shown on the cart badge.
func (s *Service) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.ItemCount()
}

// Totals prices the current cart.
func (s *Service) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ComputeTotals(s.items)
}

// AddItem adds one unit of productID. An id already in the cart has its
// quantity raised; a new one is appended with a snapshot of the product.
func (s *Service) AddItem(ctx context.Context, productID int) (domain.CartItem, error) {
	product, err := s.products.Lookup(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.DebugContext(ctx, "add to cart ignored, product not found",
				slog.Int("product_id", productID),
			)
			return domain.CartItem{}, err
		}
		return domain.CartItem{}, fmt.Errorf("look up product %d: %w", productID, err)
	}

	s.mu.Lock()
	next := s.items.Clone()
	idx := next.FindItemIndex(productID)
	if idx >= 0 {
		next[idx].Quantity++
	} else {
		next = append(next, domain.CartItem{Product: product, Quantity: 1})
		idx = len(next) - 1
	}
	added := next[idx]
	err = s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return domain.CartItem{}, err
	}

	s.events.PublishCartChanged(ctx, next)
	s.events.Notify(ctx, event.LevelSuccess, added.Name+" added to cart!")

	s.logger.InfoContext(ctx, "item added to cart",
		slog.Int("product_id", productID),
		slog.Int("quantity", added.Quantity),
	)
	return added, nil
}

// UpdateQuantity changes the quantity of the item at index by delta. A
// result of zero or less removes the item exactly as RemoveItem does.
func (s *Service) UpdateQuantity(ctx context.Context, index, delta int) error {
	s.mu.Lock()
	if err := s.checkIndex(index); err != nil {
		s.mu.Unlock()
		return err
	}
	current := s.items[index].Quantity
	if delta <= -current {
		s.mu.Unlock()
		_, err := s.RemoveItem(ctx, index)
		return err
	}
	if delta > math.MaxInt-current {
		s.mu.Unlock()
		return apperrors.InvalidInput("Quantity is too large")
	}

	next := s.items.Clone()
	next[index].Quantity += delta
	productID, qty := next[index].ID, next[index].Quantity
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.events.PublishCartChanged(ctx, next)

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.Int("product_id", productID),
		slog.Int("quantity", qty),
	)
	return nil
}

// RemoveItem deletes the item at index and returns it.
func (s *Service) RemoveItem(ctx context.Context, index int) (domain.CartItem, error) {
	s.mu.Lock()
	if err := s.checkIndex(index); err != nil {
		s.mu.Unlock()
		return domain.CartItem{}, err
	}

	removed := s.items[index]
	next := make(domain.Cart, 0, len(s.items)-1)
	next = append(next, s.items[:index]...)
	next = append(next, s.items[index+1:]...)
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return domain.CartItem{}, err
	}

	s.events.PublishCartChanged(ctx, next)
	s.events.Notify(ctx, event.LevelError, "Item removed from cart")

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.Int("product_id", removed.ID),
	)
	return removed, nil
}

// Clear empties the cart and deletes the stored value.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.store.Delete(ctx, storage.KeyCart); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear cart: %w", err)
	}
	s.items = domain.Cart{}
	s.mu.Unlock()

	s.events.PublishCartCleared(ctx)
	s.events.PublishCartChanged(ctx, domain.Cart{})

	s.logger.InfoContext(ctx, "cart cleared")
	return nil
}

// checkIndex must be called with mu held.
func (s *Service) checkIndex(index int) error {
	if index < 0 || index >= len(s.items) {
		return apperrors.InvalidInput("no cart item at position " + strconv.Itoa(index+1))
	}
	return nil
}

// commit persists next and then makes it current. Must be called with mu held.
func (s *Service) commit(ctx context.Context, next domain.Cart) error {
	entry, err := storage.JSONEntry(storage.KeyCart, next)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, entry); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	s.items = next
	return nil
}
