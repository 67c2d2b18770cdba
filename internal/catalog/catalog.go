// Package catalog resolves product ids for the cart and filters listings.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ssbags/storefront/internal/domain"
	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// Source resolves a product id. found is false when the source does not
// carry the id; err is reserved for failures to consult the source at all.
type Source interface {
	Lookup(ctx context.Context, id int) (p domain.Product, found bool, err error)
}

// ProductLister fetches the current product list.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Loaded is the product list most recently fetched from the backend. The
// first lookup fetches it when nothing has been set yet.
type Loaded struct {
	mu       sync.RWMutex
	lister   ProductLister
	products []domain.Product
	loaded   bool
}

// NewLoaded creates a source that fetches from lister on demand. A nil lister
// leaves it empty until Set is called.
func NewLoaded(lister ProductLister) *Loaded {
	return &Loaded{lister: lister}
}

// Set replaces the loaded list.
func (l *Loaded) Set(products []domain.Product) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.products = products
	l.loaded = true
}

// Products returns the loaded list, fetching it first if needed.
func (l *Loaded) Products(ctx context.Context) ([]domain.Product, error) {
	l.mu.RLock()
	if l.loaded || l.lister == nil {
		out := l.products
		l.mu.RUnlock()
		return out, nil
	}
	l.mu.RUnlock()

	products, err := l.lister.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	l.Set(products)
	return products, nil
}

func (l *Loaded) Lookup(ctx context.Context, id int) (domain.Product, bool, error) {
	products, err := l.Products(ctx)
	if err != nil {
		return domain.Product{}, false, err
	}
	return find(products, id)
}

// Static is a fixed product list.
type Static []domain.Product

func (s Static) Lookup(_ context.Context, id int) (domain.Product, bool, error) {
	return find(s, id)
}

func find(products []domain.Product, id int) (domain.Product, bool, error) {
	for _, p := range products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return domain.Product{}, false, nil
}

// Chain consults sources in order and returns the first hit.
type Chain []Source

// Lookup returns a not-found error when no source has id. If a source failed
// and no later source had the product, the failures are returned instead.
func (c Chain) Lookup(ctx context.Context, id int) (domain.Product, error) {
	var errs []error
	for _, src := range c {
		p, found, err := src.Lookup(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if found {
			return p, nil
		}
	}
	if len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}
	return domain.Product{}, apperrors.NotFound("product", strconv.Itoa(id))
}
