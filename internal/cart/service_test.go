package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssbags/storefront/internal/catalog"
	"github.com/ssbags/storefront/internal/domain"
	"github.com/ssbags/storefront/internal/event"
	"github.com/ssbags/storefront/internal/storage"
	"github.com/ssbags/storefront/internal/storage/memory"
	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// ============================================================================
// Test Helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProducts() catalog.Static {
	return catalog.Static{
		{ID: 1, Name: "Office Backpack", Price: decimal.NewFromInt(3000), Category: "Backpacks"},
		{ID: 2, Name: "Clutch", Price: decimal.NewFromInt(2500), Category: "Handbags"},
		{ID: 3, Name: "Card Holder", Price: decimal.NewFromInt(1000), Category: "Wallets"},
	}
}

type fixture struct {
	svc    *Service
	store  *memory.Store
	events []event.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.New()}
	pub := event.NewPublisher(nil)
	pub.Subscribe(func(_ context.Context, e event.Event) { f.events = append(f.events, e) })
	f.svc = NewService(f.store, catalog.Chain{testProducts()}, pub, testLogger())
	require.NoError(t, f.svc.Load(context.Background()))
	return f
}

func (f *fixture) stored(t *testing.T) domain.Cart {
	t.Helper()
	var items domain.Cart
	require.NoError(t, storage.GetJSON(context.Background(), f.store, storage.KeyCart, &items))
	return items
}

func (f *fixture) notices() []string {
	var out []string
	for _, e := range f.events {
		if n, ok := e.Data.(event.NoticeData); ok {
			out = append(out, n.Message)
		}
	}
	return out
}

// ============================================================================
// AddItem Tests
// ============================================================================

func TestAddItem_NewItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.svc.AddItem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, added.Quantity)
	assert.Equal(t, "Office Backpack", added.Name)
	assert.Equal(t, "Backpacks", added.Category)

	items := f.svc.Items()
	require.Len(t, items, 1)
	stored := f.stored(t)
	require.Len(t, stored, 1)
	assert.Equal(t, 1, stored[0].ID)
	assert.True(t, decimal.NewFromInt(3000).Equal(stored[0].Price))
	assert.Equal(t, []string{"Office Backpack added to cart!"}, f.notices())
	assert.Equal(t, event.TypeCartChanged, f.events[0].Type)
}

func TestAddItem_SameIDMerges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.AddItem(ctx, 2)
		require.NoError(t, err)
	}

	items := f.svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, f.stored(t)[0].Quantity)
}

func TestAddItem_PreservesInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []int{3, 1, 3, 2} {
		_, err := f.svc.AddItem(ctx, id)
		require.NoError(t, err)
	}

	items := f.svc.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, 4, f.svc.ItemCount())
}

func TestAddItem_UnknownProductIsNoop(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddItem(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.Empty(t, f.svc.Items())
	assert.Empty(t, f.events)
	assert.Equal(t, 0, f.store.Len())
}

func TestAddItem_WriteFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.AddItem(ctx, 1)
	require.NoError(t, err)
	f.events = nil

	f.store.FailWrites = errors.New("disk full")
	_, err = f.svc.AddItem(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save cart")

	items := f.svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Empty(t, f.events)
}

func TestAddItem_ThenFreeDeliveryScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, 1)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, 2)
	require.NoError(t, err)

	totals := f.svc.Totals()
	assert.True(t, decimal.NewFromInt(5500).Equal(totals.Subtotal))
	assert.True(t, totals.FreeDelivery())
	assert.True(t, decimal.NewFromInt(5500).Equal(totals.Total))
}

// ============================================================================
// UpdateQuantity Tests
// ============================================================================

func TestUpdateQuantity_Increment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.AddItem(ctx, 3)
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateQuantity(ctx, 0, 1))

	assert.Equal(t, 2, f.svc.Items()[0].Quantity)
	assert.Equal(t, 2, f.stored(t)[0].Quantity)

	totals := f.svc.Totals()
	assert.True(t, decimal.NewFromInt(2200).Equal(totals.Total))
}

func TestUpdateQuantity_ToZeroRemoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddItem(ctx, 1)
	_, _ = f.svc.AddItem(ctx, 2)
	f.events = nil

	require.NoError(t, f.svc.UpdateQuantity(ctx, 0, -1))

	items := f.svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, []string{"Item removed from cart"}, f.notices())
}

func TestUpdateQuantity_LargeNegativeDeltaRemoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddItem(ctx, 1)
	_, _ = f.svc.AddItem(ctx, 1)

	require.NoError(t, f.svc.UpdateQuantity(ctx, 0, -10))
	assert.Empty(t, f.svc.Items())
}

func TestUpdateQuantity_HugeDeltaRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.AddItem(ctx, 1)
	require.NoError(t, err)

	err = f.svc.UpdateQuantity(ctx, 0, math.MaxInt)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	require.Len(t, f.svc.Items(), 1)
	assert.Equal(t, 1, f.svc.Items()[0].Quantity)
	assert.Equal(t, 1, f.stored(t)[0].Quantity)
}

func TestUpdateQuantity_MinIntDeltaRemoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddItem(ctx, 1)

	require.NoError(t, f.svc.UpdateQuantity(ctx, 0, math.MinInt))
	assert.Empty(t, f.svc.Items())
}

func TestUpdateQuantity_OutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddItem(ctx, 1)
	f.events = nil

	for _, idx := range []int{-1, 1, 5} {
		err := f.svc.UpdateQuantity(ctx, idx, 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
	assert.Equal(t, 1, f.svc.Items()[0].Quantity)
	assert.Empty(t, f.events)
}

// ============================================================================
// RemoveItem Tests
// ============================================================================

func TestRemoveItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddItem(ctx, 1)
	_, _ = f.svc.AddItem(ctx, 2)
	_, _ = f.svc.AddItem(ctx, 3)

	removed, err := f.svc.RemoveItem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, removed.ID)

	items := f.svc.Items()
	assert.Equal(t, []int{1, 3}, []int{items[0].ID, items[1].ID})
	assert.Len(t, f.stored(t), 2)
}

func TestRemoveItem_EmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RemoveItem(context.Background(), 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// ============================================================================
// Clear / Load Tests
// ============================================================================

func TestClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddItem(ctx, 1)

	require.NoError(t, f.svc.Clear(ctx))

	assert.Empty(t, f.svc.Items())
	_, err := f.store.Get(ctx, storage.KeyCart)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	totals := f.svc.Totals()
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, decimal.NewFromInt(200).Equal(totals.Delivery))
	assert.True(t, totals.Total.IsZero())
}

func TestClear_WriteFailureKeepsItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddItem(ctx, 1)
	f.store.FailWrites = errors.New("read-only")

	require.Error(t, f.svc.Clear(ctx))
	assert.Len(t, f.svc.Items(), 1)
}

func TestLoad_RestoresStoredCart(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, storage.Entry{
		Key:   storage.KeyCart,
		Value: []byte(`[{"id":5,"name":"Classic Wallet Set","price":2500,"quantity":3,"badge":null}]`),
	}))

	svc := NewService(store, catalog.Chain{}, nil, testLogger())
	require.NoError(t, svc.Load(ctx))

	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 3, svc.ItemCount())
}

func TestLoad_CorruptValueIsDiscarded(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":       `{{`,
		"zero quantity":  `[{"id":1,"price":1,"quantity":0}]`,
		"duplicate id":   `[{"id":1,"price":1,"quantity":1},{"id":1,"price":1,"quantity":1}]`,
		"wrong document": `{"id":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			store := memory.New()
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, storage.Entry{Key: storage.KeyCart, Value: []byte(raw)}))

			svc := NewService(store, catalog.Chain{}, nil, testLogger())
			require.NoError(t, svc.Load(ctx))
			assert.Empty(t, svc.Items())
		})
	}
}

func TestLoad_NullIsEmpty(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, storage.Entry{Key: storage.KeyCart, Value: []byte(`null`)}))

	svc := NewService(store, catalog.Chain{}, nil, testLogger())
	require.NoError(t, svc.Load(ctx))
	assert.NotNil(t, svc.Items())
	assert.Empty(t, svc.Items())
}

func TestItems_ReturnsCopy(t *testing.T) {
	f := newFixture(t)
	_, _ = f.svc.AddItem(context.Background(), 1)

	items := f.svc.Items()
	items[0].Quantity = 50

	assert.Equal(t, 1, f.svc.Items()[0].Quantity)
}
