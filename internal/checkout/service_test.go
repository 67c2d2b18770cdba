package checkout

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ssbags/storefront/internal/domain"
	"github.com/ssbags/storefront/internal/event"
	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// ============================================================================
// Test Helpers
// ============================================================================

type fakeCart struct {
	items    domain.Cart
	clearErr error
	cleared  int
}

func (c *fakeCart) Items() domain.Cart    { return c.items.Clone() }
func (c *fakeCart) Totals() domain.Totals { return domain.ComputeTotals(c.items) }
func (c *fakeCart) Clear(context.Context) error {
	if c.clearErr != nil {
		return c.clearErr
	}
	c.cleared++
	c.items = nil
	return nil
}

type fakeSession struct {
	user *domain.User
}

func (s fakeSession) IsAuthenticated() bool { return s.user != nil }
func (s fakeSession) User() (domain.User, bool) {
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

type mockOpener struct {
	mock.Mock
}

func (m *mockOpener) Open(ctx context.Context, link string) error {
	return m.Called(ctx, link).Error(0)
}

type fixture struct {
	svc     *Service
	cart    *fakeCart
	opener  *mockOpener
	notices []event.NoticeData
}

func newFixture(t *testing.T, user *domain.User, items domain.Cart) *fixture {
	t.Helper()
	f := &fixture{cart: &fakeCart{items: items}, opener: &mockOpener{}}
	pub := event.NewPublisher(nil)
	pub.Subscribe(func(_ context.Context, e event.Event) {
		if n, ok := e.Data.(event.NoticeData); ok {
			f.notices = append(f.notices, n)
		}
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewService(f.cart, fakeSession{user: user}, f.opener, pub, "", logger)
	return f
}

func shopper() *domain.User {
	return &domain.User{ID: 1, Name: "Sana", Email: "sana@example.com"}
}

func oneBag() domain.Cart {
	return domain.Cart{item(1, "Office Backpack", 3000, 1)}
}

// ============================================================================
// Checkout
// ============================================================================

func TestCheckout_RequiresLogin(t *testing.T) {
	f := newFixture(t, nil, oneBag())

	_, err := f.svc.Checkout(context.Background(), PlatformDesktop)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, MsgLoginRequired, appErr.Message)
	assert.Len(t, f.cart.items, 1)
	f.opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
}

func TestCheckout_RequiresItems(t *testing.T) {
	f := newFixture(t, shopper(), nil)

	_, err := f.svc.Checkout(context.Background(), PlatformDesktop)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), MsgEmptyCart)
	f.opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
}

func TestCheckout_DesktopOpensWebLinkAndClears(t *testing.T) {
	f := newFixture(t, shopper(), oneBag())
	f.opener.On("Open", mock.Anything, mock.MatchedBy(func(link string) bool {
		return strings.HasPrefix(link, "https://wa.me/923150024508?text=New%20Order%20from%20S.S%20BAGS%3A")
	})).Return(nil).Once()

	receipt, err := f.svc.Checkout(context.Background(), PlatformDesktop)

	require.NoError(t, err)
	assert.False(t, receipt.Fallback)
	assert.Contains(t, receipt.Message, "Office Backpack (Qty: 1) - Rs. 3000")
	assert.Contains(t, receipt.Message, "Name: Sana")
	assert.Equal(t, 1, f.cart.cleared)
	require.Len(t, f.notices, 1)
	assert.Equal(t, event.LevelSuccess, f.notices[0].Level)
	assert.Equal(t, MsgOrderPlaced, f.notices[0].Message)
	f.opener.AssertExpectations(t)
}

func TestCheckout_MobileOpensApp(t *testing.T) {
	f := newFixture(t, shopper(), oneBag())
	f.opener.On("Open", mock.Anything, mock.MatchedBy(func(link string) bool {
		return strings.HasPrefix(link, "whatsapp://send?phone=923150024508&text=")
	})).Return(nil).Once()

	receipt, err := f.svc.Checkout(context.Background(), PlatformAndroid)

	require.NoError(t, err)
	assert.Equal(t, PlatformAndroid, receipt.Platform)
	assert.True(t, strings.HasPrefix(receipt.Link, "whatsapp://"))
	assert.Equal(t, 1, f.cart.cleared)
}

func TestCheckout_MobileFallsBackToWeb(t *testing.T) {
	f := newFixture(t, shopper(), oneBag())
	f.opener.On("Open", mock.Anything, mock.MatchedBy(func(link string) bool {
		return strings.HasPrefix(link, "whatsapp://")
	})).Return(errors.New("no handler")).Once()
	f.opener.On("Open", mock.Anything, mock.MatchedBy(func(link string) bool {
		return strings.HasPrefix(link, "https://wa.me/")
	})).Return(nil).Once()

	receipt, err := f.svc.Checkout(context.Background(), PlatformIOS)

	require.NoError(t, err)
	assert.True(t, receipt.Fallback)
	assert.True(t, strings.HasPrefix(receipt.Link, "https://wa.me/"))
	assert.Equal(t, 1, f.cart.cleared)
	f.opener.AssertExpectations(t)
}

func TestCheckout_OpenFailureKeepsCart(t *testing.T) {
	f := newFixture(t, shopper(), oneBag())
	f.opener.On("Open", mock.Anything, mock.Anything).Return(errors.New("xdg-open: not found"))

	receipt, err := f.svc.Checkout(context.Background(), PlatformDesktop)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Contains(t, err.Error(), MsgOpenFailed)
	assert.Contains(t, receipt.Message, "New Order from S.S BAGS:")
	assert.Zero(t, f.cart.cleared)
	assert.Len(t, f.cart.items, 1)
	require.Len(t, f.notices, 1)
	assert.Equal(t, event.LevelError, f.notices[0].Level)
	f.opener.AssertNumberOfCalls(t, "Open", 1)
}

func TestCheckout_ClearFailureIsReported(t *testing.T) {
	f := newFixture(t, shopper(), oneBag())
	f.cart.clearErr = errors.New("disk full")
	f.opener.On("Open", mock.Anything, mock.Anything).Return(nil)

	receipt, err := f.svc.Checkout(context.Background(), PlatformDesktop)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear cart after checkout")
	assert.NotEmpty(t, receipt.Link)
	assert.Empty(t, f.notices)
}

// ============================================================================
// Resend
// ============================================================================

func TestResend_PendingOrder(t *testing.T) {
	f := newFixture(t, shopper(), oneBag())
	f.opener.On("Open", mock.Anything, mock.Anything).Return(nil).Once()
	order := domain.Order{ID: 9, TotalAmount: decimal.NewFromInt(8500), Status: domain.OrderPending}

	receipt, err := f.svc.Resend(context.Background(), PlatformDesktop, order)

	require.NoError(t, err)
	assert.Contains(t, receipt.Message, "Order #9")
	assert.Contains(t, receipt.Message, "Total: Rs. 8,500")
	assert.Contains(t, receipt.Link, "Order%20%239")
	assert.Zero(t, f.cart.cleared)
	assert.Len(t, f.cart.items, 1)
}

func TestResend_RejectsNonPending(t *testing.T) {
	f := newFixture(t, shopper(), nil)
	order := domain.Order{ID: 9, Status: domain.OrderShipped}

	_, err := f.svc.Resend(context.Background(), PlatformDesktop, order)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
}

// ============================================================================
// Openers
// ============================================================================

func TestWriterOpener(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriterOpener{W: &buf}.Open(context.Background(), "https://wa.me/1"))

	assert.Equal(t, "https://wa.me/1\n", buf.String())
}

func TestNewCommandOpener(t *testing.T) {
	o := NewCommandOpener("open -a Safari")
	assert.Equal(t, "open", o.Command)
	assert.Equal(t, []string{"-a", "Safari"}, o.Args)

	def := NewCommandOpener("  ")
	assert.NotEmpty(t, def.Command)
}

func TestCommandOpener_MissingCommand(t *testing.T) {
	o := CommandOpener{Command: "storefront-no-such-opener"}

	err := o.Open(context.Background(), "https://wa.me/1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "storefront-no-such-opener")
}
