// Package checkout hands the cart to the shop over WhatsApp.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ssbags/storefront/internal/domain"
	"github.com/ssbags/storefront/internal/event"
	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// User-facing checkout messages.
const (
	MsgLoginRequired = "Please login first"
	MsgEmptyCart     = "Your cart is empty"
	MsgOpenFailed    = "Could not open WhatsApp. Please try again or copy the message below"
	MsgOrderPlaced   = "Order placed successfully! Check WhatsApp to confirm. Thank you for shopping at S.S BAGS!"
	MsgNotPending    = "Only pending orders can be resent"
)

// Cart is the part of the cart store checkout needs.
type Cart interface {
	Items() domain.Cart
	Totals() domain.Totals
	Clear(ctx context.Context) error
}

// Session is the part of the session store checkout needs.
type Session interface {
	IsAuthenticated() bool
	User() (domain.User, bool)
}

// Receipt describes one hand-off. On failure Message still holds the text
// so it can be copied by hand.
type Receipt struct {
	Message  string
	Link     string
	Platform Platform
	Fallback bool
}

// Service performs the checkout hand-off.
type Service struct {
	cart    Cart
	session Session
	opener  Opener
	events  *event.Publisher
	logger  *slog.Logger
	phone   string
}

// NewService creates a checkout service sending to phone. An empty phone
// uses DefaultShopNumber.
func NewService(cart Cart, session Session, opener Opener, events *event.Publisher, phone string, logger *slog.Logger) *Service {
	if phone == "" {
		phone = DefaultShopNumber
	}
	return &Service{
		cart:    cart,
		session: session,
		opener:  opener,
		events:  events,
		logger:  logger,
		phone:   phone,
	}
}

// Checkout sends the cart summary and empties the cart once the link has
// been handed off. Nothing confirms the message was actually sent.
func (s *Service) Checkout(ctx context.Context, platform Platform) (Receipt, error) {
	if !s.session.IsAuthenticated() {
		return Receipt{}, apperrors.Unauthorized(MsgLoginRequired)
	}
	items := s.cart.Items()
	if len(items) == 0 {
		return Receipt{}, apperrors.InvalidInput(MsgEmptyCart)
	}

	var user *domain.User
	if u, ok := s.session.User(); ok {
		user = &u
	}
	msg := OrderSummary(items, s.cart.Totals(), user)

	receipt, err := s.handOff(ctx, platform, msg)
	if err != nil {
		return receipt, err
	}

	if err := s.cart.Clear(ctx); err != nil {
		return receipt, fmt.Errorf("clear cart after checkout: %w", err)
	}
	s.events.Notify(ctx, event.LevelSuccess, MsgOrderPlaced)
	s.logger.InfoContext(ctx, "order handed off",
		slog.String("platform", string(platform)),
		slog.Int("items", len(items)),
		slog.Bool("fallback", receipt.Fallback),
	)
	return receipt, nil
}

// Resend hands the summary of a pending order off again. The cart is not
// touched.
func (s *Service) Resend(ctx context.Context, platform Platform, order domain.Order) (Receipt, error) {
	if !order.IsPending() {
		return Receipt{}, apperrors.Conflict(MsgNotPending)
	}
	user, ok := s.session.User()
	if !ok {
		return Receipt{}, apperrors.Unauthorized(MsgLoginRequired)
	}
	return s.handOff(ctx, platform, ResendMessage(order, user))
}

// handOff opens the deep link for platform. On mobile a failed app link is
// retried once as a web link.
func (s *Service) handOff(ctx context.Context, platform Platform, msg string) (Receipt, error) {
	receipt := Receipt{Message: msg, Platform: platform}

	receipt.Link = DeepLink(platform, s.phone, msg)
	err := s.opener.Open(ctx, receipt.Link)
	if err != nil && platform.Mobile() && ctx.Err() == nil {
		s.logger.WarnContext(ctx, "app link failed, falling back to web link",
			slog.String("error", err.Error()),
		)
		receipt.Link = WebLink(s.phone, msg)
		receipt.Fallback = true
		err = s.opener.Open(ctx, receipt.Link)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "open whatsapp link", slog.String("error", err.Error()))
		s.events.Notify(ctx, event.LevelError, MsgOpenFailed)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return receipt, err
		}
		return receipt, apperrors.Unavailable(MsgOpenFailed, err)
	}
	return receipt, nil
}
