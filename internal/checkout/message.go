package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ssbags/storefront/internal/domain"
	"github.com/ssbags/storefront/internal/view"
)

// DefaultShopNumber is the WhatsApp number orders are sent to.
const DefaultShopNumber = "923150024508"

// OrderSummary renders the order message for the current cart. A nil user
// is shown as a guest.
func OrderSummary(items domain.Cart, totals domain.Totals, user *domain.User) string {
	var b strings.Builder
	b.WriteString("New Order from S.S BAGS:\n\n")
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s (Qty: %d) - Rs. %s", item.Name, item.Quantity, item.LineTotal().String())
	}

	delivery := "FREE"
	if !totals.FreeDelivery() {
		delivery = "Rs. " + totals.Delivery.String()
	}
	fmt.Fprintf(&b, "\n\nSubtotal: Rs. %s\nDelivery: %s\nTotal: Rs. %s",
		totals.Subtotal.String(), delivery, totals.Total.String())

	name, email := "Guest", "Not provided"
	if user != nil {
		if user.Name != "" {
			name = user.Name
		}
		if user.Email != "" {
			email = user.Email
		}
	}
	fmt.Fprintf(&b, "\n\nName: %s\nEmail: %s", name, email)
	return b.String()
}

// ResendMessage renders the follow-up message for a placed order.
func ResendMessage(order domain.Order, user domain.User) string {
	return fmt.Sprintf("Order #%d\n\nCustomer: %s\nEmail: %s\n\nTotal: %s\n\nPayment: Cash on Delivery",
		order.ID, user.Name, user.Email, view.Money(order.TotalAmount))
}

// EncodeText escapes s the way browsers' encodeURIComponent does.
func EncodeText(s string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	return componentUnescaper.Replace(escaped)
}

var componentUnescaper = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// AppLink opens the WhatsApp app with text addressed to phone.
func AppLink(phone, text string) string {
	return "whatsapp://send?phone=" + phone + "&text=" + EncodeText(text)
}

// WebLink opens WhatsApp Web with text addressed to phone.
func WebLink(phone, text string) string {
	return "https://wa.me/" + phone + "?text=" + EncodeText(text)
}

// DeepLink picks the app link on mobile platforms and the web link elsewhere.
func DeepLink(p Platform, phone, text string) string {
	if p.Mobile() {
		return AppLink(phone, text)
	}
	return WebLink(phone, text)
}
