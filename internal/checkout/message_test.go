package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ssbags/storefront/internal/domain"
)

func item(id int, name string, price int64, qty int) domain.CartItem {
	return domain.CartItem{
		Product:  domain.Product{ID: id, Name: name, Price: decimal.NewFromInt(price)},
		Quantity: qty,
	}
}

func TestOrderSummary_FreeDelivery(t *testing.T) {
	items := domain.Cart{
		item(1, "Office Backpack", 3000, 2),
		item(3, "Card Holder", 1000, 1),
	}
	user := &domain.User{ID: 7, Name: "Ayesha", Email: "ayesha@example.com"}

	got := OrderSummary(items, domain.ComputeTotals(items), user)

	want := "New Order from S.S BAGS:\n\n" +
		"Office Backpack (Qty: 2) - Rs. 6000\n" +
		"Card Holder (Qty: 1) - Rs. 1000\n\n" +
		"Subtotal: Rs. 7000\n" +
		"Delivery: FREE\n" +
		"Total: Rs. 7000\n\n" +
		"Name: Ayesha\n" +
		"Email: ayesha@example.com"
	assert.Equal(t, want, got)
}

func TestOrderSummary_DeliveryFeeAndGuest(t *testing.T) {
	items := domain.Cart{item(2, "Clutch", 2500, 1)}

	got := OrderSummary(items, domain.ComputeTotals(items), nil)

	assert.Contains(t, got, "Subtotal: Rs. 2500\nDelivery: Rs. 200\nTotal: Rs. 2700")
	assert.Contains(t, got, "Name: Guest\nEmail: Not provided")
}

func TestOrderSummary_ThresholdIsExclusive(t *testing.T) {
	items := domain.Cart{item(1, "Tote", 5000, 1)}

	got := OrderSummary(items, domain.ComputeTotals(items), nil)

	assert.Contains(t, got, "Delivery: Rs. 200\nTotal: Rs. 5200")
}

func TestResendMessage(t *testing.T) {
	order := domain.Order{ID: 42, TotalAmount: decimal.NewFromInt(12500), Status: "Pending"}
	user := domain.User{Name: "Ali", Email: "ali@example.com"}

	got := ResendMessage(order, user)

	assert.Equal(t, "Order #42\n\nCustomer: Ali\nEmail: ali@example.com\n\nTotal: Rs. 12,500\n\nPayment: Cash on Delivery", got)
}

func TestEncodeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a b", "a%20b"},
		{"Qty: 2", "Qty%3A%202"},
		{"line\nbreak", "line%0Abreak"},
		{"(Qty)!*'", "(Qty)!*'"},
		{"a+b&c=d", "a%2Bb%26c%3Dd"},
		{"x@y.com", "x%40y.com"},
		{"-_.~", "-_.~"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeText(tt.in))
		})
	}
}

func TestDeepLink(t *testing.T) {
	text := "Hi there"

	assert.Equal(t, "whatsapp://send?phone=923150024508&text=Hi%20there", DeepLink(PlatformAndroid, DefaultShopNumber, text))
	assert.Equal(t, "whatsapp://send?phone=923150024508&text=Hi%20there", DeepLink(PlatformIOS, DefaultShopNumber, text))
	assert.Equal(t, "https://wa.me/923150024508?text=Hi%20there", DeepLink(PlatformDesktop, DefaultShopNumber, text))
}
