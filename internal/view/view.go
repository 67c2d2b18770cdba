// Package view renders storefront state as plain text tables.
package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ssbags/storefront/internal/domain"
	"github.com/ssbags/storefront/internal/event"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(tw *tabwriter.Writer, cells ...string) {
	fmt.Fprintln(tw, strings.Join(cells, "\t"))
}

// Products lists products with price, stock and category.
func Products(w io.Writer, products []domain.Product) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products found")
		return err
	}
	tw := newTable(w)
	row(tw, "ID", "NAME", "CATEGORY", "PRICE", "STOCK", "")
	for _, p := range products {
		price := Money(p.Price)
		if p.OnSale() {
			price += " (was " + Money(*p.OriginalPrice) + ")"
		}
		stock := "-"
		if p.Stock > 0 {
			stock = fmt.Sprint(p.Stock)
		}
		row(tw, fmt.Sprint(p.ID), p.Name, p.Category, price, stock, p.Badge)
	}
	return tw.Flush()
}

// Cart lists the cart lines by position followed by the totals.
func Cart(w io.Writer, items domain.Cart, totals domain.Totals) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "Your cart is empty")
		return err
	}
	tw := newTable(w)
	row(tw, "#", "ITEM", "QTY", "PRICE", "TOTAL")
	for i, item := range items {
		row(tw, fmt.Sprint(i+1), item.Name, fmt.Sprint(item.Quantity), Money(item.Price), Money(item.LineTotal()))
	}
	row(tw)
	row(tw, "", "Subtotal", "", "", Money(totals.Subtotal))
	delivery := "FREE"
	if !totals.FreeDelivery() {
		delivery = Money(totals.Delivery)
	}
	row(tw, "", "Delivery", "", "", delivery)
	row(tw, "", "Total", "", "", Money(totals.Total))
	return tw.Flush()
}

// Orders lists a customer's order history. Pending orders can be resent.
func Orders(w io.Writer, orders []domain.Order) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders yet")
		return err
	}
	tw := newTable(w)
	row(tw, "ORDER", "DATE", "ITEMS", "TOTAL", "STATUS", "")
	for _, o := range orders {
		action := ""
		if o.IsPending() {
			action = "resend available"
		}
		row(tw, fmt.Sprintf("#%d", o.ID), o.CreatedAt.Date(), itemSummary(o.Items), Money(o.TotalAmount), statusLabel(o.Status), action)
	}
	return tw.Flush()
}

func itemSummary(items []domain.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.ProductName, it.Quantity))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func statusLabel(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// AdminOrders lists orders with their customers for the admin panel.
func AdminOrders(w io.Writer, orders []domain.Order) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders found")
		return err
	}
	tw := newTable(w)
	row(tw, "ORDER", "CUSTOMER", "PHONE", "TOTAL", "STATUS", "DATE")
	for _, o := range orders {
		name := o.CustomerName
		if name == "" {
			name = "-"
		}
		phone := o.CustomerPhone
		if phone == "" {
			phone = "-"
		}
		row(tw, fmt.Sprintf("#%d", o.ID), name, phone, Money(o.TotalAmount), statusLabel(o.Status), o.CreatedAt.Date())
	}
	return tw.Flush()
}

// Dashboard shows the admin summary and the most recent orders.
func Dashboard(w io.Writer, stats domain.Stats, recent []domain.Order) error {
	tw := newTable(w)
	row(tw, "Users", fmt.Sprint(stats.Users))
	row(tw, "Products", fmt.Sprint(stats.Products))
	row(tw, "Orders", fmt.Sprint(stats.Orders))
	row(tw, "Sales", Money(stats.TotalSales))
	if err := tw.Flush(); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "\nRecent orders"); err != nil {
		return err
	}
	return AdminOrders(w, recent)
}

// Customers lists registered customers.
func Customers(w io.Writer, customers []domain.Customer) error {
	if len(customers) == 0 {
		_, err := fmt.Fprintln(w, "No customers found")
		return err
	}
	tw := newTable(w)
	row(tw, "ID", "NAME", "EMAIL", "PHONE", "ORDERS")
	for _, c := range customers {
		row(tw, fmt.Sprint(c.ID), c.Name, c.Email, c.Phone, fmt.Sprint(c.OrderCount))
	}
	return tw.Flush()
}

// Report shows a sales report. Monthly rows are labelled by month.
func Report(w io.Writer, period string, r domain.Report) error {
	tw := newTable(w)
	row(tw, "Total orders", fmt.Sprint(r.TotalOrders))
	row(tw, "Total revenue", Money(r.TotalRevenue))
	row(tw, "Average order", Money(r.AverageOrderValue()))
	row(tw)
	row(tw, "DATE", "ORDERS", "REVENUE")
	for _, rr := range r.Rows {
		label := rr.Date.Date()
		if period == domain.PeriodMonthly && !rr.Date.IsZero() {
			label = rr.Date.Format("Jan 2006")
		}
		row(tw, label, fmt.Sprint(rr.Orders), Money(rr.Revenue))
	}
	if len(r.Rows) == 0 {
		row(tw, "No sales in this period")
	}
	return tw.Flush()
}

// Notice prints a toast line for a notice event.
func Notice(w io.Writer, n event.NoticeData) error {
	prefix := "*"
	switch n.Level {
	case event.LevelSuccess:
		prefix = "✓"
	case event.LevelError:
		prefix = "!"
	}
	_, err := fmt.Fprintf(w, "%s %s\n", prefix, n.Message)
	return err
}
