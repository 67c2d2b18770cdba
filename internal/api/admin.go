package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ssbags/storefront/internal/domain"
	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// Admin issues admin panel calls with an admin token.
type Admin struct {
	*Client
	token string
}

// Admin returns a client for admin calls authorised by token.
func (c *Client) Admin(token string) *Admin {
	return &Admin{Client: c, token: token}
}

func (a *Admin) do(ctx context.Context, r request, out any) error {
	if a.token == "" {
		return apperrors.Unauthorized("Admin login required")
	}
	r.token = a.token
	return a.Client.do(ctx, r, out)
}

type countResponse struct {
	Count      int             `json:"count"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

// Stats fetches the user, product and order counters in parallel.
func (a *Admin) Stats(ctx context.Context) (domain.Stats, error) {
	var users, products, orders countResponse

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range []struct {
		name string
		out  *countResponse
	}{
		{"users", &users},
		{"products", &products},
		{"orders", &orders},
	} {
		g.Go(func() error {
			return a.do(gctx, request{
				op:     s.name + " stats",
				method: http.MethodGet,
				path:   "admin/stats/" + s.name,
			}, s.out)
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Stats{}, err
	}

	return domain.Stats{
		Users:      users.Count,
		Products:   products.Count,
		Orders:     orders.Count,
		TotalSales: orders.TotalSales,
	}, nil
}

// Orders lists orders, newest first. A positive limit caps the count.
func (a *Admin) Orders(ctx context.Context, limit int) ([]domain.Order, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var resp struct {
		Orders []domain.Order `json:"orders"`
	}
	err := a.do(ctx, request{
		op:     "list orders",
		method: http.MethodGet,
		path:   "admin/orders",
		query:  query,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// UpdateOrderStatus moves an order to status.
func (a *Admin) UpdateOrderStatus(ctx context.Context, orderID int, status string) error {
	if !slices.Contains(domain.OrderStatuses, status) {
		return apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", status))
	}
	return a.do(ctx, request{
		op:     "update order",
		method: http.MethodPut,
		path:   fmt.Sprintf("admin/orders/%d", orderID),
		body:   map[string]string{"status": status},
	}, nil)
}

// Customers lists registered customers with their order counts.
func (a *Admin) Customers(ctx context.Context) ([]domain.Customer, error) {
	var resp struct {
		Customers []domain.Customer `json:"customers"`
	}
	err := a.do(ctx, request{op: "list customers", method: http.MethodGet, path: "admin/customers"}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Customers, nil
}

// DeactivateCustomer marks a customer account inactive.
func (a *Admin) DeactivateCustomer(ctx context.Context, customerID int) error {
	return a.do(ctx, request{
		op:     "update customer",
		method: http.MethodPut,
		path:   fmt.Sprintf("admin/customers/%d", customerID),
		body:   map[string]string{"status": "inactive"},
	}, nil)
}

// Report fetches the sales report for a daily or monthly period.
func (a *Admin) Report(ctx context.Context, period string) (domain.Report, error) {
	if period != domain.PeriodDaily && period != domain.PeriodMonthly {
		return domain.Report{}, apperrors.InvalidInput(fmt.Sprintf("unknown report period %q (use daily or monthly)", period))
	}
	var report domain.Report
	err := a.do(ctx, request{
		op:     "sales report",
		method: http.MethodGet,
		path:   "admin/reports",
		query:  url.Values{"period": {period}},
	}, &report)
	if err != nil {
		return domain.Report{}, err
	}
	return report, nil
}
