package domain

import "github.com/shopspring/decimal"

// Customer is a registered user as seen from the admin panel.
type Customer struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	OrderCount int    `json:"order_count"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Users      int
	Products   int
	Orders     int
	TotalSales decimal.Decimal
}

// Report periods accepted by the backend.
const (
	PeriodDaily   = "daily"
	PeriodMonthly = "monthly"
)

// Report is a sales report over a period.
type Report struct {
	Rows         []ReportRow     `json:"report_data"`
	TotalOrders  int             `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// ReportRow is one day or month of a report.
type ReportRow struct {
	Date    Timestamp       `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// AverageOrderValue is revenue per order, or 0 when there are no orders.
func (r Report) AverageOrderValue() decimal.Decimal {
	if r.TotalOrders <= 0 {
		return decimal.Zero
	}
	return r.TotalRevenue.Div(decimal.NewFromInt(int64(r.TotalOrders)))
}
