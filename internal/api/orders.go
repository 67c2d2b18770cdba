package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ssbags/storefront/internal/domain"
	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// UserOrders fetches the order history of a signed-in customer.
func (c *Client) UserOrders(ctx context.Context, token string, userID int) ([]domain.Order, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("Please login first")
	}
	var resp struct {
		Orders []domain.Order `json:"orders"`
	}
	err := c.do(ctx, request{
		op:     "list orders",
		method: http.MethodGet,
		path:   fmt.Sprintf("orders/user/%d", userID),
		token:  token,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Orders, nil
}
