package api

import (
	"context"
	"net/http"

	"github.com/ssbags/storefront/internal/domain"
)

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login exchanges customer credentials for a user and session token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.User, string, error) {
	var resp loginResponse
	err := c.do(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   "auth/login",
		body:   creds,
	}, &resp)
	if err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

// Register creates a customer account. It does not sign in.
func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	return c.do(ctx, request{
		op:     "registration",
		method: http.MethodPost,
		path:   "auth/register",
		body:   reg,
	}, nil)
}

// AdminLogin exchanges admin credentials for an admin token.
func (c *Client) AdminLogin(ctx context.Context, creds domain.Credentials) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, request{
		op:     "admin login",
		method: http.MethodPost,
		path:   "admin/login",
		body:   creds,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}
