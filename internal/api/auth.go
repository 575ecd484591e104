package api

import (
	"context"
	"net/http"

	"github.com/felixgeelhaar/skilladmin/internal/session"
)

const loginPath = "/admin/login"

// LoginRequest is the admin login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is what the server returns on login. Token and Admin are
// checked by the caller; the server has been seen to answer 200 without them.
type LoginResponse struct {
	Token   string         `json:"token"`
	Admin   *session.Admin `json:"admin"`
	Message string         `json:"message,omitempty"`
	Msg     string         `json:"msg,omitempty"`
}

// AuthService performs admin login.
type AuthService struct {
	c *Client
}

// Auth returns the auth service.
func (c *Client) Auth() *AuthService {
	return &AuthService{c: c}
}

// Login exchanges credentials for a session token. It does not store it.
func (a *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := a.c.do(ctx, request{
		op:     "auth.login",
		method: http.MethodPost,
		route:  loginPath,
		path:   loginPath,
		body:   LoginRequest{Email: email, Password: password},
		out:    &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
