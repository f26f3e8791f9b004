package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/restclient"
)

// Client exchanges credentials with the auth service.
type Client struct {
	client *restclient.Client
}

func NewClient(client *restclient.Client) *Client {
	return &Client{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	var resp loginResponse
	err := c.client.DoJSON(ctx, restclient.Request{
		Operation: "login",
		Method:    http.MethodPost,
		Path:      "/login",
		JSON:      loginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "auth.login", errors.New("response carried no token"))
	}
	return &domain.Session{
		Token:  resp.Token,
		UserID: resp.User.ID,
		Email:  resp.User.Email,
	}, nil
}
