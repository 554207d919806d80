package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/config"
	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"

	"net/http"
)

const authServiceName = "auth"

// AuthServiceClient talks to the identity / roster service.  It acquires the
// service credential and pulls the full user roster.
type AuthServiceClient struct {
	baseUrl    string
	email      string
	password   string
	httpClient *http.Client
}

func NewAuthServiceClient(cfg *config.Config) *AuthServiceClient {
	return &AuthServiceClient{
		baseUrl:    cfg.AuthServiceUrl,
		email:      cfg.ServiceAccountEmail,
		password:   cfg.ServiceAccountPassword,
		httpClient: newHTTPClient(cfg.UpstreamRequestTimeout),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// AcquireCredential logs in with the configured service account and returns
// the bearer credential
func (c *AuthServiceClient) AcquireCredential(ctx context.Context) (domain.Credential, error) {

	if c.email == "" || c.password == "" {
		return domain.Credential{}, errors.New("service account credentials are not configured")
	}

	logger.Log.Debug("Acquiring a service credential from the auth service")

	var response loginResponse
	url := fmt.Sprintf("%s/auth/login", c.baseUrl)

	err := postJSON(ctx, c.httpClient, authServiceName, url, loginRequest{Email: c.email, Password: c.password}, &response)
	if err != nil {
		return domain.Credential{}, err
	}

	if response.AccessToken == "" {
		return domain.Credential{}, errors.New("auth service returned an empty access token")
	}

	return domain.Credential{Token: response.AccessToken, IssuedAt: time.Now()}, nil
}

// FetchUsers returns the full user roster
func (c *AuthServiceClient) FetchUsers(ctx context.Context, token string) ([]domain.User, error) {

	var users []domain.User
	url := fmt.Sprintf("%s/users", c.baseUrl)

	if err := getJSON(ctx, c.httpClient, authServiceName, url, token, &users); err != nil {
		return nil, err
	}

	logger.Log.Debugf("Fetched %d users from the auth service", len(users))

	return users, nil
}
