package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/clouddrive/internal/client/client"
	"github.com/dmitrijs2005/clouddrive/internal/client/credentials"
	"github.com/dmitrijs2005/clouddrive/internal/client/models"
	"github.com/dmitrijs2005/clouddrive/internal/logging"
)

// AuthService defines the session operations.
//
// Contract:
//   - Init: startup hook; reports whether a stored credential was found.
//   - Register: create an account; remote errors are returned uninterpreted.
//   - Login: exchange email/password for a token and store it.
//   - Logout: drop the stored credential; never calls the service.
//   - CurrentUser: fetch the caller's own account, never cached.
//   - IsAuthenticated: whether a credential is stored; no network call.
type AuthService interface {
	Init(ctx context.Context) bool
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.Token, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	IsAuthenticated(ctx context.Context) bool
}

type authService struct {
	api    Requester
	store  credentials.Store
	logger logging.Logger
}

// NewAuthService constructs an AuthService over the pipeline and the
// credential store the pipeline reads from.
func NewAuthService(api Requester, store credentials.Store, logger logging.Logger) AuthService {
	return &authService{api: api, store: store, logger: logger}
}

func (a *authService) Init(ctx context.Context) bool {
	ok := a.IsAuthenticated(ctx)
	a.logger.Info(ctx, "session restored", "authenticated", ok)
	return ok
}

// Register posts the credentials as JSON to /users.
func (a *authService) Register(ctx context.Context, email, password string) (*models.User, error) {
	body, err := json.Marshal(models.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("encode registration: %w", err)
	}

	resp, err := a.api.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/users",
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	var user models.User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login posts a form with the email in the "username" field. A response
// without access_token leaves the store untouched and is not an error.
func (a *authService) Login(ctx context.Context, email, password string) (*models.Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	resp, err := a.api.Do(ctx, client.Request{
		Method:      http.MethodPost,
		Path:        "/token",
		Body:        strings.NewReader(form.Encode()),
		ContentType: client.ContentTypeForm,
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	var token models.Token
	if err := resp.Decode(&token); err != nil {
		return nil, err
	}

	if token.AccessToken == "" {
		a.logger.Warn(ctx, "login response carried no access token")
		return &token, nil
	}

	if err := a.store.Set(ctx, token.AccessToken); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}
	return &token, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	resp, err := a.api.Do(ctx, client.Request{Path: "/users/me"})
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	var user models.User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// IsAuthenticated treats an unreadable store as "no session".
func (a *authService) IsAuthenticated(ctx context.Context) bool {
	_, ok, err := a.store.Get(ctx)
	if err != nil {
		a.logger.Warn(ctx, "credential store read failed", "error", err.Error())
		return false
	}
	return ok
}
