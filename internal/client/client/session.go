package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/clouddrive/internal/client/credentials"
	"github.com/dmitrijs2005/clouddrive/internal/common"
	"github.com/dmitrijs2005/clouddrive/internal/logging"
)

// Navigator moves the application to another view.
type Navigator interface {
	Redirect(ctx context.Context, path string)
}

// CredentialInterceptor attaches the stored credential as a bearer token.
// A missing credential leaves the request anonymous; a store failure is
// logged and treated the same way.
func CredentialInterceptor(store credentials.Store, logger logging.Logger) RequestInterceptor {
	return func(ctx context.Context, req *http.Request) {
		token, ok, err := store.Get(ctx)
		if err != nil {
			logger.Warn(ctx, "credential store read failed, sending anonymous request", "error", err.Error())
			return
		}
		if !ok {
			return
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}
}

// InvalidationInterceptor clears the credential and forces navigation to
// loginPath whenever a response is a 401. The error is always passed on so
// callers can still react to it.
func InvalidationInterceptor(store credentials.Store, nav Navigator, loginPath string, logger logging.Logger) ResponseInterceptor {
	return func(ctx context.Context, resp *Response, err error) (*Response, error) {
		if !errors.Is(err, ErrUnauthorized) {
			return resp, err
		}

		logger.Info(ctx, "session invalidated by the remote service")
		if clearErr := store.Clear(ctx); clearErr != nil {
			logger.Error(ctx, "failed to clear credential", "error", clearErr.Error())
		}
		nav.Redirect(ctx, loginPath)

		return resp, err
	}
}

// NewSessionPipeline builds the pipeline used by the application services:
// credential injection on the way out and 401 invalidation on the way back.
// Extra options are applied after the session stages.
func NewSessionPipeline(baseURL string, store credentials.Store, nav Navigator, loginPath string, logger logging.Logger, opts ...Option) (*Pipeline, error) {
	base := []Option{
		WithLogger(logger),
		WithRequestInterceptor(CredentialInterceptor(store, logger)),
		WithResponseInterceptor(InvalidationInterceptor(store, nav, loginPath, logger)),
	}
	return NewPipeline(baseURL, append(base, opts...)...)
}
