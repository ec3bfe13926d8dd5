// Package client is the HTTP request pipeline of the cloud drive client.
//
// # Overview
//
// Every call to the remote service goes through a Pipeline, which composes
// an ordered list of request stages and response stages around the transport:
//
//	request stages -> Doer.Do -> response stages -> caller
//
// NewSessionPipeline installs the two stages the application relies on:
//   - CredentialInterceptor sets "Authorization: Bearer <token>" when the
//     credential store holds a token;
//   - InvalidationInterceptor reacts to a 401 by clearing the store and
//     redirecting the Navigator to the login view, then passes the error on.
//
// No other package injects credentials or handles invalidation.
//
// # Error Handling
//
// Non-2xx responses surface as *StatusError; use errors.Is with
// ErrUnauthorized or ErrNotFound, or errors.As for the status and detail.
// Transport errors are returned exactly as the Doer produced them.
//
// Concurrency & Contexts
//
// A built Pipeline is safe for concurrent use. Calls honor the caller's
// context; the pipeline adds no timeouts of its own.
package client
