// Package services contains the application services of the cloud drive
// client: the session service (AuthService) and the file transfer service
// (FileService). Both talk to the remote service only through the request
// pipeline, which owns credential injection and 401 invalidation.
package services

import (
	"context"

	"github.com/dmitrijs2005/clouddrive/internal/client/client"
)

// Requester is the slice of the request pipeline the services need.
// *client.Pipeline implements it.
type Requester interface {
	Do(ctx context.Context, r client.Request) (*client.Response, error)
}

// Notifier shows a message to the user without blocking the caller.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notify(ctx context.Context, message string) { f(ctx, message) }
