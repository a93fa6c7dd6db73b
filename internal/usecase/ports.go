package usecase

import (
	"context"

	"github.com/caltha/wanderlust"
)

// LocalStore defines the durable local snapshot adapter.
type LocalStore interface {
	Load(ctx context.Context) (wanderlust.AppData, error)
	Save(ctx context.Context, data wanderlust.AppData) error
}

// RemoteStore defines the shared remote document adapter.
type RemoteStore interface {
	Fetch(ctx context.Context) (wanderlust.AppData, error)
	Seed(ctx context.Context, data wanderlust.AppData)
	Push(ctx context.Context, data wanderlust.AppData) error
}

// Publisher broadcasts content change events.
type Publisher interface {
	Publish(ctx context.Context, event wanderlust.Event) error
}
