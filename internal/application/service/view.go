package service

import (
	"context"
	"encoding/json"
)

// HomePath is the view invalidated after a successful profile update.
const HomePath = "/"

type ViewInvalidator interface {
	Invalidate(ctx context.Context, path, externalID string) error
}

type ViewCache interface {
	ViewInvalidator
	Get(ctx context.Context, path, externalID string) (json.RawMessage, bool, error)
	// Set overwrites the cached view. Only writers holding committed state use it.
	Set(ctx context.Context, path, externalID string, view json.RawMessage) error
	// SetIfAbsent stores view only when nothing is cached for the key and
	// reports whether it did.
	SetIfAbsent(ctx context.Context, path, externalID string, view json.RawMessage) (bool, error)
}

// HomeViewRefresher rebuilds the home view from committed state and caches it.
type HomeViewRefresher interface {
	WarmHomeView(ctx context.Context, externalID string) error
}
