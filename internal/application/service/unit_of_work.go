package service

import (
	"context"

	"github.com/khoahotran/career-onboard/internal/domain/insight"
	"github.com/khoahotran/career-onboard/internal/domain/user"
)

// Stores are repositories bound to one transaction.
type Stores struct {
	Users    user.Repository
	Insights insight.Repository
}

// UnitOfWork runs fn in a single transaction. The transaction commits when
// fn returns nil and rolls back on error, panic or context expiry.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
