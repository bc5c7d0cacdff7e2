package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/career-onboard/internal/application/service"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

var _ service.UnitOfWork = (*PostgresUnitOfWork)(nil)

// PostgresUnitOfWork hands repositories bound to one pgx transaction to the
// callback and commits or rolls back around it.
type PostgresUnitOfWork struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresUnitOfWork(pool *pgxpool.Pool, log logger.Logger) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{pool: pool, logger: log}
}

// Do rolls back when fn returns an error, when fn panics (the panic is
// re-raised afterwards) and when ctx expires before commit.
func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s service.Stores) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			u.rollback(tx, nil)
			panic(p)
		}
	}()

	stores := service.Stores{
		Users:    NewPostgresUserRepo(tx, u.logger),
		Insights: NewPostgresInsightRepo(tx, u.logger),
	}

	if err := fn(ctx, stores); err != nil {
		u.rollback(tx, err)
		return err
	}

	if err := ctx.Err(); err != nil {
		u.rollback(tx, err)
		return fmt.Errorf("transaction deadline exceeded before commit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (u *PostgresUnitOfWork) rollback(tx pgx.Tx, cause error) {
	// ctx may already be done; rollback must still reach the server.
	if err := tx.Rollback(context.Background()); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		u.logger.Error("failed to rollback transaction", err)
		return
	}
	if cause != nil {
		u.logger.Warn("transaction rolled back: " + cause.Error())
	}
}
