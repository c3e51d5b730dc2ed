package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreProvider exposes the repositories a lifecycle operation needs.
type StoreProvider interface {
	Tickets() TicketRepository
	Corrections() CorrectionRepository
	FixedIssues() FixedIssueRepository
}

// TxRunner runs fn within a transaction; the stores handed to fn are bound to it.
// Returning an error from fn rolls back every write made through those stores.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

// Store is the full persistence surface used by the services.
type Store interface {
	StoreProvider
	TxRunner
}

type stores struct {
	tickets     TicketRepository
	corrections CorrectionRepository
	fixedIssues FixedIssueRepository
}

func newStores(db DBTX) *stores {
	return &stores{
		tickets:     NewTicketRepository(db),
		corrections: NewCorrectionRepository(db),
		fixedIssues: NewFixedIssueRepository(db),
	}
}

func (s *stores) Tickets() TicketRepository         { return s.tickets }
func (s *stores) Corrections() CorrectionRepository { return s.corrections }
func (s *stores) FixedIssues() FixedIssueRepository { return s.fixedIssues }

type pgStore struct {
	*stores
	pool *pgxpool.Pool
}

// NewPostgresStore builds a Store backed by pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{stores: newStores(pool), pool: pool}
}

func (s *pgStore) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	// no-op once committed
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(newStores(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
