// Package memory is an in-process repository.Store used when no database is configured
// and by service tests. Transactions serialize on a single mutex and roll back by
// restoring a snapshot.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
	"github.com/spec-kit/helpdesk-triage/internal/repository"
)

type state struct {
	tickets     map[int64]domain.Ticket
	corrections []domain.Correction
	fixedIssues []domain.FixedIssue
}

func (st state) clone() state {
	tickets := make(map[int64]domain.Ticket, len(st.tickets))
	for id, t := range st.tickets {
		tickets[id] = t
	}
	return state{
		tickets:     tickets,
		corrections: append([]domain.Correction(nil), st.corrections...),
		fixedIssues: append([]domain.FixedIssue(nil), st.fixedIssues...),
	}
}

var _ repository.Store = (*Store)(nil)

// Store implements repository.Store in memory.
type Store struct {
	mu sync.Mutex
	st state
}

// New returns an empty store.
func New() *Store {
	return &Store{st: state{tickets: map[int64]domain.Ticket{}}}
}

func (s *Store) Tickets() repository.TicketRepository         { return ticketRepo{store: s} }
func (s *Store) Corrections() repository.CorrectionRepository { return correctionRepo{store: s} }
func (s *Store) FixedIssues() repository.FixedIssueRepository { return fixedIssueRepo{store: s} }

// WithTx holds the store lock for the duration of fn. Stores handed to fn must not be used after it returns.
func (s *Store) WithTx(ctx context.Context, fn func(stores repository.StoreProvider) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(txStores{store: s}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

type txStores struct {
	store *Store
}

func (t txStores) Tickets() repository.TicketRepository {
	return ticketRepo{store: t.store, inTx: true}
}

func (t txStores) Corrections() repository.CorrectionRepository {
	return correctionRepo{store: t.store, inTx: true}
}

func (t txStores) FixedIssues() repository.FixedIssueRepository {
	return fixedIssueRepo{store: t.store, inTx: true}
}

// access runs fn against the state, taking the lock unless a transaction already holds it.
func access(s *Store, inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(&s.st)
}

type ticketRepo struct {
	store *Store
	inTx  bool
}

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	return access(r.store, r.inTx, func(st *state) error {
		if _, exists := st.tickets[ticket.ID]; exists {
			return fmt.Errorf("ticket %d already exists", ticket.ID)
		}
		st.tickets[ticket.ID] = *ticket
		return nil
	})
}

func (r ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	return access(r.store, r.inTx, func(st *state) error {
		if _, exists := st.tickets[ticket.ID]; !exists {
			return repository.ErrNotFound
		}
		st.tickets[ticket.ID] = *ticket
		return nil
	})
}

func (r ticketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	var found domain.Ticket
	err := access(r.store, r.inTx, func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r ticketRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	var matched []domain.Ticket
	_ = access(r.store, r.inTx, func(st *state) error {
		for _, t := range st.tickets {
			if filter.Status != "" && t.Status != filter.Status {
				continue
			}
			if filter.Category != "" && t.Category != filter.Category {
				continue
			}
			if filter.Priority != "" && t.Priority != filter.Priority {
				continue
			}
			matched = append(matched, t)
		}
		return nil
	})

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r ticketRepo) CountCreatedSince(_ context.Context, since time.Time) (int, error) {
	count := 0
	_ = access(r.store, r.inTx, func(st *state) error {
		for _, t := range st.tickets {
			if !t.CreatedAt.Before(since) {
				count++
			}
		}
		return nil
	})
	return count, nil
}

type correctionRepo struct {
	store *Store
	inTx  bool
}

func (r correctionRepo) Create(_ context.Context, c *domain.Correction) error {
	return access(r.store, r.inTx, func(st *state) error {
		if _, exists := st.tickets[c.TicketID]; !exists {
			return fmt.Errorf("correction references unknown ticket %d", c.TicketID)
		}
		st.corrections = append(st.corrections, *c)
		return nil
	})
}

func (r correctionRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Correction, error) {
	var result []domain.Correction
	_ = access(r.store, r.inTx, func(st *state) error {
		for _, c := range st.corrections {
			if c.TicketID == ticketID {
				result = append(result, c)
			}
		}
		return nil
	})

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CorrectedAt.Equal(result[j].CorrectedAt) {
			return result[i].CorrectedAt.After(result[j].CorrectedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

type fixedIssueRepo struct {
	store *Store
	inTx  bool
}

func (r fixedIssueRepo) Create(_ context.Context, issue *domain.FixedIssue) error {
	return access(r.store, r.inTx, func(st *state) error {
		st.fixedIssues = append(st.fixedIssues, *issue)
		return nil
	})
}

func (r fixedIssueRepo) List(_ context.Context, filter repository.FixedIssueFilter) ([]domain.FixedIssue, int, error) {
	var matched []domain.FixedIssue
	_ = access(r.store, r.inTx, func(st *state) error {
		for _, issue := range st.fixedIssues {
			if filter.Category != "" && issue.Category != filter.Category {
				continue
			}
			if filter.Priority != "" && issue.Priority != filter.Priority {
				continue
			}
			if filter.FixedBy != "" && issue.FixedBy != filter.FixedBy {
				continue
			}
			matched = append(matched, issue)
		}
		return nil
	})

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].FixedAt.Equal(matched[j].FixedAt) {
			return matched[i].FixedAt.After(matched[j].FixedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		if limit <= 0 && offset == 0 {
			return items
		}
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
