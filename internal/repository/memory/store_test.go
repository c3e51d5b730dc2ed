package memory_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
	"github.com/spec-kit/helpdesk-triage/internal/repository"
	"github.com/spec-kit/helpdesk-triage/internal/repository/memory"
)

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		store *memory.Store
		base  time.Time
	)

	ticket := func(id int64, createdAt time.Time, category string) *domain.Ticket {
		return &domain.Ticket{
			ID:          id,
			Title:       "t",
			Description: "d",
			Category:    category,
			Priority:    domain.PriorityLow,
			Status:      domain.TicketStatusOpen,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = memory.New()
		base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	})

	Describe("tickets", func() {
		It("reports missing tickets with ErrNotFound", func() {
			_, err := store.Tickets().GetByID(ctx, 1)
			Expect(err).To(MatchError(repository.ErrNotFound))

			err = store.Tickets().Update(ctx, ticket(1, base, ""))
			Expect(err).To(MatchError(repository.ErrNotFound))
		})

		It("refuses duplicate ids", func() {
			Expect(store.Tickets().Create(ctx, ticket(1, base, ""))).To(Succeed())
			Expect(store.Tickets().Create(ctx, ticket(1, base, ""))).NotTo(Succeed())
		})

		It("returns copies", func() {
			Expect(store.Tickets().Create(ctx, ticket(1, base, domain.CategoryOther))).To(Succeed())

			got, err := store.Tickets().GetByID(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			got.Category = domain.CategorySecurity

			again, _ := store.Tickets().GetByID(ctx, 1)
			Expect(again.Category).To(Equal(domain.CategoryOther))
		})

		It("lists newest first, filters and pages", func() {
			Expect(store.Tickets().Create(ctx, ticket(3, base, domain.CategoryHardware))).To(Succeed())
			Expect(store.Tickets().Create(ctx, ticket(1, base, domain.CategoryHardware))).To(Succeed())
			Expect(store.Tickets().Create(ctx, ticket(2, base.Add(time.Hour), domain.CategoryHardware))).To(Succeed())
			Expect(store.Tickets().Create(ctx, ticket(4, base.Add(2*time.Hour), domain.CategoryOther))).To(Succeed())

			items, total, err := store.Tickets().List(ctx, repository.TicketFilter{Category: domain.CategoryHardware})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(3))
			Expect(ids(items)).To(Equal([]int64{2, 1, 3}))

			items, total, err = store.Tickets().List(ctx, repository.TicketFilter{Limit: 2, Offset: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(4))
			Expect(ids(items)).To(Equal([]int64{1, 3}))

			items, _, err = store.Tickets().List(ctx, repository.TicketFilter{Limit: 2, Offset: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})

		It("counts tickets created at or after a time", func() {
			Expect(store.Tickets().Create(ctx, ticket(1, base.Add(-time.Second), ""))).To(Succeed())
			Expect(store.Tickets().Create(ctx, ticket(2, base, ""))).To(Succeed())
			Expect(store.Tickets().Create(ctx, ticket(3, base.Add(time.Second), ""))).To(Succeed())

			count, err := store.Tickets().CountCreatedSince(ctx, base)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
		})
	})

	Describe("corrections", func() {
		It("requires an existing ticket", func() {
			err := store.Corrections().Create(ctx, &domain.Correction{ID: 1, TicketID: 99})
			Expect(err).To(HaveOccurred())
		})

		It("lists a ticket's corrections newest first", func() {
			Expect(store.Tickets().Create(ctx, ticket(1, base, ""))).To(Succeed())
			Expect(store.Tickets().Create(ctx, ticket(2, base, ""))).To(Succeed())
			Expect(store.Corrections().Create(ctx, &domain.Correction{ID: 10, TicketID: 1, CorrectedAt: base})).To(Succeed())
			Expect(store.Corrections().Create(ctx, &domain.Correction{ID: 11, TicketID: 1, CorrectedAt: base.Add(time.Minute)})).To(Succeed())
			Expect(store.Corrections().Create(ctx, &domain.Correction{ID: 12, TicketID: 2, CorrectedAt: base})).To(Succeed())

			corrections, err := store.Corrections().ListByTicket(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(corrections).To(HaveLen(2))
			Expect(corrections[0].ID).To(Equal(int64(11)))
			Expect(corrections[1].ID).To(Equal(int64(10)))
		})
	})

	Describe("fixed issues", func() {
		It("filters by fixed_by and sorts by fixed_at descending", func() {
			Expect(store.FixedIssues().Create(ctx, &domain.FixedIssue{ID: 1, TicketID: 5, FixedBy: "sam", FixedAt: base})).To(Succeed())
			Expect(store.FixedIssues().Create(ctx, &domain.FixedIssue{ID: 2, TicketID: 6, FixedBy: "lee", FixedAt: base.Add(time.Minute)})).To(Succeed())
			Expect(store.FixedIssues().Create(ctx, &domain.FixedIssue{ID: 3, TicketID: 5, FixedBy: "sam", FixedAt: base.Add(2 * time.Minute)})).To(Succeed())

			items, total, err := store.FixedIssues().List(ctx, repository.FixedIssueFilter{FixedBy: "sam"})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(2))
			Expect(items[0].ID).To(Equal(int64(3)))
			Expect(items[1].ID).To(Equal(int64(1)))
		})
	})

	Describe("WithTx", func() {
		BeforeEach(func() {
			Expect(store.Tickets().Create(ctx, ticket(1, base, domain.CategoryOther))).To(Succeed())
		})

		It("commits every write when fn succeeds", func() {
			err := store.WithTx(ctx, func(tx repository.StoreProvider) error {
				t, err := tx.Tickets().GetByIDForUpdate(ctx, 1)
				if err != nil {
					return err
				}
				t.Status = domain.TicketStatusFixed
				if err := tx.FixedIssues().Create(ctx, &domain.FixedIssue{ID: 7, TicketID: 1}); err != nil {
					return err
				}
				return tx.Tickets().Update(ctx, t)
			})
			Expect(err).NotTo(HaveOccurred())

			stored, _ := store.Tickets().GetByID(ctx, 1)
			Expect(stored.Status).To(Equal(domain.TicketStatusFixed))
			_, total, _ := store.FixedIssues().List(ctx, repository.FixedIssueFilter{})
			Expect(total).To(Equal(1))
		})

		It("discards every write when fn fails", func() {
			boom := errors.New("boom")
			err := store.WithTx(ctx, func(tx repository.StoreProvider) error {
				if err := tx.Corrections().Create(ctx, &domain.Correction{ID: 5, TicketID: 1}); err != nil {
					return err
				}
				if err := tx.Tickets().Create(ctx, ticket(2, base, "")); err != nil {
					return err
				}
				return boom
			})
			Expect(err).To(MatchError(boom))

			corrections, _ := store.Corrections().ListByTicket(ctx, 1)
			Expect(corrections).To(BeEmpty())
			_, err = store.Tickets().GetByID(ctx, 2)
			Expect(err).To(MatchError(repository.ErrNotFound))
		})

		It("does not start on a canceled context", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			called := false
			err := store.WithTx(canceled, func(repository.StoreProvider) error {
				called = true
				return nil
			})

			Expect(err).To(MatchError(context.Canceled))
			Expect(called).To(BeFalse())
		})
	})
})

func ids(tickets []domain.Ticket) []int64 {
	out := make([]int64, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.ID)
	}
	return out
}
