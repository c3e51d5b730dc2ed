package auth

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("memory revocation store", func() {
	var (
		ctx   context.Context
		now   time.Time
		store *memoryRevocationStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		store = NewMemoryRevocationStore().(*memoryRevocationStore)
		store.clock = func() time.Time { return now }
	})

	It("remembers a revoked id until its expiry", func() {
		Expect(store.Revoke(ctx, "abc", now.Add(time.Minute))).To(Succeed())

		revoked, err := store.IsRevoked(ctx, "abc")
		Expect(err).NotTo(HaveOccurred())
		Expect(revoked).To(BeTrue())

		now = now.Add(2 * time.Minute)
		revoked, err = store.IsRevoked(ctx, "abc")
		Expect(err).NotTo(HaveOccurred())
		Expect(revoked).To(BeFalse())
	})

	It("ignores tokens that already expired", func() {
		Expect(store.Revoke(ctx, "old", now.Add(-time.Second))).To(Succeed())

		Expect(store.revoked).NotTo(HaveKey("old"))
	})
})

var _ = Describe("memory login limiter", func() {
	var (
		ctx     context.Context
		now     time.Time
		limiter *memoryLoginLimiter
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter = NewMemoryLoginLimiter(2, time.Minute).(*memoryLoginLimiter)
		limiter.clock = func() time.Time { return now }
	})

	allowed := func(key string) bool {
		ok, err := limiter.Allow(ctx, key)
		Expect(err).NotTo(HaveOccurred())
		return ok
	}

	It("blocks a key once it reaches the limit", func() {
		Expect(allowed("a")).To(BeTrue())
		Expect(limiter.RecordFailure(ctx, "a")).To(Succeed())
		Expect(allowed("a")).To(BeTrue())
		Expect(limiter.RecordFailure(ctx, "a")).To(Succeed())

		Expect(allowed("a")).To(BeFalse())
		Expect(allowed("b")).To(BeTrue())
	})

	It("forgets failures when the window passes", func() {
		Expect(limiter.RecordFailure(ctx, "a")).To(Succeed())
		Expect(limiter.RecordFailure(ctx, "a")).To(Succeed())

		now = now.Add(61 * time.Second)

		Expect(allowed("a")).To(BeTrue())
		Expect(limiter.RecordFailure(ctx, "a")).To(Succeed())
		Expect(allowed("a")).To(BeTrue())
	})

	It("resets a key", func() {
		Expect(limiter.RecordFailure(ctx, "a")).To(Succeed())
		Expect(limiter.RecordFailure(ctx, "a")).To(Succeed())

		Expect(limiter.Reset(ctx, "a")).To(Succeed())

		Expect(allowed("a")).To(BeTrue())
	})

	It("never blocks when the limit is disabled", func() {
		limiter.maxAttempts = 0
		for i := 0; i < 10; i++ {
			Expect(limiter.RecordFailure(ctx, "a")).To(Succeed())
		}

		Expect(allowed("a")).To(BeTrue())
	})
})
