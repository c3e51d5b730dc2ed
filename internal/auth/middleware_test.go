package auth

import (
	"context"
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-triage/pkg/util/errorutil"
)

var _ = Describe("AuthMiddleware", func() {
	var (
		tokens      *TokenManager
		revocations RevocationStore
		app         *fiber.App
	)

	BeforeEach(func() {
		tokens = NewTokenManager("secret", time.Hour)
		revocations = NewMemoryRevocationStore()
		app = fiber.New(fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
			},
		})
		mw := NewAuthMiddleware(tokens, revocations, nil)
		app.Get("/private", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
			principal, ok := PrincipalFromContext(c)
			if !ok {
				return fiber.ErrInternalServerError
			}
			return c.SendString(principal.Token.ID)
		})
		app.Get("/bare", RequireAdmin(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	})

	get := func(path, authorization string) int {
		req := httptest.NewRequest(fiber.MethodGet, path, nil)
		if authorization != "" {
			req.Header.Set(fiber.HeaderAuthorization, authorization)
		}
		resp, err := app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		return resp.StatusCode
	}

	It("admits a valid admin token", func() {
		raw, _, err := tokens.GenerateToken(domain.SubjectTypeAdmin)
		Expect(err).NotTo(HaveOccurred())

		Expect(get("/private", "Bearer "+raw)).To(Equal(fiber.StatusOK))
	})

	DescribeTable("rejects bad headers",
		func(header string) {
			Expect(get("/private", header)).To(Equal(fiber.StatusUnauthorized))
		},
		Entry("missing", ""),
		Entry("wrong scheme", "Basic abc"),
		Entry("garbage token", "Bearer not-a-jwt"),
	)

	It("rejects a revoked token", func() {
		raw, token, err := tokens.GenerateToken(domain.SubjectTypeAdmin)
		Expect(err).NotTo(HaveOccurred())
		Expect(revocations.Revoke(context.Background(), token.ID, token.ExpiresAt)).To(Succeed())

		Expect(get("/private", "Bearer "+raw)).To(Equal(fiber.StatusUnauthorized))
	})

	It("forbids non-admin subjects", func() {
		raw, _, err := tokens.GenerateToken(domain.SubjectType("GUEST"))
		Expect(err).NotTo(HaveOccurred())

		Expect(get("/private", "Bearer "+raw)).To(Equal(fiber.StatusForbidden))
	})

	It("requires a principal", func() {
		Expect(get("/bare", "")).To(Equal(fiber.StatusUnauthorized))
	})
})
