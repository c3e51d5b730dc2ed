package classifier_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/helpdesk-triage/internal/classifier"
	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

var _ = Describe("Classifier", func() {
	var (
		ctx      context.Context
		taxonomy domain.Taxonomy
		remote   *mockRemote
		c        *classifier.Classifier
	)

	BeforeEach(func() {
		ctx = context.Background()
		taxonomy = domain.DefaultTaxonomy()
		remote = &mockRemote{}
		c = classifier.New(taxonomy, remote, classifier.WithTimeout(50*time.Millisecond))
	})

	Describe("empty text", func() {
		It("returns other/Low/0 without calling the remote service", func() {
			result := c.Classify(ctx, "")

			Expect(result.Classification).To(Equal(domain.Classification{
				Category:   domain.CategoryOther,
				Priority:   domain.PriorityLow,
				Confidence: 0,
			}))
			Expect(result.Source).To(Equal(classifier.SourceEmpty))
			Expect(remote.calls).To(BeZero())
		})
	})

	Describe("remote path", func() {
		It("sends a prompt with the taxonomy, the text and deterministic decoding", func() {
			remote.completeFn = replying(`{"category":"software","priority":"Low","confidence":0.9}`)
			c = classifier.New(taxonomy, remote, classifier.WithMaxTokens(123))

			c.Classify(ctx, "Excel crashes on start")

			Expect(remote.calls).To(Equal(1))
			Expect(remote.lastReq.Prompt).To(ContainSubstring("Excel crashes on start"))
			Expect(remote.lastReq.Prompt).To(ContainSubstring("networking, hardware, microsoft 365, software, security, other"))
			Expect(remote.lastReq.Prompt).To(ContainSubstring("Low, Medium, High, Critical"))
			Expect(remote.lastReq.Prompt).To(ContainSubstring("Respond ONLY with valid JSON"))
			Expect(remote.lastReq.MaxTokens).To(Equal(123))
			Expect(remote.lastReq.Temperature).To(BeZero())
		})

		It("uses a valid reply as is", func() {
			remote.completeFn = replying(`{"category":"security","priority":"Critical","confidence":0.92}`)

			result := c.Classify(ctx, "ransomware note on desktop")

			Expect(result.Source).To(Equal(classifier.SourceRemote))
			Expect(result.Reason).To(Equal(classifier.ReasonNone))
			Expect(result.Classification).To(Equal(domain.Classification{
				Category:   domain.CategorySecurity,
				Priority:   domain.PriorityCritical,
				Confidence: 0.92,
			}))
		})

		It("lower-cases the category before validation", func() {
			remote.completeFn = replying(`{"category":"Microsoft 365","priority":"High","confidence":0.7}`)

			result := c.Classify(ctx, "Teams will not start")

			Expect(result.Category).To(Equal(domain.CategoryMicrosoft365))
		})

		DescribeTable("normalizes fields against the taxonomy",
			func(reply string, expected domain.Classification) {
				remote.completeFn = replying(reply)

				result := c.Classify(ctx, "something is broken")

				Expect(result.Source).To(Equal(classifier.SourceRemote))
				Expect(result.Classification).To(Equal(expected))
			},
			Entry("unknown category becomes other",
				`{"category":"plumbing","priority":"High","confidence":0.4}`,
				domain.Classification{Category: "other", Priority: "High", Confidence: 0.4}),
			Entry("missing category becomes other",
				`{"priority":"Low","confidence":0.3}`,
				domain.Classification{Category: "other", Priority: "Low", Confidence: 0.3}),
			Entry("priority matching is case-sensitive",
				`{"category":"software","priority":"high","confidence":0.3}`,
				domain.Classification{Category: "software", Priority: "Medium", Confidence: 0.3}),
			Entry("missing priority becomes Medium",
				`{"category":"hardware","confidence":0.3}`,
				domain.Classification{Category: "hardware", Priority: "Medium", Confidence: 0.3}),
			Entry("non-string priority becomes Medium",
				`{"category":"hardware","priority":3,"confidence":0.3}`,
				domain.Classification{Category: "hardware", Priority: "Medium", Confidence: 0.3}),
			Entry("missing confidence becomes 0",
				`{"category":"networking","priority":"High"}`,
				domain.Classification{Category: "networking", Priority: "High", Confidence: 0}),
			Entry("numeric string confidence is parsed",
				`{"category":"networking","priority":"High","confidence":"0.75"}`,
				domain.Classification{Category: "networking", Priority: "High", Confidence: 0.75}),
			Entry("out of range confidence is preserved",
				`{"category":"networking","priority":"High","confidence":1.7}`,
				domain.Classification{Category: "networking", Priority: "High", Confidence: 1.7}),
			Entry("negative confidence is preserved",
				`{"category":"networking","priority":"High","confidence":-0.2}`,
				domain.Classification{Category: "networking", Priority: "High", Confidence: -0.2}),
		)
	})

	Describe("fallback path", func() {
		It("classifies with keyword rules when the service is unavailable", func() {
			remote.completeFn = func(context.Context, classifier.Request) (string, error) {
				return "", errors.New("connection refused")
			}

			result := c.Classify(ctx, "My printer is on fire")

			Expect(result.Source).To(Equal(classifier.SourceFallback))
			Expect(result.Reason).To(Equal(classifier.ReasonUnavailable))
			Expect(result.Classification).To(Equal(domain.Classification{
				Category:   domain.CategoryHardware,
				Priority:   domain.PriorityMedium,
				Confidence: 0.35,
			}))
		})

		It("treats a hung service as a timeout", func() {
			remote.completeFn = func(ctx context.Context, _ classifier.Request) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}

			result := c.Classify(ctx, "need VPN access")

			Expect(result.Reason).To(Equal(classifier.ReasonTimeout))
			Expect(result.Classification).To(Equal(domain.Classification{
				Category:   domain.CategoryNetworking,
				Priority:   domain.PriorityHigh,
				Confidence: 0.5,
			}))
		})

		It("reports an empty reply", func() {
			remote.completeFn = replying("   ")

			result := c.Classify(ctx, "suspected phishing email")

			Expect(result.Reason).To(Equal(classifier.ReasonEmptyResponse))
			Expect(result.Classification).To(Equal(domain.Classification{
				Category:   domain.CategorySecurity,
				Priority:   domain.PriorityCritical,
				Confidence: 0.6,
			}))
		})

		It("reports an empty reply signalled by the provider", func() {
			remote.completeFn = func(context.Context, classifier.Request) (string, error) {
				return "", classifier.ErrEmptyResponse
			}

			result := c.Classify(ctx, "app is slow")

			Expect(result.Reason).To(Equal(classifier.ReasonEmptyResponse))
		})

		DescribeTable("treats malformed replies as failures",
			func(reply string) {
				remote.completeFn = replying(reply)

				result := c.Classify(ctx, "cannot reset my password")

				Expect(result.Source).To(Equal(classifier.SourceFallback))
				Expect(result.Reason).To(Equal(classifier.ReasonMalformedResponse))
				Expect(result.Classification).To(Equal(domain.Classification{
					Category:   domain.CategoryMicrosoft365,
					Priority:   domain.PriorityHigh,
					Confidence: 0.5,
				}))
			},
			Entry("prose", "Sure! Here is the JSON you asked for."),
			Entry("JSON with trailing text", `{"category":"software"} thanks`),
			Entry("a JSON array", `["software","Low",0.5]`),
			Entry("a JSON string", `"software"`),
			Entry("JSON null", `null`),
			Entry("null category", `{"category":null,"priority":"Low","confidence":0.5}`),
			Entry("numeric category", `{"category":7,"priority":"Low","confidence":0.5}`),
			Entry("non-numeric confidence", `{"category":"software","priority":"Low","confidence":"high"}`),
			Entry("null confidence", `{"category":"software","priority":"Low","confidence":null}`),
			Entry("overflowing confidence", `{"category":"software","priority":"Low","confidence":1e999}`),
			Entry("overflowing negative confidence", `{"category":"software","priority":"Low","confidence":-1e999}`),
			Entry("NaN confidence string", `{"category":"software","priority":"Low","confidence":"NaN"}`),
			Entry("Infinity confidence string", `{"category":"software","priority":"Low","confidence":"Infinity"}`),
		)

		It("never calls out in local-only mode", func() {
			c = classifier.New(taxonomy, remote, classifier.WithLocalOnly(true))

			result := c.Classify(ctx, "internet is down")

			Expect(remote.calls).To(BeZero())
			Expect(result.Source).To(Equal(classifier.SourceFallback))
			Expect(result.Reason).To(Equal(classifier.ReasonLocalOnly))
			Expect(result.Category).To(Equal(domain.CategoryNetworking))
		})

		It("treats a nil remote as local-only", func() {
			c = classifier.New(taxonomy, nil)

			result := c.Classify(ctx, "laptop keyboard sticky")

			Expect(result.Reason).To(Equal(classifier.ReasonLocalOnly))
			Expect(result.Category).To(Equal(domain.CategoryHardware))
		})
	})

	It("always returns taxonomy members for non-empty text", func() {
		replies := []string{
			`{"category":"??","priority":"urgent","confidence":2}`,
			`not json`,
			`{}`,
			`{"category":"security","priority":"Low"}`,
		}
		for _, reply := range replies {
			remote.completeFn = replying(reply)
			for _, text := range []string{"x", "printer", "mfa prompt loop", "phish"} {
				result := c.Classify(ctx, text)
				Expect(taxonomy.HasCategory(result.Category)).To(BeTrue(), "category %q for %q", result.Category, reply)
				Expect(taxonomy.HasPriority(result.Priority)).To(BeTrue(), "priority %q for %q", result.Priority, reply)
			}
		}
	})
})

var _ = Describe("Heuristic", func() {
	DescribeTable("applies ordered keyword rules",
		func(text string, expected domain.Classification) {
			Expect(classifier.Heuristic(text)).To(Equal(expected))
		},
		Entry("password", "Forgot my PASSWORD", domain.Classification{Category: "microsoft 365", Priority: "High", Confidence: 0.5}),
		Entry("login", "login loop", domain.Classification{Category: "microsoft 365", Priority: "High", Confidence: 0.5}),
		Entry("mfa", "MFA codes never arrive", domain.Classification{Category: "microsoft 365", Priority: "High", Confidence: 0.5}),
		Entry("printer", "My printer is on fire", domain.Classification{Category: "hardware", Priority: "Medium", Confidence: 0.35}),
		Entry("hard drive", "hard drive clicking", domain.Classification{Category: "hardware", Priority: "Medium", Confidence: 0.35}),
		Entry("mouse", "mouse is dead", domain.Classification{Category: "hardware", Priority: "Medium", Confidence: 0.35}),
		Entry("vpn", "need VPN access", domain.Classification{Category: "networking", Priority: "High", Confidence: 0.5}),
		Entry("internet", "no internet on floor 3", domain.Classification{Category: "networking", Priority: "High", Confidence: 0.5}),
		Entry("phishing", "suspected phishing email", domain.Classification{Category: "security", Priority: "Critical", Confidence: 0.6}),
		Entry("ransom", "ransom note", domain.Classification{Category: "security", Priority: "Critical", Confidence: 0.6}),
		Entry("default", "Excel crashes", domain.Classification{Category: "software", Priority: "Medium", Confidence: 0.25}),
		Entry("password beats printer", "printer asks for a password", domain.Classification{Category: "microsoft 365", Priority: "High", Confidence: 0.5}),
		Entry("hardware beats network", "network printer offline", domain.Classification{Category: "hardware", Priority: "Medium", Confidence: 0.35}),
	)
})
