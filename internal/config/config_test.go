package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/helpdesk-triage/internal/config"
)

var managedKeys = []string{
	"CONFIG_FILE", "APP_PORT", "POSTGRES_DSN", "REDIS_ENABLED", "LOG_LEVEL",
	"CLASSIFIER_PROVIDER", "CLASSIFIER_TIMEOUT_SECONDS", "CLASSIFIER_LOCAL_ONLY",
	"SESSION_HOURS", "ADMIN_TICKETS_PER_PAGE", "REDIS_DB", "APP_ENV", "AUTH_JWT_SECRET",
	"NOTIFY_WEBHOOK_URL", "NOTIFY_WEBHOOK_TIMEOUT_SECONDS",
}

func setEnv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
}

var _ = Describe("Load", func() {
	BeforeEach(func() {
		saved := map[string]string{}
		for _, key := range managedKeys {
			if val, ok := os.LookupEnv(key); ok {
				saved[key] = val
			}
			Expect(os.Unsetenv(key)).To(Succeed())
		}
		DeferCleanup(func() {
			for _, key := range managedKeys {
				_ = os.Unsetenv(key)
				if val, ok := saved[key]; ok {
					_ = os.Setenv(key, val)
				}
			}
		})
	})

	It("applies defaults", func() {
		cfg, err := config.Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.App.Addr()).To(Equal("0.0.0.0:8080"))
		Expect(cfg.Postgres.DSN).To(BeEmpty())
		Expect(cfg.Redis.Enabled).To(BeTrue())
		Expect(cfg.Classifier.Provider).To(Equal(config.ProviderOpenAI))
		Expect(cfg.Classifier.Timeout()).To(Equal(15 * time.Second))
		Expect(cfg.Classifier.MaxTokens).To(Equal(200))
		Expect(cfg.Auth.SessionTTL()).To(Equal(time.Hour))
		Expect(cfg.Pagination.AdminTicketsPerPage).To(Equal(15))
		Expect(cfg.Auth.JWTSecret).To(Equal(config.DefaultJWTSecret))
		Expect(cfg.Notification.WebhookURL).To(BeEmpty())
		Expect(cfg.Notification.WebhookTimeout()).To(Equal(5 * time.Second))
	})

	It("reads a YAML file beneath the environment", func() {
		path := filepath.Join(GinkgoT().TempDir(), "helpdesk.yaml")
		Expect(os.WriteFile(path, []byte(
			"app_port: 9090\n"+
				"log_level: debug\n"+
				"classifier_provider: anthropic\n"+
				"classifier_local_only: true\n"+
				"session_hours: 8\n",
		), 0o600)).To(Succeed())
		setEnv("CONFIG_FILE", path)
		setEnv("LOG_LEVEL", "warn")

		cfg, err := config.Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.App.Port).To(Equal("9090"))
		Expect(cfg.Logger.Level).To(Equal("warn"))
		Expect(cfg.Classifier.Provider).To(Equal(config.ProviderAnthropic))
		Expect(cfg.Classifier.LocalOnly).To(BeTrue())
		Expect(cfg.Auth.SessionTTL()).To(Equal(8 * time.Hour))
	})

	It("fails on a missing config file", func() {
		setEnv("CONFIG_FILE", filepath.Join(GinkgoT().TempDir(), "absent.yaml"))

		_, err := config.Load()

		Expect(err).To(MatchError(ContainSubstring("read config file")))
	})

	It("rejects an unknown classifier provider", func() {
		setEnv("CLASSIFIER_PROVIDER", "cohere")

		_, err := config.Load()

		Expect(err).To(MatchError(ContainSubstring("CLASSIFIER_PROVIDER")))
	})

	It("rejects a non-numeric redis db", func() {
		setEnv("REDIS_DB", "zero")

		_, err := config.Load()

		Expect(err).To(MatchError(ContainSubstring("REDIS_DB")))
	})

	It("keeps the classifier timeout finite", func() {
		setEnv("CLASSIFIER_TIMEOUT_SECONDS", "-3")

		cfg, err := config.Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Classifier.Timeout()).To(Equal(15 * time.Second))
	})

	It("ignores malformed numbers and booleans", func() {
		setEnv("ADMIN_TICKETS_PER_PAGE", "lots")
		setEnv("REDIS_ENABLED", "maybe")

		cfg, err := config.Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Pagination.AdminTicketsPerPage).To(Equal(15))
		Expect(cfg.Redis.Enabled).To(BeTrue())
	})

	It("rejects the default JWT secret outside development", func() {
		setEnv("APP_ENV", "production")

		_, err := config.Load()

		Expect(err).To(MatchError(ContainSubstring("AUTH_JWT_SECRET")))
	})

	It("accepts an explicit JWT secret outside development", func() {
		setEnv("APP_ENV", "production")
		setEnv("AUTH_JWT_SECRET", "a-real-secret")

		cfg, err := config.Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Auth.JWTSecret).To(Equal("a-real-secret"))
	})

	It("reads the webhook settings", func() {
		setEnv("NOTIFY_WEBHOOK_URL", "https://hooks.example.com/tickets")
		setEnv("NOTIFY_WEBHOOK_TIMEOUT_SECONDS", "2")

		cfg, err := config.Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Notification.WebhookURL).To(Equal("https://hooks.example.com/tickets"))
		Expect(cfg.Notification.WebhookTimeout()).To(Equal(2 * time.Second))
	})
})
