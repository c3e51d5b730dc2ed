package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/helpdesk-triage/internal/config"
	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// ErrEmptyResponse is returned by a Remote whose reply carried no text.
var ErrEmptyResponse = errors.New("classifier: empty response")

// Request is the payload sent to a remote classification service.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Remote is a text-classification service. Complete returns the raw text of the reply.
type Remote interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// ProviderConfig holds the connection values shared by the provider clients.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewRemote builds the provider selected by cfg.Provider.
func NewRemote(cfg config.ClassifierConfig) (Remote, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAIRemote(ProviderConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.BaseURL, Model: cfg.OpenAIModel}), nil
	case config.ProviderAnthropic:
		return NewAnthropicRemote(ProviderConfig{APIKey: cfg.AnthropicAPIKey, BaseURL: cfg.BaseURL, Model: cfg.AnthropicModel}), nil
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", cfg.Provider)
	}
}

// FromConfig builds a Classifier wired to the configured provider. In local-only mode no
// provider client is created.
func FromConfig(cfg config.ClassifierConfig, taxonomy domain.Taxonomy, opts ...Option) (*Classifier, error) {
	var remote Remote
	if !cfg.LocalOnly {
		r, err := NewRemote(cfg)
		if err != nil {
			return nil, err
		}
		remote = r
	}
	base := []Option{
		WithTimeout(cfg.Timeout()),
		WithMaxTokens(cfg.MaxTokens),
		WithLocalOnly(cfg.LocalOnly),
	}
	return New(taxonomy, remote, append(base, opts...)...), nil
}
