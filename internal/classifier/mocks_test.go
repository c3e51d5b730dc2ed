package classifier_test

import (
	"context"

	"github.com/spec-kit/helpdesk-triage/internal/classifier"
)

type mockRemote struct {
	completeFn func(ctx context.Context, req classifier.Request) (string, error)
	calls      int
	lastReq    classifier.Request
}

func (m *mockRemote) Complete(ctx context.Context, req classifier.Request) (string, error) {
	m.calls++
	m.lastReq = req
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return "", nil
}

func (m *mockRemote) Name() string {
	return "mock"
}

func replying(text string) func(context.Context, classifier.Request) (string, error) {
	return func(context.Context, classifier.Request) (string, error) {
		return text, nil
	}
}
