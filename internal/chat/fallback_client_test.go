package chat

import (
	"context"
	"errors"
	"testing"
)

type stubLLM struct {
	response LLMResponse
	err      error
	calls    int
}

func (s *stubLLM) Complete(context.Context, LLMRequest) (LLMResponse, error) {
	s.calls++
	return s.response, s.err
}

func TestFallbackClientPrimarySucceeds(t *testing.T) {
	primary := &stubLLM{response: LLMResponse{Text: "from primary"}}
	fallback := &stubLLM{response: LLMResponse{Text: "from fallback"}}
	client := NewFallbackClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Text != "from primary" {
		t.Errorf("got %q", resp.Text)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times", fallback.calls)
	}
}

func TestFallbackClientUsesFallback(t *testing.T) {
	primary := &stubLLM{err: errors.New("primary down")}
	fallback := &stubLLM{response: LLMResponse{Text: "from fallback"}}
	client := NewFallbackClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Text != "from fallback" {
		t.Errorf("got %q", resp.Text)
	}
}

func TestFallbackClientBothFail(t *testing.T) {
	primaryErr := errors.New("primary down")
	fallbackErr := errors.New("fallback down")
	client := NewFallbackClient(&stubLLM{err: primaryErr}, &stubLLM{err: fallbackErr}, nil)

	_, err := client.Complete(context.Background(), LLMRequest{})
	if !errors.Is(err, fallbackErr) {
		t.Fatalf("expected fallback error, got %v", err)
	}
}

func TestFallbackClientNoFallback(t *testing.T) {
	primaryErr := errors.New("primary down")
	client := NewFallbackClient(&stubLLM{err: primaryErr}, nil, nil)

	_, err := client.Complete(context.Background(), LLMRequest{})
	if !errors.Is(err, primaryErr) {
		t.Fatalf("expected primary error, got %v", err)
	}
}
