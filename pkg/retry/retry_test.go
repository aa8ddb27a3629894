package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

type statusErr struct {
	retryable bool
}

func (e *statusErr) Error() string     { return "status error" }
func (e *statusErr) IsRetryable() bool { return e.retryable }

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	wantErr := errors.New("always failing")
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
	if calls != 4 { // initial attempt + 3 retries
		t.Errorf("expected 4 calls, got %d", calls)
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &Config{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 1}
	err := Do(ctx, cfg, func() error { return errors.New("fail") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDoWithResult_StopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := &statusErr{retryable: false}
	_, err := DoWithResult(context.Background(), fastConfig(), func() (int, error) {
		calls++
		return 0, permanent
	})
	if err != permanent {
		t.Fatalf("expected %v, got %v", permanent, err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call (no retries), got %d", calls)
	}
}

func TestDoWithResult_ReturnsValue(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastConfig(), func() (string, error) {
		calls++
		if calls < 2 {
			return "", &statusErr{retryable: true}
		}
		return "page", nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got != "page" {
		t.Errorf("expected %q, got %q", "page", got)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"retryable interface", &statusErr{retryable: true}, true},
		{"non-retryable interface", &statusErr{retryable: false}, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"http 503", errors.New("unexpected status 503"), true},
		{"http 429", errors.New("HTTP 429 Too Many Requests"), true},
		{"plain failure", errors.New("syntax error at or near SELECT"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestDoIfRetryable_PermanentErrorFailsFast(t *testing.T) {
	calls := 0
	permanent := &statusErr{retryable: false}
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		calls++
		return permanent
	})
	if err != permanent {
		t.Fatalf("expected %v, got %v", permanent, err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
