package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"filesend-bot/internal/domain/retry"
)

func TestPolicy_CalculateDelay(t *testing.T) {
	tests := []struct {
		name     string
		policy   retry.Policy
		attempt  int
		expected time.Duration
	}{
		{
			name:     "attempt 1",
			policy:   retry.FixedPolicy(3, 100*time.Millisecond),
			attempt:  1,
			expected: 100 * time.Millisecond,
		},
		{
			name:     "attempt 5 keeps the same delay",
			policy:   retry.FixedPolicy(3, 100*time.Millisecond),
			attempt:  5,
			expected: 100 * time.Millisecond,
		},
		{
			name:     "attempt 0 has no delay",
			policy:   retry.FixedPolicy(3, time.Second),
			attempt:  0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.CalculateDelay(tt.attempt)
			if got != tt.expected {
				t.Errorf("CalculateDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestFixedPolicy_Attempts(t *testing.T) {
	if got := retry.FixedPolicy(3, time.Millisecond).Attempts(); got != 3 {
		t.Errorf("Attempts() = %d, want 3", got)
	}
	if got := retry.FixedPolicy(0, time.Millisecond).Attempts(); got != 1 {
		t.Errorf("Attempts() = %d, want 1", got)
	}
	if got := retry.FixedPolicy(3, -time.Second).CalculateDelay(1); got != 0 {
		t.Errorf("CalculateDelay(1) = %v, want 0 for a negative delay", got)
	}
}

func TestExecutor_Execute(t *testing.T) {
	transient := errors.New("transient")

	tests := []struct {
		name      string
		failUntil int
		permanent bool
		wantCalls int
		wantErr   bool
	}{
		{name: "succeeds first try", failUntil: 0, wantCalls: 1},
		{name: "succeeds on third try", failUntil: 2, wantCalls: 3},
		{name: "exhausts attempts", failUntil: 10, wantCalls: 3, wantErr: true},
		{name: "permanent error stops immediately", failUntil: 10, permanent: true, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			retried := 0
			executor := retry.NewExecutor(retry.FixedPolicy(3, time.Millisecond)).
				OnRetry(func(int, error) { retried++ })

			err := executor.Execute(context.Background(), func(ctx context.Context, attempt int) error {
				calls++
				if calls <= tt.failUntil {
					if tt.permanent {
						return retry.Permanent(transient)
					}
					return transient
				}
				return nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if retried != tt.wantCalls-1 && !tt.permanent {
				t.Errorf("retried = %d, want %d", retried, tt.wantCalls-1)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, transient) {
				t.Errorf("err = %v, want %v", err, transient)
			}
		})
	}
}

func TestExecutor_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.NewExecutor(retry.FixedPolicy(3, time.Second)).Execute(ctx, func(context.Context, int) error {
		t.Fatal("function must not run with a cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestExecuteWithResult(t *testing.T) {
	calls := 0
	got, err := retry.ExecuteWithResult(context.Background(), retry.FixedPolicy(2, time.Millisecond), func(context.Context, int) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("first call fails")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("result = %q, want ok", got)
	}
}
