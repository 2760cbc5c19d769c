package retry

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/conango/conango/pkg/errors"
	"github.com/conango/conango/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.New(logging.Quiet)
}

func TestSucceedsOnFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, 0.01, quietLogger(), func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Do() = %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetriesNetworkFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, 0.01, quietLogger(), func() error {
		calls++
		if calls < 3 {
			return errors.New(errors.CodeNetwork, "connection reset")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do() = %v, want nil after successful third attempt", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestReturnsLastNetworkErrorAfterExhaustion(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 2, 0.01, quietLogger(), func() error {
		calls++
		return errors.New(errors.CodeNetwork, "timeout on attempt %d", calls)
	})

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if !errors.Is(err, errors.CodeNetwork) {
		t.Fatalf("Do() = %v, want network error", err)
	}
	if got := errors.UserMessage(err); got != "timeout on attempt 2" {
		t.Errorf("last error = %q, want the final attempt's error", got)
	}
}

func TestDoesNotRetryOtherFailureKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"dependency resolution", errors.New(errors.CodeDependencyResolution, "unresolvable")},
		{"local recipe", errors.New(errors.CodeLocalRecipe, "missing conanfile.py")},
		{"plain error", stderrors.New("plain failure")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), 3, 0.01, quietLogger(), func() error {
				calls++
				return tt.err
			})

			if calls != 1 {
				t.Errorf("calls = %d, want 1 (no retry)", calls)
			}
			if err != tt.err {
				t.Errorf("Do() = %v, want original error %v unmodified", err, tt.err)
			}
		})
	}
}

func TestAttemptsBelowOneTreatedAsOne(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 0, 0.01, quietLogger(), func() error {
		calls++
		return errors.New(errors.CodeNetwork, "down")
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, errors.CodeNetwork) {
		t.Errorf("Do() = %v, want network error", err)
	}
}

func TestCancellationDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, 3, 5, quietLogger(), func() error {
		calls++
		return errors.New(errors.CodeNetwork, "down")
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (cancelled before second attempt)", calls)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
}

func TestNilLoggerIsAccepted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 2, 0.01, nil, func() error {
		calls++
		if calls == 1 {
			return errors.New(errors.CodeNetwork, "blip")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() = %v, want nil", err)
	}
}
