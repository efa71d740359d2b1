package circuitbreaker

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

var errBackendDown = errors.New("connection refused")

// pollBreaker builds a breaker tuned the way the scan poller uses one:
// a small failure threshold, a long timeout and a discard logger.
func pollBreaker(threshold int) CircuitBreaker {
	return New(Config{
		FailureThreshold: threshold,
		Timeout:          time.Minute,
		HalfOpenRequests: 1,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		Name:             "scan-1",
	})
}

// failPoll simulates one failed status poll through the breaker.
func failPoll(t *testing.T, cb CircuitBreaker) {
	t.Helper()

	err := cb.Execute(func() error { return errBackendDown })
	if !errors.Is(err, errBackendDown) {
		t.Fatalf("Execute() error = %v, want backend failure", err)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "CLOSED"},
		{StateOpen, "OPEN"},
		{StateHalfOpen, "HALF-OPEN"},
		{State(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	// A zero config gets the default threshold of 5: four failures keep
	// the circuit closed, the fifth opens it.
	cb := New(Config{})

	for i := 0; i < 4; i++ {
		failPoll(t, cb)
		if cb.State() != StateClosed {
			t.Fatalf("state after %d failures = %s, want CLOSED", i+1, cb.State())
		}
	}

	failPoll(t, cb)
	if cb.State() != StateOpen {
		t.Errorf("state after 5 failures = %s, want OPEN", cb.State())
	}
}

func TestOpensAtFailureThreshold(t *testing.T) {
	cb := pollBreaker(3)

	failPoll(t, cb)
	failPoll(t, cb)
	if cb.State() != StateClosed {
		t.Fatalf("state below threshold = %s, want CLOSED", cb.State())
	}

	failPoll(t, cb)
	if cb.State() != StateOpen {
		t.Errorf("state at threshold = %s, want OPEN", cb.State())
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := pollBreaker(3)

	failPoll(t, cb)
	failPoll(t, cb)

	// A good poll between failures resets the consecutive count.
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	failPoll(t, cb)
	failPoll(t, cb)
	if cb.State() != StateClosed {
		t.Errorf("state = %s, want CLOSED after non-consecutive failures", cb.State())
	}
}

func TestOpenShortCircuitsWithoutCallingBackend(t *testing.T) {
	cb := pollBreaker(1)
	failPoll(t, cb)

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})

	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("open breaker still invoked the poll function")
	}
}

func TestOpenToHalfOpenAfterTimeout(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 1,
		Timeout:          20 * time.Millisecond,
		HalfOpenRequests: 1,
	})
	failPoll(t, cb)

	time.Sleep(30 * time.Millisecond)

	// The next poll after the timeout is let through as a test request.
	called := false
	if err := cb.Execute(func() error { called = true; return nil }); err != nil {
		t.Fatalf("Execute() after timeout error = %v", err)
	}
	if !called {
		t.Error("half-open breaker did not invoke the poll function")
	}
	if cb.State() != StateClosed {
		t.Errorf("state after successful half-open poll = %s, want CLOSED", cb.State())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 1,
		Timeout:          20 * time.Millisecond,
		HalfOpenRequests: 1,
	})
	failPoll(t, cb)

	time.Sleep(30 * time.Millisecond)

	failPoll(t, cb)
	if cb.State() != StateOpen {
		t.Errorf("state after failed half-open poll = %s, want OPEN", cb.State())
	}

	// Reopening restarts the timeout, so the immediate next poll is
	// blocked again.
	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() right after reopen error = %v, want ErrCircuitOpen", err)
	}
}

func TestHalfOpenLimitsConcurrentRequests(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 1,
		Timeout:          20 * time.Millisecond,
		HalfOpenRequests: 1,
	})
	failPoll(t, cb)

	time.Sleep(30 * time.Millisecond)

	// Hold the single allowed half-open slot with a blocked poll, then
	// try a second one.
	entered := make(chan struct{})
	release := make(chan struct{})
	trialErr := make(chan error, 1)
	go func() {
		trialErr <- cb.Execute(func() error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrHalfOpenLimitReached) {
		t.Errorf("concurrent half-open Execute() error = %v, want ErrHalfOpenLimitReached", err)
	}

	close(release)
	if err := <-trialErr; err != nil {
		t.Fatalf("half-open poll error = %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("state after successful half-open poll = %s, want CLOSED", cb.State())
	}
}

func TestReset(t *testing.T) {
	cb := pollBreaker(1)
	failPoll(t, cb)

	cb.Reset()

	if cb.State() != StateClosed {
		t.Fatalf("state after Reset() = %s, want CLOSED", cb.State())
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("Execute() after Reset() error = %v", err)
	}
}

// State changes are logged with the breaker's name so operators can tell
// which scan lost its backend.
func TestStateChangeLogsBreakerName(t *testing.T) {
	var buf bytes.Buffer
	cb := New(Config{
		FailureThreshold: 1,
		Timeout:          time.Minute,
		Logger:           slog.New(slog.NewTextHandler(&buf, nil)),
		Name:             "scan-7f3a",
	})

	failPoll(t, cb)

	out := buf.String()
	if !strings.Contains(out, "circuit breaker state change") {
		t.Fatalf("log output missing state change message: %q", out)
	}
	if !strings.Contains(out, "scan-7f3a") {
		t.Errorf("log output missing breaker name: %q", out)
	}
	if !strings.Contains(out, "old_state=CLOSED") || !strings.Contains(out, "new_state=OPEN") {
		t.Errorf("log output missing state transition attrs: %q", out)
	}

	// No logger configured must not panic on a transition.
	silent := New(Config{FailureThreshold: 1, Timeout: time.Minute})
	failPoll(t, silent)
}
