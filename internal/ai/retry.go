package ai

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"glownexa-backend/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

// RetryAnalyzer retries a transient failure once after a short delay.
type RetryAnalyzer struct {
	Base  Analyzer
	Delay time.Duration
}

// Analyze calls Base, retrying once on transient errors.
func (r RetryAnalyzer) Analyze(ctx context.Context, in Input) (Result, error) {
	res, err := r.Base.Analyze(ctx, in)
	if err == nil || !shouldRetry(err) {
		return res, err
	}

	delay := r.Delay
	if delay <= 0 {
		delay = retryBaseDelay
	}
	telemetry.Info("ai.retry", map[string]any{"attempt": 1, "error": err})
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	return r.Base.Analyze(ctx, in)
}

func shouldRetry(err error) bool {
	if err == nil || errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"error 500", "error 502", "error 503", "error 504",
		"unavailable", "resource_exhausted", "internal error",
		"connection reset", "connection refused", "broken pipe",
		"tls handshake timeout", "unexpected eof",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
