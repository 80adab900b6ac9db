// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai abstracts the generative model API used by the analysis
// and synthesis stages.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Generator produces model output for a prompt. Implementations may return
// text wrapped in Markdown code fences; callers strip them with StripFences
// before parsing. Tests supply a mock per the Strategy pattern.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrAttemptsExhausted reports that every attempt produced a result the
// acceptance predicate rejected. The last rejected result is still
// returned so callers can use it as a degraded outcome.
var ErrAttemptsExhausted = errors.New("all attempts produced unacceptable results")

// RetryUntil runs fn up to maxAttempts times and returns the first result
// the accept predicate approves. Attempts that fail with an error are
// skipped. When every attempt either errors or is rejected:
//
//   - if at least one attempt succeeded, the last successful result is
//     returned together with ErrAttemptsExhausted;
//   - otherwise the last attempt's error is returned.
//
// The attempt number (starting at 1) is passed to fn so callers can
// strengthen the prompt on later attempts.
func RetryUntil[T any](ctx context.Context, maxAttempts int, fn func(ctx context.Context, attempt int) (T, error), accept func(T) bool) (T, error) {
	var (
		last    T
		lastErr error
		haveAny bool
	)

	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}

		result, err := fn(ctx, attempt)
		if err != nil {
			lastErr = err
			continue
		}
		if accept(result) {
			return result, nil
		}
		last = result
		haveAny = true
	}

	if haveAny {
		return last, ErrAttemptsExhausted
	}
	var zero T
	return zero, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

// StripFences removes Markdown code-fence wrappers (```json ... ``` or
// plain ``` ... ```) from model output, returning the trimmed payload.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop a language tag such as "json" on the opening fence.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "" || !strings.ContainsAny(first, "{[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
