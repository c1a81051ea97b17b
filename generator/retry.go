package generator

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"seo_article_generator/apperr"
	"seo_article_generator/logging"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBase     = time.Second
)

// ErrorClass tells the retry loop what to do with a failed call.
type ErrorClass int

const (
	// Fatal stops the loop at once and surfaces apperr.KindUnexpected.
	Fatal ErrorClass = iota
	// Retryable backs off and tries again while attempts remain.
	Retryable
)

// ClassifyError is the default classifier: provider failures are retried,
// anything else (malformed responses, programming errors) is not.
func ClassifyError(err error) ErrorClass {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return Retryable
	}
	return Fatal
}

// RetryPolicy is bounded retry with exponential delay: attempt n (0-based)
// that fails retryably is followed by a sleep of BaseDelay*2^n, except the
// last attempt, which surfaces apperr.KindUpstream instead.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	Classify  func(error) ErrorClass
	Logger    *logging.Logger
	Metrics   *Metrics
}

func (p RetryPolicy) attempts() int {
	if p.Attempts <= 0 {
		return defaultRetryAttempts
	}
	return p.Attempts
}

func (p RetryPolicy) baseDelay() time.Duration {
	if p.BaseDelay <= 0 {
		return defaultRetryBase
	}
	return p.BaseDelay
}

func (p RetryPolicy) classify(err error) ErrorClass {
	if p.Classify == nil {
		return ClassifyError(err)
	}
	return p.Classify(err)
}

func (p RetryPolicy) logger() *logging.Logger {
	if p.Logger == nil {
		return logging.Nop()
	}
	return p.Logger
}

// Do runs op under the policy. phase is one of PhaseInstructions or
// PhaseContent and is the only value used as a metrics label; step names the
// call in logs and errors and may carry a chunk position.
func (p RetryPolicy) Do(ctx context.Context, phase, step string, op func(context.Context) (string, error)) (string, error) {
	if step == "" {
		step = phase
	}
	limit := p.attempts()
	log := p.logger().With("phase", phase, "step", step, "max_attempts", limit)
	backoff := p.observe(phase, log, retry.WithMaxRetries(uint64(limit-1), retry.NewExponential(p.baseDelay())))

	var (
		out     string
		attempt int
		lastErr error
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		log.Info("llm call started", "attempt", attempt)
		res, err := op(ctx)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				p.Metrics.attempt(phase, "canceled")
				return apperr.Wrap(apperr.KindUnexpected, step, ctx.Err())
			}
			if p.classify(err) == Retryable {
				p.Metrics.attempt(phase, "provider_error")
				log.Warn("llm call failed", "attempt", attempt, "error", err.Error())
				return retry.RetryableError(err)
			}
			p.Metrics.attempt(phase, "unexpected_error")
			log.Error("llm call failed with unexpected error", "attempt", attempt, "error", err.Error())
			return apperr.Wrapf(apperr.KindUnexpected, step, err, "unexpected error on attempt %d", attempt)
		}
		p.Metrics.attempt(phase, "ok")
		log.Info("llm call finished", "attempt", attempt, "response_chars", len(res))
		out = res
		return nil
	})
	if err == nil {
		return out, nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return "", err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", apperr.Wrap(apperr.KindUnexpected, step, ctxErr)
	}
	if lastErr == nil {
		lastErr = err
	}
	return "", apperr.Wrapf(apperr.KindUpstream, step, lastErr, "provider failure after %d attempts", attempt)
}

// observe logs and counts every sleep the backoff actually schedules.
func (p RetryPolicy) observe(phase string, log *logging.Logger, next retry.Backoff) retry.Backoff {
	return retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := next.Next()
		if stop {
			return d, stop
		}
		p.Metrics.backoff(phase)
		log.Info("llm call backing off", "delay", d)
		return d, false
	})
}
