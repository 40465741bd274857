package llm

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second
)

// Usage accumulates provider token accounting across calls.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *Usage) add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Caller is one provider adapter: send a prompt pair, get raw text back.
type Caller interface {
	Call(ctx context.Context, systemPrompt, userPrompt string) (string, Usage, error)
}

// Gateway wraps a provider Caller with bounded exponential-backoff retry on
// transient failures: up to MaxRetries additional attempts, delay starting at
// BaseDelay and doubling each attempt. Fatal errors return immediately;
// exhausted transient errors return a recoverable RetriesExhaustedError.
type Gateway struct {
	caller     Caller
	maxRetries int
	baseDelay  time.Duration

	mu    sync.Mutex
	usage Usage
}

func NewGateway(caller Caller) *Gateway {
	return &Gateway{
		caller:     caller,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
}

// WithRetryPolicy overrides the retry budget and base backoff delay.
func (g *Gateway) WithRetryPolicy(maxRetries int, baseDelay time.Duration) *Gateway {
	if maxRetries >= 0 {
		g.maxRetries = maxRetries
	}
	if baseDelay > 0 {
		g.baseDelay = baseDelay
	}
	return g
}

// Send issues one logical LLM call with retries. The retry loop is an
// explicit attempt counter with a computed delay so stack depth and
// cancellation stay predictable.
func (g *Gateway) Send(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	delay := g.baseDelay
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("llm retry attempt=%d/%d delay=%s after: %v", attempt, g.maxRetries, delay, lastErr)
			if err := sleepCtx(ctx, delay); err != nil {
				return "", err
			}
			delay *= 2
		}

		text, usage, err := g.caller.Call(ctx, systemPrompt, userPrompt)
		g.recordUsage(usage)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isTransient(err) {
			return "", err
		}
		lastErr = err
	}

	return "", &RetriesExhaustedError{Attempts: g.maxRetries + 1, Last: lastErr}
}

// Usage returns the tokens consumed across all calls through this gateway.
func (g *Gateway) Usage() Usage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.usage
}

func (g *Gateway) recordUsage(u Usage) {
	g.mu.Lock()
	g.usage.add(u)
	g.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
