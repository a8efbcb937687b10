package juror

import (
	"context"
	"fmt"
	"time"
)

// Poll dispatches every persona concurrently and blocks until each one has
// resolved. Every dispatched juror yields exactly one vote: a real
// assessment, a timeout fallback, or an error fallback. A slow or broken
// juror must not silently shrink the panel; the consensus math counts
// every seat.
func Poll(ctx context.Context, personas []Persona, in Input, timeout time.Duration) []Vote {
	if len(personas) == 0 {
		return nil
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	votes := make([]Vote, len(personas))
	done := make(chan int, len(personas))

	for i, p := range personas {
		go func(i int, p Persona) {
			votes[i] = assessWithTimeout(ctx, p, in, timeout)
			done <- i
		}(i, p)
	}

	for range personas {
		<-done
	}
	return votes
}

type assessment struct {
	risk       int
	rationale  string
	confidence float64
	err        error
}

// assessWithTimeout runs one persona's assessment under its own deadline.
// Timeouts yield a moderate-risk, low-confidence fallback vote; internal
// errors and panics yield the same with even lower confidence and the
// failure folded into the rationale. The pool never propagates either.
func assessWithTimeout(ctx context.Context, p Persona, in Input, timeout time.Duration) Vote {
	start := time.Now()
	result := make(chan assessment, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- assessment{err: fmt.Errorf("juror panic: %v", r)}
			}
		}()
		risk, rationale, confidence, err := p.Assess(in)
		result <- assessment{risk: risk, rationale: rationale, confidence: confidence, err: err}
	}()

	select {
	case a := <-result:
		elapsed := int(time.Since(start).Milliseconds())
		if a.err != nil {
			return newVote(p.ID,
				2,
				fmt.Sprintf("Analysis failed: %s", truncate(a.err.Error(), 100)),
				0.2,
				elapsed)
		}
		return newVote(p.ID, a.risk, a.rationale, a.confidence, elapsed)

	case <-time.After(timeout):
		return newVote(p.ID,
			2,
			fmt.Sprintf("Analysis timed out after %s - defaulting to moderate risk", timeout),
			0.3,
			int(timeout.Milliseconds()))

	case <-ctx.Done():
		return newVote(p.ID,
			2,
			fmt.Sprintf("Analysis canceled: %s", truncate(ctx.Err().Error(), 100)),
			0.2,
			int(time.Since(start).Milliseconds()))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
