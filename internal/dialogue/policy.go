package dialogue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"google.golang.org/genai"
)

// CallPolicy decides which of several tool directives in one reply are honored.
type CallPolicy string

const (
	// PolicyFirst honors only the first directive.
	PolicyFirst CallPolicy = "first"
	// PolicyAll honors every directive, in order.
	PolicyAll CallPolicy = "all"
)

// ParsePolicy validates a configured policy name. Empty means PolicyFirst.
func ParsePolicy(s string) (CallPolicy, error) {
	switch CallPolicy(s) {
	case "", PolicyFirst:
		return PolicyFirst, nil
	case PolicyAll:
		return PolicyAll, nil
	default:
		return "", fmt.Errorf("unknown tool call policy %q (want %q or %q)", s, PolicyFirst, PolicyAll)
	}
}

// Select returns the directives to honor.
func (p CallPolicy) Select(calls []*genai.FunctionCall) []*genai.FunctionCall {
	if len(calls) == 0 {
		return nil
	}
	if p == PolicyAll {
		return calls
	}
	return calls[:1]
}

// isTransient reports whether err is a network failure worth one more attempt.
// Deadlines and cancellations are never retried.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
