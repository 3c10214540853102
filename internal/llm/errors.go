package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrUpstreamThrottled means the provider rejected or failed the call;
	// the request is safe to retry later
	ErrUpstreamThrottled = errors.New("model provider throttled the request")
	// ErrUpstreamTimeout means the call did not finish within its budget
	ErrUpstreamTimeout = errors.New("model provider timed out")
	// ErrMalformedResponse means the model answered but the output could not be used
	ErrMalformedResponse = errors.New("malformed model response")
)

// ClassifyError maps a provider call failure onto ErrUpstreamTimeout or
// ErrUpstreamThrottled, keeping the original error in the chain.
// Caller cancellation is returned unchanged.
func ClassifyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUpstreamThrottled), errors.Is(err, ErrUpstreamTimeout):
		return err
	case IsTimeoutError(err):
		return fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUpstreamThrottled, err)
	}
}

// IsRateLimitError reports whether err is a quota or rate limit rejection
// from the model provider
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	if st, ok := status.FromError(err); ok && st.Code() == codes.ResourceExhausted {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}

	// Some SDK paths only surface the status as text
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"resourceexhausted", "resource exhausted", "429", "rate limit", "quota"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsTimeoutError reports whether err means the call exceeded its deadline
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if st, ok := status.FromError(err); ok && st.Code() == codes.DeadlineExceeded {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
