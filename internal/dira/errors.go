package dira

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Reason classifies why a subscriber fetch failed.
type Reason string

const (
	ReasonTransport Reason = "transport"
	ReasonStatus    Reason = "status"
	ReasonDecode    Reason = "decode"
	ReasonEmpty     Reason = "empty"
)

// ErrNoProjectItems is wrapped by RemoteDataError when the API answers with an
// empty ProjectItems list.
var ErrNoProjectItems = errors.New("response has no project items")

// RemoteDataError reports a failed subscriber fetch for one lottery.
type RemoteDataError struct {
	Project    string
	Lottery    string
	Reason     Reason
	StatusCode int
	Err        error
}

func (e *RemoteDataError) Error() string {
	msg := fmt.Sprintf("fetching subscribers for project %s lottery %s: %s", e.Project, e.Lottery, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteDataError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the request could succeed.
func (e *RemoteDataError) Retryable() bool {
	switch e.Reason {
	case ReasonTransport:
		return true
	case ReasonStatus:
		return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// AggregateError lists every lottery that failed when an Aggregator runs with
// CollectErrors. The subscriber map returned alongside it holds the successes.
type AggregateError struct {
	Total    int
	Failures []error
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, err := range e.Failures {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d of %d lotteries failed: %s", len(e.Failures), e.Total, strings.Join(parts, "; "))
}

func (e *AggregateError) Unwrap() []error {
	return e.Failures
}
