package graphql

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRequestFailed is matched by every transport and server error so callers
// can treat both kinds the same way for display.
var ErrRequestFailed = errors.New("graphql request failed")

// TransportError reports a failure to exchange a request with the endpoint:
// the network call itself, a non-2xx status, or an undecodable body.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: endpoint returned status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrRequestFailed, e.Err}
}

// ServerError carries the errors array of a GraphQL response. Messages are
// kept verbatim so they can be shown to the user unchanged.
type ServerError struct {
	Op       string
	Messages []string
}

func (e *ServerError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ServerError) Is(target error) bool {
	return target == ErrRequestFailed
}
