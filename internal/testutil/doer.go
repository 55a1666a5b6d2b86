package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tgienger/ptrack/internal/graphql"
)

// RecordingDoer wraps a Doer, recording every request and optionally
// failing or intercepting chosen operations.
type RecordingDoer struct {
	Next graphql.Doer

	mu       sync.Mutex
	requests []graphql.Request
	failures map[string]error
	hooks    map[string]func()
}

// NewRecordingDoer wraps next. A nil next answers every request with an
// empty data object.
func NewRecordingDoer(next graphql.Doer) *RecordingDoer {
	return &RecordingDoer{
		Next:     next,
		failures: make(map[string]error),
		hooks:    make(map[string]func()),
	}
}

// Fail makes every request for op return err until cleared with Fail(op, nil).
func (d *RecordingDoer) Fail(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failures, op)
		return
	}
	d.failures[op] = err
}

// Before runs hook once, after the next op request has been answered and
// before its response is returned to the caller.
func (d *RecordingDoer) Before(op string, hook func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks[op] = hook
}

func (d *RecordingDoer) Do(ctx context.Context, req graphql.Request) (json.RawMessage, error) {
	d.mu.Lock()
	d.requests = append(d.requests, req)
	failure := d.failures[req.OperationName]
	hook := d.hooks[req.OperationName]
	delete(d.hooks, req.OperationName)
	d.mu.Unlock()

	if failure != nil {
		return nil, failure
	}

	var (
		data json.RawMessage
		err  error
	)
	if d.Next != nil {
		data, err = d.Next.Do(ctx, req)
	} else {
		data = json.RawMessage(`{}`)
	}
	if hook != nil {
		hook()
	}
	return data, err
}

// Calls counts the requests sent for op
func (d *RecordingDoer) Calls(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.requests {
		if r.OperationName == op {
			n++
		}
	}
	return n
}

// Total counts every request sent
func (d *RecordingDoer) Total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

// Last returns the most recent request for op
func (d *RecordingDoer) Last(op string) (graphql.Request, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.requests) - 1; i >= 0; i-- {
		if d.requests[i].OperationName == op {
			return d.requests[i], true
		}
	}
	return graphql.Request{}, false
}
