// Package client consumes the NDJSON event stream and folds it into display
// state: an append-only activity log, accumulated response text, and a status.
package client

import (
	"bytes"

	"github.com/KamdynS/scholarstream/stream"
	"github.com/google/uuid"
)

// Status is the session state derived from the event stream.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// ActivityItem is one displayed progress entry. Items are immutable once
// appended; ordering is arrival order.
type ActivityItem struct {
	ID      string
	Kind    stream.Type
	Message string
}

// Reducer folds raw stream chunks into (status, activity log, response text).
// Chunks may split a record anywhere; the incomplete trailing fragment is
// buffered and prepended to the next chunk. Malformed records are dropped.
type Reducer struct {
	status   Status
	activity []ActivityItem
	response bytes.Buffer
	pending  []byte
}

// NewReducer returns an idle reducer.
func NewReducer() *Reducer {
	return &Reducer{status: StatusIdle}
}

// Begin marks the start of a request.
func (r *Reducer) Begin() { r.status = StatusLoading }

// Feed consumes one raw chunk, applying every complete record it closes.
func (r *Reducer) Feed(chunk []byte) {
	r.pending = append(r.pending, chunk...)
	for {
		i := bytes.IndexByte(r.pending, '\n')
		if i < 0 {
			return
		}
		line := r.pending[:i]
		r.pending = r.pending[i+1:]
		r.applyLine(line)
	}
}

// Close flushes a final record that arrived without a trailing delimiter.
func (r *Reducer) Close() {
	if len(r.pending) > 0 {
		r.applyLine(r.pending)
		r.pending = nil
	}
}

// Fail records a connection-level failure. This is the client's own error
// channel, distinct from an in-band error event, but it also ends the session.
func (r *Reducer) Fail(err error) {
	r.activity = append(r.activity, ActivityItem{
		ID:      uuid.NewString(),
		Kind:    stream.TypeError,
		Message: "Connection error: " + err.Error(),
	})
	r.status = StatusError
}

// Status returns the current session status.
func (r *Reducer) Status() Status { return r.status }

// Activity returns the activity log in arrival order.
func (r *Reducer) Activity() []ActivityItem { return r.activity }

// Response returns the accumulated response text.
func (r *Reducer) Response() string { return r.response.String() }

func (r *Reducer) applyLine(line []byte) {
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	ev, err := stream.Decode(line)
	if err != nil {
		// Malformed record: drop and continue.
		return
	}
	r.apply(ev)
}

func (r *Reducer) apply(ev stream.Event) {
	switch ev.Type {
	case stream.TypeToolCall, stream.TypeToolResult, stream.TypeLLMStart:
		r.append(ev)
	case stream.TypeToken:
		r.response.WriteString(ev.Content)
	case stream.TypeComplete:
		r.append(ev)
		r.status = StatusComplete
	case stream.TypeError:
		r.append(ev)
		r.status = StatusError
	}
}

func (r *Reducer) append(ev stream.Event) {
	r.activity = append(r.activity, ActivityItem{
		ID:      uuid.NewString(),
		Kind:    ev.Type,
		Message: ev.Message,
	})
}
