package server

import (
	"io"
	"net/http"

	"github.com/KamdynS/scholarstream/stream"
)

// Relay forwards encoded event records to an open connection in production
// order, flushing after every record so a slow consumer observes events
// incrementally. It performs no batching or re-buffering.
type Relay struct {
	w io.Writer
	f http.Flusher
}

// NewRelay wraps a response writer. f may be nil when the writer does not
// support flushing (e.g. in tests against a plain buffer).
func NewRelay(w io.Writer, f http.Flusher) *Relay {
	return &Relay{w: w, f: f}
}

// Send encodes one event, writes the record, and flushes.
func (r *Relay) Send(ev stream.Event) error {
	b, err := stream.Encode(ev)
	if err != nil {
		return err
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	if r.f != nil {
		r.f.Flush()
	}
	return nil
}
