package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encode serializes an event to one self-delimited wire record: a single JSON
// object terminated by '\n'. Each call produces exactly one record.
func Encode(e Event) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return append(b, '\n'), nil
}

// Decode parses one wire record back into an Event. It is the exact inverse
// of Encode; a trailing newline is tolerated.
func Decode(record []byte) (Event, error) {
	record = bytes.TrimRight(record, "\r\n")
	var e Event
	if err := json.Unmarshal(record, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("decode event: missing type")
	}
	return e, nil
}
