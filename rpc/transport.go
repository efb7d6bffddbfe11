package rpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Transport owns the duplex byte stream and knows nothing about
// JSON-RPC semantics (spec.md §4.1): it turns a stream of concatenated
// top-level JSON values into Envelopes one at a time, and serializes
// writes so concurrent callers never interleave on the wire.
//
// Unlike the LSP protocols this corpus otherwise speaks, TW frames
// nothing: there is no Content-Length header, just back-to-back JSON
// values. json.Decoder already implements exactly the "read more,
// trial-parse the next top-level value, keep the remainder buffered"
// strategy spec.md §4.1 describes, so Transport is a thin wrapper
// around it rather than a hand-rolled buffer scanner.
type Transport struct {
	rw io.ReadWriteCloser

	dec *json.Decoder

	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
}

// NewTransport wraps an already-connected stream (typically a
// *net.TCPConn, but any io.ReadWriteCloser works — this is what makes
// the engine testable over net.Pipe()).
func NewTransport(rw io.ReadWriteCloser) *Transport {
	return &Transport{
		rw:  rw,
		dec: json.NewDecoder(bufio.NewReader(rw)),
	}
}

// ReadNext blocks until one complete top-level JSON value has been
// parsed from the stream, or returns io.EOF when the peer closes the
// connection cleanly, or a non-EOF error when the bytes read so far
// can never complete a JSON value (spec.md §9's resolution of the
// "malformed prefix never discarded" open question: fail the
// connection rather than try to resynchronize).
func (t *Transport) ReadNext() (*Envelope, error) {
	var env Envelope
	if err := t.dec.Decode(&env); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("rpc: malformed message, failing connection: %w", err)
	}
	return &env, nil
}

// Write serializes env and writes it atomically relative to other
// writers (spec.md §4.2's writer policy).
func (t *Transport) Write(env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("rpc: encode message: %w", err)
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_, err = t.rw.Write(data)
	return err
}

// Close is idempotent; it causes the next ReadNext/Write to fail.
func (t *Transport) Close() error {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.rw.Close()
}
