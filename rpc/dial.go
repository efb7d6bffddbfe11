package rpc

import (
	"fmt"
	"net"
	"time"
)

// DialTCP opens a stream TCP connection to address:port and wraps it
// in a Transport. It fails with a wrapped net error if the endpoint
// refuses or is unreachable, matching spec.md §4.1's connect operation.
func DialTCP(address string, port int, timeout time.Duration) (*Transport, error) {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", address, port), timeout)
	if err != nil {
		return nil, fmt.Errorf("rpc: connect to %s:%d: %w", address, port, err)
	}
	return NewTransport(conn), nil
}
