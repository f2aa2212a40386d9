// internal/client/client.go
package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/jason-s-yu/baccarat/internal/protocol"
)

// DefaultTimeout bounds a whole query when the context carries no deadline.
const DefaultTimeout = 10 * time.Second

// Query opens a connection to addr, sends query as a single write, reads the
// response until the server closes the connection, and returns it with trailing
// whitespace trimmed.
func Query(ctx context.Context, addr, query string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	out, err := protocol.Encode(query)
	if err != nil {
		return "", err
	}
	if _, err := conn.Write(out); err != nil {
		return "", fmt.Errorf("failed to send query: %w", err)
	}

	raw, err := io.ReadAll(io.LimitReader(conn, protocol.MaxQueryBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	resp, err := protocol.Decode(raw)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(resp, " \t\r\n"), nil
}
