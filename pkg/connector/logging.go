package connector

import (
	"context"

	"github.com/eyeballnet/eyeball/pkg/endpoint"
	"github.com/eyeballnet/eyeball/pkg/log"
)

// LoggingConnector wraps an inner connector and appends every byte read
// from or written to the resulting connection to a file, the wire-capture
// counterpart to the server-side WithWireLog listener option. It sits
// outermost in the composition (after C6/C7/C8) so the log captures
// ciphertext-free application bytes once TLS has already been peeled off.
type LoggingConnector struct {
	Inner   Connector
	LogPath string
}

// NewLoggingConnector wraps inner so every connection it returns mirrors
// its traffic to path. An empty path disables the wrapper.
func NewLoggingConnector(inner Connector, path string) Connector {
	if path == "" {
		return inner
	}
	return &LoggingConnector{Inner: inner, LogPath: path}
}

func (c *LoggingConnector) Connect(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
	conn, err := c.Inner.Connect(ctx, rawURI)
	if err != nil {
		return nil, err
	}

	logged, err := log.NewLoggedConn(conn, c.LogPath)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return conn.WithConn(logged), nil
}
