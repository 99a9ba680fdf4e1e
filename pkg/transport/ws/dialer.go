// Package ws adapts github.com/coder/websocket into the transport.Dialer
// contract (C2), registered by pkg/config as the "ws"/"wss" user-supplied
// scheme pair named in §4.7's scheme-router options.
package ws

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/coder/websocket"

	"github.com/eyeballnet/eyeball/pkg/endpoint"
	"github.com/eyeballnet/eyeball/pkg/uri"
)

// Dialer opens a WebSocket connection and presents it as a transport.Dialer
// stream; useTLS selects wss:// over the dial's own HTTP client.
type Dialer struct {
	UseTLS bool
}

// NewDialer builds a ws/wss transport dialer. useTLS determines whether the
// outbound HTTP client dials TLS (wss) or plaintext (ws).
func NewDialer(useTLS bool) *Dialer {
	return &Dialer{UseTLS: useTLS}
}

func (d *Dialer) Dial(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
	parts, err := uri.Parse(rawURI)
	if err != nil {
		return nil, err
	}

	scheme := "ws"
	if d.UseTLS {
		scheme = "wss"
	}
	url := parts.WithScheme(scheme).String()

	opts := &websocket.DialOptions{
		Subprotocols: []string{"bin"},
	}
	if d.UseTLS {
		// App-layer TLS (C6) is authoritative when tls+ws is composed; the
		// transport-level TLS here only needs to get the bytes through.
		opts.HTTPClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}

	c, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("websocket.Dial(%s): %w", url, err)
	}

	raw := websocket.NetConn(ctx, c, websocket.MessageBinary)
	remote := endpoint.TCPEndpoint(parts.Host, parts.Port)
	local := endpoint.TCPEndpoint("0.0.0.0", 0)
	return endpoint.New(raw, remote, local, false, parts.Hostname()), nil
}
