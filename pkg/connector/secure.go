package connector

import (
	"context"
	"crypto/tls"

	"github.com/eyeballnet/eyeball/pkg/dialerr"
	"github.com/eyeballnet/eyeball/pkg/endpoint"
	"github.com/eyeballnet/eyeball/pkg/tlsconn"
	"github.com/eyeballnet/eyeball/pkg/uri"
)

// SecureConnector is C6: composes an inner connector (typically C5 over the
// tcp scheme) with C3's client-side TLS upgrade. Inner URIs carry the
// "tls://" scheme; it is rewritten to "tcp://" before delegation.
type SecureConnector struct {
	Inner     Connector
	TLSConfig *tls.Config
}

// NewSecureConnector builds a C6 connector delegating plaintext dialing to
// inner and layering tls on top using cfg (may be nil for defaults).
func NewSecureConnector(inner Connector, cfg *tls.Config) *SecureConnector {
	return &SecureConnector{Inner: inner, TLSConfig: cfg}
}

func (c *SecureConnector) Connect(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
	parts, err := uri.Parse(rawURI)
	if err != nil {
		return nil, err
	}
	innerURI := parts.WithScheme("tcp").String()

	conn, err := c.Inner.Connect(ctx, innerURI)
	if err != nil {
		if de, ok := err.(*dialerr.Error); ok {
			return nil, dialerr.Wrap(de.Code, rewriteScheme(de.Message, "tcp://", "tls://"), de)
		}
		return nil, err
	}

	secured, err := tlsconn.Enable(ctx, conn, tlsconn.RoleClient, c.TLSConfig, rawURI)
	if err != nil {
		return nil, err
	}
	return secured, nil
}

func rewriteScheme(msg, from, to string) string {
	for i := 0; i+len(from) <= len(msg); i++ {
		if msg[i:i+len(from)] == from {
			return msg[:i] + to + msg[i+len(from):]
		}
	}
	return msg
}
