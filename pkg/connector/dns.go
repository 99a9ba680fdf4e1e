package connector

import (
	"context"

	"github.com/eyeballnet/eyeball/pkg/endpoint"
	"github.com/eyeballnet/eyeball/pkg/happyeyeballs"
	"github.com/eyeballnet/eyeball/pkg/transport"
	"github.com/eyeballnet/eyeball/pkg/uri"
)

// DNSConnector is C5: it classifies the URI's host as a literal IP or a
// hostname. Literal IPs go straight to the transport dialer (C2);
// hostnames are handed to the Happy Eyeballs dialer (C4).
type DNSConnector struct {
	Transport     transport.Dialer      // C2
	HappyEyeballs *happyeyeballs.Dialer // C4
}

// NewDNSConnector builds a C5 connector over the given transport dialer and
// Happy Eyeballs dialer.
func NewDNSConnector(t transport.Dialer, he *happyeyeballs.Dialer) *DNSConnector {
	return &DNSConnector{Transport: t, HappyEyeballs: he}
}

func (c *DNSConnector) Connect(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
	parts, err := uri.Parse(rawURI)
	if err != nil {
		return nil, err
	}

	if parts.IsLiteralIP() {
		return c.Transport.Dial(ctx, rawURI)
	}

	return c.HappyEyeballs.Connect(ctx, rawURI, parts.Host, parts)
}
