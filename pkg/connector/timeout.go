package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/eyeballnet/eyeball/pkg/dialerr"
	"github.com/eyeballnet/eyeball/pkg/endpoint"
)

// TimeoutConnector is C8: races the inner connector's result against a
// deadline, cancelling the inner attempt if the timer fires first.
type TimeoutConnector struct {
	Inner   Connector
	Timeout time.Duration
}

// NewTimeoutConnector wraps inner with a timeout. A non-positive timeout
// disables the wrapper (Connect delegates directly).
func NewTimeoutConnector(inner Connector, timeout time.Duration) Connector {
	if timeout <= 0 {
		return inner
	}
	return &TimeoutConnector{Inner: inner, Timeout: timeout}
}

func (c *TimeoutConnector) Connect(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	conn, err := c.Inner.Connect(ctx, rawURI)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return nil, dialerr.New(dialerr.ECodeTimeout, fmt.Sprintf("Connection to %s timed out after %s", rawURI, c.Timeout))
	}
	return conn, err
}
