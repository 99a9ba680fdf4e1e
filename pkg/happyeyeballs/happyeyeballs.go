// Package happyeyeballs implements C4, the Happy Eyeballs dialer (RFC
// 8305/6555): a concurrent, DNS-racing connection establishment engine that
// interleaves IPv6 and IPv4 attempts to minimise latency while coping with
// partial DNS or network failure.
package happyeyeballs

import (
	"context"
	"time"

	"github.com/eyeballnet/eyeball/pkg/endpoint"
	"github.com/eyeballnet/eyeball/pkg/resolver"
	"github.com/eyeballnet/eyeball/pkg/transport"
	"github.com/eyeballnet/eyeball/pkg/uri"
)

// Timing constants (§4.4).
const (
	AttemptDelay    = 100 * time.Millisecond
	ResolutionDelay = 50 * time.Millisecond
)

// Dialer owns the collaborators a DialAttempt needs: a Resolver for AAAA/A
// lookups and a transport.Dialer for individual TCP attempts against the
// candidate IPs it produces.
type Dialer struct {
	Resolver  resolver.Resolver
	Transport transport.Dialer
}

// New builds a Happy Eyeballs dialer over the given resolver and transport.
func New(r resolver.Resolver, t transport.Dialer) *Dialer {
	return &Dialer{Resolver: r, Transport: t}
}

// Connect resolves host's AAAA and A records concurrently, interleaves the
// results, and dials candidates with staggered attempts until one succeeds
// or both address families are exhausted. uriStr is the unresolved URI
// (used to render messages and as the outer URI for rendered candidates);
// parts is its parsed form.
func (d *Dialer) Connect(ctx context.Context, uriStr, host string, parts *uri.Parsed) (*endpoint.Conn, error) {
	a := newDialAttempt(ctx, d.Resolver, d.Transport, uriStr, host, parts)
	return a.run()
}
