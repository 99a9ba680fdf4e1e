// Package endpoint holds the data model shared by every transport, dialer,
// and listener: the destination Endpoint and the live Conn that wraps it.
package endpoint

import (
	"fmt"
	"net"
	"strings"
)

// Family identifies the address family of a TCP Endpoint.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyV4
	FamilyV6
)

// Endpoint is an opaque destination: either a TCP address (ip, port,
// family) or a Unix socket path. Equality is structural.
type Endpoint struct {
	IP     string // empty for unix
	Port   int    // zero for unix
	Family Family
	Path   string // non-empty for unix
}

// IsUnix reports whether this Endpoint names a Unix socket path.
func (e Endpoint) IsUnix() bool { return e.Path != "" }

// String renders the endpoint the way it would appear in a dialed address:
// bracketed IPv6 literals, "host:port" otherwise, or the bare path for unix.
func (e Endpoint) String() string {
	if e.IsUnix() {
		return e.Path
	}
	if e.Family == FamilyV6 {
		return fmt.Sprintf("[%s]:%d", e.IP, e.Port)
	}
	return fmt.Sprintf("%s:%d", e.IP, e.Port)
}

// TCPEndpoint builds an Endpoint for a TCP destination, inferring family
// from the presence of a colon in the IP literal.
func TCPEndpoint(ip string, port int) Endpoint {
	family := FamilyV4
	if strings.Contains(ip, ":") {
		family = FamilyV6
	}
	return Endpoint{IP: ip, Port: port, Family: family}
}

// UnixEndpoint builds an Endpoint for a Unix socket path.
func UnixEndpoint(path string) Endpoint {
	return Endpoint{Path: path}
}

// unknownEndpoint is the sentinel returned for endpoint queries made after
// a Conn has been closed, per the Connection invariant in spec §3: such
// queries never return an error, only this sentinel.
var unknownEndpoint = Endpoint{IP: "unknown"}

// Conn is a live bidirectional byte stream augmented with endpoint and
// security metadata. It implements net.Conn by embedding the underlying
// stream, so it composes transparently with the rest of the net ecosystem
// (tls.Client/Server, bufio, etc).
type Conn struct {
	net.Conn

	remote      Endpoint
	local       Endpoint
	isUnix      bool
	isEncrypted bool
	hostname    string // original hostname hint, for TLS SNI/verification

	closed bool
}

// New wraps an established net.Conn with the endpoint metadata the rest of
// the system needs to track.
func New(raw net.Conn, remote, local Endpoint, isUnix bool, hostname string) *Conn {
	return &Conn{
		Conn:     raw,
		remote:   remote,
		local:    local,
		isUnix:   isUnix,
		hostname: hostname,
	}
}

// Close closes the underlying stream. After Close, RemoteEndpoint and
// LocalEndpoint return the unknown sentinel instead of erroring.
func (c *Conn) Close() error {
	err := c.Conn.Close()
	c.closed = true
	return err
}

// RemoteEndpoint reports the remote endpoint, or the unknown sentinel once
// closed.
func (c *Conn) RemoteEndpoint() Endpoint {
	if c.closed {
		return unknownEndpoint
	}
	return c.remote
}

// LocalEndpoint reports the local endpoint, or the unknown sentinel once
// closed.
func (c *Conn) LocalEndpoint() Endpoint {
	if c.closed {
		return unknownEndpoint
	}
	return c.local
}

// IsUnix reports whether this connection runs over a Unix socket.
func (c *Conn) IsUnix() bool { return c.isUnix }

// IsEncrypted reports whether TLS has been layered onto this connection.
func (c *Conn) IsEncrypted() bool { return c.isEncrypted }

// Hostname returns the original hostname hint carried for TLS SNI and
// certificate verification, if any.
func (c *Conn) Hostname() string { return c.hostname }

// MarkEncrypted flips IsEncrypted to true. Called by pkg/tlsconn once the
// handshake succeeds; it must never be called before success.
func (c *Conn) MarkEncrypted() { c.isEncrypted = true }

// Scheme reports the URI scheme under which this connection's endpoints
// should be rendered, without the "://" separator: "tls" once encrypted,
// "unix" for Unix sockets, "tcp" otherwise.
func (c *Conn) Scheme() string {
	switch {
	case c.isEncrypted:
		return "tls"
	case c.isUnix:
		return "unix"
	default:
		return "tcp"
	}
}

// Rewrap returns a shallow copy of c with its embedded net.Conn swapped for
// wrapped (e.g. the *tls.Conn produced by layering TLS on top). Metadata
// (endpoints, hostname, unix-ness) is preserved; only encryption flips.
func (c *Conn) Rewrap(wrapped net.Conn) *Conn {
	return &Conn{
		Conn:        wrapped,
		remote:      c.remote,
		local:       c.local,
		isUnix:      c.isUnix,
		isEncrypted: true,
		hostname:    c.hostname,
	}
}

// WithConn returns a shallow copy of c with its embedded net.Conn swapped
// for wrapped, preserving every metadata field as-is. Unlike Rewrap, this
// does not imply encryption; it's for wrappers that observe traffic
// without changing its security properties (e.g. wire logging).
func (c *Conn) WithConn(wrapped net.Conn) *Conn {
	return &Conn{
		Conn:        wrapped,
		remote:      c.remote,
		local:       c.local,
		isUnix:      c.isUnix,
		isEncrypted: c.isEncrypted,
		hostname:    c.hostname,
	}
}
