// Package listener provides the server-side counterpart to C2/C3/C7: accept
// loops for tcp, unix, and tls listeners, connection-limited the way the
// teacher's transport/ws listener gated WebSocket upgrades, generalized
// here to any net.Listener instead of being wired to one HTTP server.
package listener

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/yamux"

	"github.com/eyeballnet/eyeball/pkg/endpoint"
	"github.com/eyeballnet/eyeball/pkg/log"
	"github.com/eyeballnet/eyeball/pkg/semaphore"
	"github.com/eyeballnet/eyeball/pkg/tlsconn"
	"github.com/eyeballnet/eyeball/pkg/transport"
)

// Listener wraps a net.Listener with a connection-count semaphore, serving
// transport.Handler for each accepted connection. When tlsCfg is set, every
// accepted connection is upgraded with C3 in the server role before the
// handler runs. When muxed is set (ListenMuxed), each upgraded connection is
// additionally split into yamux streams, one handler invocation per stream.
type Listener struct {
	nl      net.Listener
	sem     *semaphore.ConnSemaphore
	tlsCfg  *tls.Config
	muxCfg  *yamux.Config
	muxed   bool
	logPath string
}

// ListenTCP opens a TCP listener on addr, accepting at most maxConns
// concurrent handler invocations (0 disables the limit).
func ListenTCP(addr string, maxConns int) (*Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve tcp addr %s: %w", addr, err)
	}
	nl, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen tcp %s: %w", addr, err)
	}
	return wrap(nl, maxConns), nil
}

// ListenUnix opens a Unix domain socket listener at path.
func ListenUnix(path string, maxConns int) (*Listener, error) {
	unixAddr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, fmt.Errorf("resolve unix addr %s: %w", path, err)
	}
	nl, err := net.ListenUnix("unix", unixAddr)
	if err != nil {
		return nil, fmt.Errorf("listen unix %s: %w", path, err)
	}
	return wrap(nl, maxConns), nil
}

// ListenTLS layers server-side TLS (C3, server role) on top of an already
// constructed base listener (ListenTCP or ListenUnix). cfg must carry at
// least one certificate; pkg/crypto can mint an ephemeral one. Unlike
// tls.NewListener, the handshake runs per-connection through tlsconn.Enable
// inside Serve, so it shares the same cancelreader-backed, context-aware
// handshake path as the client side (C3).
func ListenTLS(base *Listener, cfg *tls.Config) *Listener {
	return &Listener{nl: base.nl, sem: base.sem, tlsCfg: cfg, logPath: base.logPath}
}

// WithWireLog mirrors every accepted connection's bytes (post-TLS, if any)
// to path, the server-side counterpart to connector.NewLoggingConnector. An
// empty path is a no-op.
func (l *Listener) WithWireLog(path string) *Listener {
	l.logPath = path
	return l
}

// acquireTimeout bounds how long Serve waits for a semaphore slot once all
// are taken; in practice only ctx cancellation (on shutdown) interrupts it
// sooner, since legitimate handlers are expected to finish well within it.
const acquireTimeout = 24 * time.Hour

func wrap(nl net.Listener, maxConns int) *Listener {
	var sem *semaphore.ConnSemaphore
	if maxConns > 0 {
		sem = semaphore.New(maxConns, acquireTimeout)
	}
	return &Listener{nl: nl, sem: sem}
}

// Addr reports the listener's bound address.
func (l *Listener) Addr() net.Addr { return l.nl.Addr() }

// Close stops accepting new connections.
func (l *Listener) Close() error { return l.nl.Close() }

// Serve accepts connections until ctx is cancelled or Close is called,
// dispatching each to handler in its own goroutine once a semaphore slot is
// acquired. A handler panic is recovered and logged, never crashing the
// loop.
func (l *Listener) Serve(ctx context.Context, handler transport.Handler) error {
	go func() {
		<-ctx.Done()
		_ = l.nl.Close()
	}()

	for {
		conn, err := l.nl.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		if l.sem != nil {
			if avail := l.sem.Available(); avail == 0 {
				log.WarnMsg("connection slots full, waiting for one to free up\n")
			}
			// Acquire waits up to acquireTimeout; ctx cancellation on
			// shutdown unblocks a saturated semaphore sooner.
			if err := l.sem.Acquire(ctx); err != nil {
				_ = conn.Close()
				if ctx.Err() != nil {
					return nil
				}
				continue
			}
		}

		go l.serveOne(ctx, conn, handler)
	}
}

func (l *Listener) serveOne(ctx context.Context, conn net.Conn, handler transport.Handler) {
	defer func() {
		if l.sem != nil {
			l.sem.Release()
		}
		if r := recover(); r != nil {
			log.ErrorMsg("handler panic: %v\n", r)
		}
	}()

	wire, err := l.upgrade(ctx, conn)
	if err != nil {
		log.ErrorMsg("accept from %s: %s\n", conn.RemoteAddr(), err)
		_ = conn.Close()
		return
	}
	defer wire.Close()

	if l.logPath != "" {
		logged, err := log.NewLoggedConn(wire, l.logPath)
		if err != nil {
			log.ErrorMsg("opening wire log %s: %s\n", l.logPath, err)
		} else {
			wire = logged
		}
	}

	if l.muxed {
		l.serveMuxed(ctx, wire, handler)
		return
	}

	if err := handler(wire); err != nil {
		log.ErrorMsg("handle connection from %s: %s\n", wire.RemoteAddr(), err)
	}
}

// upgrade returns the raw accepted connection unchanged unless this Listener
// was built with ListenTLS; then it wraps the connection in endpoint metadata
// and performs the server-side TLS handshake (C3) before returning it to
// serveOne.
func (l *Listener) upgrade(ctx context.Context, conn net.Conn) (net.Conn, error) {
	if l.tlsCfg == nil {
		return conn, nil
	}

	remote := addrToEndpoint(conn.RemoteAddr())
	local := addrToEndpoint(conn.LocalAddr())
	wrapped := endpoint.New(conn, remote, local, remote.IsUnix(), "")

	secured, err := tlsconn.Enable(ctx, wrapped, tlsconn.RoleServer, l.tlsCfg, remote.String())
	if err != nil {
		return nil, err
	}
	return secured, nil
}

func addrToEndpoint(addr net.Addr) endpoint.Endpoint {
	switch a := addr.(type) {
	case *net.TCPAddr:
		return endpoint.TCPEndpoint(a.IP.String(), a.Port)
	case *net.UnixAddr:
		return endpoint.UnixEndpoint(a.Name)
	default:
		return endpoint.TCPEndpoint(addr.String(), 0)
	}
}
