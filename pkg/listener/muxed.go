package listener

import (
	"context"
	"net"

	"github.com/hashicorp/yamux"

	"github.com/eyeballnet/eyeball/pkg/log"
	"github.com/eyeballnet/eyeball/pkg/transport"
)

// ListenMuxed layers a yamux session over every connection base accepts, so
// one accepted connection (already upgraded by ListenTLS if configured)
// carries many logical streams, each dispatched to the Serve handler
// independently. cfg may be nil to use yamux.DefaultConfig().
func ListenMuxed(base *Listener, cfg *yamux.Config) *Listener {
	return &Listener{nl: base.nl, sem: base.sem, tlsCfg: base.tlsCfg, muxCfg: cfg, muxed: true, logPath: base.logPath}
}

// serveMuxed replaces serveOne's direct handler dispatch when this Listener
// was built with ListenMuxed: it opens a yamux server session over wire and
// hands every accepted stream to handler in its own goroutine, until the
// session closes or ctx is cancelled.
func (l *Listener) serveMuxed(ctx context.Context, wire net.Conn, handler transport.Handler) {
	session, err := yamux.Server(wire, l.muxCfg)
	if err != nil {
		log.ErrorMsg("yamux.Server over %s: %s\n", wire.RemoteAddr(), err)
		return
	}
	defer session.Close()

	go func() {
		<-ctx.Done()
		_ = session.Close()
	}()

	for {
		stream, err := session.AcceptStream()
		if err != nil {
			if ctx.Err() != nil || session.IsClosed() {
				return
			}
			return
		}

		go func() {
			defer func() {
				_ = stream.Close()
				if r := recover(); r != nil {
					log.ErrorMsg("stream handler panic: %v\n", r)
				}
			}()
			if err := handler(stream); err != nil {
				log.ErrorMsg("handle stream from %s: %s\n", wire.RemoteAddr(), err)
			}
		}()
	}
}
