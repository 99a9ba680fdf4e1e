package config

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/eyeballnet/eyeball/pkg/connector"
	"github.com/eyeballnet/eyeball/pkg/crypto"
	"github.com/eyeballnet/eyeball/pkg/dialerr"
	"github.com/eyeballnet/eyeball/pkg/endpoint"
	"github.com/eyeballnet/eyeball/pkg/happyeyeballs"
	"github.com/eyeballnet/eyeball/pkg/listener"
	"github.com/eyeballnet/eyeball/pkg/resolver"
	"github.com/eyeballnet/eyeball/pkg/transport/tcp"
	"github.com/eyeballnet/eyeball/pkg/transport/unix"
	"github.com/eyeballnet/eyeball/pkg/transport/ws"
	"github.com/eyeballnet/eyeball/pkg/uri"
)

// BuildConnector assembles C5-C8 (and, when SSL is set, C6) from Options:
// the same construction goncat's client.New did from its Shared config, but
// producing a Connector instead of a fixed client session.
func (o *Options) BuildConnector() (connector.Connector, error) {
	resolve := o.buildResolver()
	tcpDialer := tcp.NewDialer()
	unixDialer := unix.NewDialer()

	var tcpConn connector.Connector
	switch {
	case o.DNS == DNSDisabled:
		tcpConn = connector.Func(tcpDialer.Dial)
	case !o.HappyEyeballs:
		tcpConn = singleCandidateConnector(resolve, tcpDialer)
	default:
		tcpConn = connector.NewDNSConnector(tcpDialer, happyeyeballs.New(resolve, tcpDialer))
	}

	router := connector.NewRouter().WithTimeout(o.Timeout)
	router.Register("tcp", tcpConn)
	router.Register("unix", connector.Func(unixDialer.Dial))
	router.Register("ws", connector.Func(ws.NewDialer(false).Dial))
	router.Register("wss", connector.Func(ws.NewDialer(true).Dial))

	if o.SSL {
		cfg, err := o.buildTLSConfig(tlsRoleClient)
		if err != nil {
			return nil, err
		}
		router.Register("tls", connector.NewSecureConnector(tcpConn, cfg))
	}

	return connector.NewLoggingConnector(router, o.LogFile), nil
}

// BuildListener assembles the server-side counterpart: a listener bound to
// addr, optionally wrapped with C3 in the server role.
func (o *Options) BuildListener(addr string) (*listener.Listener, error) {
	var l *listener.Listener
	var err error

	if o.Scheme == "unix" {
		l, err = listener.ListenUnix(addr, o.MaxConns)
	} else {
		l, err = listener.ListenTCP(addr, o.MaxConns)
	}
	if err != nil {
		return nil, err
	}

	if o.SSL {
		cfg, err := o.buildTLSConfig(tlsRoleServer)
		if err != nil {
			return nil, err
		}
		l = listener.ListenTLS(l, cfg)
	}

	if o.Mux {
		l = listener.ListenMuxed(l, nil)
	}

	l = l.WithWireLog(o.LogFile)

	return l, nil
}

func (o *Options) buildResolver() resolver.Resolver {
	if o.DNS == DNSCustom {
		return resolver.NewDNS(o.DNSServers...)
	}
	return resolver.NewSystem()
}

type tlsRole int

const (
	tlsRoleClient tlsRole = iota
	tlsRoleServer
)

// buildTLSConfig mints an ephemeral certificate seeded by GetKey, the same
// shared-secret-derives-matching-certs model goncat used for its mTLS
// handshake: both ends derive the same CA key pair from the same --key, so
// each end's freshly minted peer certificate verifies against the other's CA
// pool, without a real external CA. Leaving Key empty falls back
// to an unverified handshake (confidentiality only, no peer authentication).
func (o *Options) buildTLSConfig(role tlsRole) (*tls.Config, error) {
	caPool, cert, err := crypto.GenerateCertificates(o.GetKey())
	if err != nil {
		return nil, fmt.Errorf("generating TLS certificate: %w", err)
	}

	cfg := &tls.Config{Certificates: []tls.Certificate{cert}}

	if o.Key == "" {
		cfg.InsecureSkipVerify = true
		return cfg, nil
	}

	switch role {
	case tlsRoleClient:
		cfg.RootCAs = caPool
	case tlsRoleServer:
		cfg.ClientCAs = caPool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return cfg, nil
}

// singleCandidateConnector resolves host to exactly one address (preferring
// AAAA, falling back to A) and dials it directly, skipping C4's racing and
// interleaving entirely — the --happy-eyeballs=false escape hatch.
func singleCandidateConnector(resolve resolver.Resolver, dialer *tcp.Dialer) connector.Func {
	return func(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
		parts, err := uri.Parse(rawURI)
		if err != nil {
			return nil, err
		}
		if parts.IsLiteralIP() {
			return dialer.Dial(ctx, rawURI)
		}

		ips, err := resolve.ResolveAll(ctx, parts.Host, resolver.RecordAAAA)
		if err == nil && len(ips) == 0 {
			ips, err = resolve.ResolveAll(ctx, parts.Host, resolver.RecordA)
		}
		if err != nil {
			return nil, dialerr.Wrap(dialerr.ClassifySyscallError(err),
				fmt.Sprintf("Connection to %s failed during DNS lookup: %s", rawURI, err), err)
		}
		if len(ips) == 0 {
			return nil, dialerr.New(dialerr.ECodeUnknown,
				fmt.Sprintf("Connection to %s failed: no addresses found", rawURI))
		}

		candidate := parts.WithHost(ips[0]).WithHostnameHint(parts.Host).String()
		return dialer.Dial(ctx, candidate)
	}
}
