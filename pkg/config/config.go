// Package config binds CLI flags to the options the connector pipeline (C1-C8)
// needs to assemble, the same way goncat's Shared config fed its client/server
// constructors.
package config

import (
	"fmt"
	"time"
)

// KeySalt is mixed into Key before it seeds certificate generation, so a
// guessed or logged Key alone is not enough to mint a matching certificate.
// Overwrite with a custom value during a release build.
var KeySalt = "bn6ySqbg2BgmHaljx3mhg94DOybkBF3G"

// DNSMode selects how a hostname in a dialed URI is resolved.
type DNSMode string

const (
	// DNSSystem resolves through the OS resolver (cgo or Go's pure
	// implementation, whichever net.Resolver picks).
	DNSSystem DNSMode = "system"
	// DNSCustom resolves by sending queries directly to Servers.
	DNSCustom DNSMode = "custom"
	// DNSDisabled skips resolution and the happy-eyeballs dialer: URIs are
	// passed to the TCP transport dialer verbatim. That dialer accepts only
	// literal IPs, so a hostname fails with EINVAL rather than being resolved.
	DNSDisabled DNSMode = "disabled"
)

// Options is the shared configuration surface for eyeballctl's dial and
// listen commands, analogous to goncat's Shared config struct.
type Options struct {
	SSL bool   // layer C6 (TLS) on top of the chosen transport
	Key string // seeds ephemeral cert generation; empty disables mTLS auth

	Scheme string // listener transport: "unix" listens on a Unix socket, anything else on TCP; dialing takes the scheme from the URI

	DNS           DNSMode
	DNSServers    []string // custom resolver upstreams, DNSMode == DNSCustom
	HappyEyeballs bool     // enabled by default; false forces single-candidate dialing

	Timeout time.Duration // zero disables C8's deadline

	MaxConns int  // server-side accept semaphore, 0 disables the limit
	Mux      bool // layer a yamux session over each accepted connection

	LogFile string // mirror connection bytes to this path; empty disables it

	Verbose bool
}

// Validate checks field combinations the way goncat's Shared.Validate did:
// catching user errors before any socket is touched.
func (o *Options) Validate() []error {
	var errs []error

	if !o.SSL && o.Key != "" {
		errs = append(errs, fmt.Errorf("you must set --ssl to use --key"))
	}

	switch o.Scheme {
	case "", "tcp", "unix", "ws", "wss":
	default:
		errs = append(errs, fmt.Errorf("--scheme: unsupported value %q", o.Scheme))
	}

	switch o.DNS {
	case "", DNSSystem, DNSDisabled:
	case DNSCustom:
		if len(o.DNSServers) == 0 {
			errs = append(errs, fmt.Errorf("--dns=custom requires at least one --dns-server"))
		}
		for _, s := range o.DNSServers {
			if err := validateHostPort(s); err != nil {
				errs = append(errs, fmt.Errorf("--dns-server %q: %w", s, err))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("--dns: unsupported value %q", o.DNS))
	}

	if o.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("--max-conns must not be negative"))
	}

	return errs
}

// GetKey salts Key the way goncat derived its mTLS PSK, so the two ends of a
// connection need the same --key to produce matching certificates.
func (o *Options) GetKey() string {
	if o.Key == "" {
		return ""
	}
	return KeySalt + o.Key
}
