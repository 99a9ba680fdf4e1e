// Package uri implements the connector system's URI model (C1): parsing and
// byte-exact rendering of "scheme://host:port/path?query#fragment", literal
// IP vs hostname classification, and the hostname= query hint used to carry
// TLS SNI/verification context through per-IP candidate URIs.
package uri

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/eyeballnet/eyeball/pkg/dialerr"
)

// DefaultScheme is prefixed onto scheme-less inputs before parsing, per
// spec §4.1.
const DefaultScheme = "tcp"

// Parsed is the parsed form of a connector URI (§3 ParsedURI).
type Parsed struct {
	Scheme   string // lowercase, always populated (defaulted if absent)
	Host     string // unbracketed; either a literal IP or a hostname
	Port     int    // 0 if not present in the input
	hasPort  bool
	Path     string
	Query    url.Values
	Fragment string

	rawQuery string // preserves ordering/exact text when no hostname injection occurs
}

// Parse parses raw into a Parsed URI. If raw has no "://", DefaultScheme is
// prefixed first. Fails with dialerr.InvalidArgument/EINVAL if the result
// has no host.
func Parse(raw string) (*Parsed, error) {
	s := raw
	if !strings.Contains(s, "://") {
		s = DefaultScheme + "://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, dialerr.InvalidArgument(fmt.Sprintf("invalid URI %q: %s", raw, err))
	}

	host := u.Hostname()
	if host == "" {
		// A bare unix path ("unix:///tmp/x.sock") parses with an empty
		// Hostname and the path carrying everything; treat Path as host
		// in that case so callers can still use Host for the dial target.
		if strings.EqualFold(u.Scheme, "unix") && u.Path != "" {
			host = u.Path
			u.Path = ""
		} else {
			return nil, dialerr.InvalidArgument(fmt.Sprintf("invalid URI %q: missing host", raw))
		}
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err == nil {
		host = ascii
	}
	// If idna conversion fails (e.g. host is a literal IP, which idna
	// rejects), fall through and use the host exactly as parsed.

	p := &Parsed{
		Scheme:   strings.ToLower(u.Scheme),
		Host:     host,
		Path:     u.Path,
		Query:    u.Query(),
		Fragment: u.Fragment,
		rawQuery: u.RawQuery,
	}

	if portStr := u.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, dialerr.InvalidArgument(fmt.Sprintf("invalid URI %q: bad port %q", raw, portStr))
		}
		p.Port = port
		p.hasPort = true
	}

	if p.Scheme == "" {
		p.Scheme = DefaultScheme
	}

	return p, nil
}

// HasPort reports whether the input explicitly carried a port.
func (p *Parsed) HasPort() bool { return p.hasPort }

// IsLiteralIP reports whether Host is a literal IPv4 or IPv6 address rather
// than a hostname requiring resolution.
func (p *Parsed) IsLiteralIP() bool {
	return net.ParseIP(p.Host) != nil
}

// Hostname returns the pre-existing hostname= query parameter, if any.
func (p *Parsed) Hostname() string {
	return p.Query.Get("hostname")
}

// String renders scheme://authority[path][?query][#fragment] from the parsed
// fields. The host is rendered as stored by Parse, so a non-ASCII hostname
// comes back in its IDNA ASCII ("xn--") form, not the caller's spelling.
func (p *Parsed) String() string {
	var b strings.Builder
	b.WriteString(p.Scheme)
	b.WriteString("://")
	b.WriteString(p.authority())
	b.WriteString(p.Path)
	if p.rawQuery != "" {
		b.WriteString("?")
		b.WriteString(p.rawQuery)
	}
	if p.Fragment != "" {
		b.WriteString("#")
		b.WriteString(p.Fragment)
	}
	return b.String()
}

func (p *Parsed) authority() string {
	host := p.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if p.hasPort {
		return fmt.Sprintf("%s:%d", host, p.Port)
	}
	return host
}

// WithHost returns a copy of p with Host replaced (used to render a
// per-candidate-IP URI in C4's "candidate URI rendering").
func (p *Parsed) WithHost(host string) *Parsed {
	cp := *p
	cp.Host = host
	return &cp
}

// WithScheme returns a copy of p with Scheme replaced (used by C6 to
// rewrite "tls://" to the inner transport's "tcp://" before delegation).
func (p *Parsed) WithScheme(scheme string) *Parsed {
	cp := *p
	cp.Scheme = scheme
	return &cp
}

// WithHostnameHint returns a copy of p with a hostname=<name> query
// parameter appended, unless a hostname= parameter is already present (the
// pre-existing value always wins — no injection occurs in that case, per
// §6 "URI conventions"). The separator is "&" when a query already exists,
// "?" otherwise (Open Question in spec §9, resolved: preserve the source's
// exact observed behavior of "?query&hostname=...#fragment").
func (p *Parsed) WithHostnameHint(name string) *Parsed {
	if p.Query.Get("hostname") != "" {
		return p
	}

	cp := *p
	if cp.rawQuery == "" {
		cp.rawQuery = "hostname=" + url.QueryEscape(name)
	} else {
		cp.rawQuery = cp.rawQuery + "&hostname=" + url.QueryEscape(name)
	}
	cp.Query = cloneValues(cp.Query)
	cp.Query.Set("hostname", name)
	return &cp
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		cp := make([]string, len(vals))
		copy(cp, vals)
		out[k] = cp
	}
	return out
}
