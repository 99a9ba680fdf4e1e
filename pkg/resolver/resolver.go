// Package resolver defines the Resolver contract (§6) used by C4 to look up
// A/AAAA records, plus two implementations: a stdlib-backed default and a
// direct-to-nameserver implementation built on miekg/dns.
package resolver

import (
	"context"
	"net"
)

// RecordType selects which record type to query.
type RecordType int

const (
	RecordAAAA RecordType = iota
	RecordA
)

func (r RecordType) String() string {
	if r == RecordAAAA {
		return "AAAA"
	}
	return "A"
}

// Family reports the IP family a successful answer for this record type
// carries.
func (r RecordType) Family() string {
	if r == RecordAAAA {
		return "v6"
	}
	return "v4"
}

// Resolver is the collaborator contract (§6): resolveAll(host, recordType)
// returns the (possibly empty) list of IP literals for that record type. An
// empty list is a valid answer, not an error. Implementations must respect
// ctx cancellation.
type Resolver interface {
	ResolveAll(ctx context.Context, host string, rt RecordType) ([]string, error)
}

// System resolves using the operating system resolver via net.Resolver. It
// is the default Resolver, used unless custom DNS servers are configured.
type System struct {
	Resolver *net.Resolver // nil uses net.DefaultResolver
}

// NewSystem builds a System resolver using net.DefaultResolver.
func NewSystem() *System {
	return &System{}
}

// ResolveAll looks up rt's record type for host using the OS resolver. Go's
// net.Resolver.LookupIP doesn't separate A/AAAA, so both queries fan out
// through LookupIPAddr and filter client-side by family.
func (s *System) ResolveAll(ctx context.Context, host string, rt RecordType) ([]string, error) {
	r := s.Resolver
	if r == nil {
		r = net.DefaultResolver
	}

	addrs, err := r.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, a := range addrs {
		ip4 := a.IP.To4()
		isV4 := ip4 != nil
		if rt == RecordA && isV4 {
			out = append(out, a.IP.String())
		} else if rt == RecordAAAA && !isV4 {
			out = append(out, a.IP.String())
		}
	}
	return out, nil
}
