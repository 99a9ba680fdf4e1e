package resolver

import (
	"context"
	"fmt"
	"math/rand"
	"net"

	"github.com/miekg/dns"
)

// DNS resolves A/AAAA records by querying configured nameservers directly
// with github.com/miekg/dns, bypassing the OS resolver cache. Adapted from
// dpeckett-network's ResolveConfig.LookupHost, split into two independent
// single-record-type queries so each can be raced separately by C4 instead
// of returning one pre-merged address list.
type DNS struct {
	// Nameservers to query, e.g. "1.1.1.1:53". At least one is required.
	Nameservers []string

	// Client performs the actual query; defaults to a fresh dns.Client per
	// call if nil.
	Client *dns.Client
}

// NewDNS builds a DNS resolver querying the given nameservers.
func NewDNS(nameservers ...string) *DNS {
	return &DNS{Nameservers: nameservers}
}

// ResolveAll queries a single randomly chosen configured nameserver for
// rt's record type.
func (d *DNS) ResolveAll(ctx context.Context, host string, rt RecordType) ([]string, error) {
	if len(d.Nameservers) == 0 {
		return nil, fmt.Errorf("resolver.DNS: no nameservers configured")
	}

	ns := d.Nameservers[rand.Intn(len(d.Nameservers))]
	if _, _, err := net.SplitHostPort(ns); err != nil {
		ns = net.JoinHostPort(ns, "53")
	}

	qtype := dns.TypeA
	if rt == RecordAAAA {
		qtype = dns.TypeAAAA
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	client := d.Client
	if client == nil {
		client = &dns.Client{}
	}

	resp, _, err := client.ExchangeContext(ctx, msg, ns)
	if err != nil {
		return nil, err
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return nil, fmt.Errorf("resolver.DNS: nameserver %s returned %s", ns, dns.RcodeToString[resp.Rcode])
	}

	var out []string
	for _, rr := range resp.Answer {
		switch rec := rr.(type) {
		case *dns.A:
			if rt == RecordA {
				out = append(out, rec.A.String())
			}
		case *dns.AAAA:
			if rt == RecordAAAA {
				out = append(out, rec.AAAA.String())
			}
		}
	}
	return out, nil
}
