package happyeyeballs

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/eyeballnet/eyeball/pkg/endpoint"
	"github.com/eyeballnet/eyeball/pkg/resolver"
	"github.com/eyeballnet/eyeball/pkg/uri"
)

// fakeResolver answers AAAA/A queries from canned results after an optional
// delay, simulating DNS races without real network access.
type fakeResolver struct {
	aaaaIPs   []string
	aaaaErr   error
	aaaaDelay time.Duration

	aIPs   []string
	aErr   error
	aDelay time.Duration
}

func (f *fakeResolver) ResolveAll(ctx context.Context, host string, rt resolver.RecordType) ([]string, error) {
	delay, ips, err := f.aDelay, f.aIPs, f.aErr
	if rt == resolver.RecordAAAA {
		delay, ips, err = f.aaaaDelay, f.aaaaIPs, f.aaaaErr
	}

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return ips, err
}

// fakeOutcome describes how a fake transport dialer should answer a dial to
// a specific candidate IP.
type fakeOutcome struct {
	err   error
	delay time.Duration
}

// fakeTransport simulates C2 by keying canned outcomes on the candidate IP
// embedded in each per-attempt URI, and records every IP it was asked to
// dial for assertions on attempt order.
type fakeTransport struct {
	mu       sync.Mutex
	outcomes map[string]fakeOutcome
	dialed   []string
	pipes    []net.Conn
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{outcomes: make(map[string]fakeOutcome)}
}

func (f *fakeTransport) succeedOn(ip string) {
	f.outcomes[ip] = fakeOutcome{}
}

func (f *fakeTransport) failOn(ip string, err error) {
	f.outcomes[ip] = fakeOutcome{err: err}
}

func (f *fakeTransport) Dial(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
	p, err := uri.Parse(rawURI)
	if err != nil {
		return nil, err
	}
	ip := p.Host

	f.mu.Lock()
	f.dialed = append(f.dialed, ip)
	outcome, ok := f.outcomes[ip]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("fakeTransport: no outcome configured for %s", ip)
	}

	select {
	case <-time.After(outcome.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if outcome.err != nil {
		return nil, outcome.err
	}

	remote := endpoint.TCPEndpoint(ip, p.Port)
	local := endpoint.TCPEndpoint("127.0.0.1", 0)

	client, server := net.Pipe()
	f.mu.Lock()
	f.pipes = append(f.pipes, server)
	f.mu.Unlock()

	return endpoint.New(client, remote, local, false, p.Hostname()), nil
}

func (f *fakeTransport) dialedIPs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.dialed))
	copy(out, f.dialed)
	return out
}

// closeAll closes the server side of every net.Pipe this fake handed out, so
// a test's goroutines don't leak blocked on an unread pipe.
func (f *fakeTransport) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pipes {
		p.Close()
	}
}
