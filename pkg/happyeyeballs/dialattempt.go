package happyeyeballs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/eyeballnet/eyeball/pkg/dialerr"
	"github.com/eyeballnet/eyeball/pkg/endpoint"
	"github.com/eyeballnet/eyeball/pkg/resolver"
	"github.com/eyeballnet/eyeball/pkg/transport"
	"github.com/eyeballnet/eyeball/pkg/uri"
)

// dnsEvent carries one resolver answer (success or failure) for one record
// type into the DialAttempt's event loop.
type dnsEvent struct {
	rt  resolver.RecordType
	ips []string
	err error
}

// attemptEvent carries the outcome of one transport attempt.
type attemptEvent struct {
	id     int
	ip     string
	family string
	conn   *endpoint.Conn
	err    error
}

// dialAttempt is the per-connect() state object (§3 DialAttempt): it owns
// DNS, the candidate queue, timers, and in-flight sockets for exactly one
// Connect call, and terminates in exactly one of success, exhausted
// failure, DNS-only failure, or cancellation.
type dialAttempt struct {
	ctx    context.Context
	cancel context.CancelFunc

	resolver  resolver.Resolver
	transport transport.Dialer

	uriStr string
	host   string
	parts  *uri.Parsed

	group *errgroup.Group

	dnsCh     chan dnsEvent
	attemptCh chan attemptEvent

	resolveTmr *time.Timer
	pacingTmr  *time.Timer
	pacer      *rate.Limiter

	aaaaDone, aDone bool
	pendingA        *dnsEvent // held back for the resolution delay

	queue []candidate

	inFlight map[int]context.CancelFunc
	nextID   int

	ipsSeen, failures int
	lastErrV4         error
	lastErrV6         error
	lastErrFamily     string

	attemptStarted bool
}

func newDialAttempt(parent context.Context, r resolver.Resolver, t transport.Dialer, uriStr, host string, parts *uri.Parsed) *dialAttempt {
	ctx, cancel := context.WithCancel(parent)
	return &dialAttempt{
		ctx:       ctx,
		cancel:    cancel,
		resolver:  r,
		transport: t,
		uriStr:    uriStr,
		host:      host,
		parts:     parts,
		dnsCh:     make(chan dnsEvent, 2),
		attemptCh: make(chan attemptEvent, 64),
		pacer:     rate.NewLimiter(rate.Every(AttemptDelay), 1),
		inFlight:  make(map[int]context.CancelFunc),
	}
}

// run drives the DialAttempt to termination and returns its result.
func (d *dialAttempt) run() (conn *endpoint.Conn, err error) {
	d.group, _ = errgroup.WithContext(context.Background())

	d.startLookup(resolver.RecordAAAA)
	d.startLookup(resolver.RecordA)

	defer d.cleanup()

	// Caller cancellation takes precedence over a failure observed in the same turn.
	defer func() {
		if err != nil && d.ctx.Err() != nil {
			conn, err = nil, d.cancellationError()
		}
	}()

	for {
		select {
		case <-d.ctx.Done():
			return nil, d.cancellationError()

		case ev := <-d.dnsCh:
			if done, c, e := d.handleDNS(ev); done {
				return c, e
			}

		case <-d.resolveTimerChan():
			if done, c, e := d.releasePendingA(); done {
				return c, e
			}

		case <-d.pacingTimerChan():
			if done, c, e := d.onTick(); done {
				return c, e
			}

		case ev := <-d.attemptCh:
			if done, c, e := d.handleAttempt(ev); done {
				return c, e
			}
		}
	}
}

// resolveTimerChan and pacingTimerChan return the current timer's channel,
// or nil (which blocks forever in a select) when no timer is armed.
func (d *dialAttempt) resolveTimerChan() <-chan time.Time {
	if d.resolveTmr == nil {
		return nil
	}
	return d.resolveTmr.C
}

func (d *dialAttempt) pacingTimerChan() <-chan time.Time {
	if d.pacingTmr == nil {
		return nil
	}
	return d.pacingTmr.C
}

func (d *dialAttempt) startLookup(rt resolver.RecordType) {
	d.group.Go(func() error {
		ips, err := d.resolver.ResolveAll(d.ctx, d.host, rt)
		select {
		case d.dnsCh <- dnsEvent{rt: rt, ips: ips, err: err}:
		case <-d.ctx.Done():
		}
		return nil
	})
}

// handleDNS processes one resolver answer. AAAA answers are applied to the
// queue immediately. A answers are subject to the resolution delay unless
// AAAA has already completed or the A answer carries no addresses.
func (d *dialAttempt) handleDNS(ev dnsEvent) (done bool, conn *endpoint.Conn, err error) {
	if ev.rt == resolver.RecordAAAA {
		d.aaaaDone = true
		d.applyBatch(ev)

		if d.resolveTmr != nil {
			d.resolveTmr.Stop()
			d.resolveTmr = nil
			if d.pendingA != nil {
				pending := *d.pendingA
				d.pendingA = nil
				d.aDone = true
				d.applyBatch(pending)
			}
		}

		return d.afterQueueChange()
	}

	// A answer.
	if d.aaaaDone || ev.err != nil || len(ev.ips) == 0 {
		d.aDone = true
		d.applyBatch(ev)
		return d.afterQueueChange()
	}

	// Hold the A answer back for up to ResolutionDelay so it doesn't race
	// ahead of a still-pending AAAA answer.
	cp := ev
	d.pendingA = &cp
	d.resolveTmr = time.NewTimer(ResolutionDelay)
	return false, nil, nil
}

func (d *dialAttempt) releasePendingA() (done bool, conn *endpoint.Conn, err error) {
	d.resolveTmr = nil
	d.aDone = true
	if d.pendingA != nil {
		pending := *d.pendingA
		d.pendingA = nil
		d.applyBatch(pending)
	}
	return d.afterQueueChange()
}

// applyBatch records DNS-failure bookkeeping and merges a batch's addresses
// into the candidate queue via the interleave rule.
func (d *dialAttempt) applyBatch(ev dnsEvent) {
	family := "v4"
	if ev.rt == resolver.RecordAAAA {
		family = "v6"
	}

	if ev.err != nil {
		d.recordFailure(family, ev.err)
		return
	}

	batch := shuffle(ev.ips, family)
	d.queue = mergeBatch(d.queue, batch)
}

func (d *dialAttempt) recordFailure(family string, err error) {
	d.lastErrFamily = family
	if family == "v6" {
		d.lastErrV6 = err
	} else {
		d.lastErrV4 = err
	}
}

// afterQueueChange re-arms the pacing timer (a no-op if one is already
// running) and checks whether both families have now resolved with nothing
// left to try, in which case the DialAttempt terminates in aggregate
// failure.
func (d *dialAttempt) afterQueueChange() (done bool, conn *endpoint.Conn, err error) {
	d.armPacingTimer()

	if d.aaaaDone && d.aDone && len(d.queue) == 0 && len(d.inFlight) == 0 {
		return true, nil, d.aggregateFailureError()
	}
	return false, nil, nil
}

// armPacingTimer arms the attempt-pacing timer whenever the queue is
// non-empty or DNS is still in flight; it stays disarmed once both
// families have resolved and the queue is empty (§4.4 "attempt pacing").
func (d *dialAttempt) armPacingTimer() {
	if d.pacingTmr != nil {
		return // already armed; its own fire re-arms the next slot
	}
	if len(d.queue) == 0 && d.aaaaDone && d.aDone {
		return
	}

	delay := d.pacer.Reserve().Delay()
	d.pacingTmr = time.NewTimer(delay)
}

// onTick handles the pacing timer's expiry: start a new attempt if the
// queue has one ready, then re-arm for the next slot.
func (d *dialAttempt) onTick() (done bool, conn *endpoint.Conn, err error) {
	d.pacingTmr = nil

	if len(d.queue) > 0 {
		d.startNextAttempt()
	}

	d.armPacingTimer()

	if d.aaaaDone && d.aDone && len(d.queue) == 0 && len(d.inFlight) == 0 {
		return true, nil, d.aggregateFailureError()
	}
	return false, nil, nil
}

func (d *dialAttempt) startNextAttempt() {
	c := d.queue[0]
	d.queue = d.queue[1:]
	d.attemptStarted = true
	d.ipsSeen++

	attemptCtx, attemptCancel := context.WithCancel(d.ctx)
	id := d.nextID
	d.nextID++
	d.inFlight[id] = attemptCancel

	candURI := d.candidateURI(c.ip)

	d.group.Go(func() error {
		conn, err := d.transport.Dial(attemptCtx, candURI)
		select {
		case d.attemptCh <- attemptEvent{id: id, ip: c.ip, family: c.family, conn: conn, err: err}:
		case <-d.ctx.Done():
			if conn != nil {
				conn.Close()
			}
		}
		return nil
	})
}

// candidateURI renders the per-IP URI passed to C2: the outer URI with Host
// replaced by the literal candidate IP and a hostname= hint appended
// (§4.4 "candidate URI rendering").
func (d *dialAttempt) candidateURI(ip string) string {
	p := d.parts.WithHost(ip).WithHostnameHint(d.host)
	return p.String()
}

func (d *dialAttempt) handleAttempt(ev attemptEvent) (done bool, conn *endpoint.Conn, err error) {
	delete(d.inFlight, ev.id)

	if ev.err == nil {
		d.cancelAll()
		return true, ev.conn, nil
	}

	d.failures++
	d.recordFailure(ev.family, ev.err)

	// On failure, the next attempt begins immediately: drop whatever pacing
	// slot was pending and re-derive one from this moment, so the queue
	// isn't left waiting out a stale delay.
	if d.pacingTmr != nil {
		d.pacingTmr.Stop()
		d.pacingTmr = nil
	}
	d.pacer = rate.NewLimiter(rate.Every(AttemptDelay), 1)
	d.pacer.Reserve() // consumes "now", so the next Reserve() yields a full AttemptDelay

	if len(d.queue) > 0 {
		d.startNextAttempt()
	}
	d.armPacingTimer()

	if d.aaaaDone && d.aDone && len(d.queue) == 0 && len(d.inFlight) == 0 {
		return true, nil, d.aggregateFailureError()
	}
	return false, nil, nil
}

// cancelAll cancels every in-flight attempt and disarms both timers; called
// on success and during cleanup.
func (d *dialAttempt) cancelAll() {
	for id, cancel := range d.inFlight {
		cancel()
		delete(d.inFlight, id)
	}
	if d.pacingTmr != nil {
		d.pacingTmr.Stop()
		d.pacingTmr = nil
	}
	if d.resolveTmr != nil {
		d.resolveTmr.Stop()
		d.resolveTmr = nil
	}
}

func (d *dialAttempt) cleanup() {
	d.cancelAll()
	d.cancel()
	_ = d.group.Wait()
}

// cancellationError renders the caller-cancellation message: the "during
// DNS lookup" qualifier appears iff no transport attempt was ever started.
func (d *dialAttempt) cancellationError() error {
	if !d.attemptStarted {
		return dialerr.ConnectionCancelled(d.uriStr, "DNS lookup")
	}
	return dialerr.ConnectionCancelled(d.uriStr, "")
}

// aggregateFailureError composes the §4.4 "Aggregate failure" message.
func (d *dialAttempt) aggregateFailureError() error {
	if d.ipsSeen == 0 {
		cause := d.mostRecentError()
		return dialerr.Wrap(dialerr.ClassifySyscallError(cause), fmt.Sprintf("Connection to %s failed during DNS lookup: %s", d.uriStr, d.dnsFailureDetail()), cause)
	}

	detail := d.transportFailureDetail()
	code := dialerr.ClassifySyscallError(d.mostRecentError())
	return dialerr.Wrap(code, fmt.Sprintf("Connection to %s failed: %s", d.uriStr, detail), d.mostRecentError())
}

func (d *dialAttempt) mostRecentError() error {
	if d.lastErrFamily == "v6" {
		return d.lastErrV6
	}
	return d.lastErrV4
}

func (d *dialAttempt) dnsFailureDetail() string {
	if d.lastErrV4 == nil && d.lastErrV6 == nil {
		return "no addresses found"
	}
	if d.lastErrV4 != nil && d.lastErrV6 != nil && d.lastErrV4.Error() == d.lastErrV6.Error() {
		return d.lastErrV4.Error()
	}

	var b strings.Builder
	if d.lastErrFamily == "v6" && d.lastErrV6 != nil {
		fmt.Fprintf(&b, "Last error for IPv6: %s", errString(d.lastErrV6))
		if d.lastErrV4 != nil {
			fmt.Fprintf(&b, ". Previous error for IPv4: %s", d.lastErrV4)
		}
		return b.String()
	}
	if d.lastErrV4 != nil {
		fmt.Fprintf(&b, "Last error for IPv4: %s", errString(d.lastErrV4))
		if d.lastErrV6 != nil {
			fmt.Fprintf(&b, ". Previous error for IPv6: %s", d.lastErrV6)
		}
		return b.String()
	}
	return "no addresses found"
}

// transportFailureDetail composes the "Last error for IPv<f>: <A>. Previous
// error for IPv<g>: <B>" message (§4.4 "Aggregate failure").
func (d *dialAttempt) transportFailureDetail() string {
	if d.lastErrV4 != nil && d.lastErrV6 != nil && d.lastErrV4.Error() == d.lastErrV6.Error() {
		return d.lastErrV4.Error()
	}

	var b strings.Builder
	if d.lastErrFamily == "v6" {
		fmt.Fprintf(&b, "Last error for IPv6: %s", errString(d.lastErrV6))
		if d.lastErrV4 != nil {
			fmt.Fprintf(&b, ". Previous error for IPv4: %s", d.lastErrV4)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Last error for IPv4: %s", errString(d.lastErrV4))
	if d.lastErrV6 != nil {
		fmt.Fprintf(&b, ". Previous error for IPv6: %s", d.lastErrV6)
	}
	return b.String()
}

func errString(err error) string {
	if err == nil {
		return "no addresses found"
	}
	return err.Error()
}
