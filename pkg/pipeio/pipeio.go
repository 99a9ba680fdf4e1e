// Package pipeio copies bytes between a dialed/accepted connection and the
// local console, the glue eyeballctl's dial and listen commands use once the
// connector pipeline (C1-C8) has handed back a live stream.
package pipeio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"syscall"

	"github.com/muesli/cancelreader"
)

// Pipe copies bytes bidirectionally between rwc1 and rwc2 until ctx is
// cancelled or either side reaches EOF, then closes both. Errors that are
// just the ordinary shape of a closed connection (ctx cancellation via
// cancelreader, a reset from the peer) are not passed to logfunc; anything
// else is.
func Pipe(ctx context.Context, rwc1, rwc2 io.ReadWriteCloser, logfunc func(error)) {
	var wg sync.WaitGroup
	var once sync.Once

	closeBoth := func() {
		rwc1.Close()
		rwc2.Close()
	}

	go func() {
		<-ctx.Done()
		once.Do(closeBoth)
	}()

	wg.Add(2)
	copyDir := func(dst io.Writer, src io.Reader) {
		defer wg.Done()
		if _, err := io.Copy(dst, src); err != nil && !isBenignCloseError(err) {
			logfunc(fmt.Errorf("io.Copy: %s", err))
		}
		once.Do(closeBoth)
	}
	go copyDir(rwc1, rwc2)
	go copyDir(rwc2, rwc1)

	wg.Wait()
}

func isBenignCloseError(err error) bool {
	return errors.Is(err, cancelreader.ErrCanceled) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}
