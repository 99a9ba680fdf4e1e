// Package listen implements eyeballctl's "listen" command: accept
// connections on a tcp or unix listener, optionally TLS-wrapped, piping each
// to the console; accepted connections are served concurrently.
package listen

import (
	"context"
	"fmt"
	"net"

	"github.com/urfave/cli/v3"

	"github.com/eyeballnet/eyeball/cmd/eyeballctl/shared"
	"github.com/eyeballnet/eyeball/pkg/config"
	"github.com/eyeballnet/eyeball/pkg/log"
	"github.com/eyeballnet/eyeball/pkg/pipeio"
)

// GetCommand returns the CLI command for listening on an address.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "listen",
		Usage:     "Accept a connection and pipe it to stdio",
		ArgsUsage: "address",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return fmt.Errorf("must provide exactly one address argument, got %d", args.Len())
			}
			addr := args.Get(0)

			opts := &config.Options{
				SSL:      cmd.Bool(shared.SSLFlag),
				Key:      cmd.String(shared.KeyFlag),
				Scheme:   cmd.String(shared.SchemeFlag),
				Verbose:  cmd.Bool(shared.VerboseFlag),
				MaxConns: int(cmd.Int(shared.MaxConnsFlag)),
				Mux:      cmd.Bool(shared.MuxFlag),
				LogFile:  cmd.String(shared.LogFileFlag),
			}

			if errs := config.Validate(opts); len(errs) > 0 {
				log.ErrorMsg("Argument validation errors:\n")
				for _, err := range errs {
					log.ErrorMsg(" - %s\n", err)
				}
				return fmt.Errorf("exiting")
			}

			l, err := opts.BuildListener(addr)
			if err != nil {
				return fmt.Errorf("building listener: %s", err)
			}
			defer l.Close()

			log.InfoMsg("Listening on %s\n", l.Addr())

			return l.Serve(ctx, func(conn net.Conn) error {
				log.InfoMsg("Connection from %s\n", conn.RemoteAddr())
				stdio := pipeio.NewStdio(nil, nil)
				pipeio.Pipe(ctx, conn, stdio, func(err error) {
					if opts.Verbose {
						log.ErrorMsg("%s\n", err)
					}
				})
				return nil
			})
		},
		Flags: append(append([]cli.Flag{}, shared.GetCommonFlags()...), shared.GetListenFlags()...),
	}
}
