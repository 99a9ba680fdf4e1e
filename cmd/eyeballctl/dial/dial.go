// Package dial implements eyeballctl's "dial" command: connect to a URI
// through the full connector pipeline and pipe the connection to the
// console.
package dial

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/eyeballnet/eyeball/cmd/eyeballctl/shared"
	"github.com/eyeballnet/eyeball/pkg/config"
	"github.com/eyeballnet/eyeball/pkg/log"
	"github.com/eyeballnet/eyeball/pkg/pipeio"
)

// GetCommand returns the CLI command for dialing a URI.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "dial",
		Usage:     "Connect to a URI and pipe it to stdio",
		ArgsUsage: "uri",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return fmt.Errorf("must provide exactly one URI argument, got %d", args.Len())
			}
			rawURI := args.Get(0)

			opts := &config.Options{
				SSL:           cmd.Bool(shared.SSLFlag),
				Key:           cmd.String(shared.KeyFlag),
				Scheme:        cmd.String(shared.SchemeFlag),
				Verbose:       cmd.Bool(shared.VerboseFlag),
				Timeout:       time.Duration(cmd.Int(shared.TimeoutFlag)) * time.Millisecond,
				HappyEyeballs: cmd.Bool(shared.HappyEyeballsFlag),
				DNS:           config.DNSMode(cmd.String(shared.DNSFlag)),
				DNSServers:    cmd.StringSlice(shared.DNSServerFlag),
				LogFile:       cmd.String(shared.LogFileFlag),
			}

			if errs := config.Validate(opts); len(errs) > 0 {
				log.ErrorMsg("Argument validation errors:\n")
				for _, err := range errs {
					log.ErrorMsg(" - %s\n", err)
				}
				return fmt.Errorf("exiting")
			}

			conn, err := opts.BuildConnector()
			if err != nil {
				return fmt.Errorf("building connector: %s", err)
			}

			log.InfoMsg("Connecting to %s\n", rawURI)

			ep, err := conn.Connect(ctx, rawURI)
			if err != nil {
				return fmt.Errorf("connecting: %s", err)
			}
			defer ep.Close()

			log.InfoMsg("Connected (%s, encrypted=%v)\n", strings.ToUpper(ep.Scheme()), ep.IsEncrypted())

			stdio := pipeio.NewStdio(nil, nil)
			pipeio.Pipe(ctx, ep, stdio, func(err error) {
				if opts.Verbose {
					log.ErrorMsg("%s\n", err)
				}
			})

			return nil
		},
		Flags: append(append([]cli.Flag{}, shared.GetCommonFlags()...), shared.GetDialFlags()...),
	}
}
