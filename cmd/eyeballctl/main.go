// Command eyeballctl exercises the connector pipeline (C1-C8) from the
// command line: dial a URI through Happy Eyeballs and the scheme router, or
// listen for inbound connections behind the same TLS/semaphore machinery.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/eyeballnet/eyeball/cmd/eyeballctl/dial"
	"github.com/eyeballnet/eyeball/cmd/eyeballctl/listen"
)

func main() {
	cmd := &cli.Command{
		Name:  "eyeballctl",
		Usage: "dial or listen using the connector pipeline",
		Commands: []*cli.Command{
			dial.GetCommand(),
			listen.GetCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("[!] Error: %s\n", err)
		os.Exit(1)
	}
}
