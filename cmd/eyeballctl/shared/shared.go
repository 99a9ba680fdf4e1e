// Package shared provides the CLI flags common to eyeballctl's dial and
// listen commands.
package shared

import (
	"github.com/urfave/cli/v3"
)

const categoryCommon = "common"

// SSLFlag enables C6 (TLS) on top of the chosen transport.
const SSLFlag = "ssl"

// KeyFlag seeds the ephemeral mTLS certificate pair; leave empty to disable
// peer authentication.
const KeyFlag = "key"

// SchemeFlag selects the listener transport: "unix" listens on a Unix
// socket, anything else on TCP. dial takes the scheme from its URI instead.
const SchemeFlag = "scheme"

// VerboseFlag enables verbose error logging.
const VerboseFlag = "verbose"

// TimeoutFlag bounds the whole connect attempt (C8), in milliseconds. Zero
// disables it.
const TimeoutFlag = "timeout"

// HappyEyeballsFlag toggles C4's concurrent DNS racing. Disabling it dials a
// single resolved candidate instead.
const HappyEyeballsFlag = "happy-eyeballs"

// DNSFlag selects the resolver: system (default), custom, or disabled.
const DNSFlag = "dns"

// DNSServerFlag names nameservers for --dns=custom, e.g. "1.1.1.1:53".
const DNSServerFlag = "dns-server"

// LogFileFlag mirrors every connection's bytes (post-TLS, if any) to a
// file, appending if it already exists. Empty disables it.
const LogFileFlag = "log-file"

// GetCommonFlags returns the flags shared by dial and listen.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     SSLFlag,
			Aliases:  []string{"s"},
			Usage:    "Layer TLS on top of the transport",
			Category: categoryCommon,
			Value:    false,
		},
		&cli.StringFlag{
			Name:     KeyFlag,
			Aliases:  []string{"k"},
			Usage:    "Key seeding mTLS certificate generation; leave empty to disable peer auth",
			Category: categoryCommon,
			Value:    "",
		},
		&cli.StringFlag{
			Name:     SchemeFlag,
			Usage:    "Transport: tcp, unix, ws, or wss",
			Category: categoryCommon,
			Value:    "tcp",
		},
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose error logging",
			Category: categoryCommon,
			Value:    false,
		},
		&cli.IntFlag{
			Name:     TimeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "Connect timeout in milliseconds, 0 to disable",
			Category: categoryCommon,
			Value:    0,
		},
		&cli.StringFlag{
			Name:     LogFileFlag,
			Usage:    "Mirror connection bytes to this file, appending if it exists",
			Category: categoryCommon,
			Value:    "",
		},
	}
}

// GetDialFlags returns flags specific to the dial command (Happy Eyeballs
// and DNS options apply only to an outbound connect).
func GetDialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     HappyEyeballsFlag,
			Usage:    "Race AAAA/A candidates concurrently (RFC 8305)",
			Category: categoryCommon,
			Value:    true,
		},
		&cli.StringFlag{
			Name:     DNSFlag,
			Usage:    "Resolver: system, custom, or disabled",
			Category: categoryCommon,
			Value:    "system",
		},
		&cli.StringSliceFlag{
			Name:     DNSServerFlag,
			Usage:    "Nameserver for --dns=custom, repeatable",
			Category: categoryCommon,
			Value:    []string{},
		},
	}
}

// MaxConnsFlag bounds concurrent accepted connections on the listen side.
const MaxConnsFlag = "max-conns"

// MuxFlag layers a yamux session over each accepted connection, so one TCP
// peer can open many logical streams instead of one handler invocation per
// socket.
const MuxFlag = "mux"

// GetListenFlags returns flags specific to the listen command.
func GetListenFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:     MaxConnsFlag,
			Usage:    "Maximum concurrent connections, 0 for unlimited",
			Category: categoryCommon,
			Value:    0,
		},
		&cli.BoolFlag{
			Name:     MuxFlag,
			Usage:    "Layer a yamux session over each accepted connection",
			Category: categoryCommon,
			Value:    false,
		},
	}
}
