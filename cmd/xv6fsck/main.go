// Command xv6fsck is an offline consistency checker for xv6-style
// filesystem images. It reports the first structural inconsistency it
// finds and exits non-zero, or succeeds silently; with -r, it attempts to
// re-attach orphan inodes into lost+found instead of verifying.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dargueta/xv6fsck/internal/fsckdriver"
	"github.com/dargueta/xv6fsck/internal/fsckerr"
)

func main() {
	os.Exit(run(os.Args))
}

// run implements the checker's CLI contract: exactly one positional image
// argument, with an optional -r flag to repair instead of verify; anything
// else prints the usage line and exits 1. urfave/cli/v2 drives flag
// parsing, but its own usage renderer is bypassed so the two error lines
// this tool prints stay byte-exact.
func run(args []string) int {
	var repair bool

	app := &cli.App{
		Name:                   "xv6fsck",
		Usage:                  "verify or repair an xv6 filesystem image",
		UseShortOptionHandling: true,
		HideHelp:               true,
		Writer:                 io.Discard,
		ErrWriter:              io.Discard,
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			return fsckerr.ErrUsage
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "r",
				Usage:       "repair mode: re-attach orphan inodes into lost+found",
				Destination: &repair,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fsckerr.ErrUsage
			}
			image := c.Args().Get(0)
			if repair {
				return fsckdriver.Repair(image)
			}
			return fsckdriver.Verify(image)
		},
	}

	err := app.Run(args)
	if err == nil {
		return 0
	}

	if message, ok := fsckerr.CanonicalMessage(err); ok {
		fmt.Fprintln(os.Stderr, message)
	} else {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	return 1
}
