package main

import (
	"os"

	"github.com/koron/dl-kaoriya-vim/internal/cli"
)

// version is stamped at release time with
// -ldflags "-X main.version=<tag>".
var version = "dev"

// The urfave app lives in run; internal/cli only dispatches to it so the
// tests drive the same code path without spawning the binary.
func init() {
	cli.Handler = run
}

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
