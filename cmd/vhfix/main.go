// Command vhfix detects in-app browsers and computes, publishes and renders
// viewport height variables for simulated and real pages.
package main

import (
	"vhfix/internal/cli"
)

// Set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
