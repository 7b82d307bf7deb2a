// tate - benchmark run configuration manager
package main

import (
	"os"

	"github.com/tatebench/tate/internal/cli"
	"github.com/tatebench/tate/internal/version"
)

// Version information
var (
	Version   = "v0.3.0-dev"
	BuildTime = "2026-10-17"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	// cobra has already printed the error
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
