// Package main is the entry point for the lwm2md binary.
package main

import (
	"os"

	"github.com/artikcloud/leshan/cmd/lwm2md/cmd"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
