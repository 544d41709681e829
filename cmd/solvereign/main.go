// Command solvereign is the local CLI entrypoint for the deterministic
// weekly driver-scheduling engine: parse forecasts, run a solve, inspect
// audits, lock a plan, and diff two forecasts, all without an HTTP/RPC
// surface (out of scope per the core spec).
package main

import (
	"context"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/common/logging/gologger"
)

var logCfg = gologger.LoggerConfig{Out: os.Stderr}

func app() *cli.Application {
	return &cli.Application{
		Name:  "solvereign",
		Title: "Deterministic weekly driver-scheduling engine",
		Context: func(ctx context.Context) context.Context {
			ctx = logCfg.Use(ctx)
			return logging.SetLevel(ctx, logging.Info)
		},
		Commands: []*subcommands.Command{
			subcommands.CmdHelp,
			cmdParse,
			cmdSolve,
			cmdValidate,
			cmdLock,
			cmdDiff,
		},
	}
}

func main() {
	os.Exit(subcommands.Run(app(), nil))
}
