// Package main is the xscanner daemon entrypoint: load configuration,
// build the Supervisor, and run until an OS interrupt/terminate signal
// arrives (spec.md §5). Flag and command wiring follows the teacher's
// cmd/kcn/main.go convention of a single urfave/cli App with a default
// Action and a small set of named flags.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/ground-x/xscanner/config"
	xlog "github.com/ground-x/xscanner/log"
	"github.com/ground-x/xscanner/supervisor"
)

var logger = xlog.NewModuleLogger("main")

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "Path to the xscanner TOML configuration file",
		Value: "xscanner.toml",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "Listen address for the Prometheus /metrics endpoint",
		Value: ":9090",
	}
	debugFlag = cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug-level logging",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "xscanner"
	app.Usage = "Multi-chain blockchain deposit detector"
	app.Flags = []cli.Flag{configFlag, metricsAddrFlag, debugFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "xscanner:", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	xlog.SetLevel(ctx.Bool("debug"))

	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		logger.Fatal("failed to load configuration", "err", err)
		return err
	}

	sv, err := supervisor.New(cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage layer", "err", err)
		return err
	}

	supervisor.MetricsAddr = ctx.String("metrics-addr")

	color.New(color.FgHiGreen, color.Bold).Printf("xscanner starting: %d chain(s), metrics on %s\n", len(cfg.Blockchain), supervisor.MetricsAddr)
	logger.Info("xscanner starting", "chains", len(cfg.Blockchain))
	return sv.Run()
}
