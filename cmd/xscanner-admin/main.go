// Package main is xscanner-admin, an operator maintenance CLI for the
// address cache: inspecting its contents and removing a single entry.
// It supplements the daemon with the two ad hoc operations the original
// implementation exposed only as standalone example binaries (a RocksDB
// viewer and a single-key remover) — here reworked as subcommands of one
// properly flagged urfave/cli tool in the style of cmd/kcn/main.go.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/ground-x/xscanner/cache"
	"github.com/ground-x/xscanner/config"
)

var (
	dirFlag = cli.StringFlag{
		Name:  "dir",
		Usage: "Address cache directory (repository.leveldb_path)",
		Value: "./customer_db",
	}
	kvBackendFlag = cli.StringFlag{
		Name:  "kv-backend",
		Usage: "Address cache backend: badger or leveldb",
		Value: config.DefaultKVBackend,
	}
	chainFlag   = cli.StringFlag{Name: "chain", Usage: "Chain symbol, e.g. ETH"}
	addressFlag = cli.StringFlag{Name: "address", Usage: "Address"}
)

func main() {
	app := cli.NewApp()
	app.Name = "xscanner-admin"
	app.Usage = "Inspect and repair the xscanner address cache"
	app.Commands = []cli.Command{
		{
			Name:  "inspect-cache",
			Usage: "Print every (chain, address) entry in the address cache",
			Flags: []cli.Flag{dirFlag, kvBackendFlag},
			Action: inspectCache,
		},
		{
			Name:  "remove-address",
			Usage: "Remove a single (chain, address) entry from the address cache",
			Flags: []cli.Flag{dirFlag, kvBackendFlag, chainFlag, addressFlag},
			Action: removeAddress,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "xscanner-admin:", err)
		os.Exit(1)
	}
}

func openCache(ctx *cli.Context) (cache.Cache, error) {
	return cache.New(ctx.String("kv-backend"), ctx.String("dir"))
}

func inspectCache(ctx *cli.Context) error {
	c, err := openCache(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	entries, err := c.Dump(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Path: %s\n\n", ctx.String("dir"))
	addressKeys := 0
	for _, e := range entries {
		addressKeys++
		accountID := "null"
		if e.Metadata.AccountID != nil {
			accountID = *e.Metadata.AccountID
		}
		color.New(color.FgCyan).Printf("[ADDRESS] %s:%s\n", e.Chain, e.Address)
		fmt.Printf("  wallet_id=%s account_id=%s\n\n", e.Metadata.WalletID, accountID)
	}

	color.New(color.FgYellow, color.Bold).Println("=== Statistics ===")
	fmt.Printf("Total entries: %d\n", addressKeys)
	if addressKeys == 0 {
		color.New(color.FgRed).Println("No entries found: the address cache at this path is empty.")
	}
	return nil
}

func removeAddress(ctx *cli.Context) error {
	chain := ctx.String("chain")
	address := ctx.String("address")
	if chain == "" || address == "" {
		return fmt.Errorf("both -chain and -address are required")
	}

	c, err := openCache(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Delete(context.Background(), chain, address); err != nil {
		return fmt.Errorf("failed to remove %s:%s: %w", chain, address, err)
	}
	color.New(color.FgGreen).Printf("Removed %s:%s\n", chain, address)
	return nil
}
