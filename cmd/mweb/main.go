// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/mwebchain/mweb/log"
	"github.com/mwebchain/mweb/lvldb"
	"github.com/mwebchain/mweb/node"
	"github.com/mwebchain/mweb/wallet"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "directory for chain databases",
		Value: defaultDataDir(),
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "log verbosity (0=error, 1=warn, 2=info, 3=debug)",
		Value: 2,
	}
	hrpFlag = cli.StringFlag{
		Name:  "hrp",
		Usage: "address human-readable part",
		Value: "mweb",
	}
	maturityFlag = cli.UintFlag{
		Name:  "pegin-maturity",
		Usage: "depth at which pegged-in coins mature",
		Value: 20,
	}
	maxWeightFlag = cli.UintFlag{
		Name:  "max-block-weight",
		Usage: "maximum extension block weight",
		Value: 200_000,
	}
	seedFlag = cli.StringFlag{
		Name:  "seed",
		Usage: "hex-encoded wallet master seed",
	}
	indexFlag = cli.UintFlag{
		Name:  "index",
		Usage: "address index",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "mweb"
	app.Usage = "extension block engine"
	app.Flags = []cli.Flag{dataDirFlag, verbosityFlag}
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "initialize a datadir with chain parameters",
			Flags:  []cli.Flag{dataDirFlag, hrpFlag, maturityFlag, maxWeightFlag},
			Action: initAction,
		},
		{
			Name:   "tip",
			Usage:  "print the committed tip",
			Flags:  []cli.Flag{dataDirFlag, verbosityFlag},
			Action: tipAction,
		},
		{
			Name:   "address",
			Usage:  "derive a stealth address from a seed",
			Flags:  []cli.Flag{dataDirFlag, seedFlag, indexFlag},
			Action: addressAction,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger(ctx *cli.Context) {
	level := slog.LevelError
	switch ctx.GlobalInt(verbosityFlag.Name) {
	case 1:
		level = slog.LevelWarn
	case 2:
		level = slog.LevelInfo
	case 3:
		level = slog.LevelDebug
	}
	log.SetHandler(log.NewTerminalHandler(level))
}

func loadConfig(ctx *cli.Context) (*node.Config, error) {
	datadir := ctx.String(dataDirFlag.Name)
	if datadir == "" {
		datadir = ctx.GlobalString(dataDirFlag.Name)
	}
	return node.LoadConfig(datadir)
}

func initAction(ctx *cli.Context) error {
	cfg := &node.Config{
		DataDir:            ctx.String(dataDirFlag.Name),
		HRP:                ctx.String(hrpFlag.Name),
		PegInMaturity:      uint32(ctx.Uint(maturityFlag.Name)),
		MaxBlockWeight:     uint32(ctx.Uint(maxWeightFlag.Name)),
		WeightPerInput:     1,
		WeightPerOutput:    18,
		WeightPerKernel:    2,
		WeightPerExtraByte: 1,
	}
	if _, err := cfg.Params(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Println("initialized", cfg.ChainDir())
	return nil
}

func tipAction(ctx *cli.Context) error {
	initLogger(ctx)
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	store, err := lvldb.New(filepath.Join(cfg.ChainDir(), "db"), lvldb.Options{})
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := node.InitializeNode(cfg, nil, store)
	if err != nil {
		return err
	}
	defer n.Close()

	header := n.View().BestHeader()
	if header == nil {
		fmt.Println("empty chain")
		return nil
	}
	fmt.Printf("height: %d\nhash: %s\nkernel root: %s\noutput root: %s\n",
		header.Height, header.Hash(), header.KernelRoot, header.OutputRoot)
	return nil
}

func addressAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	seed, err := hex.DecodeString(ctx.String(seedFlag.Name))
	if err != nil || len(seed) == 0 {
		return fmt.Errorf("a hex --seed is required")
	}

	w, err := wallet.Open(wallet.NewMemStore(seed), params)
	if err != nil {
		return err
	}
	addr, err := w.GetAddress(uint32(ctx.Uint(indexFlag.Name)))
	if err != nil {
		return err
	}
	fmt.Println(addr)
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mweb"
	}
	return filepath.Join(home, ".mweb")
}
