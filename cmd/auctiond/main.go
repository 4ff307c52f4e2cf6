// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/joho/godotenv"
	"github.com/meterio/meter-auction/api"
	"github.com/meterio/meter-auction/kv"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/node"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	// flags with an EnvVar may also come from a .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}

	app := cli.App{
		Version:   fullVersion(),
		Name:      "AuctionD",
		Usage:     "Sponsored-transaction auction node",
		Copyright: "2020 Meter Foundation <https://meter.io/>",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			memFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiCallGasLimitFlag,
			apiBacktraceLimitFlag,
			verbosityFlag,
			natsURLFlag,
			natsPrefixFlag,
			redisAddrFlag,
			redisPasswordFlag,
			redisDBFlag,
			redisPrefixFlag,
			ntpServerFlag,
			dumpConfigFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "master-key",
				Usage: "import and export master key",
				Flags: []cli.Flag{
					dataDirFlag,
					importMasterKeyFlag,
					exportMasterKeyFlag,
				},
				Action: masterKeyAction,
			},
			{
				Name:  "address",
				Usage: "export address of the master key",
				Flags: []cli.Flag{
					dataDirFlag,
				},
				Action: addressAction,
			},
			{
				Name:  "genesis",
				Usage: "print the genesis config in yaml, devnet by default",
				Flags: []cli.Flag{
					genesisFlag,
				},
				Action: genesisAction,
			},
			{
				Name:  "permit",
				Usage: "off-chain half of sponsored calls",
				Subcommands: []cli.Command{
					{
						Name:  "sign",
						Usage: "sign a permit with the master key",
						Flags: []cli.Flag{
							dataDirFlag,
							contractFlag,
							entrypointFlag,
							payloadFlag,
							nonceFlag,
							validForFlag,
						},
						Action: permitSignAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	defer func() { slog.Info("exited") }()

	initLogger(ctx)

	cfg := selectGenesis(ctx)
	if ctx.Bool(dumpConfigFlag.Name) {
		spew.Fdump(os.Stdout, cfg)
		return nil
	}
	checkClock(ctx)

	var (
		mainDB      kv.Store
		logDB       *logdb.LogDB
		instanceDir string
	)
	if ctx.Bool(memFlag.Name) {
		instanceDir = "Memory"
		mainDB = openMemMainDB()
		logDB = openMemLogDB()
	} else {
		instanceDir = makeInstanceDir(ctx, cfg)
		mainDB = openMainDB(ctx, instanceDir)
		logDB = openLogDB(ctx, instanceDir)
	}
	defer func() { slog.Info("closing main database..."); mainDB.Close() }()
	defer func() { slog.Info("closing log database..."); logDB.Close() }()

	var opts []node.Option
	publisher, brokers := newPublisher(ctx)
	if publisher != nil {
		defer func() { slog.Info("closing event publisher..."); publisher.Close() }()
		opts = append(opts, node.WithPublisher(publisher))
	}

	n, err := node.Open(mainDB, logDB, cfg, uint64(ctx.Int(apiCallGasLimitFlag.Name)), opts...)
	if err != nil {
		fatal("initialize node:", err)
	}

	apiHandler, apiCloser := api.New(n, ctx.String(apiCorsFlag.Name), uint32(ctx.Int(apiBacktraceLimitFlag.Name)))
	defer func() { slog.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler, n.GenesisBlock().ID())
	defer func() { slog.Info("stopping API server..."); srvCloser() }()

	printStartupMessage(cfg, n, instanceDir, apiURL, brokers)

	return n.Run(exitSignal)
}

func genesisAction(ctx *cli.Context) error {
	data, err := selectGenesis(ctx).Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
