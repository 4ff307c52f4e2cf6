// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	"github.com/meterio/meter-auction/node"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	genesisFlag = cli.StringFlag{
		Name:   "genesis",
		Usage:  "path of the genesis yaml (devnet if empty)",
		EnvVar: "AUCTIOND_GENESIS",
	}
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  defaultDataDir(),
		Usage:  "directory for block-chain databases",
		EnvVar: "AUCTIOND_DATA_DIR",
	}
	memFlag = cli.BoolFlag{
		Name:  "mem",
		Usage: "keep all data in memory",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 256,
		Usage: "megabytes of ram allocated to the main database",
	}
	apiAddrFlag = cli.StringFlag{
		Name:   "api-addr",
		Value:  "localhost:8669",
		Usage:  "API service listening address",
		EnvVar: "AUCTIOND_API_ADDR",
	}
	apiCorsFlag = cli.StringFlag{
		Name:   "api-cors",
		Value:  "",
		Usage:  "comma separated list of domains from which to accept cross origin requests to API",
		EnvVar: "AUCTIOND_API_CORS",
	}
	apiTimeoutFlag = cli.IntFlag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiCallGasLimitFlag = cli.IntFlag{
		Name:  "api-call-gas-limit",
		Value: node.DefaultCallGasLimit,
		Usage: "limit contract call gas",
	}
	apiBacktraceLimitFlag = cli.IntFlag{
		Name:  "api-backtrace-limit",
		Value: 1000,
		Usage: "limit the distance between 'position' and best block for subscriptions APIs",
	}
	verbosityFlag = cli.IntFlag{
		Name:   "verbosity",
		Value:  3,
		Usage:  "log verbosity (0-4)",
		EnvVar: "AUCTIOND_VERBOSITY",
	}
	natsURLFlag = cli.StringFlag{
		Name:   "nats-url",
		Usage:  "publish contract events to this NATS server",
		EnvVar: "AUCTIOND_NATS_URL",
	}
	natsPrefixFlag = cli.StringFlag{
		Name:  "nats-prefix",
		Value: "auction",
		Usage: "subject prefix of published events",
	}
	redisAddrFlag = cli.StringFlag{
		Name:   "redis-addr",
		Usage:  "publish contract events to this redis server",
		EnvVar: "AUCTIOND_REDIS_ADDR",
	}
	redisPasswordFlag = cli.StringFlag{
		Name:   "redis-password",
		Usage:  "redis password",
		EnvVar: "AUCTIOND_REDIS_PASSWORD",
	}
	redisDBFlag = cli.IntFlag{
		Name:  "redis-db",
		Usage: "redis database",
	}
	redisPrefixFlag = cli.StringFlag{
		Name:  "redis-prefix",
		Value: "auction",
		Usage: "channel prefix of published events",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "ntp server to check the local clock against (disabled if empty)",
	}
	dumpConfigFlag = cli.BoolFlag{
		Name:  "dump-config",
		Usage: "print the genesis config in use and exit",
	}
	importMasterKeyFlag = cli.BoolFlag{
		Name:  "import",
		Usage: "import master key from keystore",
	}
	exportMasterKeyFlag = cli.BoolFlag{
		Name:  "export",
		Usage: "export master key to keystore",
	}
	contractFlag = cli.StringFlag{
		Name:  "contract",
		Usage: "address of the contract the permit is meant for",
	}
	entrypointFlag = cli.StringFlag{
		Name:  "entrypoint",
		Usage: "entrypoint the permit invokes",
	}
	payloadFlag = cli.StringFlag{
		Name:  "payload",
		Usage: "hex encoded parameter of the entrypoint",
	}
	nonceFlag = cli.Uint64Flag{
		Name:  "nonce",
		Usage: "permit nonce of the signer in the contract",
	}
	validForFlag = cli.DurationFlag{
		Name:  "valid-for",
		Value: time.Hour,
		Usage: "how long the permit stays valid",
	}
)
