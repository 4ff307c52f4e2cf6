// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/gorilla/handlers"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/meterio/meter-auction/co"
	"github.com/meterio/meter-auction/eventbus"
	"github.com/meterio/meter-auction/genesis"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/lvldb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/node"
	cli "gopkg.in/urfave/cli.v1"
)

// verbosity follows the classic 0 (crit) to 4 (debug) scale.
func logLevel(verbosity int) slog.Level {
	switch {
	case verbosity <= 1:
		return slog.LevelError
	case verbosity == 2:
		return slog.LevelWarn
	case verbosity == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func initLogger(ctx *cli.Context) {
	lvl := logLevel(ctx.Int(verbosityFlag.Name))
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: "01-02|15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	// loggers derived before this point go through the log package
	slog.SetLogLoggerLevel(lvl)
	slog.SetDefault(slog.New(handler))
}

func selectGenesis(ctx *cli.Context) *genesis.Config {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet()
	}
	cfg, err := genesis.Load(path)
	if err != nil {
		fatal(fmt.Sprintf("load genesis [%v]: %v", path, err))
	}
	return cfg
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func makeInstanceDir(ctx *cli.Context, cfg *genesis.Config) string {
	dataDir := makeDataDir(ctx)

	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%v-%02x", cfg.Name, cfg.ChainTag))
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		fatal(fmt.Sprintf("create instance dir [%v]: %v", instanceDir, err))
	}
	return instanceDir
}

func openMainDB(ctx *cli.Context, dataDir string) *lvldb.LevelDB {
	if _, err := fdlimit.Raise(5120 * 4); err != nil {
		fatal("failed to increase fd limit", err)
	}
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		slog.Warn("low fd limit, increase it if possible", "limit", limit)
	} else {
		slog.Info("fd limit", "limit", limit)
	}

	fileCache := limit / 2
	if fileCache > 1024 {
		fileCache = 1024
	}

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              ctx.Int(cacheFlag.Name),
		OpenFilesCacheCapacity: fileCache,
	})
	if err != nil {
		fatal(fmt.Sprintf("open chain database [%v]: %v", dir, err))
	}
	return db
}

func openLogDB(ctx *cli.Context, dataDir string) *logdb.LogDB {
	dir := filepath.Join(dataDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open log database [%v]: %v", dir, err))
	}
	return db
}

func openMemMainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open chain database: %v", err))
	}
	return db
}

func openMemLogDB() *logdb.LogDB {
	db, err := logdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open log database: %v", err))
	}
	return db
}

// newPublisher connects the configured brokers. It returns nil if none is set.
func newPublisher(ctx *cli.Context) (eventbus.Publisher, []string) {
	var (
		pubs  eventbus.Multi
		names []string
	)
	if url := ctx.String(natsURLFlag.Name); url != "" {
		p, err := eventbus.NewNATSPublisher(url, ctx.String(natsPrefixFlag.Name))
		if err != nil {
			fatal(fmt.Sprintf("connect nats [%v]: %v", url, err))
		}
		pubs = append(pubs, p)
		names = append(names, url)
	}
	if addr := ctx.String(redisAddrFlag.Name); addr != "" {
		p, err := eventbus.NewRedisPublisher(addr, ctx.String(redisPasswordFlag.Name), ctx.Int(redisDBFlag.Name), ctx.String(redisPrefixFlag.Name))
		if err != nil {
			pubs.Close()
			fatal(fmt.Sprintf("connect redis [%v]: %v", addr, err))
		}
		pubs = append(pubs, p)
		names = append(names, "redis://"+addr)
	}
	if len(pubs) == 0 {
		return nil, nil
	}
	return pubs, names
}

func checkClock(ctx *cli.Context) {
	server := ctx.String(ntpServerFlag.Name)
	if server == "" {
		return
	}
	offset, err := node.CheckClockOffset(server)
	if err != nil {
		slog.Warn("failed to query ntp server", "server", server, "err", err)
		return
	}
	if offset > time.Second || offset < -time.Second {
		slog.Warn("local clock drifts, permit expiry and bid deadlines may misbehave", "offset", offset)
	} else {
		slog.Debug("clock offset", "offset", offset)
	}
}

func masterKeyPath(ctx *cli.Context) string {
	return filepath.Join(ctx.String(dataDirFlag.Name), "master.key")
}

type recoveryLogger struct{}

func (recoveryLogger) Println(args ...interface{}) {
	slog.Error("API handler panicked", "err", fmt.Sprint(args...))
}

func startAPIServer(ctx *cli.Context, handler http.Handler, genesisID meter.Bytes32) (string, func()) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen API addr [%v]: %v", addr, err))
	}

	timeout := ctx.Int(apiTimeoutFlag.Name)
	if timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	handler = handleXGenesisID(handler, genesisID)
	handler = handleXVersion(handler)
	handler = requestBodyLimit(handler)
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(handler)
	srv := &http.Server{Handler: handler}
	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			fatal("API service stopped:", err)
		}
	})
	return "http://" + listener.Addr().String() + "/", func() {
		if err := srv.Close(); err != nil {
			slog.Warn("could not close API service", "err", err)
		}
		goes.Wait()
	}
}

func printStartupMessage(
	cfg *genesis.Config,
	n *node.Node,
	instanceDir string,
	apiURL string,
	brokers []string,
) {
	best := n.BestBlock()

	fmt.Printf(`Starting %v
    Network         [ %v %v tag=%02x ]
    Best block      [ %v #%v @%v ]
    Instance dir    [ %v ]
    API portal      [ %v ]
    Event brokers   [ %v ]
`,
		"AuctionD "+fullVersion(),
		n.GenesisBlock().ID(), cfg.Name, cfg.ChainTag,
		best.ID(), best.Number(), meter.Timestamp(best.Timestamp()),
		instanceDir,
		apiURL,
		func() string {
			if len(brokers) == 0 {
				return "none"
			}
			return fmt.Sprint(brokers)
		}())
}
