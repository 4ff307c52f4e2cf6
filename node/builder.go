// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/meterio/meter-auction/chain"
	"github.com/meterio/meter-auction/genesis"
	"github.com/meterio/meter-auction/kv"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/lvldb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/script/ledger"
	"github.com/meterio/meter-auction/script/permit"
	"github.com/meterio/meter-auction/state"
)

// DefaultCallGasLimit bounds read-only calls.
const DefaultCallGasLimit = 10000000

// NewEngine hosts the token ledger and the auction at their builtin addresses.
func NewEngine() *script.ScriptEngine {
	return script.NewScriptEngine(
		ledger.NewLedger(meter.LedgerModuleAddr, permit.NewVerifier()),
		auction.NewAuction(meter.AuctionModuleAddr, permit.NewVerifier()),
	)
}

// Open builds the genesis from cfg and opens the chain stored in store.
// The genesis state is written on first open only.
func Open(store kv.Store, logDB *logdb.LogDB, cfg *genesis.Config, callGasLimit uint64, opts ...Option) (*Node, error) {
	engine := NewEngine()
	stateCreator := state.NewCreator(store)
	gen, err := genesis.Build(cfg, stateCreator, engine)
	if err != nil {
		return nil, err
	}
	commit := func(extra func(kv.Putter) error) error {
		return stateCreator.Commit(gen.Stage, extra)
	}
	c, err := chain.New(store, gen.Header, commit)
	if err != nil {
		return nil, err
	}
	return New(c, stateCreator, engine, logDB, cfg.ChainTag, callGasLimit, opts...), nil
}

// OpenMem opens a node on in-memory stores.
func OpenMem(cfg *genesis.Config, opts ...Option) (*Node, error) {
	store, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		return nil, err
	}
	return Open(store, logDB, cfg, DefaultCallGasLimit, opts...)
}
