// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/meterio/meter-auction/accounts"
	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/script/ledger"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/xenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var log = slog.Default().With("pkg", "genesis")

// Account registers an address with one credential of secp256k1 keys.
type Account struct {
	Address    string   `yaml:"address"`
	PublicKeys []string `yaml:"publicKeys"`
	Threshold  uint8    `yaml:"threshold,omitempty"`
}

type Mint struct {
	Owner   string `yaml:"owner"`
	TokenID uint32 `yaml:"tokenID"`
	Amount  uint64 `yaml:"amount"`
}

type Ledger struct {
	Owner string `yaml:"owner"`
	Mints []Mint `yaml:"mints,omitempty"`
}

type Item struct {
	Name       string `yaml:"name"`
	Creator    string `yaml:"creator"`
	Start      uint64 `yaml:"start"`
	End        uint64 `yaml:"end"`
	TokenID    uint32 `yaml:"tokenID"`
	MinimumBid uint64 `yaml:"minimumBid"`
}

type Auction struct {
	Creator      string `yaml:"creator"`
	MinimumRaise uint64 `yaml:"minimumRaise"`
	Items        []Item `yaml:"items,omitempty"`
}

// Config describes the initial state of the chain.
type Config struct {
	Name      string    `yaml:"name"`
	ChainTag  byte      `yaml:"chainTag"`
	Timestamp uint64    `yaml:"timestamp"` // unix ms
	Accounts  []Account `yaml:"accounts"`
	Ledger    Ledger    `yaml:"ledger"`
	Auction   Auction   `yaml:"auction"`
}

// Load reads a yaml genesis config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, errors.WithMessage(err, "parse genesis")
	}
	return &cfg, nil
}

// Marshal encodes cfg back to yaml.
func (cfg *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}

func (a *Account) keys() (meter.Address, *accounts.AccountKeys, error) {
	addr, err := meter.ParseAddress(a.Address)
	if err != nil {
		return addr, nil, err
	}
	cred := accounts.Credential{Threshold: a.Threshold}
	if cred.Threshold == 0 {
		cred.Threshold = 1
	}
	for i, s := range a.PublicKeys {
		raw, err := hexutil.Decode(s)
		if err != nil {
			return addr, nil, errors.WithMessagef(err, "key %v of %v", i, a.Address)
		}
		cred.Keys = append(cred.Keys, accounts.IndexedKey{
			Index: uint8(i),
			Key:   accounts.PublicKey{Scheme: accounts.Secp256k1, Key: raw},
		})
	}
	keys := &accounts.AccountKeys{Credentials: []accounts.Credential{cred}, Threshold: 1}
	if err := keys.Validate(); err != nil {
		return addr, nil, errors.WithMessage(err, a.Address)
	}
	return addr, keys, nil
}

// Genesis is the built genesis block with its pending state.
type Genesis struct {
	Header *block.Header
	Stage  *state.Stage
	Config *Config
}

// Build executes cfg against a fresh state: registers accounts, deploys the
// ledger and the auction, mints and adds the initial items.
func Build(cfg *Config, stateCreator *state.Creator, engine *script.ScriptEngine) (*Genesis, error) {
	st := stateCreator.NewState()
	for i := range cfg.Accounts {
		addr, keys, err := cfg.Accounts[i].keys()
		if err != nil {
			return nil, err
		}
		if err := accounts.Set(st, addr, keys); err != nil {
			return nil, err
		}
	}

	owner, err := meter.ParseAddress(cfg.Ledger.Owner)
	if err != nil {
		return nil, errors.WithMessage(err, "ledger owner")
	}
	creator, err := meter.ParseAddress(cfg.Auction.Creator)
	if err != nil {
		return nil, errors.WithMessage(err, "auction creator")
	}

	rt := runtime.New(engine, st, &xenv.BlockContext{Number: 0, Time: cfg.Timestamp})
	if err := rt.InitContract(meter.LedgerModuleAddr, owner, nil); err != nil {
		return nil, errors.WithMessage(err, "init ledger")
	}
	initParam := auction.InitParameter{Cis2Contract: meter.LedgerModuleAddr, MinimumRaise: cfg.Auction.MinimumRaise}
	if err := rt.InitContract(meter.AuctionModuleAddr, creator, codec.Encode(initParam)); err != nil {
		return nil, errors.WithMessage(err, "init auction")
	}

	call := func(origin meter.Address, to meter.Address, entrypoint string, param codec.Serializer) error {
		out := rt.ExecuteCall(to, entrypoint, codec.Encode(param), ^uint64(0), &xenv.TransactionContext{Origin: origin})
		return out.VMErr
	}
	for _, m := range cfg.Ledger.Mints {
		to, err := meter.ParseAddress(m.Owner)
		if err != nil {
			return nil, errors.WithMessage(err, "mint owner")
		}
		param := ledger.MintParams{Owner: codec.AccountAddress(to), TokenID: codec.TokenID(m.TokenID), Amount: codec.TokenAmount(m.Amount)}
		if err := call(owner, meter.LedgerModuleAddr, "mint", param); err != nil {
			return nil, errors.WithMessagef(err, "mint to %v", m.Owner)
		}
	}
	for _, it := range cfg.Auction.Items {
		itemCreator, err := meter.ParseAddress(it.Creator)
		if err != nil {
			return nil, errors.WithMessage(err, "item creator")
		}
		param := auction.AddItemParameter{
			Name:       it.Name,
			End:        meter.Timestamp(it.End),
			Start:      meter.Timestamp(it.Start),
			TokenID:    codec.TokenID(it.TokenID),
			MinimumBid: codec.TokenAmount(it.MinimumBid),
		}
		if err := call(itemCreator, meter.AuctionModuleAddr, "addItem", param); err != nil {
			return nil, errors.WithMessagef(err, "add item %v", it.Name)
		}
	}
	if err := st.Err(); err != nil {
		return nil, err
	}

	stage := st.Stage()
	root, err := stage.Hash()
	if err != nil {
		return nil, err
	}
	header := block.NewHeader(block.GenesisParentID(), cfg.Timestamp, meter.Bytes32{}, root, 0)
	log.Info("genesis built", "name", cfg.Name, "id", header.ID(), "slots", stage.Len())
	return &Genesis{Header: header, Stage: stage, Config: cfg}, nil
}
