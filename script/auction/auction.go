// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"log/slog"
	"sort"

	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/permit"
	"github.com/meterio/meter-auction/script/types"
)

const ModuleName = "sponsored-auction"

type entrypoint uint8

const (
	epAddItem entrypoint = iota
	epBid
	epFinalize
	epView
	epViewItemState
	epPermit
	epViewMessageHash
	epNonceOf
	epSupportsPermit
)

var entrypoints = map[string]entrypoint{
	"addItem":         epAddItem,
	"bid":             epBid,
	"finalize":        epFinalize,
	"view":            epView,
	"viewItemState":   epViewItemState,
	"permit":          epPermit,
	"viewMessageHash": epViewMessageHash,
	"nonceOf":         epNonceOf,
	"supportsPermit":  epSupportsPermit,
}

// Auction sells items for tokens of a CIS-2 ledger. Bids arrive as token
// transfers to the bid entrypoint; addItem and finalize may be sponsored
// through permits.
type Auction struct {
	addr   meter.Address
	auth   permit.Authorizer
	logger *slog.Logger
}

func NewAuction(addr meter.Address, auth permit.Authorizer) *Auction {
	return &Auction{
		addr:   addr,
		auth:   auth,
		logger: slog.Default().With("pkg", "auction"),
	}
}

func (a *Auction) Name() string           { return ModuleName }
func (a *Auction) Address() meter.Address { return a.addr }

func (a *Auction) Entrypoints() []string {
	names := make([]string, 0, len(entrypoints))
	for name := range entrypoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Init stores the ledger address and the minimum raise.
func (a *Auction) Init(env *types.ScriptEnv, param []byte) error {
	var p InitParameter
	if err := codec.Decode(param, &p); err != nil {
		return types.ErrParse
	}
	a.setConfig(env, &p)
	a.logger.Info("auction initialized", "address", a.addr, "cis2", p.Cis2Contract, "minimumRaise", p.MinimumRaise)
	return nil
}

func permitted(name string) bool {
	return name == "addItem" || name == "finalize"
}

func (a *Auction) Invoke(env *types.ScriptEnv, name string, param []byte) ([]byte, error) {
	ep, ok := entrypoints[name]
	if !ok {
		return nil, types.ErrEntrypointNotFound
	}
	switch ep {
	case epAddItem:
		return a.HandleAddItem(env, param)
	case epBid:
		return nil, a.HandleBid(env, param)
	case epFinalize:
		return nil, a.HandleFinalize(env, param)
	case epView:
		return a.HandleView(env, param)
	case epViewItemState:
		return a.HandleViewItemState(env, param)
	case epPermit:
		return permit.Handle(a.auth, env, param, permitted, a.Invoke)
	case epViewMessageHash:
		return permit.HandleViewMessageHash(a.auth, param)
	case epNonceOf:
		return permit.HandleNonceOf(env, param)
	case epSupportsPermit:
		return permit.HandleSupportsPermit(param, permitted)
	}
	return nil, types.ErrEntrypointNotFound
}
