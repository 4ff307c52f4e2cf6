// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"log/slog"
	"sort"

	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/permit"
	"github.com/meterio/meter-auction/script/types"
)

const ModuleName = "cis2-ledger"

type entrypoint uint8

const (
	epMint entrypoint = iota
	epTransfer
	epUpdateOperator
	epOperatorOf
	epBalanceOf
	epPermit
	epViewMessageHash
	epNonceOf
	epSupportsPermit
)

var entrypoints = map[string]entrypoint{
	"mint":            epMint,
	"transfer":        epTransfer,
	"updateOperator":  epUpdateOperator,
	"operatorOf":      epOperatorOf,
	"balanceOf":       epBalanceOf,
	"permit":          epPermit,
	"viewMessageHash": epViewMessageHash,
	"nonceOf":         epNonceOf,
	"supportsPermit":  epSupportsPermit,
}

// Ledger is a multi token ledger following CIS-2, with CIS-3 sponsored
// transactions for transfer and updateOperator.
type Ledger struct {
	addr   meter.Address
	auth   permit.Authorizer
	logger *slog.Logger
}

func NewLedger(addr meter.Address, auth permit.Authorizer) *Ledger {
	return &Ledger{
		addr:   addr,
		auth:   auth,
		logger: slog.Default().With("pkg", "ledger"),
	}
}

func (l *Ledger) Name() string           { return ModuleName }
func (l *Ledger) Address() meter.Address { return l.addr }

func (l *Ledger) Entrypoints() []string {
	names := make([]string, 0, len(entrypoints))
	for name := range entrypoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Init makes the deployer the owner allowed to mint.
func (l *Ledger) Init(env *types.ScriptEnv, param []byte) error {
	if len(param) != 0 {
		return types.ErrParse
	}
	setOwner(env, env.Origin())
	l.logger.Info("ledger initialized", "address", l.addr, "owner", env.Origin())
	return nil
}

// permitted lists entrypoints reachable through a permit.
func permitted(name string) bool {
	return name == "transfer" || name == "updateOperator"
}

func (l *Ledger) Invoke(env *types.ScriptEnv, name string, param []byte) ([]byte, error) {
	ep, ok := entrypoints[name]
	if !ok {
		return nil, types.ErrEntrypointNotFound
	}
	switch ep {
	case epMint:
		return nil, l.HandleMint(env, param)
	case epTransfer:
		return nil, l.HandleTransfer(env, param)
	case epUpdateOperator:
		return nil, l.HandleUpdateOperator(env, param)
	case epOperatorOf:
		return l.HandleOperatorOf(env, param)
	case epBalanceOf:
		return l.HandleBalanceOf(env, param)
	case epPermit:
		return permit.Handle(l.auth, env, param, permitted, l.Invoke)
	case epViewMessageHash:
		return permit.HandleViewMessageHash(l.auth, param)
	case epNonceOf:
		return permit.HandleNonceOf(env, param)
	case epSupportsPermit:
		return permit.HandleSupportsPermit(param, permitted)
	}
	return nil, types.ErrEntrypointNotFound
}
