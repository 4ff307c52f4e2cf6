// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/meterio/meter-auction/accounts"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/tx"
	"github.com/meterio/meter-auction/xenv"
	"github.com/pkg/errors"
)

var (
	ErrOriginNotRegistered = errors.New("origin is not a registered account")
	ErrIntrinsicGas        = errors.New("intrinsic gas exceeds provided gas")
	ErrExpired             = errors.New("tx expired")
)

// ResolvedTransaction resolve the transaction according to given state.
type ResolvedTransaction struct {
	tx           *tx.Transaction
	Origin       meter.Address
	IntrinsicGas uint64
}

// ResolveTransaction resolves the transaction and performs basic validation.
// The origin must sign with its registered credentials.
func ResolveTransaction(st *state.State, trx *tx.Transaction) (*ResolvedTransaction, error) {
	keys := accounts.Get(st, trx.Origin())
	if keys == nil {
		return nil, ErrOriginNotRegistered
	}
	checked, err := trx.VerifySignature(keys)
	if err != nil {
		return nil, err
	}

	intrinsicGas := meter.TxGas + meter.SigVerifyGas*uint64(checked)
	if trx.Gas() < intrinsicGas {
		return nil, ErrIntrinsicGas
	}
	return &ResolvedTransaction{
		tx:           trx,
		Origin:       trx.Origin(),
		IntrinsicGas: intrinsicGas,
	}, nil
}

// ToContext create a tx context object.
func (r *ResolvedTransaction) ToContext() *xenv.TransactionContext {
	return &xenv.TransactionContext{
		ID:         r.tx.ID(),
		Origin:     r.Origin,
		Expiration: r.tx.Expiration(),
		Nonce:      r.tx.Nonce(),
	}
}
