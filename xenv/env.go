// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"errors"
	"fmt"

	"github.com/meterio/meter-auction/meter"
)

// ErrOutOfGas is raised by panic when a call exhausts its gas budget.
var ErrOutOfGas = errors.New("out of gas")

// BlockContext block context.
type BlockContext struct {
	Number uint32
	Time   uint64 // unix milliseconds
}

// Now returns the block time as a timestamp.
func (ctx *BlockContext) Now() meter.Timestamp {
	return meter.Timestamp(ctx.Time)
}

// TransactionContext transaction context.
type TransactionContext struct {
	ID         meter.Bytes32
	Origin     meter.Address
	Expiration uint64
	Nonce      uint64
}

func (ctx *TransactionContext) String() string {
	return fmt.Sprintf("txCtx{ID:%s Origin:%s Exp:%d Nonce:%d}", ctx.ID.String(), ctx.Origin.String(), ctx.Expiration, ctx.Nonce)
}

// GasMeter accounts gas of one transaction, shared by all nested calls.
type GasMeter struct {
	limit uint64
	used  uint64
}

// NewGasMeter creates a gas meter with the given limit.
func NewGasMeter(limit uint64) *GasMeter {
	return &GasMeter{limit: limit}
}

// UseGas consumes gas, panics with ErrOutOfGas when the budget is exhausted.
func (g *GasMeter) UseGas(gas uint64) {
	if g.limit-g.used < gas {
		g.used = g.limit
		panic(ErrOutOfGas)
	}
	g.used += gas
}

// Used returns gas consumed so far.
func (g *GasMeter) Used() uint64 { return g.used }

// Left returns gas left.
func (g *GasMeter) Left() uint64 { return g.limit - g.used }

// Run calls proc and turns an out of gas panic into ErrOutOfGas.
// Other panics are propagated.
func (g *GasMeter) Run(proc func() ([]byte, error)) (output []byte, err error) {
	defer func() {
		if e := recover(); e != nil {
			if e == ErrOutOfGas {
				output, err = nil, ErrOutOfGas
			} else {
				panic(e)
			}
		}
	}()
	return proc()
}
