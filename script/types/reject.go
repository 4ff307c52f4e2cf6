// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"fmt"

	"github.com/meterio/meter-auction/xenv"
	"github.com/pkg/errors"
)

// Reject is a typed contract failure. It aborts the call and reverts its effects.
type Reject struct {
	Code int32
	Name string
}

func (r *Reject) Error() string {
	return r.Name
}

func (r *Reject) String() string {
	return fmt.Sprintf("%s(%d)", r.Name, r.Code)
}

// NewReject creates a reject.
func NewReject(code int32, name string) *Reject {
	return &Reject{Code: code, Name: name}
}

// AsReject extracts the reject from err, if any.
func AsReject(err error) (*Reject, bool) {
	var r *Reject
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

var (
	// ErrOutOfGas aborts the whole transaction.
	ErrOutOfGas = xenv.ErrOutOfGas

	ErrParse              = NewReject(-1, "ParseParams")
	ErrContractNotFound   = NewReject(-100, "ContractNotFound")
	ErrEntrypointNotFound = NewReject(-101, "EntrypointNotFound")
	ErrCallDepth          = NewReject(-102, "CallDepthExceeded")
)
