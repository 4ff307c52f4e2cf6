// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "github.com/meterio/meter-auction/script/types"

// standard CIS-2 errors
var (
	ErrInvalidTokenId    = types.NewReject(-42000001, "InvalidTokenId")
	ErrInsufficientFunds = types.NewReject(-42000002, "InsufficientFunds")
	ErrUnauthorized      = types.NewReject(-42000003, "Unauthorized")
)

var (
	ErrAmountOverflow = types.NewReject(-2, "AmountOverflow")
)
