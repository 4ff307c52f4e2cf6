// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package permit

import "github.com/meterio/meter-auction/script/types"

var (
	ErrWrongSignature  = types.NewReject(-20, "WrongSignature")
	ErrNonceMismatch   = types.NewReject(-21, "NonceMismatch")
	ErrWrongContract   = types.NewReject(-22, "WrongContract")
	ErrWrongEntryPoint = types.NewReject(-23, "WrongEntryPoint")
	ErrExpired         = types.NewReject(-24, "Expired")
)
