// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

// gas schedule of the script engine
const (
	TxGas           uint64 = 5000
	InvokeGas       uint64 = 500
	ParamByteGas    uint64 = 4
	StorageReadGas  uint64 = 200
	StorageWriteGas uint64 = 1000
	StorageByteGas  uint64 = 10
	EventGas        uint64 = 375
	SigVerifyGas    uint64 = 3000

	// MaxCallDepth bounds nested contract invocations within one transaction.
	MaxCallDepth = 64
)

// MicroCCD is the token amount of one whole unit in the default fixtures.
const MicroCCD uint64 = 1000000

var (
	// builtin addresses
	AccountRegistryAddr = BytesToAddress([]byte("account-registry"))
	LedgerModuleAddr    = BytesToAddress([]byte("cis2-ledger"))
	AuctionModuleAddr   = BytesToAddress([]byte("sponsored-auction"))
)
