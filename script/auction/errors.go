// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import "github.com/meterio/meter-auction/script/types"

var (
	ErrInvalidIndex            = types.NewReject(-2, "InvalidIndex")
	ErrBidTooEarly             = types.NewReject(-3, "BidTooEarly")
	ErrBidTooLate              = types.NewReject(-4, "BidTooLate")
	ErrAuctionAlreadyFinalized = types.NewReject(-5, "AuctionAlreadyFinalized")
	ErrBidBelowCurrentBid      = types.NewReject(-6, "BidBelowCurrentBid")
	ErrBidBelowMinimumRaise    = types.NewReject(-7, "BidBelowMinimumRaise")
	ErrAuctionStillActive      = types.NewReject(-8, "AuctionStillActive")
	ErrNotTokenContract        = types.NewReject(-9, "NotTokenContract")
	ErrOnlyAccount             = types.NewReject(-10, "OnlyAccount")
	ErrWrongTokenID            = types.NewReject(-11, "WrongTokenID")
	ErrItemsExhausted          = types.NewReject(-12, "ItemsExhausted")
)
