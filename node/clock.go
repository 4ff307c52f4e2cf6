// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"time"

	"github.com/beevik/ntp"
)

// MaxClockOffset is the largest tolerated offset of the local clock.
const MaxClockOffset = 2 * time.Second

// CheckClockOffset queries server and returns the local clock offset.
// Block timestamps come from the local clock, so auctions start and end
// according to it.
func CheckClockOffset(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}
