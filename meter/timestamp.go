// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import "time"

// Timestamp is a point in time as milliseconds since unix epoch.
type Timestamp uint64

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts)).UTC()
}

func (ts Timestamp) Add(d time.Duration) Timestamp {
	return ts + Timestamp(d.Milliseconds())
}

func (ts Timestamp) String() string {
	return ts.Time().Format(time.RFC3339Nano)
}
