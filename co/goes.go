// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import "sync"

// Goes to run a func in a goroutine, and wait for all of them.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a goroutine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait waits for all goroutines started by Go.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed when all goroutines are done.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()
	return done
}
