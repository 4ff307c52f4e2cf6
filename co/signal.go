// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import "sync"

// Waiter provides channel to wait for.
// Value read from channel indicates signal or broadcast. true for signal, otherwise broadcast.
type Waiter interface {
	C() <-chan bool
}

type waiter struct {
	c chan bool
}

func (w *waiter) C() <-chan bool {
	return w.c
}

// Signal a rendezvous point for goroutines waiting for or announcing the occurrence of an event.
// It's more friendly than sync.Cond, since it's channel base. That means you can do channel selection
// to wait for an event.
type Signal struct {
	l sync.Mutex
	c chan bool
}

func (s *Signal) init() {
	if s.c == nil {
		s.c = make(chan bool, 1)
	}
}

// Signal wakes one goroutine that is waiting on s.
func (s *Signal) Signal() {
	s.l.Lock()
	defer s.l.Unlock()
	s.init()
	select {
	case s.c <- true:
	default:
	}
}

// Broadcast wakes all goroutines that are waiting on s.
func (s *Signal) Broadcast() {
	s.l.Lock()
	defer s.l.Unlock()
	s.init()
	close(s.c)
	s.c = make(chan bool, 1)
}

// NewWaiter create a Waiter object for acquiring channel to wait for.
func (s *Signal) NewWaiter() Waiter {
	s.l.Lock()
	defer s.l.Unlock()
	s.init()
	return &waiter{s.c}
}
