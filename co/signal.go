// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co holds small concurrency helpers.
package co

import "sync"

// Signal is a channel based wakeup. Signals sent while nobody is waiting
// coalesce into a single pending wakeup.
type Signal struct {
	once sync.Once
	ch   chan struct{}
}

func (s *Signal) init() {
	s.once.Do(func() { s.ch = make(chan struct{}, 1) })
}

// Signal wakes one goroutine waiting on C, or leaves a pending wakeup.
func (s *Signal) Signal() {
	s.init()
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// C returns the channel to wait on.
func (s *Signal) C() <-chan struct{} {
	s.init()
	return s.ch
}
