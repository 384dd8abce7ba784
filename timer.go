// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import "time"

// Timer limits.
const (
	maxTimers  = 10
	minTimerMs = 10
	maxTimerMs = 60000
)

// TimerFunc is a repeating timer callback.
type TimerFunc func()

type timerInfo struct {
	stop chan struct{}
	done chan struct{}
}

// SetTimerFunc arms timer id (0-9) to call fn every ms milliseconds, or
// disarms it with a nil fn.
//
// The timer paces itself on absolute deadlines so the long-run rate does not
// drift with callback duration.
func (e *Engine) SetTimerFunc(id uint, ms uint, fn TimerFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	if id >= maxTimers {
		return ErrBadTimer
	}
	if fn != nil && (ms < minTimerMs || ms > maxTimerMs) {
		return ErrBadMs
	}
	if t := e.timers[id]; t != nil {
		close(t.stop)
		<-t.done
		e.timers[id] = nil
	}
	if fn == nil {
		return nil
	}
	t := &timerInfo{stop: make(chan struct{}), done: make(chan struct{})}
	e.timers[id] = t
	go runTimer(t, time.Duration(ms)*time.Millisecond, fn)
	return nil
}

func runTimer(t *timerInfo, period time.Duration, fn TimerFunc) {
	defer close(t.done)
	next := time.Now().Add(period)
	for {
		d := time.Until(next)
		if d < 0 {
			// Late; catch up without bursting.
			for d < 0 {
				next = next.Add(period)
				d = time.Until(next)
			}
		}
		select {
		case <-t.stop:
			return
		case <-time.After(d):
		}
		fn()
		next = next.Add(period)
	}
}

// stopTimers disarms every running timer.
func (e *Engine) stopTimers() {
	e.mu.Lock()
	timers := e.timers
	for i := range e.timers {
		e.timers[i] = nil
	}
	e.mu.Unlock()
	for _, t := range timers {
		if t != nil {
			close(t.stop)
			<-t.done
		}
	}
}
