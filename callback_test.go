// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import (
	"testing"
	"time"
)

func TestMonitorBits(t *testing.T) {
	e := newTestEngine(t)
	cb := func(gpio uint, level int, tick uint32) {}

	if err := e.SetAlertFunc(4, cb); err != nil {
		t.Fatal(err)
	}
	if e.monitorBits != 1<<4 {
		t.Fatalf("%#x", e.monitorBits)
	}
	if err := e.SetGetSamplesFunc(func([]Sample) {}, 0xFF00); err != nil {
		t.Fatal(err)
	}
	if e.monitorBits != 1<<4|0xFF00 {
		t.Fatalf("%#x", e.monitorBits)
	}
	if err := e.SetAlertFunc(4, nil); err != nil {
		t.Fatal(err)
	}
	if e.monitorBits != 0xFF00 {
		t.Fatalf("%#x", e.monitorBits)
	}
	if err := e.SetGetSamplesFunc(nil, 0xFF00); err != nil {
		t.Fatal(err)
	}
	if e.monitorBits != 0 {
		t.Fatalf("%#x", e.monitorBits)
	}
	if err := e.SetAlertFunc(32, cb); err != ErrBadUserGpio {
		t.Fatal(err)
	}
}

func TestWatchdogArming(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetWatchdog(4, 10); err != nil {
		t.Fatal(err)
	}
	if e.alerts[4].timeout != 10 {
		t.Fatal(e.alerts[4].timeout)
	}
	if err := e.SetWatchdog(4, 0); err != nil {
		t.Fatal(err)
	}
	if e.alerts[4].timeout != 0 {
		t.Fatal(e.alerts[4].timeout)
	}
}

func TestTimer(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetTimerFunc(10, 100, func() {}); err != ErrBadTimer {
		t.Fatal(err)
	}
	if err := e.SetTimerFunc(0, 5, func() {}); err != ErrBadMs {
		t.Fatal(err)
	}
	ch := make(chan struct{}, 16)
	tick := func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	if err := e.SetTimerFunc(0, 10, tick); err != nil {
		t.Fatal(err)
	}
	// At 10 ms the timer must fire a few times within half a second.
	fired := 0
	deadline := time.After(500 * time.Millisecond)
	for fired < 3 {
		select {
		case <-ch:
			fired++
		case <-deadline:
			t.Fatal(fired)
		}
	}
	// Disarming stops the goroutine before returning.
	if err := e.SetTimerFunc(0, 0, nil); err != nil {
		t.Fatal(err)
	}
	e.stopTimers()
}
