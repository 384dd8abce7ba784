// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import (
	"encoding/binary"
	"testing"

	"golang.org/x/sys/unix"
)

func TestEncodeReports(t *testing.T) {
	var buf [2 * reportSize]byte
	b := encodeReports(buf[:], []Report{
		{SeqNo: 1, Flags: NotifyFlagsWatchdog | notifyFlagsBit(4), Tick: 0x11223344, Level: 0x55667788},
		{SeqNo: 2, Tick: 5, Level: 6},
	})
	if len(b) != 2*reportSize {
		t.Fatal(len(b))
	}
	if got := binary.LittleEndian.Uint16(b[0:]); got != 1 {
		t.Fatal(got)
	}
	if got := binary.LittleEndian.Uint16(b[2:]); got != 1<<5|4 {
		t.Fatal(got)
	}
	if got := binary.LittleEndian.Uint32(b[4:]); got != 0x11223344 {
		t.Fatalf("%#x", got)
	}
	if got := binary.LittleEndian.Uint32(b[8:]); got != 0x55667788 {
		t.Fatalf("%#x", got)
	}
	if got := binary.LittleEndian.Uint16(b[12:]); got != 2 {
		t.Fatal(got)
	}
}

func notifyPipe(t *testing.T) (int, int) {
	t.Helper()
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		t.Fatal(err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatal(err)
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestEmitReportsFragmentation(t *testing.T) {
	e := newTestEngine(t)
	r, w := notifyPipe(t)

	n := &notifyReg{state: notifyRunning, fd: w}
	reports := make([]Report, 400)
	for i := range reports {
		reports[i].SeqNo = uint16(i)
	}
	e.emitReports(n, reports)
	if e.stats.EmitFrags != 1 {
		t.Fatal(e.stats.EmitFrags)
	}
	if e.stats.MaxEmit != 400 {
		t.Fatal(e.stats.MaxEmit)
	}

	// Every report arrives whole and in order.
	buf := make([]byte, 401*reportSize)
	total := 0
	for total < 400*reportSize {
		c, err := unix.Read(r, buf[total:])
		if err != nil {
			t.Fatal(err)
		}
		total += c
	}
	if total != 400*reportSize {
		t.Fatal(total)
	}
	for i := 0; i < 400; i++ {
		if got := binary.LittleEndian.Uint16(buf[i*reportSize:]); got != uint16(i) {
			t.Fatal(i, got)
		}
	}
}

func TestEmitReportsDeadSink(t *testing.T) {
	e := newTestEngine(t)
	_, w := notifyPipe(t)

	// Fill the pipe so the next write would block: the handle must be
	// retired, not the engine stalled.
	junk := make([]byte, 65536)
	for {
		if _, err := unix.Write(w, junk); err != nil {
			break
		}
	}
	n := &notifyReg{state: notifyRunning, fd: w, bits: 1 << 4}
	e.emitReports(n, make([]Report, 10))
	if n.state != notifyClosing {
		t.Fatal(n.state)
	}
	if n.bits != 0 {
		t.Fatal(n.bits)
	}
}

func TestNotifyLifecycle(t *testing.T) {
	e := newTestEngine(t)
	_, w := notifyPipe(t)

	h, err := e.NotifyOpenInBand(w)
	if err != nil {
		t.Fatal(err)
	}
	if e.notify[h].state != notifyOpened {
		t.Fatal(e.notify[h].state)
	}

	// Begin publishes the watch mask into the monitored bits.
	if err := e.NotifyBegin(h, 1<<4|1<<7); err != nil {
		t.Fatal(err)
	}
	if e.notifyBits != 1<<4|1<<7 {
		t.Fatalf("%#x", e.notifyBits)
	}
	if e.monitorBits != 1<<4|1<<7 {
		t.Fatalf("%#x", e.monitorBits)
	}

	if err := e.NotifyPause(h); err != nil {
		t.Fatal(err)
	}
	if e.notify[h].state != notifyPaused || e.notifyBits != 0 {
		t.Fatal(e.notify[h].state, e.notifyBits)
	}
	if err := e.NotifyBegin(h, 1<<4); err != nil {
		t.Fatal(err)
	}

	// Close only marks the handle; the alert loop does the actual close.
	if err := e.NotifyClose(h); err != nil {
		t.Fatal(err)
	}
	if e.notify[h].state != notifyClosing {
		t.Fatal(e.notify[h].state)
	}
	if err := e.NotifyBegin(h, 1); err != ErrBadHandle {
		t.Fatal(err)
	}
	e.finishClose(&e.notify[h], h)
	if e.notify[h].state != notifyClosed {
		t.Fatal(e.notify[h].state)
	}

	if err := e.NotifyBegin(99, 1); err != ErrBadHandle {
		t.Fatal(err)
	}
}

func TestNotifyNoHandle(t *testing.T) {
	e := newTestEngine(t)
	_, w := notifyPipe(t)
	for i := 0; i < NotifySlots; i++ {
		if _, err := e.NotifyOpenInBand(w); err != nil {
			t.Fatal(i, err)
		}
	}
	if _, err := e.NotifyOpenInBand(w); err != ErrNoHandle {
		t.Fatal(err)
	}
}

func TestServiceNotify(t *testing.T) {
	e := newTestEngine(t)
	r, w := notifyPipe(t)

	n := &notifyReg{state: notifyRunning, fd: w, bits: 1 << 4}
	samples := []Sample{
		{Tick: 100, Level: 1 << 4},
		{Tick: 105, Level: 1 << 7}, // gpio4 dropped, gpio7 is not watched
		{Tick: 110, Level: 1 << 4},
	}
	e.serviceNotify(n, samples, 0, 1<<4|1<<7, 0, 110)
	if n.seqno != 3 {
		t.Fatal(n.seqno)
	}

	buf := make([]byte, 4*reportSize)
	c, err := unix.Read(r, buf)
	if err != nil {
		t.Fatal(err)
	}
	if c != 3*reportSize {
		t.Fatal(c)
	}
	// Sequence numbers are contiguous from 0 and levels carry the full bank
	// snapshot.
	for i := 0; i < 3; i++ {
		if got := binary.LittleEndian.Uint16(buf[i*reportSize:]); got != uint16(i) {
			t.Fatal(i, got)
		}
	}
	if got := binary.LittleEndian.Uint32(buf[4:]); got != 100 {
		t.Fatal(got)
	}

	// A watchdog report carries the flag and the gpio in the low bits.
	e.serviceNotify(n, nil, 1<<4, 0, 1<<4, 500)
	c, err = unix.Read(r, buf)
	if err != nil {
		t.Fatal(err)
	}
	if c != reportSize {
		t.Fatal(c)
	}
	if got := binary.LittleEndian.Uint16(buf[0:]); got != 3 {
		t.Fatal(got)
	}
	if got := binary.LittleEndian.Uint16(buf[2:]); got != NotifyFlagsWatchdog|4 {
		t.Fatal(got)
	}
	if got := binary.LittleEndian.Uint32(buf[4:]); got != 500 {
		t.Fatal(got)
	}
}
