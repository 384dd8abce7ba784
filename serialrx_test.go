// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import "testing"

func TestSerialRxDecode(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SerialReadOpen(4, 1000); err != nil {
		t.Fatal(err)
	}
	if e.alertBits&(1<<4) == 0 {
		t.Fatal("alert not armed")
	}
	s := e.wfRx[4]
	if s == nil {
		t.Fatal("no receiver")
	}

	// 'A' = 0x41 at 1000 baud (1000 µs per bit), LSB first on the wire:
	// start(0) 1 0 0 0 0 0 1 0 stop(1).
	base := uint32(10000)
	e.rxBit(s, 0, base)        // start bit
	e.rxBit(s, 1, base+1000)   // b0 = 1
	e.rxBit(s, 0, base+2000)   // b1..b5 = 0
	e.rxBit(s, 1, base+7000)   // b6 = 1
	e.rxBit(s, 0, base+8000)   // b7 = 0
	e.rxBit(s, 1, base+9000)   // stop bit completes the byte

	buf := make([]byte, 8)
	n, err := e.SerialRead(4, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || buf[0] != 'A' {
		t.Fatal(n, buf[0])
	}
	// Nothing further buffered.
	if n, _ = e.SerialRead(4, buf); n != 0 {
		t.Fatal(n)
	}

	if err := e.SerialReadClose(4); err != nil {
		t.Fatal(err)
	}
	if e.alertBits&(1<<4) != 0 {
		t.Fatal("alert still armed")
	}
	if _, err := e.SerialRead(4, buf); err != ErrNotSerialGpio {
		t.Fatal(err)
	}
}

func TestSerialRxIdleTail(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SerialReadOpen(4, 1000); err != nil {
		t.Fatal(err)
	}
	s := e.wfRx[4]

	// 0x01: start(0) 1 0 0 0 0 0 0 0 stop(1). The stop edge completes the
	// byte with no following start bit; the idle line then only produces a
	// watchdog timeout, which must be a no-op.
	base := uint32(50000)
	e.rxBit(s, 0, base)
	e.rxBit(s, 1, base+1000)
	e.rxBit(s, 0, base+2000)
	e.rxBit(s, 1, base+9000)
	e.rxBit(s, Timeout, base+30000)

	buf := make([]byte, 8)
	n, err := e.SerialRead(4, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || buf[0] != 0x01 {
		t.Fatalf("%d %#x", n, buf[0])
	}
}

func TestSerialRxValidation(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SerialReadOpen(32, 4800); err != ErrBadUserGpio {
		t.Fatal(err)
	}
	if err := e.SerialReadOpen(4, 99); err != ErrBadWaveBaud {
		t.Fatal(err)
	}
	if err := e.SerialReadOpen(4, 4800); err != nil {
		t.Fatal(err)
	}
	if err := e.SerialReadOpen(4, 4800); err != ErrGpioInUse {
		t.Fatal(err)
	}
	if _, err := e.SerialRead(4, nil); err != ErrBadSerialCount {
		t.Fatal(err)
	}
	if err := e.SerialReadClose(5); err != ErrNotSerialGpio {
		t.Fatal(err)
	}
}
