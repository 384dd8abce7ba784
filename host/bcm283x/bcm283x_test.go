// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"testing"
	"unsafe"
)

func TestGPIOMapLayout(t *testing.T) {
	var g GPIOMap
	if o := unsafe.Offsetof(g.OutputSet); o != 0x1C {
		t.Fatal(o)
	}
	if o := unsafe.Offsetof(g.OutputClear); o != 0x28 {
		t.Fatal(o)
	}
	if o := unsafe.Offsetof(g.Level); o != 0x34 {
		t.Fatal(o)
	}
	if o := unsafe.Offsetof(g.PullEnable); o != 0x94 {
		t.Fatal(o)
	}
	if o := unsafe.Offsetof(g.PullEnableClock); o != 0x98 {
		t.Fatal(o)
	}
}

func TestGPIORegisterOffsets(t *testing.T) {
	var g GPIOMap
	if o := unsafe.Offsetof(g.OutputSet); uint32(o) != GPSET0 {
		t.Fatal(o)
	}
	if o := unsafe.Offsetof(g.OutputClear); uint32(o) != GPCLR0 {
		t.Fatal(o)
	}
	if o := unsafe.Offsetof(g.Level); uint32(o) != GPLEV0 {
		t.Fatal(o)
	}
}

func TestGPIOFunction(t *testing.T) {
	var g GPIOMap
	g.SetFunction(13, Out)
	if f := g.FunctionOf(13); f != Out {
		t.Fatal(f)
	}
	if g.FunctionSelect[1] != 1<<9 {
		t.Fatalf("%#x", g.FunctionSelect[1])
	}
	g.SetFunction(13, Alt0)
	if f := g.FunctionOf(13); f != Alt0 {
		t.Fatal(f)
	}
	if f := g.FunctionOf(12); f != In {
		t.Fatal(f)
	}
}

func TestControlBlockLayout(t *testing.T) {
	if s := unsafe.Sizeof(ControlBlock{}); s != 32 {
		t.Fatal(s)
	}
	var c ControlBlock
	if o := unsafe.Offsetof(c.NextCB); o != 0x14 {
		t.Fatal(o)
	}
}

func TestDMAChannelLayout(t *testing.T) {
	if s := unsafe.Sizeof(DMAChannel{}); s != 0x100 {
		t.Fatal(s)
	}
	var m DMAMap
	if o := unsafe.Offsetof(m.IntStatus); o != 0xFE0 {
		t.Fatal(o)
	}
	if o := unsafe.Offsetof(m.Enable); o != 0xFF0 {
		t.Fatal(o)
	}
}

func TestClockMapLayout(t *testing.T) {
	var c ClockMap
	if o := unsafe.Offsetof(c.PCM); o != 0x98 {
		t.Fatal(o)
	}
	if o := unsafe.Offsetof(c.PWM); o != 0xA0 {
		t.Fatal(o)
	}
	if d := MakeDiv(8, 12); d != ClockPasswdDiv|8<<ClockDiviShift|12 {
		t.Fatalf("%#x", d)
	}
}

func TestPWMMapLayout(t *testing.T) {
	var p PWMMap
	if o := unsafe.Offsetof(p.FIFO); uint32(o) != PWMFIFOOffset {
		t.Fatal(o)
	}
	if o := unsafe.Offsetof(p.Rng1); o != 0x10 {
		t.Fatal(o)
	}
}

func TestPCMMapLayout(t *testing.T) {
	var p PCMMap
	if o := unsafe.Offsetof(p.FIFO); uint32(o) != PCMFIFOOffset {
		t.Fatal(o)
	}
	if o := unsafe.Offsetof(p.Gray); o != 0x20 {
		t.Fatal(o)
	}
}

func TestSysTimerMapLayout(t *testing.T) {
	var s SysTimerMap
	if o := unsafe.Offsetof(s.CLo); uint32(o) != SysTimerCLoOffset {
		t.Fatal(o)
	}
}

func TestBusRegister(t *testing.T) {
	if a := BusRegister(GPIOOffset + GPSET0); a != 0x7E20001C {
		t.Fatalf("%#x", a)
	}
	if a := BusRegister(PWMOffset + PWMFIFOOffset); a != 0x7E20C018 {
		t.Fatalf("%#x", a)
	}
}

func TestPresent(t *testing.T) {
	// It may return true or false, depending on hardware but it shouldn't
	// crash.
	Present()
}

func TestDMAChannelReset(t *testing.T) {
	var d DMAChannel
	d.ConblkAd = 0x1234
	d.Reset()
	if d.ConblkAd != 0 {
		t.Fatal(d.ConblkAd)
	}
	if d.CS != DMAReset {
		t.Fatal(d.CS)
	}
}

func TestDMAChannelClearErrors(t *testing.T) {
	var d DMAChannel
	d.Debug = DMAFIFOError | DMALite
	if e := d.ClearErrors(); e != DMAFIFOError {
		t.Fatal(e)
	}
}
