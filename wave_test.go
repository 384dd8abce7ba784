// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import (
	"testing"

	"github.com/joan2937/pigpio-sub000/host/bcm283x"
)

func wavePulses(e *Engine) []Pulse {
	return e.wf[e.wfCur][:e.wfc[e.wfCur]]
}

func TestWaveAddGeneric(t *testing.T) {
	e := newTestEngine(t)
	n, err := e.WaveAddGeneric([]Pulse{
		{GpioOn: 1 << 4, UsDelay: 10},
		{GpioOff: 1 << 4, UsDelay: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatal(n)
	}
	got := wavePulses(e)
	if got[0].GpioOn != 1<<4 || got[0].UsDelay != 10 {
		t.Fatalf("%+v", got[0])
	}
	if got[1].GpioOff != 1<<4 || got[1].UsDelay != 10 {
		t.Fatalf("%+v", got[1])
	}
}

func TestWaveMergeUnion(t *testing.T) {
	e := newTestEngine(t)
	// Two trains starting at the same instant: the pulses due at the same
	// tick union their masks.
	if _, err := e.WaveAddGeneric([]Pulse{
		{GpioOn: 1 << 4, UsDelay: 10},
		{GpioOff: 1 << 4, UsDelay: 10},
	}); err != nil {
		t.Fatal(err)
	}
	n, err := e.WaveAddGeneric([]Pulse{
		{GpioOn: 1 << 5, UsDelay: 5},
		{GpioOff: 1 << 5, UsDelay: 15},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatal(n)
	}
	got := wavePulses(e)
	// t=0 both trains raise their pin (one folded pulse), t=5 gpio5 drops,
	// t=10 gpio4 drops, trailing delay runs to t=20.
	want := []Pulse{
		{GpioOn: 1<<4 | 1<<5, UsDelay: 5},
		{GpioOff: 1 << 5, UsDelay: 5},
		{GpioOff: 1 << 4, UsDelay: 10},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pulse %d: %+v != %+v", i, got[i], want[i])
		}
	}
	// The running length is the longer train's length.
	if m, _ := e.WaveGetMicros(); m != 20 {
		t.Fatal(m)
	}
}

func TestWaveBitDelay(t *testing.T) {
	var d [10]uint32
	waveBitDelay(4800, &d)
	// The whole frame spans ten bits within rounding of the 2 µs time base.
	var sum uint32
	for _, v := range d {
		sum += v
	}
	frame := uint32(10 * 1000000 / 4800)
	if diff := int32(sum - frame); diff < -4 || diff > 4 {
		t.Fatal(sum, frame)
	}
	// Cumulative drift at each bit boundary stays under a bit third.
	fullBit := uint32(100000000 / 4800)
	acc := uint32(0)
	for i := 0; i < 9; i++ {
		acc += d[i] * 100
		ideal := uint32(i+1) * fullBit
		diff := int32(acc - ideal)
		if diff < 0 {
			diff = -diff
		}
		if uint32(diff) > fullBit/3 {
			t.Fatal(i, acc, ideal)
		}
	}
}

func TestWaveAddSerial(t *testing.T) {
	e := newTestEngine(t)
	// No data, no pulses.
	n, err := e.WaveAddSerial(4, 4800, 0, nil)
	if err != nil || n != 0 {
		t.Fatal(n, err)
	}
	n, err = e.WaveAddSerial(4, 4800, 0, []byte("A"))
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal(n)
	}
	got := wavePulses(e)
	// Leads high, then the start bit drives low.
	if got[0].GpioOn != 1<<4 {
		t.Fatalf("%+v", got[0])
	}
	if got[1].GpioOff != 1<<4 {
		t.Fatalf("%+v", got[1])
	}
	// 'A' = 0x41: low start, 1, five 0s, 1, 0, high stop = 6 toggles after
	// the lead, then the trailing idle pulse.
	if len(got) != 8 {
		t.Fatalf("%d pulses: %+v", len(got), got)
	}
}

func TestWaveAddSerialValidation(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.WaveAddSerial(32, 4800, 0, []byte("x")); err != ErrBadUserGpio {
		t.Fatal(err)
	}
	if _, err := e.WaveAddSerial(4, 99, 0, []byte("x")); err != ErrBadWaveBaud {
		t.Fatal(err)
	}
	if _, err := e.WaveAddSerial(4, 250001, 0, []byte("x")); err != ErrBadWaveBaud {
		t.Fatal(err)
	}
	if _, err := e.WaveAddSerial(4, 4800, WaveMaxMicros+1, []byte("x")); err != ErrBadSerialOffset {
		t.Fatal(err)
	}
	if _, err := e.WaveAddSerial(4, 4800, 0, make([]byte, WaveMaxChars+1)); err != ErrTooManyChars {
		t.Fatal(err)
	}
}

func TestWaveSerialOffset(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.WaveAddSerial(4, 4800, 5000, []byte("A")); err != nil {
		t.Fatal(err)
	}
	if got := wavePulses(e); got[0].UsDelay != 5000 {
		t.Fatalf("%+v", got[0])
	}
}

func TestWaveCreateEmpty(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.WaveCreate(); err != ErrEmptyWaveform {
		t.Fatal(err)
	}
}

func TestWaveCreateAndSend(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.WaveAddGeneric([]Pulse{
		{GpioOn: 1 << 4, UsDelay: 30000},
		{GpioOff: 1 << 4, UsDelay: 30000},
	}); err != nil {
		t.Fatal(err)
	}
	id, err := e.WaveCreate()
	if err != nil {
		t.Fatal(err)
	}
	if id != 0 {
		t.Fatal(id)
	}
	// settle + (set, pace) + (clear, pace).
	seg := e.waves[id]
	if seg.cbCount != 5 {
		t.Fatal(seg.cbCount)
	}
	if seg.oolCount != 2 {
		t.Fatal(seg.oolCount)
	}
	if seg.micros != 60000 {
		t.Fatal(seg.micros)
	}
	// The construction buffer was consumed.
	if n, _ := e.WaveGetPulses(); n != 0 {
		t.Fatal(n)
	}

	// The compiled chain: settle paced CB first, then the gpio-on copy.
	cb := e.pool.cbO(seg.cbStart)
	if cb.TransferInfo&bcm283x.DMADestDreq == 0 {
		t.Fatalf("%+v", cb)
	}
	if cb.TxLen != 4*settleMicros/wfMicros {
		t.Fatal(cb.TxLen)
	}
	cb = e.pool.cbO(seg.cbStart + 1)
	if cb.DstAddr != busGPSET0 {
		t.Fatalf("%#x", cb.DstAddr)
	}
	// The delay consumes round(30000/2) FIFO words.
	cb = e.pool.cbO(seg.cbStart + 2)
	if cb.TxLen != 4*15000 {
		t.Fatal(cb.TxLen)
	}

	// One shot halts the DMA at the end of the chain.
	n, err := e.TxSend(id, WaveModeOneShot)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatal(n)
	}
	if last := e.pool.cbO(seg.cbStart + seg.cbCount - 1); last.NextCB != 0 {
		t.Fatalf("%#x", last.NextCB)
	}
	if e.dmaOut.ConblkAd != e.pool.cbOBus(seg.cbStart) {
		t.Fatalf("%#x", e.dmaOut.ConblkAd)
	}
	if busy, _ := e.TxBusy(); !busy {
		t.Fatal("expected busy")
	}

	// Repeat loops back to the settle CB's successor.
	if _, err := e.TxSend(id, WaveModeRepeat); err != nil {
		t.Fatal(err)
	}
	if last := e.pool.cbO(seg.cbStart + seg.cbCount - 1); last.NextCB != e.pool.cbOBus(seg.cbStart+1) {
		t.Fatalf("%#x", last.NextCB)
	}

	// Stop resets the channel; stopping again is a no-op.
	if err := e.TxStop(); err != nil {
		t.Fatal(err)
	}
	if busy, _ := e.TxBusy(); busy {
		t.Fatal("expected idle")
	}
	if err := e.TxStop(); err != nil {
		t.Fatal(err)
	}
}

func TestWaveShortDelayRounding(t *testing.T) {
	e := newTestEngine(t)
	// A delay under half a tick consumes no FIFO words and melts into the
	// neighbouring pulses.
	if _, err := e.WaveAddGeneric([]Pulse{
		{GpioOn: 1 << 4, UsDelay: 0},
		{GpioOff: 1 << 5, UsDelay: 3},
	}); err != nil {
		t.Fatal(err)
	}
	id, err := e.WaveCreate()
	if err != nil {
		t.Fatal(err)
	}
	seg := e.waves[id]
	// settle + on + off + one delay CB of round(3/2)=2 words... the zero
	// delay pulse emits no pace CB at all.
	if seg.cbCount != 4 {
		t.Fatal(seg.cbCount)
	}
	if cb := e.pool.cbO(seg.cbStart + 3); cb.TxLen != 4*2 {
		t.Fatal(cb.TxLen)
	}
}

func TestWaveDelete(t *testing.T) {
	e := newTestEngine(t)
	mk := func() int {
		if _, err := e.WaveAddGeneric([]Pulse{{GpioOn: 1 << 4, UsDelay: 10}}); err != nil {
			t.Fatal(err)
		}
		id, err := e.WaveCreate()
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
	id0 := mk()
	id1 := mk()
	if id0 != 0 || id1 != 1 {
		t.Fatal(id0, id1)
	}
	if err := e.WaveDelete(2); err != ErrBadWaveID {
		t.Fatal(err)
	}
	// Deleting an id drops it and everything created after it.
	if err := e.WaveDelete(0); err != nil {
		t.Fatal(err)
	}
	if len(e.waves) != 0 || e.cbHigh != 0 || e.oolHigh != 0 {
		t.Fatal(e.waves, e.cbHigh, e.oolHigh)
	}
	if err := e.WaveDelete(0); err != ErrBadWaveID {
		t.Fatal(err)
	}
	// The space is reusable.
	if id := mk(); id != 0 {
		t.Fatal(id)
	}
}

func TestWaveClear(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.WaveAddGeneric([]Pulse{{GpioOn: 1 << 4, UsDelay: 10}}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.WaveCreate(); err != nil {
		t.Fatal(err)
	}
	if err := e.WaveClear(); err != nil {
		t.Fatal(err)
	}
	if len(e.waves) != 0 || e.cbHigh != 0 {
		t.Fatal("clear must drop compiled waves")
	}
	if m, _ := e.WaveGetMicros(); m != 0 {
		t.Fatal(m)
	}
	if m, _ := e.WaveGetMaxPulses(); m != WaveMaxPulses {
		t.Fatal(m)
	}
}

func TestPwmFrequencyTable(t *testing.T) {
	e := newTestEngine(t)
	// At the default 5 µs tick the table spans 8 kHz down to 10 Hz.
	if e.pwmFreq[0] != 8000 {
		t.Fatal(e.pwmFreq[0])
	}
	if e.pwmFreq[defaultPwmIdx] != 800 {
		t.Fatal(e.pwmFreq[defaultPwmIdx])
	}
	if e.pwmFreq[pwmFreqs-1] != 10 {
		t.Fatal(e.pwmFreq[pwmFreqs-1])
	}
	f, err := e.SetPWMFrequency(4, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if f != 1000 {
		t.Fatal(f)
	}
	if f, _ = e.SetPWMFrequency(4, 100000); f != 8000 {
		t.Fatal(f)
	}
	if f, _ = e.SetPWMFrequency(4, 1); f != 10 {
		t.Fatal(f)
	}
	if f, _ = e.GetPWMFrequency(4); f != 10 {
		t.Fatal(f)
	}
}

func TestPwmScheduling(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetPWMDutycycle(4, 128); err != nil {
		t.Fatal(err)
	}
	gi := e.gpioInfo[4]
	if gi.is != gpioPWM || gi.width != 128 {
		t.Fatalf("%+v", gi)
	}
	// Default index 5: on every 10th cycle, off every 250 level slots at the
	// scaled offset.
	offPos := 128 * 250 / 255
	if e.pool.iPage(0).GpioOn[0]&(1<<4) == 0 {
		t.Fatal("on slot 0 not armed")
	}
	page, slot := offPos/offPerIPage, offPos%offPerIPage
	if e.pool.iPage(page).GpioOff[slot]&(1<<4) == 0 {
		t.Fatal("off slot not armed")
	}
	// Full off clears the schedule and forces the pin low.
	if err := e.SetPWMDutycycle(4, 0); err != nil {
		t.Fatal(err)
	}
	if e.pool.iPage(0).GpioOn[0]&(1<<4) != 0 {
		t.Fatal("on slot still armed")
	}
	if e.pool.iPage(page).GpioOff[slot]&(1<<4) != 0 {
		t.Fatal("off slot still armed")
	}
	if e.gpioReg.OutputClear[0]&(1<<4) == 0 {
		t.Fatal("pin not forced low")
	}
}

func TestServoScheduling(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetServo(4, 1500); err != nil {
		t.Fatal(err)
	}
	gi := e.gpioInfo[4]
	if gi.is != gpioServo || gi.width != 1500 {
		t.Fatalf("%+v", gi)
	}
	// At 5 µs the servo index realRange is 4000 slots per 20 ms: 1500 µs maps
	// to slot 300.
	if gi.freqIdx != 14 {
		t.Fatal(gi.freqIdx)
	}
	offPos := 1500 * 4000 / 20000
	page, slot := offPos/offPerIPage, offPos%offPerIPage
	if e.pool.iPage(page).GpioOff[slot]&(1<<4) == 0 {
		t.Fatal("off slot not armed")
	}
	// Servo off returns the pin to idle and the next PWM call re-arms from
	// scratch.
	if err := e.SetServo(4, 0); err != nil {
		t.Fatal(err)
	}
	if e.pool.iPage(page).GpioOff[slot]&(1<<4) != 0 {
		t.Fatal("off slot still armed")
	}
}
