// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import (
	"time"

	"github.com/joan2937/pigpio-sub000/host/bcm283x"
)

// wfMicros is the tick of the output waveform time base, run off whichever
// peripheral of the PWM/PCM pair the sampler is not using.
const wfMicros = 2

// clkCfgEntry is one row of the oscillator divisor table, indexed by the
// sampling tick in µs. Rows with valid == false are ticks the table is not
// tabulated for and are rejected at configuration time.
type clkCfgEntry struct {
	valid    bool
	bits     uint32
	divi     uint32
	divf     uint32
	mash     uint32
	servoIdx uint16
	pwmIdx   uint16
}

const defaultPwmIdx = 5

var clkCfg = [11]clkCfgEntry{
	/*  0 */ {},
	/*  1 */ {true, 9, 2, 546, 1, 17, defaultPwmIdx},
	/*  2 */ {true, 19, 2, 86, 1, 16, defaultPwmIdx},
	/*  3 */ {false, 19, 3, 129, 1, 0, 0},
	/*  4 */ {true, 11, 6, 4021, 1, 15, defaultPwmIdx},
	/*  5 */ {true, 8, 12, 0, 0, 14, defaultPwmIdx},
	/*  6 */ {false, 23, 5, 35, 1, 0, 0},
	/*  7 */ {false, 27, 4004, 0, 1, 0, 0},
	/*  8 */ {true, 51, 3, 48, 1, 13, defaultPwmIdx},
	/*  9 */ {false, 43, 4, 76, 1, 0, 0},
	/* 10 */ {true, 8, 24, 0, 0, 12, defaultPwmIdx},
}

// tickReg returns the µs system timer.
func (e *Engine) tickReg() uint32 {
	return e.systReg.CLo
}

// delayMicros blocks for at least micros µs and returns the measured delay.
//
// Short delays busy-wait on the system timer; anything longer goes through
// the scheduler.
func (e *Engine) delayMicros(micros uint32) uint32 {
	start := e.tickReg()
	if micros < 101 {
		for e.tickReg()-start <= micros {
		}
	} else {
		time.Sleep(time.Duration(micros) * time.Microsecond)
	}
	return e.tickReg() - start
}

// initClock programs the clock generator of the pacing peripheral so it
// consumes exactly one FIFO word per tick.
//
// main selects the sampler's clock; otherwise the secondary (waveform)
// clock of the unused peripheral of the pair is set up at wfMicros.
func (e *Engine) initClock(main bool) {
	micros := e.cfg.ClockMicros
	if !main {
		micros = wfMicros
	}
	usePCM := e.cfg.ClockPeriph == ClockPCM
	if !main {
		usePCM = !usePCM
	}
	clk := &e.clkReg.PWM
	if usePCM {
		clk = &e.clkReg.PCM
	}

	var src bcm283x.ClockCtl
	var divi, divf, mash, bits uint32
	if e.cfg.ClockSrc == ClockPLLD {
		src = bcm283x.ClockSrcPLLD
		divi = 50 * uint32(micros)
		divf = 0
		mash = 0
		bits = 10
	} else {
		src = bcm283x.ClockSrcOscillator
		divi = clkCfg[micros].divi
		divf = clkCfg[micros].divf
		mash = clkCfg[micros].mash
		bits = clkCfg[micros].bits
	}

	clk.Ctl = bcm283x.ClockPasswdCtl | bcm283x.ClockKill
	e.delayMicros(10)
	clk.Div = bcm283x.MakeDiv(divi, divf)
	e.delayMicros(10)
	clk.Ctl = bcm283x.ClockPasswdCtl | bcm283x.ClockCtl(mash)<<9 | src
	e.delayMicros(10)
	clk.Ctl |= bcm283x.ClockPasswdCtl | bcm283x.ClockEnable
	e.delayMicros(10)

	if usePCM {
		e.initPCM(bits)
	} else {
		e.initPWM(bits)
	}
	e.delayMicros(2000)
}

// initPWM sets the PWM serialiser to drain one FIFO word per clock period of
// bits bits, gating DMA through its DREQ.
func (e *Engine) initPWM(bits uint32) {
	p := e.pwmReg

	// Reset PWM.
	p.Ctl = 0
	e.delayMicros(10)
	p.Status = bcm283x.PWMStatusAll
	e.delayMicros(10)

	// Set number of bits to transmit.
	p.Rng1 = bits
	e.delayMicros(10)

	e.pool.iPage(0).PeriphData = 1

	// Enable PWM DMA, raise panic and dreq thresholds to 15.
	p.DMACfg = bcm283x.PWMDMAEnable | 15<<bcm283x.PWMPanicShift | 15<<bcm283x.PWMDreqShift
	e.delayMicros(10)

	// Clear PWM fifo.
	p.Ctl = bcm283x.PWMClearFIFO
	e.delayMicros(10)

	// Enable PWM channel 1 and use fifo.
	p.Ctl = bcm283x.PWMUseFIFO1 | bcm283x.PWMSerialiser1 | bcm283x.PWMEnable1
}

// initPCM sets the PCM transmitter to drain one FIFO word per frame of bits
// clocks, gating DMA through its DREQ.
func (e *Engine) initPCM(bits uint32) {
	p := e.pcmReg

	// Disable PCM so the registers can be modified.
	p.CS = 0
	e.delayMicros(1000)

	p.FIFO = 0
	p.Mode = 0
	p.RXC = 0
	p.TXC = 0
	p.Dreq = 0
	p.IntEn = 0
	p.IntStc = 0
	p.Gray = 0
	e.delayMicros(1000)

	p.Mode = bcm283x.PCMMode(bits-1) << bcm283x.PCMFrameLenShift

	// Enable channel 1 with the frame width.
	p.TXC = bcm283x.PCMTXCh1Enable | bcm283x.PCMTXC(bits-8)<<bcm283x.PCMTXCh1WidthShift

	p.CS |= bcm283x.PCMStandby // clear standby
	e.delayMicros(1000)

	p.CS |= bcm283x.PCMTXClear  // clear TX FIFO
	p.CS |= bcm283x.PCMDMAEnable // enable DREQ

	p.Dreq = 16<<bcm283x.PCMDreqTXPanicShift | 30<<bcm283x.PCMDreqTXLevelShift

	p.IntStc = 0xF // clear status bits

	// Enable PCM.
	p.CS |= bcm283x.PCMEnable

	// Enable tx.
	p.CS |= bcm283x.PCMTXEnable

	e.pool.iPage(0).PeriphData = 0x0F
}

// pacedInfo returns the transfer flags and FIFO bus address of the pacing
// peripheral for the sampler (main) or the waveform time base.
func (e *Engine) pacedInfo(main bool) (bcm283x.DMATransferInfo, uint32) {
	// The sampler owns the configured peripheral; waveforms use the other of
	// the pair.
	usePCM := e.cfg.ClockPeriph == ClockPCM
	if !main {
		usePCM = !usePCM
	}
	if usePCM {
		return normalDMA | bcm283x.DMADestDreq | bcm283x.DMAPCMTX,
			bcm283x.BusRegister(bcm283x.PCMOffset + bcm283x.PCMFIFOOffset)
	}
	return normalDMA | bcm283x.DMADestDreq | bcm283x.DMAPWM,
		bcm283x.BusRegister(bcm283x.PWMOffset + bcm283x.PWMFIFOOffset)
}
