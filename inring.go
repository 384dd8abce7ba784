// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import (
	"github.com/joan2937/pigpio-sub000/host/bcm283x"
)

// normalDMA is the transfer profile of every unpaced engine transfer.
const normalDMA = bcm283x.DMANoWideBursts | bcm283x.DMAWaitResp

// Bus addresses of the GPIO registers the ring reads and writes.
var (
	busGPSET0 = bcm283x.BusRegister(bcm283x.GPIOOffset + bcm283x.GPSET0)
	busGPCLR0 = bcm283x.BusRegister(bcm283x.GPIOOffset + bcm283x.GPCLR0)
	busGPLEV0 = bcm283x.BusRegister(bcm283x.GPIOOffset + bcm283x.GPLEV0)
	busSystLo = bcm283x.BusRegister(bcm283x.SysTimerOffset + bcm283x.SysTimerCLoOffset)
)

func (p *pool) cbI(pos int) *bcm283x.ControlBlock {
	return &p.iPage(pos / cbsPerIPage).CB[pos%cbsPerIPage]
}

// gpioOnCb emits the CB copying the cycle's on mask word to GPSET0.
func (e *Engine) gpioOnCb(b, pos int) {
	e.pool.cbI(b).InitTransfer(normalDMA, e.pool.onBus(pos), busGPSET0, 4, e.pool.cbIBus(b+1))
}

// tickCb emits the CB capturing the system timer into the cycle's tick slot.
func (e *Engine) tickCb(b, pos int) {
	e.pool.cbI(b).InitTransfer(normalDMA, busSystLo, e.pool.tickBus(pos), 4, e.pool.cbIBus(b+1))
}

// readLevelsCb emits the CB snapshotting GPLEV0 into a level slot.
func (e *Engine) readLevelsCb(b, pos int) {
	e.pool.cbI(b).InitTransfer(normalDMA, busGPLEV0, e.pool.levelBus(pos), 4, e.pool.cbIBus(b+1))
}

// delayCb emits the paced CB; its write to the pacing FIFO stalls on DREQ
// until the peripheral accepts one word, once per tick.
func (e *Engine) delayCb(b int) {
	info, fifo := e.pacedInfo(true)
	e.pool.cbI(b).InitTransfer(info, e.pool.periphIBus(b%e.dmaPages()), fifo, 4, e.pool.cbIBus(b+1))
}

// gpioOffCb emits the CB copying a slot's off mask word to GPCLR0.
func (e *Engine) gpioOffCb(b, pos int) {
	e.pool.cbI(b).InitTransfer(normalDMA, e.pool.offBus(pos), busGPCLR0, 4, e.pool.cbIBus(b+1))
}

func (e *Engine) dmaPages() int {
	return pagesPerBlock * e.bufferBlocks
}

// initInputRing builds the cyclic control block chain of the sampler.
//
// Per cycle: gpio on, tick capture, then for each pulse slot a level read, a
// paced wait of one tick and a gpio off. The last CB points back at the
// first so the ring loops forever.
func (e *Engine) initInputRing() {
	b := -1
	level := 0
	for cycle := 0; cycle < e.bufferCycles; cycle++ {
		b++
		e.gpioOnCb(b, cycle%superCycle)
		b++
		e.tickCb(b, cycle)
		for pulse := 0; pulse < pulsesPerCycle; pulse++ {
			b++
			e.readLevelsCb(b, level)
			b++
			e.delayCb(b)
			b++
			e.gpioOffCb(b, (level%superLevel)+1)
			level++
		}
	}
	// Point the last cb back to the first for a continuous loop.
	e.pool.cbI(b).NextCB = e.pool.cbIBus(0)
}

// currentCb locates the control block the input DMA channel is executing and
// returns its position in the ring.
//
// The conversion is a page scan: the page the CB address falls into is
// almost always the page found last time, so the scan starts there.
func (e *Engine) currentCb() int {
	start := e.tickReg()
	cbAddr := e.dmaIn.ConblkAd
	page := e.lastCbPage
	for {
		if d := cbAddr - e.pool.pages[page].bus; d/32 < cbsPerIPage && d%32 == 0 {
			if end := e.tickReg(); end != start {
				e.stats.CbTicks += end - start
			} else {
				e.stats.CbTicks++
			}
			e.stats.CbCalls++
			e.lastCbPage = page
			return page*cbsPerIPage + int(d/32)
		}
		if page++; page >= e.dmaPages() {
			page = 0
		}
		if page == e.lastCbPage {
			break
		}
	}
	return 0
}

// currentSlot converts a ring CB position into a sample slot index
// (cycle, pulse).
func currentSlot(pos int) int {
	cycle := pos / cbsPerCycle
	slot := 0
	if tmp := pos % cbsPerCycle; tmp > 2 {
		slot = (tmp - 2) / 3
	}
	return cycle*pulsesPerCycle + slot
}
