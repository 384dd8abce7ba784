// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import (
	"golang.org/x/sys/unix"
)

// datums bounds the in-flight sample and report arrays of one alert window.
const datums = 2000

// tickSlots is the width of the DMA drift histogram.
const tickSlots = 50

// alertSleep is the alert loop period.
const alertSleep = 850 * 1000 // ns

// Stats are the engine's runtime diagnostics.
type Stats struct {
	StartTick  uint32
	AlertTicks uint32
	// DiffTick histograms, per cycle boundary, the µs between the tick the
	// software clock expected and the tick the DMA recorded.
	DiffTick   [tickSlots]uint32
	CbTicks    uint32
	CbCalls    uint32
	// DMAErrors counts debug register error bits observed on the sampling
	// channel; the bits are cleared by writing them back and the engine
	// keeps running.
	DMAErrors  uint32
	MaxEmit    uint32
	EmitFrags  uint32
	EmitErrors uint32
	MaxSamples uint32
	NumSamples uint32
}

// Stats returns a snapshot of the runtime diagnostics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// sleepUntil sleeps up to the absolute monotonic deadline in ns, retrying
// when interrupted by a signal.
func sleepUntil(deadline int64) {
	ts := unix.NsecToTimespec(deadline)
	for {
		err := unix.ClockNanosleep(unix.CLOCK_MONOTONIC, unix.TIMER_ABSTIME, &ts, nil)
		if err != unix.EINTR {
			return
		}
	}
}

func monotonicNow() int64 {
	var ts unix.Timespec
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	return ts.Nano()
}

// runAlert is the soft-realtime loop following the sampling DMA.
//
// Each iteration sleeps to an absolute deadline, walks the level slots the
// DMA advanced past since the previous iteration, diffs them against the
// last reported level masked by the monitored bits, and fans the resulting
// samples out to the batched sample hook, the per-gpio edge callbacks, the
// watchdogs and the running notification handles.
func (e *Engine) runAlert() {
	defer close(e.alertDone)

	// Don't start until the DMA is running, then let it get ahead.
	for {
		select {
		case <-e.alertStop:
			return
		default:
		}
		e.mu.Lock()
		started := e.dmaStarted
		e.mu.Unlock()
		if started {
			break
		}
		e.delayMicros(1000)
	}
	e.delayMicros(20000)

	reportedLevel := e.gpioReg.Level[0]
	tick := e.tickReg()

	e.mu.Lock()
	e.stats.StartTick = tick
	oldSlot := currentSlot(e.currentCb())
	e.mu.Unlock()

	cycle := oldSlot / pulsesPerCycle
	pulse := oldSlot % pulsesPerCycle

	deadline := monotonicNow()

	for {
		select {
		case <-e.alertStop:
			return
		default:
		}

		deadline += alertSleep
		sleepUntil(deadline)

		e.mu.Lock()
		e.stats.AlertTicks++

		// Read/FIFO/read-last-not-set conditions are cleared by writing the
		// bits back; a persistent error only shows up as a climbing count.
		if errs := e.dmaIn.ClearErrors(); errs != 0 {
			e.stats.DMAErrors++
		}

		newSlot := currentSlot(e.currentCb())
		numSamples := 0
		changedBits := uint32(0)
		oldLevel := reportedLevel & e.monitorBits

		for oldSlot != newSlot && numSamples < datums {
			level := e.pool.level(oldSlot)
			oldSlot++

			if newLevel := level & e.monitorBits; newLevel != oldLevel {
				e.sample[numSamples] = Sample{Tick: tick, Level: level}
				changedBits |= newLevel ^ oldLevel
				oldLevel = newLevel
				numSamples++
			}

			tick += uint32(e.cfg.ClockMicros)

			if pulse++; pulse >= pulsesPerCycle {
				pulse = 0
				if cycle++; cycle >= e.bufferCycles {
					cycle = 0
					oldSlot = 0
				}
				// Re-anchor the software clock on the tick the DMA recorded at
				// the cycle start and histogram the drift.
				expected := tick
				tick = e.pool.tick(cycle)
				diff := int32(tick-expected) + tickSlots/2
				switch {
				case diff < 0:
					e.stats.DiffTick[0]++
				case diff >= tickSlots:
					e.stats.DiffTick[tickSlots-1]++
				default:
					e.stats.DiffTick[diff]++
				}
			}
		}

		samples := e.sample[:numSamples]

		// User callbacks run after e.mu is released; gather them in order.
		e.pending = e.pending[:0]

		// The batched sample hook sees the whole window.
		if changedBits != 0 && e.getSamples.fn != nil {
			fn := e.getSamples.fn
			window := append([]Sample(nil), samples...)
			e.pending = append(e.pending, func() { fn(window) })
		}

		// Any change resets the gpio's watchdog clock.
		if changedBits != 0 {
			for b := uint(0); b <= maxUserGpio; b++ {
				if changedBits&(1<<b) != 0 {
					e.alerts[b].tick = tick
				}
			}
		}

		// Edge callbacks, one invocation per transition, in sample order.
		if changedBits&e.alertBits != 0 {
			oldLevel = reportedLevel & e.alertBits
			for d := range samples {
				newLevel := samples[d].Level & e.alertBits
				if newLevel == oldLevel {
					continue
				}
				changes := newLevel ^ oldLevel
				for b := uint(0); b <= maxUserGpio; b++ {
					if changes&(1<<b) == 0 || e.alerts[b].fn == nil {
						continue
					}
					fn := e.alerts[b].fn
					gpio := b
					level := Low
					if newLevel&(1<<b) != 0 {
						level = High
					}
					sTick := samples[d].Tick
					e.pending = append(e.pending, func() { fn(gpio, level, sTick) })
				}
				oldLevel = newLevel
			}
		}

		// Watchdogs.
		timeoutBits := uint32(0)
		for b := uint(0); b <= maxUserGpio; b++ {
			a := &e.alerts[b]
			if a.timeout == 0 {
				continue
			}
			if int32(tick-a.tick) > int32(a.timeout*1000) {
				timeoutBits |= 1 << b
				a.tick += a.timeout * 1000
				if a.fn != nil {
					fn := a.fn
					gpio := b
					wTick := tick
					e.pending = append(e.pending, func() { fn(gpio, Timeout, wTick) })
				}
			}
		}

		// Notification handles.
		for i := range e.notify {
			n := &e.notify[i]
			switch n.state {
			case notifyClosing:
				e.finishClose(n, i)
			case notifyRunning:
				e.serviceNotify(n, samples, reportedLevel, changedBits, timeoutBits, tick)
			}
		}

		// Once all outputs have been emitted set the reported level.
		if numSamples > 0 {
			reportedLevel = samples[numSamples-1].Level
		}
		if uint32(numSamples) > e.stats.MaxSamples {
			e.stats.MaxSamples = uint32(numSamples)
		}
		e.stats.NumSamples += uint32(numSamples)

		pending := e.pending
		e.mu.Unlock()

		for _, fn := range pending {
			fn()
		}
	}
}

// serviceNotify builds and emits the reports of one running handle for this
// alert window. Callers hold e.mu.
func (e *Engine) serviceNotify(n *notifyReg, samples []Sample, reportedLevel, changedBits, timeoutBits, tick uint32) {
	emit := 0
	seqno := n.seqno

	if changedBits&n.bits != 0 {
		oldLevel := reportedLevel & n.bits
		for d := range samples {
			newLevel := samples[d].Level & n.bits
			if newLevel == oldLevel {
				continue
			}
			e.report[emit] = Report{
				SeqNo: seqno,
				Tick:  samples[d].Tick,
				Level: samples[d].Level,
			}
			oldLevel = newLevel
			emit++
			seqno++
		}
	}

	if timeoutBits&n.bits != 0 {
		// At least one watchdog fired for this notification.
		for b := uint(0); b <= maxUserGpio; b++ {
			if timeoutBits&n.bits&(1<<b) == 0 {
				continue
			}
			newLevel := reportedLevel
			if len(samples) != 0 {
				newLevel = samples[len(samples)-1].Level
			}
			e.report[emit] = Report{
				SeqNo: seqno,
				Flags: NotifyFlagsWatchdog | notifyFlagsBit(b),
				Tick:  tick,
				Level: newLevel,
			}
			emit++
			seqno++
		}
	}

	if emit != 0 {
		e.emitReports(n, e.report[:emit])
		n.seqno = seqno
	}
}
