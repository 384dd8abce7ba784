// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

// TX modes of a compiled waveform.
const (
	WaveModeOneShot = 0
	WaveModeRepeat  = 1
)

// waveSeg is one compiled waveform retained in the output pages until it is
// deleted. cbStart/oolStart are the segment's first control block and on/off
// slot; the compiled chain always starts with a settle CB that absorbs DREQ
// warmup jitter.
type waveSeg struct {
	cbStart  int
	cbCount  int
	oolStart int
	oolCount int
	micros   uint32
}

// settleMicros is the fixed warmup delay compiled ahead of every waveform.
const settleMicros = 50

// wave2Cbs compiles the staged pulse list into a control block chain in the
// output pages starting at the pool's high water marks.
//
// The final CB's next pointer is left unset; TxSend patches it for one shot
// (halt) or repeat (loop to the settle CB's successor) just before starting
// the DMA.
func (e *Engine) wave2Cbs(pulses []Pulse) (waveSeg, error) {
	seg := waveSeg{cbStart: e.cbHigh, oolStart: e.oolHigh}
	cb := e.cbHigh
	onoff := e.oolHigh
	maxCbs := e.pool.numOPages() * cbsPerOPage
	maxOol := e.pool.numOPages() * onOffPerOPage

	info, fifo := e.pacedInfo(false)
	half := uint32(wfMicros) / 2

	// Leading settle delay at the start of DMA.
	if cb >= maxCbs {
		return seg, ErrTooManyCbs
	}
	e.pool.cbO(cb).InitTransfer(info, e.pool.periphOBus(), fifo, 4*settleMicros/wfMicros, e.pool.cbOBus(cb+1))
	cb++

	for i := range pulses {
		if pulses[i].GpioOn != 0 {
			if cb >= maxCbs {
				return seg, ErrTooManyCbs
			}
			if onoff >= maxOol {
				return seg, ErrTooManyOol
			}
			e.pool.setOnOff(onoff, pulses[i].GpioOn)
			e.pool.cbO(cb).InitTransfer(normalDMA, e.pool.onOffOBus(onoff), busGPSET0, 4, e.pool.cbOBus(cb+1))
			onoff++
			cb++
		}
		if pulses[i].GpioOff != 0 {
			if cb >= maxCbs {
				return seg, ErrTooManyCbs
			}
			if onoff >= maxOol {
				return seg, ErrTooManyOol
			}
			e.pool.setOnOff(onoff, pulses[i].GpioOff)
			e.pool.cbO(cb).InitTransfer(normalDMA, e.pool.onOffOBus(onoff), busGPCLR0, 4, e.pool.cbOBus(cb+1))
			onoff++
			cb++
		}
		if pulses[i].UsDelay != 0 {
			if cb >= maxCbs {
				return seg, ErrTooManyCbs
			}
			// Delays round to the nearest half tick; a delay shorter than half a
			// tick merges into the neighbouring pulse by consuming zero words.
			words := (pulses[i].UsDelay + half) / wfMicros
			e.pool.cbO(cb).InitTransfer(info, e.pool.periphOBus(), fifo, 4*words, e.pool.cbOBus(cb+1))
			cb++
		}
		seg.micros += pulses[i].UsDelay
	}

	seg.cbCount = cb - seg.cbStart
	seg.oolCount = onoff - seg.oolStart
	return seg, nil
}

// TxSend transmits a previously created waveform, once or repeating until
// TxStop.
//
// It returns the number of control blocks of the waveform.
func (e *Engine) TxSend(waveID int, mode int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	if mode != WaveModeOneShot && mode != WaveModeRepeat {
		return 0, ErrBadWaveMode
	}
	if waveID < 0 || waveID >= len(e.waves) {
		return 0, ErrBadWaveID
	}
	seg := e.waves[waveID]

	if !e.secondaryClock {
		e.initClock(false)
		e.secondaryClock = true
	}

	last := e.pool.cbO(seg.cbStart + seg.cbCount - 1)
	if mode == WaveModeOneShot {
		last.NextCB = 0
	} else {
		last.NextCB = e.pool.cbOBus(seg.cbStart + 1)
	}

	e.dmaOut.StartTransfer(e.pool.cbOBus(seg.cbStart))
	return seg.cbCount, nil
}

// TxBusy reports whether the output DMA channel is still emitting control
// blocks.
func (e *Engine) TxBusy() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return false, ErrNotInitialised
	}
	return e.dmaOut.ConblkAd != 0, nil
}

// TxStop resets the output channel and clears the current CB register.
//
// Stopping an idle channel is a no-op.
func (e *Engine) TxStop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	e.dmaOut.Reset()
	return nil
}
