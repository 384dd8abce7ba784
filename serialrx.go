// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

// Bit-bang 8-N-1 serial receive, fed by the edge callback of the gpio.
//
// The decoder is clocked by the sampled edge ticks alone: each reported
// transition advances the bit position by the elapsed ticks, so consecutive
// identical bits need no edges at all. A watchdog of one byte time supplies
// the final timeout that flushes a byte ending in ones.

const serialRxBufSize = 8192

type serialRx struct {
	gpio         uint
	buf          []byte
	readPos      int
	writePos     int
	baud         uint32
	fullBit      uint32 // µs
	halfBit      uint32 // µs
	timeout      uint32 // ms, watchdog for the final bits of a byte
	startBitTick uint32
	nextBitDiff  uint32
	bit          int
	byt          int
	level        int
}

// rxBit consumes one edge (or watchdog timeout) of the receiving gpio.
// Callers hold no lock; delivery order is the engine's edge ordering
// guarantee.
func (e *Engine) rxBit(s *serialRx, level int, tick uint32) {
	if s.bit >= 0 {
		diffTicks := tick - s.startBitTick
		if level != Timeout {
			s.level = level
		}
		for s.bit < 9 && diffTicks > s.nextBitDiff {
			if s.bit != 0 {
				if s.level == 0 {
					s.byt |= 1 << uint(s.bit-1)
				}
			} else {
				s.byt = 0
			}
			s.bit++
			s.nextBitDiff += s.fullBit
		}
		if s.bit == 9 {
			s.buf[s.writePos] = byte(s.byt)
			// Don't let writePos catch readPos.
			newWritePos := s.writePos + 1
			if newWritePos >= len(s.buf) {
				newWritePos = 0
			}
			if newWritePos != s.readPos {
				s.writePos = newWritePos
			}
			if level == 0 {
				// A true high to low transition, not a timeout: the next start
				// bit is already here.
				s.bit = 0
				s.startBitTick = tick
				s.nextBitDiff = s.halfBit
			} else {
				s.bit = -1
				_ = e.SetWatchdog(s.gpio, 0)
			}
		}
	} else if level == 0 {
		// Start bit on high to low.
		_ = e.SetWatchdog(s.gpio, uint(s.timeout))
		s.level = 0
		s.bit = 0
		s.startBitTick = tick
		s.nextBitDiff = s.halfBit
	}
}

// SerialReadOpen starts a bit-bang 8-N-1 receiver on the gpio at the baud
// rate.
func (e *Engine) SerialReadOpen(gpio uint, baud uint32) error {
	e.mu.Lock()
	if !e.initialised {
		e.mu.Unlock()
		return ErrNotInitialised
	}
	if gpio > maxUserGpio {
		e.mu.Unlock()
		return ErrBadUserGpio
	}
	if baud < WaveMinBaud || baud > WaveMaxBaud {
		e.mu.Unlock()
		return ErrBadWaveBaud
	}
	if e.wfRx[gpio] != nil {
		e.mu.Unlock()
		return ErrGpioInUse
	}

	bitTime := 1000000 / baud
	timeout := 10 * bitTime / 1000
	if timeout < 1 {
		timeout = 1
	}
	s := &serialRx{
		gpio:    gpio,
		buf:     make([]byte, serialRxBufSize),
		baud:    baud,
		timeout: timeout,
		fullBit: bitTime,
		halfBit: bitTime / 2,
		bit:     -1,
	}
	e.wfRx[gpio] = s
	e.mu.Unlock()

	return e.SetAlertFunc(gpio, func(gpio uint, level int, tick uint32) {
		e.rxBit(s, level, tick)
	})
}

// SerialRead drains decoded bytes into buf and returns how many were copied.
func (e *Engine) SerialRead(gpio uint, buf []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	if gpio > maxUserGpio {
		return 0, ErrBadUserGpio
	}
	if len(buf) == 0 {
		return 0, ErrBadSerialCount
	}
	s := e.wfRx[gpio]
	if s == nil {
		return 0, ErrNotSerialGpio
	}
	if s.readPos == s.writePos {
		return 0, nil
	}
	var bytes int
	if wpos := s.writePos; wpos > s.readPos {
		bytes = wpos - s.readPos
	} else {
		bytes = len(s.buf) - s.readPos
	}
	if bytes > len(buf) {
		bytes = len(buf)
	}
	copy(buf, s.buf[s.readPos:s.readPos+bytes])
	s.readPos += bytes
	if s.readPos >= len(s.buf) {
		s.readPos = 0
	}
	return bytes, nil
}

// SerialReadClose stops the receiver on the gpio.
func (e *Engine) SerialReadClose(gpio uint) error {
	e.mu.Lock()
	if !e.initialised {
		e.mu.Unlock()
		return ErrNotInitialised
	}
	if gpio > maxUserGpio {
		e.mu.Unlock()
		return ErrBadUserGpio
	}
	if e.wfRx[gpio] == nil {
		e.mu.Unlock()
		return ErrNotSerialGpio
	}
	e.wfRx[gpio] = nil
	e.mu.Unlock()

	if err := e.SetWatchdog(gpio, 0); err != nil {
		return err
	}
	return e.SetAlertFunc(gpio, nil)
}
