// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

// Pulse is one step of a waveform: the gpios to raise, the gpios to lower
// and the delay in µs before the next pulse.
//
// A gpio may appear in both masks; the set and clear registers are distinct
// so this means "high for one tick, then low".
type Pulse struct {
	GpioOn  uint32
	GpioOff uint32
	UsDelay uint32
}

// Waveform limits.
const (
	WaveMaxPulses = waveBlocks * 3000
	WaveMaxChars  = waveBlocks * 256
	WaveMinBaud   = 100
	WaveMaxBaud   = 250000
	WaveMaxMicros = 30 * 60 * 1000000 // half an hour
)

// WaveStats carries the current, high water and maximum sizes of staged
// waveforms.
type WaveStats struct {
	Micros, HighMicros, MaxMicros uint32
	Pulses, HighPulses, MaxPulses int
	Cbs, HighCbs, MaxCbs          int
}

// WaveClear discards the staged waveform and every created waveform, and
// zeroes the current waveform statistics; the high water marks are kept.
func (e *Engine) WaveClear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	e.wfc[0] = 0
	e.wfc[1] = 0
	e.wfc[2] = 0
	e.wfCur = 0
	e.wfStats.Micros = 0
	e.wfStats.Pulses = 0
	e.wfStats.Cbs = 0
	e.waves = e.waves[:0]
	e.cbHigh = 0
	e.oolHigh = 0
	return nil
}

// WaveAddGeneric merges the pulses into the waveform under construction in
// tick sorted order and returns the new pulse count.
//
// Pulses due at the same instant are folded into one pulse whose masks are
// the union of the inputs; a pulse landing between two staged instants
// extends the predecessor's delay.
func (e *Engine) WaveAddGeneric(pulses []Pulse) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	if len(pulses) > WaveMaxPulses {
		return 0, ErrTooManyPulses
	}
	return e.waveMerge(pulses)
}

// waveMerge merges in1 with the current buffer into the other buffer and
// flips the current buffer index.
func (e *Engine) waveMerge(in1 []Pulse) (int, error) {
	in2 := e.wf[e.wfCur][:e.wfc[e.wfCur]]
	out := e.wf[1-e.wfCur][:0]

	var cbs int
	var tNow int64
	tNext1 := int64(-1)
	tNext2 := int64(-1)
	if len(in1) != 0 {
		tNext1 = 0
	}
	if len(in2) != 0 {
		tNext2 = 0
	}
	// Unsigned ordering with -1 as "no more pulses".
	before := func(a, b int64) bool {
		return uint64(a) < uint64(b)
	}

	inPos1, inPos2 := 0, 0
	for (inPos1 < len(in1) || inPos2 < len(in2)) && len(out) < WaveMaxPulses {
		var p Pulse
		switch {
		case before(tNext1, tNext2):
			// Pulse 1 due.
			if tNow < tNext1 {
				// Extend previous delay.
				out[len(out)-1].UsDelay += uint32(tNext1 - tNow)
				tNow = tNext1
			}
			p.GpioOn = in1[inPos1].GpioOn
			p.GpioOff = in1[inPos1].GpioOff
			tNext1 = tNow + int64(in1[inPos1].UsDelay)
			inPos1++
		case before(tNext2, tNext1):
			// Pulse 2 due.
			if tNow < tNext2 {
				out[len(out)-1].UsDelay += uint32(tNext2 - tNow)
				tNow = tNext2
			}
			p.GpioOn = in2[inPos2].GpioOn
			p.GpioOff = in2[inPos2].GpioOff
			tNext2 = tNow + int64(in2[inPos2].UsDelay)
			inPos2++
		default:
			// Pulse 1 and 2 both due.
			if tNow < tNext1 {
				out[len(out)-1].UsDelay += uint32(tNext1 - tNow)
				tNow = tNext1
			}
			p.GpioOn = in1[inPos1].GpioOn | in2[inPos2].GpioOn
			p.GpioOff = in1[inPos1].GpioOff | in2[inPos2].GpioOff
			tNext1 = tNow + int64(in1[inPos1].UsDelay)
			inPos1++
			tNext2 = tNow + int64(in2[inPos2].UsDelay)
			inPos2++
		}

		if !before(tNext2, tNext1) {
			p.UsDelay = uint32(tNext1 - tNow)
			tNow = tNext1
		} else {
			p.UsDelay = uint32(tNext2 - tNow)
			tNow = tNext2
		}
		out = append(out, p)

		cbs++ // one cb for delay
		if p.GpioOn != 0 {
			cbs++
		}
		if p.GpioOff != 0 {
			cbs++
		}

		if inPos1 >= len(in1) {
			tNext1 = -1
		}
		if inPos2 >= len(in2) {
			tNext2 = -1
		}
	}

	if len(out) >= WaveMaxPulses {
		return 0, ErrTooManyPulses
	}

	e.wfStats.Micros = uint32(tNow)
	if e.wfStats.Micros > e.wfStats.HighMicros {
		e.wfStats.HighMicros = e.wfStats.Micros
	}
	e.wfStats.Pulses = len(out)
	if len(out) > e.wfStats.HighPulses {
		e.wfStats.HighPulses = len(out)
	}
	e.wfStats.Cbs = cbs
	if cbs > e.wfStats.HighCbs {
		e.wfStats.HighCbs = cbs
	}

	e.wfc[1-e.wfCur] = len(out)
	e.wfCur = 1 - e.wfCur
	return len(out), nil
}

// waveBitDelay precomputes the duration of the start bit, the 8 data bits
// and the stop bit at the specified baud rate, in µs.
//
// Durations are quantised to 2 µs steps. A data bit is lengthened by one
// step when its end would fall less than a third of a bit after its
// midpoint, and the stop bit ends the frame at ten bit times rounded to a
// step. The drift of the bit boundaries is not held below one step: at 4800
// baud they fall up to about 3 µs early by the end of the ninth bit.
func waveBitDelay(baud uint32, bitDelay *[10]uint32) {
	fullBit := 100000000 / baud
	halfBit := 50000000 / baud
	d := (fullBit / 200) * 200
	s := uint32(0)
	e := d
	bitDelay[0] = d / 100
	err := d / 3
	for i := uint32(0); i < 8; i++ {
		s = e
		m := halfBit + (i+1)*fullBit
		e = s + d
		if e-m < err {
			e += 200
		}
		bitDelay[i+1] = (e - s) / 100
	}
	s = e
	e = ((1000000000/baud + 100) / 200) * 200
	bitDelay[9] = (e - s) / 100
}

// WaveAddSerial synthesizes 8-N-1 framing of data on the gpio at the baud
// rate and merges it into the waveform under construction, offset µs after
// the waveform's start.
//
// It returns the new pulse count; adding no bytes adds no pulses and
// returns 0.
func (e *Engine) WaveAddSerial(gpio uint, baud uint32, offset uint32, data []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	if gpio > maxUserGpio {
		return 0, ErrBadUserGpio
	}
	if baud < WaveMinBaud || baud > WaveMaxBaud {
		return 0, ErrBadWaveBaud
	}
	if len(data) > WaveMaxChars {
		return 0, ErrTooManyChars
	}
	if offset > WaveMaxMicros {
		return 0, ErrBadSerialOffset
	}
	if len(data) == 0 {
		return 0, nil
	}

	var bitDelay [10]uint32
	waveBitDelay(baud, &bitDelay)

	buf := e.wf[2][:0]

	// Idle high until the first start bit.
	lead := bitDelay[0]
	if offset > lead {
		lead = offset
	}
	buf = append(buf, Pulse{GpioOn: 1 << gpio, UsDelay: lead})

	for _, c := range data {
		// Start bit.
		buf = append(buf, Pulse{GpioOff: 1 << gpio, UsDelay: bitDelay[0]})
		lev := uint32(0)
		for b := 0; b < 8; b++ {
			v := uint32(c>>uint(b)) & 1
			if v == lev {
				// Same level, extend the previous pulse.
				buf[len(buf)-1].UsDelay += bitDelay[b+1]
			} else {
				lev = v
				if lev != 0 {
					buf = append(buf, Pulse{GpioOn: 1 << gpio, UsDelay: bitDelay[b+1]})
				} else {
					buf = append(buf, Pulse{GpioOff: 1 << gpio, UsDelay: bitDelay[b+1]})
				}
			}
		}
		// Stop bit.
		if lev != 0 {
			buf[len(buf)-1].UsDelay += bitDelay[9]
		} else {
			buf = append(buf, Pulse{GpioOn: 1 << gpio, UsDelay: bitDelay[9]})
		}
	}
	// Trailing idle.
	buf = append(buf, Pulse{GpioOn: 1 << gpio, UsDelay: bitDelay[0]})

	e.wfc[2] = len(buf)
	return e.waveMerge(buf)
}

// WaveCreate compiles the waveform under construction into the output pages,
// returns its stable id and clears the construction buffer.
func (e *Engine) WaveCreate() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	n := e.wfc[e.wfCur]
	if n == 0 {
		return 0, ErrEmptyWaveform
	}
	seg, err := e.wave2Cbs(e.wf[e.wfCur][:n])
	if err != nil {
		return 0, err
	}
	e.cbHigh = seg.cbStart + seg.cbCount
	e.oolHigh = seg.oolStart + seg.oolCount
	e.waves = append(e.waves, seg)

	e.wfc[0] = 0
	e.wfc[1] = 0
	e.wfCur = 0
	e.wfStats.Micros = 0
	e.wfStats.Pulses = 0
	e.wfStats.Cbs = 0
	return len(e.waves) - 1, nil
}

// WaveDelete deletes the waveform and every waveform created after it,
// releasing their output pages.
func (e *Engine) WaveDelete(waveID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	if waveID < 0 || waveID >= len(e.waves) {
		return ErrBadWaveID
	}
	seg := e.waves[waveID]
	e.waves = e.waves[:waveID]
	e.cbHigh = seg.cbStart
	e.oolHigh = seg.oolStart
	return nil
}

// Waveform statistics accessors.

func (e *Engine) WaveGetMicros() (int, error)     { return e.waveStat(func(s *WaveStats) int { return int(s.Micros) }) }
func (e *Engine) WaveGetHighMicros() (int, error) { return e.waveStat(func(s *WaveStats) int { return int(s.HighMicros) }) }
func (e *Engine) WaveGetMaxMicros() (int, error)  { return e.waveStat(func(s *WaveStats) int { return int(s.MaxMicros) }) }
func (e *Engine) WaveGetPulses() (int, error)     { return e.waveStat(func(s *WaveStats) int { return s.Pulses }) }
func (e *Engine) WaveGetHighPulses() (int, error) { return e.waveStat(func(s *WaveStats) int { return s.HighPulses }) }
func (e *Engine) WaveGetMaxPulses() (int, error)  { return e.waveStat(func(s *WaveStats) int { return s.MaxPulses }) }
func (e *Engine) WaveGetCbs() (int, error)        { return e.waveStat(func(s *WaveStats) int { return s.Cbs }) }
func (e *Engine) WaveGetHighCbs() (int, error)    { return e.waveStat(func(s *WaveStats) int { return s.HighCbs }) }
func (e *Engine) WaveGetMaxCbs() (int, error)     { return e.waveStat(func(s *WaveStats) int { return s.MaxCbs }) }

func (e *Engine) waveStat(f func(*WaveStats) int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	return f(&e.wfStats), nil
}
