// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

// What a user gpio is currently driven as.
const (
	gpioUndefined = iota
	gpioInput
	gpioOutput
	gpioPWM
	gpioServo
	gpioAlternate
)

// gpioInfo is the per-gpio PWM/servo bookkeeping.
type gpioInfo struct {
	is      uint8
	width   uint16 // current dutycycle or servo pulsewidth
	rng     uint16 // duty cycles specified by 0 .. rng
	freqIdx uint16
}

// PWM limits.
const (
	MinDutycycleRange  = 25
	MaxDutycycleRange  = 40000
	ServoOff           = 0
	MinServoPulsewidth = 500
	MaxServoPulsewidth = 2500

	defaultDutycycleRange = 255
)

const pwmFreqs = 18

// pwmCycles[i] is the on-slot spacing in cycles, pwmRealRange[i] the off-slot
// spacing in level slots, of frequency index i. Both divide the scheduling
// super-cycle evenly so every index tiles the 20 ms window exactly.
var pwmCycles = [pwmFreqs]uint16{
	1, 2, 4, 5, 8, 10, 16, 20, 25,
	32, 40, 50, 80, 100, 160, 200, 400, 800,
}

var pwmRealRange = [pwmFreqs]uint16{
	25, 50, 100, 125, 200, 250, 400, 500, 625,
	800, 1000, 1250, 2000, 2500, 4000, 5000, 10000, 20000,
}

// initPwmFreqs tabulates the usable PWM frequencies for the configured tick.
func (e *Engine) initPwmFreqs() {
	for i := 0; i < pwmFreqs; i++ {
		e.pwmFreq[i] = int(1000000.0/(float64(pulsesPerCycle)*float64(e.cfg.ClockMicros)*float64(pwmCycles[i])) + 0.5)
	}
}

// setPwm reschedules the gpio's off slots in the input ring from oldOff to
// newOff level positions, and its on slots when starting or stopping.
//
// The input ring applies the masks on every traversal, so the edit takes
// effect within one buffer length.
func (e *Engine) setPwm(gpio uint, oldVal, newVal int) {
	realRange := int(pwmRealRange[e.gpioInfo[gpio].freqIdx])
	cycles := int(pwmCycles[e.gpioInfo[gpio].freqIdx])

	newOff := newVal * realRange / int(e.gpioInfo[gpio].rng)
	oldOff := oldVal * realRange / int(e.gpioInfo[gpio].rng)
	e.schedule(gpio, oldOff, newOff, realRange, cycles)
}

// setServo is setPwm with the pulsewidth scaled over the 20 ms servo period.
func (e *Engine) setServo(gpio uint, oldVal, newVal int) {
	realRange := int(pwmRealRange[e.gpioInfo[gpio].freqIdx])
	cycles := int(pwmCycles[e.gpioInfo[gpio].freqIdx])

	newOff := newVal * realRange / 20000
	oldOff := oldVal * realRange / 20000
	e.schedule(gpio, oldOff, newOff, realRange, cycles)
}

func (e *Engine) schedule(gpio uint, oldOff, newOff, realRange, cycles int) {
	if newOff == oldOff {
		return
	}
	switch {
	case newOff != 0 && oldOff != 0: // change
		for i := 0; i < superLevel; i += realRange {
			e.pool.setGpioOff(gpio, i+newOff)
		}
		for i := 0; i < superLevel; i += realRange {
			e.pool.clearGpioOff(gpio, i+oldOff)
		}
	case newOff != 0: // start
		for i := 0; i < superLevel; i += realRange {
			e.pool.setGpioOff(gpio, i+newOff)
		}
		// Schedule the gpio on.
		for i := 0; i < superCycle; i += cycles {
			e.pool.setGpioOn(gpio, i)
		}
	default: // stop
		// Deschedule the gpio on.
		for i := 0; i < superCycle; i += cycles {
			e.pool.clearGpioOn(gpio, i)
		}
		for i := 0; i < superLevel; i += realRange {
			e.pool.clearGpioOff(gpio, i+oldOff)
		}
		// The ring may have sampled the on mask before the edit; drive the pin
		// low, twice, to flush.
		e.gpioReg.OutputClear[0] = 1 << gpio
		e.gpioReg.OutputClear[0] = 1 << gpio
	}
}

// SetPWMDutycycle starts or adjusts PWM on the gpio.
//
// A dutycycle of 0 drives the pin fully low, a dutycycle equal to the range
// fully high.
func (e *Engine) SetPWMDutycycle(gpio uint, dutycycle uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	if gpio > maxUserGpio {
		return ErrBadUserGpio
	}
	if !e.permitted(gpio) {
		return ErrNotPermitted
	}
	gi := &e.gpioInfo[gpio]
	if dutycycle > uint(gi.rng) {
		return ErrBadDutycycle
	}
	if gi.is != gpioPWM {
		switch gi.is {
		case gpioUndefined:
			e.setModeLocked(gpio, ModeOutput)
		case gpioServo:
			// Switch servo off.
			e.setServo(gpio, int(gi.width), 0)
			gi.width = 0
			gi.freqIdx = defaultPwmIdx
		}
		gi.is = gpioPWM
	}
	e.setPwm(gpio, int(gi.width), int(dutycycle))
	gi.width = uint16(dutycycle)
	return nil
}

// GetPWMDutycycle returns the current dutycycle of the gpio.
func (e *Engine) GetPWMDutycycle(gpio uint) (int, error) {
	return e.gpioInfoStat(gpio, func(gi *gpioInfo) int { return int(gi.width) })
}

// SetPWMRange sets the dutycycle range of the gpio and returns the real
// underlying range for the gpio's frequency.
func (e *Engine) SetPWMRange(gpio uint, rng uint) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	if gpio > maxUserGpio {
		return 0, ErrBadUserGpio
	}
	if rng < MinDutycycleRange || rng > MaxDutycycleRange {
		return 0, ErrBadDutyRange
	}
	gi := &e.gpioInfo[gpio]
	if oldWidth := int(gi.width); oldWidth != 0 && gi.is == gpioPWM {
		newWidth := int(rng) * oldWidth / int(gi.rng)
		e.setPwm(gpio, oldWidth, 0)
		gi.rng = uint16(rng)
		gi.width = uint16(newWidth)
		e.setPwm(gpio, 0, newWidth)
	}
	gi.rng = uint16(rng)
	return int(pwmRealRange[gi.freqIdx]), nil
}

// GetPWMRange returns the dutycycle range of the gpio.
func (e *Engine) GetPWMRange(gpio uint) (int, error) {
	return e.gpioInfoStat(gpio, func(gi *gpioInfo) int { return int(gi.rng) })
}

// GetPWMRealRange returns the real underlying range of the gpio's frequency.
func (e *Engine) GetPWMRealRange(gpio uint) (int, error) {
	return e.gpioInfoStat(gpio, func(gi *gpioInfo) int { return int(pwmRealRange[gi.freqIdx]) })
}

// SetPWMFrequency selects the tabulated frequency closest to the requested
// one and returns it.
func (e *Engine) SetPWMFrequency(gpio uint, frequency int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	if gpio > maxUserGpio {
		return 0, ErrBadUserGpio
	}
	idx := e.pwmFreqIndex(frequency)
	gi := &e.gpioInfo[gpio]
	if width := int(gi.width); width != 0 && gi.is == gpioPWM {
		e.setPwm(gpio, width, 0)
		gi.freqIdx = idx
		e.setPwm(gpio, 0, width)
	}
	gi.freqIdx = idx
	return e.pwmFreq[idx], nil
}

func (e *Engine) pwmFreqIndex(frequency int) uint16 {
	if frequency > e.pwmFreq[0] {
		return 0
	}
	if frequency < e.pwmFreq[pwmFreqs-1] {
		return pwmFreqs - 1
	}
	best := 100000 // impossibly high frequency difference
	idx := 0
	for i := 0; i < pwmFreqs; i++ {
		diff := frequency - e.pwmFreq[i]
		if diff < 0 {
			diff = -diff
		}
		if diff < best {
			best = diff
			idx = i
		}
	}
	return uint16(idx)
}

// GetPWMFrequency returns the gpio's tabulated frequency.
func (e *Engine) GetPWMFrequency(gpio uint) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	if gpio > maxUserGpio {
		return 0, ErrBadUserGpio
	}
	return e.pwmFreq[e.gpioInfo[gpio].freqIdx], nil
}

// SetServo starts or adjusts servo pulses on the gpio.
//
// pulsewidth is in µs, 500 to 2500, or 0 to switch the pulses off. The first
// non-zero pulsewidth after an off returns the gpio to servo duty.
func (e *Engine) SetServo(gpio uint, pulsewidth uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	if gpio > maxUserGpio {
		return ErrBadUserGpio
	}
	if !e.permitted(gpio) {
		return ErrNotPermitted
	}
	if pulsewidth != ServoOff && (pulsewidth < MinServoPulsewidth || pulsewidth > MaxServoPulsewidth) {
		return ErrBadPulsewidth
	}
	gi := &e.gpioInfo[gpio]
	if gi.is != gpioServo {
		switch gi.is {
		case gpioUndefined:
			e.setModeLocked(gpio, ModeOutput)
		case gpioPWM:
			// Switch pwm off.
			e.setPwm(gpio, int(gi.width), 0)
			gi.width = 0
		}
		gi.is = gpioServo
		gi.freqIdx = clkCfg[e.cfg.ClockMicros].servoIdx
	}
	e.setServo(gpio, int(gi.width), int(pulsewidth))
	gi.width = uint16(pulsewidth)
	return nil
}

// GetServoPulsewidth returns the current servo pulsewidth of the gpio.
func (e *Engine) GetServoPulsewidth(gpio uint) (int, error) {
	return e.gpioInfoStat(gpio, func(gi *gpioInfo) int { return int(gi.width) })
}

func (e *Engine) gpioInfoStat(gpio uint, f func(*gpioInfo) int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	if gpio > maxUserGpio {
		return 0, ErrBadUserGpio
	}
	return f(&e.gpioInfo[gpio]), nil
}
