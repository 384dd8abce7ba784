// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import (
	"github.com/joan2937/pigpio-sub000/host/bcm283x"
)

// Mode is the function of a gpio.
type Mode uint

const (
	ModeInput  Mode = 0
	ModeOutput Mode = 1
	ModeAlt0   Mode = 4
	ModeAlt1   Mode = 5
	ModeAlt2   Mode = 6
	ModeAlt3   Mode = 7
	ModeAlt4   Mode = 3
	ModeAlt5   Mode = 2
)

// Pull is the pull resistor setting of a gpio.
type Pull uint

const (
	PullOff  Pull = 0
	PullDown Pull = 1
	PullUp   Pull = 2
)

// Levels.
const (
	Low  = 0
	High = 1
	// Timeout is the synthetic level reported to an edge callback when a
	// watchdog expires.
	Timeout = 2
)

const (
	maxUserGpio = 31
	maxGpio     = 53
	maxPulselen = 50
)

// permitted reports whether the user gpio may be written.
func (e *Engine) permitted(gpio uint) bool {
	return e.permMask&(1<<gpio) != 0
}

// SetMode sets the gpio function.
//
// Setting a user gpio driven by PWM or servo pulses to anything but output
// first stops the pulses.
func (e *Engine) SetMode(gpio uint, mode Mode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	if gpio > maxGpio {
		return ErrBadGpio
	}
	if mode > 7 {
		return ErrBadMode
	}
	e.setModeLocked(gpio, mode)
	return nil
}

func (e *Engine) setModeLocked(gpio uint, mode Mode) {
	if gpio <= maxUserGpio && mode != ModeOutput {
		gi := &e.gpioInfo[gpio]
		switch gi.is {
		case gpioServo:
			// Switch servo off.
			e.setServo(gpio, int(gi.width), 0)
		case gpioPWM:
			// Switch pwm off.
			e.setPwm(gpio, int(gi.width), 0)
		}
		gi.is = gpioUndefined
		gi.width = 0
	}
	e.gpioReg.SetFunction(int(gpio), bcm283x.Function(mode))
}

// GetMode returns the gpio function.
func (e *Engine) GetMode(gpio uint) (Mode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	if gpio > maxGpio {
		return 0, ErrBadGpio
	}
	return Mode(e.gpioReg.FunctionOf(int(gpio))), nil
}

// SetPullUpDown sets the gpio pull resistor.
//
// The setting survives the processor shutting down; it cannot be read back.
func (e *Engine) SetPullUpDown(gpio uint, pud Pull) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	if gpio > maxGpio {
		return ErrBadGpio
	}
	if pud > PullUp {
		return ErrBadPud
	}
	// The pull change dance of datasheet page 101: latch the wanted state,
	// wait 150 cycles, clock it into the pin, wait, release both.
	e.gpioReg.PullEnable = uint32(pud)
	e.gpioReg.Sleep150Cycles()
	e.gpioReg.PullEnableClock[gpio/32] = 1 << (gpio % 32)
	e.gpioReg.Sleep150Cycles()
	e.gpioReg.PullEnable = 0
	e.gpioReg.PullEnableClock[gpio/32] = 0
	return nil
}

// Read returns the gpio level.
//
// It works even if the pin is set as output.
func (e *Engine) Read(gpio uint) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	if gpio > maxGpio {
		return 0, ErrBadGpio
	}
	if e.gpioReg.Level[gpio/32]&(1<<(gpio%32)) != 0 {
		return High, nil
	}
	return Low, nil
}

// Write sets the gpio level.
//
// A user gpio driven by PWM or servo pulses is first released from them; an
// undefined gpio is switched to output.
func (e *Engine) Write(gpio uint, level int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	if gpio > maxGpio {
		return ErrBadGpio
	}
	if level != Low && level != High {
		return ErrBadLevel
	}
	if gpio <= maxUserGpio {
		if !e.permitted(gpio) {
			return ErrNotPermitted
		}
		gi := &e.gpioInfo[gpio]
		if gi.is != gpioOutput {
			switch gi.is {
			case gpioUndefined:
				e.setModeLocked(gpio, ModeOutput)
			case gpioPWM:
				e.setPwm(gpio, int(gi.width), 0)
			case gpioServo:
				e.setServo(gpio, int(gi.width), 0)
			}
			gi.is = gpioOutput
			gi.width = 0
		}
	}
	e.writeLevel(gpio, level)
	return nil
}

func (e *Engine) writeLevel(gpio uint, level int) {
	if level == Low {
		e.gpioReg.OutputClear[gpio/32] = 1 << (gpio % 32)
	} else {
		e.gpioReg.OutputSet[gpio/32] = 1 << (gpio % 32)
	}
}

// Trigger emits a synchronous pulse of pulseLen µs at level on the gpio,
// then restores the opposite level.
func (e *Engine) Trigger(gpio uint, pulseLen uint, level int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	if gpio > maxUserGpio {
		return ErrBadUserGpio
	}
	if level != Low && level != High {
		return ErrBadLevel
	}
	if pulseLen > maxPulselen {
		return ErrBadPulselen
	}
	if !e.permitted(gpio) {
		return ErrNotPermitted
	}
	e.writeLevel(gpio, level)
	e.delayMicros(uint32(pulseLen))
	e.writeLevel(gpio, 1-level)
	return nil
}

// ReadBits0to31 returns the levels of bank 1 (gpio 0-31) in one read.
func (e *Engine) ReadBits0to31() (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	return e.gpioReg.Level[0], nil
}

// ReadBits32to53 returns the levels of bank 2 (gpio 32-53) in one read.
func (e *Engine) ReadBits32to53() (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	return e.gpioReg.Level[1], nil
}

// SetBits0to31 raises every gpio of bank 1 present in bits.
//
// Bits outside the permission mask are skipped; when any were skipped the
// permitted subset is still applied and SomePermitted returned.
func (e *Engine) SetBits0to31(bits uint32) error {
	return e.bankWrite(bits, 0, true)
}

// ClearBits0to31 lowers every gpio of bank 1 present in bits.
func (e *Engine) ClearBits0to31(bits uint32) error {
	return e.bankWrite(bits, 0, false)
}

// SetBits32to53 raises every gpio of bank 2 present in bits.
func (e *Engine) SetBits32to53(bits uint32) error {
	return e.bankWrite(bits, 1, true)
}

// ClearBits32to53 lowers every gpio of bank 2 present in bits.
func (e *Engine) ClearBits32to53(bits uint32) error {
	return e.bankWrite(bits, 1, false)
}

func (e *Engine) bankWrite(bits uint32, bank uint, set bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	allowed := uint32(e.permMask >> (bank * 32))
	masked := bits & allowed
	if set {
		e.gpioReg.OutputSet[bank] = masked
	} else {
		e.gpioReg.OutputClear[bank] = masked
	}
	if masked != bits {
		return ErrSomePermitted
	}
	return nil
}
