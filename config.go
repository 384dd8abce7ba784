// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

// ClockPeripheral selects which peripheral paces the sampling DMA.
//
// The peripheral that is not selected is reserved as the time base of output
// waveforms so the two DMA streams never contend for one FIFO.
type ClockPeripheral int

const (
	ClockPWM ClockPeripheral = 0
	ClockPCM ClockPeripheral = 1
)

// ClockSource selects the clock generator source.
type ClockSource int

const (
	ClockOSC  ClockSource = 0 // 19.2 MHz crystal
	ClockPLLD ClockSource = 1 // 500 MHz PLL
)

// Interface flags understood by the daemon front ends. The engine only
// validates and stores them.
const (
	DisableFifoInterface   = 1
	DisableSocketInterface = 2
)

// Config carries the settings consumed by New.
//
// A Config is only read at initialisation; mutating it afterwards has no
// effect on a running engine.
type Config struct {
	// BufferMillis determines how many milliseconds of samples the input ring
	// retains, which bounds how far the alert loop may fall behind without
	// losing edges. 100-10000, default 120.
	BufferMillis uint
	// ClockMicros is the sampling tick in µs: 1, 2, 4, 5, 8 or 10. Default 5.
	ClockMicros uint
	// ClockPeriph paces the sampling DMA. Default ClockPCM.
	ClockPeriph ClockPeripheral
	// ClockSrc drives the pacing peripheral. Default ClockPLLD.
	ClockSrc ClockSource
	// PrimaryChannel is the DMA channel of the input ring, 0-14. Default 14.
	PrimaryChannel uint
	// SecondaryChannel is the DMA channel of output waveforms, 0-14 and
	// different from PrimaryChannel. Default 5.
	SecondaryChannel uint
	// SocketPort is stored for the socket front end. Default 8888.
	SocketPort uint
	// InterfaceFlags disables the fifo and/or socket front ends.
	InterfaceFlags uint
	// PermissionMask is the 64 bit mask of user writable GPIOs, set through
	// SetPermissions. Unless SetPermissions was called, this field is ignored
	// and the mask is derived from the board revision at initialisation.
	PermissionMask uint64
	// Debug is the logging verbosity, 0 is silent.
	Debug int

	permissionSet bool
}

// DefaultConfig returns the settings the daemon historically shipped with.
func DefaultConfig() *Config {
	return &Config{
		BufferMillis:     defaultBufferMillis,
		ClockMicros:      defaultClockMicros,
		ClockPeriph:      ClockPCM,
		ClockSrc:         ClockPLLD,
		PrimaryChannel:   defaultPrimaryChannel,
		SecondaryChannel: defaultSecondaryChannel,
		SocketPort:       defaultSocketPort,
	}
}

const (
	defaultBufferMillis     = 120
	defaultClockMicros      = 5
	defaultPrimaryChannel   = 14
	defaultSecondaryChannel = 5
	defaultSocketPort       = 8888

	minBufferMillis = 100
	maxBufferMillis = 10000
	minSocketPort   = 1024
	maxSocketPort   = 32000
	maxDMAChannel   = 14
)

// SetBufferSize configures the sample buffer length in milliseconds.
func (c *Config) SetBufferSize(millis uint) error {
	if millis < minBufferMillis || millis > maxBufferMillis {
		return ErrBadBufferMs
	}
	c.BufferMillis = millis
	return nil
}

// SetClock configures the sampling tick, the pacing peripheral and its clock
// source.
//
// The supported ticks are the ones the divisor table is tabulated for; any
// other value is rejected.
func (c *Config) SetClock(micros uint, peripheral ClockPeripheral, src ClockSource) error {
	if micros < 1 || micros > 10 || !clkCfg[micros].valid {
		return ErrBadClkMicros
	}
	if peripheral != ClockPWM && peripheral != ClockPCM {
		return ErrBadClkPeripheral
	}
	if src != ClockOSC && src != ClockPLLD {
		return ErrBadClkSource
	}
	c.ClockMicros = micros
	c.ClockPeriph = peripheral
	c.ClockSrc = src
	return nil
}

// SetDMAChannels configures the two DMA channels the engine owns.
func (c *Config) SetDMAChannels(primary, secondary uint) error {
	if primary > maxDMAChannel {
		return ErrBadChannel
	}
	if secondary > maxDMAChannel || secondary == primary {
		return ErrBadSecoChannel
	}
	c.PrimaryChannel = primary
	c.SecondaryChannel = secondary
	return nil
}

// SetPermissions configures the mask of user writable GPIOs.
func (c *Config) SetPermissions(mask uint64) error {
	c.PermissionMask = mask
	c.permissionSet = true
	return nil
}

// SetInterfaces configures which daemon front ends are disabled.
func (c *Config) SetInterfaces(flags uint) error {
	if flags > DisableFifoInterface|DisableSocketInterface {
		return ErrBadIfFlags
	}
	c.InterfaceFlags = flags
	return nil
}

// SetSocketPort configures the port stored for the socket front end.
func (c *Config) SetSocketPort(port uint) error {
	if port < minSocketPort || port > maxSocketPort {
		return ErrBadSocketPort
	}
	c.SocketPort = port
	return nil
}

func (c *Config) validate() error {
	if c.BufferMillis < minBufferMillis || c.BufferMillis > maxBufferMillis {
		return ErrBadBufferMs
	}
	if c.ClockMicros < 1 || c.ClockMicros > 10 || !clkCfg[c.ClockMicros].valid {
		return ErrBadClkMicros
	}
	if c.ClockPeriph != ClockPWM && c.ClockPeriph != ClockPCM {
		return ErrBadClkPeripheral
	}
	if c.ClockSrc != ClockOSC && c.ClockSrc != ClockPLLD {
		return ErrBadClkSource
	}
	if c.PrimaryChannel > maxDMAChannel {
		return ErrBadChannel
	}
	if c.SecondaryChannel > maxDMAChannel || c.SecondaryChannel == c.PrimaryChannel {
		return ErrBadSecoChannel
	}
	if c.SocketPort < minSocketPort || c.SocketPort > maxSocketPort {
		return ErrBadSocketPort
	}
	if c.InterfaceFlags > DisableFifoInterface|DisableSocketInterface {
		return ErrBadIfFlags
	}
	return nil
}
