// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

// Function specifies the active functionality of a pin.
//
// Each pin can have one of 8 functions; the alternative function mapping is
// pin dependent.
type Function uint8

const (
	In   Function = 0
	Out  Function = 1
	Alt0 Function = 4
	Alt1 Function = 5
	Alt2 Function = 6
	Alt3 Function = 7
	Alt4 Function = 3
	Alt5 Function = 2
)

// GPIOMap is the layout of the GPIO registers.
//
// Mapping as
// https://www.raspberrypi.org/wp-content/uploads/2012/02/BCM2835-ARM-Peripherals.pdf
// pages 90-91.
type GPIOMap struct {
	// 0x00    RW   GPIO Function Select 0 (GPIO0-9)
	// 0x04    RW   GPIO Function Select 1 (GPIO10-19)
	// 0x08    RW   GPIO Function Select 2 (GPIO20-29)
	// 0x0C    RW   GPIO Function Select 3 (GPIO30-39)
	// 0x10    RW   GPIO Function Select 4 (GPIO40-49)
	// 0x14    RW   GPIO Function Select 5 (GPIO50-53)
	FunctionSelect [6]uint32
	// 0x18    -    Reserved
	dummy0 uint32
	// 0x1C    W    GPIO Pin Output Set 0 (GPIO0-31)
	// 0x20    W    GPIO Pin Output Set 1 (GPIO32-53)
	OutputSet [2]uint32
	// 0x24    -    Reserved
	dummy1 uint32
	// 0x28    W    GPIO Pin Output Clear 0 (GPIO0-31)
	// 0x2C    W    GPIO Pin Output Clear 1 (GPIO32-53)
	OutputClear [2]uint32
	// 0x30    -    Reserved
	dummy2 uint32
	// 0x34    R    GPIO Pin Level 0 (GPIO0-31)
	// 0x38    R    GPIO Pin Level 1 (GPIO32-53)
	Level [2]uint32
	// 0x3C    -    Reserved
	dummy3 uint32
	// 0x40    RW   GPIO Pin Event Detect Status 0 (GPIO0-31)
	// 0x44    RW   GPIO Pin Event Detect Status 1 (GPIO32-53)
	EventDetectStatus [2]uint32
	// 0x48    -    Reserved
	dummy4 uint32
	// 0x4C    RW   GPIO Pin Rising Edge Detect Enable 0 (GPIO0-31)
	// 0x50    RW   GPIO Pin Rising Edge Detect Enable 1 (GPIO32-53)
	RisingEdgeDetectEnable [2]uint32
	// 0x54    -    Reserved
	dummy5 uint32
	// 0x58    RW   GPIO Pin Falling Edge Detect Enable 0 (GPIO0-31)
	// 0x5C    RW   GPIO Pin Falling Edge Detect Enable 1 (GPIO32-53)
	FallingEdgeDetectEnable [2]uint32
	// 0x60    -    Reserved
	dummy6 uint32
	// 0x64    RW   GPIO Pin High Detect Enable 0 (GPIO0-31)
	// 0x68    RW   GPIO Pin High Detect Enable 1 (GPIO32-53)
	HighDetectEnable [2]uint32
	// 0x6C    -    Reserved
	dummy7 uint32
	// 0x70    RW   GPIO Pin Low Detect Enable 0 (GPIO0-31)
	// 0x74    RW   GPIO Pin Low Detect Enable 1 (GPIO32-53)
	LowDetectEnable [2]uint32
	// 0x78    -    Reserved
	dummy8 uint32
	// 0x7C    RW   GPIO Pin Async Rising Edge Detect 0 (GPIO0-31)
	// 0x80    RW   GPIO Pin Async Rising Edge Detect 1 (GPIO32-53)
	AsyncRisingEdgeDetectEnable [2]uint32
	// 0x84    -    Reserved
	dummy9 uint32
	// 0x88    RW   GPIO Pin Async Falling Edge Detect 0 (GPIO0-31)
	// 0x8C    RW   GPIO Pin Async Falling Edge Detect 1 (GPIO32-53)
	AsyncFallingEdgeDetectEnable [2]uint32
	// 0x90    -    Reserved
	dummy10 uint32
	// 0x94    RW   GPIO Pin Pull-up/down Enable (00=Float, 01=Down, 10=Up)
	PullEnable uint32
	// 0x98    RW   GPIO Pin Pull-up/down Enable Clock 0 (GPIO0-31)
	// 0x9C    RW   GPIO Pin Pull-up/down Enable Clock 1 (GPIO32-53)
	PullEnableClock [2]uint32
	// 0xA0    -    Reserved
	dummy11 uint32
	// 0xB0    -    Test (byte)
}

// FunctionOf returns the current function of a pin.
func (g *GPIOMap) FunctionOf(pin int) Function {
	return Function((g.FunctionSelect[pin/10] >> uint((pin%10)*3)) & 7)
}

// SetFunction changes the function of a pin.
func (g *GPIOMap) SetFunction(pin int, f Function) {
	off := pin / 10
	shift := uint(pin%10) * 3
	g.FunctionSelect[off] = (g.FunctionSelect[off] &^ (7 << shift)) | (uint32(f) << shift)
}

// Offsets of the GPIO registers that are used as DMA transfer sources or
// destinations, in bytes from the start of the block.
const (
	GPSET0 uint32 = 0x1C // Output Set 0
	GPCLR0 uint32 = 0x28 // Output Clear 0
	GPLEV0 uint32 = 0x34 // Level 0
)

// Sleep150Cycles returns after 150 reads of the function select register.
//
// Changing the pull resistor requires a 150 cycles sleep as described at
// page 101. Do not call into any kernel function since this causes a high
// chance of being preempted; abuse the fact the register window is uncached
// memory instead.
//
//go:noinline
func (g *GPIOMap) Sleep150Cycles() uint32 {
	var out uint32
	for i := 0; i < 150; i++ {
		out += g.FunctionSelect[0]
	}
	return out
}
