// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

// SysTimerMap is the layout of the free-running 1 MHz system timer.
//
// The 64 bit counter is split over two registers; the low half is the system
// tick used throughout as the µs time base.
//
// Pages 172-173.
type SysTimerMap struct {
	CS  uint32    // 0x00 control/status; M3:M0 match bits
	CLo uint32    // 0x04 counter low 32 bits
	CHi uint32    // 0x08 counter high 32 bits
	C   [4]uint32 // 0x0C-0x18 compare registers
}

const (
	// 31:4 reserved
	TimerM3 = 1 << 3 // M3
	TimerM2 = 1 << 2 // M2
	TimerM1 = 1 << 1 // M1
	TimerM0 = 1 << 0 // M0
)

// SysTimerCLoOffset is the byte offset of the counter low register, the
// source of DMA tick captures.
const SysTimerCLoOffset uint32 = 0x04
