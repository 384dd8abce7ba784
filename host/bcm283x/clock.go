// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

// ClockCtl controls the clock properties.
//
// It must not be changed while busy is set or a glitch may occur.
//
// Page 107.
type ClockCtl uint32

const (
	// 31:24 password
	ClockPasswdCtl ClockCtl = 0x5A << 24 // PASSWD
	// 23:11 reserved
	ClockMashMask ClockCtl = 3 << 9 // MASH
	ClockMash0    ClockCtl = 0 << 9 // src_freq / divI  (ignores divF)
	ClockMash1    ClockCtl = 1 << 9
	ClockMash2    ClockCtl = 2 << 9
	ClockMash3    ClockCtl = 3 << 9 // will cause higher spread
	ClockFlip     ClockCtl = 1 << 8 // FLIP
	ClockBusy     ClockCtl = 1 << 7 // BUSY
	// 6 reserved
	ClockKill          ClockCtl = 1 << 5   // KILL
	ClockEnable        ClockCtl = 1 << 4   // ENAB
	ClockSrcMask       ClockCtl = 0xF << 0 // SRC
	ClockSrcGND        ClockCtl = 0        // 0Hz
	ClockSrcOscillator ClockCtl = 1        // 19.2MHz
	ClockSrcTestDebug0 ClockCtl = 2        // 0Hz
	ClockSrcTestDebug1 ClockCtl = 3        // 0Hz
	ClockSrcPLLA       ClockCtl = 4        // 0Hz
	ClockSrcPLLC       ClockCtl = 5        // 1000MHz (changes with overclock settings)
	ClockSrcPLLD       ClockCtl = 6        // 500MHz
	ClockSrcHDMI       ClockCtl = 7        // 216MHz
	// 8-15 == GND.
)

// ClockDiv is a 12.12 fixed point clock divisor value.
//
// Page 108.
type ClockDiv uint32

const (
	// 31:24 password
	ClockPasswdDiv ClockDiv = 0x5A << 24 // PASSWD
	// Integer part of the divisor
	ClockDiviShift          = 12
	ClockDiviMax   ClockDiv = (1 << 12) - 1
	ClockDiviMask  ClockDiv = ClockDiviMax << ClockDiviShift // DIVI
	// Fractional part of the divisor
	ClockDivfMask ClockDiv = (1 << 12) - 1 // DIVF
)

// MakeDiv builds a divisor register value from its integer and fractional
// parts.
func MakeDiv(divi, divf uint32) ClockDiv {
	return ClockPasswdDiv | ClockDiv(divi)<<ClockDiviShift | ClockDiv(divf)
}

// Clock is one clock generator: its control and divisor registers.
type Clock struct {
	Ctl ClockCtl
	Div ClockDiv
}

// ClockMap is the layout of the clock manager block, reduced to the clocks
// used to pace DMA transfers.
//
// Pages 107-108 document the PWM clock pair; the PCM pair right before it
// shares the layout.
type ClockMap struct {
	// 0x00:0x94 GP0/GP1/GP2 and other clock generators
	reserved [38]uint32
	PCM Clock // 0x98 CM_PCMCTL, 0x9C CM_PCMDIV
	PWM Clock // 0xA0 CM_PWMCTL, 0xA4 CM_PWMDIV
}
