// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

// PWMControl is the PWM control register.
//
// MODEi set enables serial mode, in which data stored in either PWM_DATi or
// the FIFO is transmitted serially within the range defined by PWM_RNGi,
// MSB first. USEFi set selects the FIFO over PWM_DATi. CLRF is a single shot
// bit that clears the FIFO. SBITi defines the state of the output when no
// transmission takes place. RPTLi repeats the last FIFO word when the FIFO
// runs empty.
//
// Pages 141-143.
type PWMControl uint32

const (
	// 31:16 reserved
	PWMMsen2 PWMControl = 1 << 15 // MSEN2 if set, M/S transmission is used; else PWM algo is used
	// 14 reserved
	PWMUseFIFO2    PWMControl = 1 << 13 // USEF2 if set, fifo is used for transmission; else data register is used
	PWMPolarity2   PWMControl = 1 << 12 // POLA2
	PWMSilentBit2  PWMControl = 1 << 11 // SBIT2
	PWMRepeatLast2 PWMControl = 1 << 10 // RPTL2
	PWMSerialiser2 PWMControl = 1 << 9  // MODE2
	PWMEnable2     PWMControl = 1 << 8  // PWEN2 Enable channel 2
	PWMMsen1       PWMControl = 1 << 7  // MSEN1
	PWMClearFIFO   PWMControl = 1 << 6  // CLRF1 clear the fifo
	PWMUseFIFO1    PWMControl = 1 << 5  // USEF1
	PWMPolarity1   PWMControl = 1 << 4  // POLA1
	PWMSilentBit1  PWMControl = 1 << 3  // SBIT1
	PWMRepeatLast1 PWMControl = 1 << 2  // RPTL1
	PWMSerialiser1 PWMControl = 1 << 1  // MODE1
	PWMEnable1     PWMControl = 1 << 0  // PWEN1 Enable channel 1
)

// PWMStatus is the PWM status register.
//
// BERR sets when an error occurred while writing to registers via APB;
// GAPOi indicates a gap between two consecutive FIFO words; RERR1/WERR1 are
// FIFO read-empty/write-full errors. All are cleared by writing a 1.
//
// Pages 144-145.
type PWMStatus uint32

const (
	// 31:13 reserved
	PWMSta4     PWMStatus = 1 << 12 // STA4
	PWMSta3     PWMStatus = 1 << 11 // STA3
	PWMSta2     PWMStatus = 1 << 10 // STA2
	PWMSta1     PWMStatus = 1 << 9  // STA1
	PWMBusErr   PWMStatus = 1 << 8  // BERR Bus Error flag
	PWMGapo4    PWMStatus = 1 << 7  // GAPO4 Channel 4 Gap Occurred flag
	PWMGapo3    PWMStatus = 1 << 6  // GAPO3 Channel 3 Gap Occurred flag
	PWMGapo2    PWMStatus = 1 << 5  // GAPO2 Channel 2 Gap Occurred flag
	PWMGapo1    PWMStatus = 1 << 4  // GAPO1 Channel 1 Gap Occurred flag
	PWMRerr1    PWMStatus = 1 << 3  // RERR1
	PWMWerr1    PWMStatus = 1 << 2  // WERR1
	PWMEmpty1   PWMStatus = 1 << 1  // EMPT1
	PWMFull1    PWMStatus = 1 << 0  // FULL1
	PWMStatusAll PWMStatus = 0x1FFF
)

// PWMDMACfg is the PWM DMA configuration register.
//
// Page 145.
type PWMDMACfg uint32

const (
	PWMDMAEnable PWMDMACfg = 1 << 31 // ENAB
	// 30:16 reserved
	PWMPanicShift = 8 // PANIC Default is 7
	PWMDreqShift  = 0 // DREQ Default is 7
)

// PWMMap is the layout of the PWM block.
//
// Page 141.
type PWMMap struct {
	Ctl    PWMControl // 0x00 CTL
	Status PWMStatus  // 0x04 STA
	DMACfg PWMDMACfg  // 0x08 DMAC
	reserved0 uint32  // 0x0C
	Rng1   uint32     // 0x10 RNG1 range for channel 1
	Dat1   uint32     // 0x14 DAT1 data for channel 1
	FIFO   uint32     // 0x18 FIF1 the FIFO shared by both channels
	reserved1 uint32  // 0x1C
	Rng2   uint32     // 0x20 RNG2 range for channel 2
	Dat2   uint32     // 0x24 DAT2 data for channel 2
}

// PWMFIFOOffset is the byte offset of the FIFO register, the destination of
// DREQ paced DMA writes.
const PWMFIFOOffset uint32 = 0x18
