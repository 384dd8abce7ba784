// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// pcm means I2S.

package bcm283x

// PCMCS is the PCM control and status register.
//
// Pages 126-129.
type PCMCS uint32

const (
	// 31:26 reserved
	PCMStandby      PCMCS = 1 << 25 // STBY
	PCMSync         PCMCS = 1 << 24 // SYNC
	PCMRXSignExtend PCMCS = 1 << 23 // RXSEX
	PCMRXFull       PCMCS = 1 << 22 // RXF
	PCMTXEmpty      PCMCS = 1 << 21 // TXE
	PCMRXData       PCMCS = 1 << 20 // RXD
	PCMTXData       PCMCS = 1 << 19 // TXD
	PCMRXR          PCMCS = 1 << 18 // RXR
	PCMTXW          PCMCS = 1 << 17 // TXW
	PCMRXErr        PCMCS = 1 << 16 // RXERR
	PCMTXErr        PCMCS = 1 << 15 // TXERR
	PCMRXSync       PCMCS = 1 << 14 // RXSYNC
	PCMTXSync       PCMCS = 1 << 13 // TXSYNC
	// 12:10 reserved
	PCMDMAEnable PCMCS = 1 << 9 // DMAEN
	// 8:7
	PCMRXThreshold PCMCS = 1<<8 | 1<<7 // RXTHR
	// 6:5
	PCMTXThreshold PCMCS = 1<<6 | 1<<5 // TXTHR
	PCMRXClear     PCMCS = 1 << 4      // RXCLR
	PCMTXClear     PCMCS = 1 << 3      // TXCLR
	PCMTXEnable    PCMCS = 1 << 2      // TXON
	PCMRXEnable    PCMCS = 1 << 1      // RXON
	PCMEnable      PCMCS = 1 << 0      // EN
)

// PCMMode is the PCM mode register.
//
// Pages 129-131.
type PCMMode uint32

const (
	PCMClockDisable  PCMMode = 1 << 28 // CLK_DIS
	PCMDecimation32  PCMMode = 1 << 27 // PDMN
	PCMRXPDMFilter   PCMMode = 1 << 26 // PDME
	PCMRXMerge       PCMMode = 1 << 25 // FRXP
	PCMTXMerge       PCMMode = 1 << 24 // FTXP
	PCMClockSlave    PCMMode = 1 << 23 // CLKM
	PCMClockInvert   PCMMode = 1 << 22 // CLKI
	PCMFSSlave       PCMMode = 1 << 21 // FSM
	PCMFSInvert      PCMMode = 1 << 20 // FSI
	PCMFrameLenShift         = 10      // FLEN 19:10; frame length is FLEN+1 clocks
	PCMFSLenShift            = 0       // FSLEN 9:0
)

// PCMTXC is the PCM transmit configuration register.
//
// Pages 131-133.
type PCMTXC uint32

const (
	PCMTXCh1WidthExtend PCMTXC = 1 << 31 // CH1WEX
	PCMTXCh1Enable      PCMTXC = 1 << 30 // CH1EN
	PCMTXCh1PosShift           = 20      // CH1POS 29:20
	PCMTXCh1WidthShift         = 16      // CH1WID 19:16; width is CH1WID+8 bits
	PCMTXCh2WidthExtend PCMTXC = 1 << 15 // CH2WEX
	PCMTXCh2Enable      PCMTXC = 1 << 14 // CH2EN
	PCMTXCh2PosShift           = 4       // CH2POS 13:4
	PCMTXCh2WidthShift         = 0       // CH2WID 3:0
)

// PCMDreq is the PCM DMA request level register.
//
// Pages 134-135.
type PCMDreq uint32

const (
	PCMDreqTXPanicShift = 24 // TX_PANIC 30:24
	PCMDreqRXPanicShift = 16 // RX_PANIC 22:16
	PCMDreqTXLevelShift = 8  // TX 14:8
	PCMDreqRXLevelShift = 0  // RX 6:0
)

// PCMMap is the layout of the PCM block.
//
// Page 125.
type PCMMap struct {
	CS     PCMCS   // 0x00 CS_A
	FIFO   uint32  // 0x04 FIFO_A
	Mode   PCMMode // 0x08 MODE_A
	RXC    uint32  // 0x0C RXC_A
	TXC    PCMTXC  // 0x10 TXC_A
	Dreq   PCMDreq // 0x14 DREQ_A
	IntEn  uint32  // 0x18 INTEN_A
	IntStc uint32  // 0x1C INTSTC_A
	Gray   uint32  // 0x20 GRAY
}

// PCMFIFOOffset is the byte offset of the FIFO register, the destination of
// DREQ paced DMA writes.
const PCMFIFOOffset uint32 = 0x04
