// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// The BCM2835 DMA Controller provides a total of 16 DMA channels. Each
// channel operates independently from the others and is internally arbitrated
// onto one of the 3 system buses.
//
// Channels 0 to 6 are full channels; 7 and above are lite channels with half
// the bandwidth. Channel 15 lives in a register page of its own,
// non-contiguous with channels 0-14.

package bcm283x

// DMAStatus is the control and status register of a channel.
//
// Pages 47-50.
type DMAStatus uint32

const (
	DMAReset                    DMAStatus = 1 << 31 // RESET
	DMAAbort                    DMAStatus = 1 << 30 // ABORT
	DMADisableDebug             DMAStatus = 1 << 29 // DISDEBUG
	DMAWaitForOutstandingWrites DMAStatus = 1 << 28 // WAIT_FOR_OUTSTANDING_WRITES
	// 27:24 reserved
	// 23:20 Lowest has higher priority on AXI.
	DMAPanicPriorityShift = 20 // PANIC_PRIORITY
	// 19:16 Lowest has higher priority on AXI.
	DMAPriorityShift = 16 // PRIORITY
	// 15:9 reserved
	DMAErrorStatus DMAStatus = 1 << 8 // ERROR DMA error was detected; must be cleared manually.
	// 7 reserved
	DMAWaitingForOutstandingWrites DMAStatus = 1 << 6 // WAITING_FOR_OUTSTANDING_WRITES
	DMADreqStopsDMA                DMAStatus = 1 << 5 // DREQ_STOPS_DMA
	DMAPaused                      DMAStatus = 1 << 4 // PAUSED
	DMADreq                        DMAStatus = 1 << 3 // DREQ
	DMAInterrupt                   DMAStatus = 1 << 2 // INT
	DMAEnd                         DMAStatus = 1 << 1 // END
	DMAActive                      DMAStatus = 1 << 0 // ACTIVE
)

// DMATransferInfo is the transfer information field of a control block.
//
// Pages 50-52.
type DMATransferInfo uint32

const (
	// 31:27 reserved
	// Don't do wide writes as 2 beat burst; only for channels 0 to 6
	DMANoWideBursts DMATransferInfo = 1 << 26 // NO_WIDE_BURSTS
	// 25:21 Slows down the DMA throughput by setting the number of dummy
	// cycles burnt after each DMA read or write is completed.
	DMAWaitCyclesShift = 21 // WAITS
	// 20:16 Peripheral mapping (1-31) whose ready signal shall be used to
	// control the rate of the transfers. 0 means continuous un-paced transfer.
	//
	// It is the source used to pace the data reads and writes operations, each
	// pace being a DReq (Data Request).
	//
	// Page 61.
	DMAPerMapShift = 16 // PERMAP

	DMABurstLengthShift                 = 12      // BURST_LENGTH 15:12 0 means a single transfer.
	DMASrcIgnore        DMATransferInfo = 1 << 11 // SRC_IGNORE Source won't be read, output will be zeros.
	DMASrcDreq          DMATransferInfo = 1 << 10 // SRC_DREQ
	DMASrcWidth128      DMATransferInfo = 1 << 9  // SRC_WIDTH 128 bits reads if set, 32 bits otherwise.
	DMASrcInc           DMATransferInfo = 1 << 8  // SRC_INC Increment read pointer by 32/128bits at each read if set.
	DMADestIgnore       DMATransferInfo = 1 << 7  // DEST_IGNORE Do not write.
	DMADestDreq         DMATransferInfo = 1 << 6  // DEST_DREQ
	DMADestWidth128     DMATransferInfo = 1 << 5  // DEST_WIDTH 128 bits writes if set, 32 bits otherwise.
	DMADestInc          DMATransferInfo = 1 << 4  // DEST_INC Increment write pointer by 32/128bits at each write if set.
	DMAWaitResp         DMATransferInfo = 1 << 3  // WAIT_RESP DMA waits for AXI write response.
	// 2 reserved
	// 2D mode interpret of txLen; linear if unset; only for channels 0 to 6.
	DMATransfer2DMode  DMATransferInfo = 1 << 1 // TDMODE
	DMAInterruptEnable DMATransferInfo = 1 << 0 // INTEN Generate an interrupt upon completion.
)

// Peripheral mapping values for DMAPerMapShift, page 61.
const (
	DMAFire   DMATransferInfo = 0 << DMAPerMapShift // Continuous trigger
	DMADSI    DMATransferInfo = 1 << DMAPerMapShift
	DMAPCMTX  DMATransferInfo = 2 << DMAPerMapShift
	DMAPCMRX  DMATransferInfo = 3 << DMAPerMapShift
	DMASMI    DMATransferInfo = 4 << DMAPerMapShift
	DMAPWM    DMATransferInfo = 5 << DMAPerMapShift
	DMASPITX  DMATransferInfo = 6 << DMAPerMapShift
	DMASPIRX  DMATransferInfo = 7 << DMAPerMapShift
	DMAUartTX DMATransferInfo = 12 << DMAPerMapShift
	DMAUartRX DMATransferInfo = 14 << DMAPerMapShift
)

// DMADebug is the per-channel debug register.
//
// Page 55.
type DMADebug uint32

const (
	// 28 RO set for lite DMA controllers
	DMALite DMADebug = 1 << 28 // LITE
	// 27:25 version
	DMAVersionShift = 25 // VERSION
	// 24:16 dmaState
	DMAStateShift = 16 // DMA_STATE
	// 15:8  dmaID
	DMAIDShift = 8 // DMA_ID
	// 7:4   outstandingWrites
	DMAOutstandingWritesShift = 4 // OUTSTANDING_WRITES
	// 3     reserved
	DMAReadError           DMADebug = 1 << 2 // READ_ERROR slave read error; clear by writing a 1
	DMAFIFOError           DMADebug = 1 << 1 // FIFO_ERROR fifo error; clear by writing a 1
	DMAReadLastNotSetError DMADebug = 1 << 0 // READ_LAST_NOT_SET_ERROR last AXI read signal was not set when expected
)

// DMAErrorMask covers the error bits of the debug register, all of which are
// cleared by writing them back.
const DMAErrorMask = DMAReadError | DMAFIFOError | DMAReadLastNotSetError

// ControlBlock is one transfer descriptor consumed by the DMA engine.
//
// Control blocks must be 256 bit (32 bytes) aligned and are addressed by the
// engine through the uncached RAM bus alias.
//
// Page 40.
type ControlBlock struct {
	TransferInfo DMATransferInfo // 0x00 TI
	SrcAddr      uint32          // 0x04 SOURCE_AD; bus address of the source
	DstAddr      uint32          // 0x08 DEST_AD; bus address of the destination
	TxLen        uint32          // 0x0C TXFR_LEN in bytes (or 2D lengths)
	Stride       uint32          // 0x10 STRIDE; only valid if TransferInfo has transfer2DMode
	NextCB       uint32          // 0x14 NEXTCONBK; bus address of the next CB, 0 to halt
	reserved     [2]uint32       // 0x18, 0x1C
}

// InitTransfer initializes the control block for a linear transfer and
// chains it to the control block at bus address next.
func (c *ControlBlock) InitTransfer(info DMATransferInfo, src, dst, length, next uint32) {
	c.TransferInfo = info
	c.SrcAddr = src
	c.DstAddr = dst
	c.TxLen = length
	c.Stride = 0
	c.NextCB = next
}

// DMAChannel is the per-channel register block.
//
// Pages 39-41.
type DMAChannel struct {
	CS        DMAStatus       // 0x00 CS
	ConblkAd  uint32          // 0x04 CONBLK_AD; bus address of the current CB, 0 when halted
	TI        DMATransferInfo // 0x08 TI of the current CB (RO)
	SourceAd  uint32          // 0x0C SOURCE_AD of the current CB (RO)
	DestAd    uint32          // 0x10 DEST_AD of the current CB (RO)
	TxLen     uint32          // 0x14 TXFR_LEN of the current CB (RO)
	Stride    uint32          // 0x18 STRIDE of the current CB (RO)
	NextConBk uint32          // 0x1C NEXTCONBK
	Debug     DMADebug        // 0x20 DEBUG
	reserved  [55]uint32      // Padding up to the next channel at 0x100
}

// Reset aborts any transfer in progress and returns the channel to its
// halted state.
func (d *DMAChannel) Reset() {
	d.CS = DMAReset
	d.ConblkAd = 0
}

// ClearErrors writes back any latched debug error bits and returns the bits
// that were set.
func (d *DMAChannel) ClearErrors() DMADebug {
	e := d.Debug & DMAErrorMask
	if e != 0 {
		d.Debug = e
	}
	return e
}

// StartTransfer points the channel at the control block at bus address
// cbAddr and activates it.
//
// The start sequence matters: reset, acknowledge interrupt/end, load the CB
// address, clear latched debug errors, then activate with mid priorities.
func (d *DMAChannel) StartTransfer(cbAddr uint32) {
	d.CS = DMAReset
	d.CS = DMAInterrupt | DMAEnd
	d.ConblkAd = cbAddr
	d.Debug = DMAErrorMask
	d.CS = DMAWaitForOutstandingWrites | 8<<DMAPanicPriorityShift | 8<<DMAPriorityShift | DMAActive
}

// DMAMap is the layout of the shared register page holding channels 0-14.
//
// Channel 15 is in a page of its own at DMA15Offset.
type DMAMap struct {
	Ch [15]DMAChannel
	// 0xF00:0xFDC reserved
	reserved0 [56]uint32
	IntStatus uint32 // 0xFE0 INT_STATUS
	reserved1 [3]uint32
	Enable uint32 // 0xFF0 ENABLE
}
