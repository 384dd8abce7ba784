// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import (
	"io"
	"unsafe"

	"github.com/joan2937/pigpio-sub000/host/bcm283x"
	"github.com/joan2937/pigpio-sub000/host/pmem"
	"github.com/joan2937/pigpio-sub000/host/videocore"
)

// Geometry of the DMA page pool.
//
// A cycle samples pulsesPerCycle ticks; a block groups cyclesPerBlock cycles
// over pagesPerBlock pages. The constants interlock: blocks tile the 20 ms
// servo period exactly (superCycle cycles / superLevel level slots at 1 µs),
// and the per-page slot counts fill each 4096 byte page completely.
const (
	pageSize = 4096

	cyclesPerBlock = 80
	pulsesPerCycle = 25
	pagesPerBlock  = 53

	cbsPerIPage = 117
	lvsPerIPage = 38
	offPerIPage = 38
	tckPerIPage = 2
	onPerIPage  = 2

	cbsPerOPage   = 118
	onOffPerOPage = 79

	cbsPerCycle = pulsesPerCycle*3 + 2

	superCycle = 800
	superLevel = 20000

	waveBlocks = 4
)

// iPage is one page of the input ring: control blocks plus the parallel
// arrays they read and write.
type iPage struct {
	CB         [cbsPerIPage]bcm283x.ControlBlock
	Level      [lvsPerIPage]uint32
	GpioOff    [offPerIPage]uint32
	Tick       [tckPerIPage]uint32
	GpioOn     [onPerIPage]uint32
	PeriphData uint32
	pad        [7]uint32
}

// oPage is one page of the output area: control blocks plus the staged
// on/off mask words they copy to the GPIO set/clear registers.
type oPage struct {
	CB         [cbsPerOPage]bcm283x.ControlBlock
	OnOff      [onOffPerOPage]uint32
	PeriphData uint32
}

// Byte offsets of the parallel arrays within their page, used to build bus
// addresses for DMA sources and destinations.
var (
	iLevelOffset  = uint32(unsafe.Offsetof(iPage{}.Level))
	iOffOffset    = uint32(unsafe.Offsetof(iPage{}.GpioOff))
	iTickOffset   = uint32(unsafe.Offsetof(iPage{}.Tick))
	iOnOffset     = uint32(unsafe.Offsetof(iPage{}.GpioOn))
	iPeriphOffset = uint32(unsafe.Offsetof(iPage{}.PeriphData))
	oOnOffOffset  = uint32(unsafe.Offsetof(oPage{}.OnOff))
	oPeriphOffset = uint32(unsafe.Offsetof(oPage{}.PeriphData))
)

// poolPage is one DMA visible page under both of its addresses.
type poolPage struct {
	virt pmem.Slice // user space view, pageSize bytes
	bus  uint32     // uncached bus address the DMA engine must use
}

// pool owns every DMA page of the engine: the input ring pages first, then
// the output wave pages. Pages are pinned for the life of the pool.
type pool struct {
	pages []poolPage
	nIn   int
	mems  []io.Closer
}

// dmaAlloc is the page allocator. It is a hook so unit tests can provide
// heap backed pages with synthetic bus addresses.
var dmaAlloc = allocHardwarePages

// newPool allocates nIn input pages and nOut output pages and zeroes them.
func newPool(nIn, nOut int) (*pool, error) {
	pages, mems, err := dmaAlloc(nIn + nOut)
	if err != nil {
		for _, m := range mems {
			_ = m.Close()
		}
		return nil, err
	}
	p := &pool{pages: pages, nIn: nIn, mems: mems}
	for i := range p.pages {
		// A zero bus address means the pagemap never resolved the page.
		if p.pages[i].bus == 0 {
			_ = p.Close()
			return nil, ErrPagemapFailed
		}
		for j := range p.pages[i].virt {
			p.pages[i].virt[j] = 0
		}
	}
	return p, nil
}

// Close releases every page in one pass.
func (p *pool) Close() error {
	var err error
	for _, m := range p.mems {
		if err2 := m.Close(); err == nil {
			err = err2
		}
	}
	p.mems = nil
	p.pages = nil
	return err
}

// allocHardwarePages obtains DMA visible pages, preferring one contiguous
// uncached GPU allocation and falling back to individually locked pages
// resolved through the pagemap.
func allocHardwarePages(n int) ([]poolPage, []io.Closer, error) {
	if m, err := videocore.Alloc(n * pageSize); err == nil {
		pages := make([]poolPage, n)
		b := pmem.Slice(m.Bytes())
		phys := uint32(m.PhysAddr())
		for i := range pages {
			pages[i].virt = b[i*pageSize : (i+1)*pageSize]
			if phys != 0 {
				pages[i].bus = (phys + uint32(i*pageSize)) | bcm283x.BusRAM
			}
		}
		return pages, []io.Closer{m}, nil
	}
	pages := make([]poolPage, n)
	mems := make([]io.Closer, 0, n)
	for i := range pages {
		m, err := pmem.Alloc(pageSize)
		if err != nil {
			return nil, mems, ErrAllocFailed
		}
		mems = append(mems, m)
		pages[i].virt = m.Bytes()
		if phys := uint32(m.PhysAddr()); phys != 0 {
			pages[i].bus = phys | bcm283x.BusRAM
		}
	}
	return pages, mems, nil
}

// iPage returns the user space view of input page n.
func (p *pool) iPage(n int) *iPage {
	return (*iPage)(unsafe.Pointer(&p.pages[n].virt[0]))
}

// oPage returns the user space view of output page n.
func (p *pool) oPage(n int) *oPage {
	return (*oPage)(unsafe.Pointer(&p.pages[p.nIn+n].virt[0]))
}

func (p *pool) numOPages() int {
	return len(p.pages) - p.nIn
}

// Bus addresses of input ring slots. Every address handed to the DMA engine
// goes through one of these so only the bus alias ever reaches a control
// block.

func (p *pool) cbIBus(pos int) uint32 {
	return p.pages[pos/cbsPerIPage].bus + uint32(pos%cbsPerIPage)*32
}

func (p *pool) levelBus(pos int) uint32 {
	return p.pages[pos/lvsPerIPage].bus + iLevelOffset + uint32(pos%lvsPerIPage)*4
}

func (p *pool) offBus(pos int) uint32 {
	return p.pages[pos/offPerIPage].bus + iOffOffset + uint32(pos%offPerIPage)*4
}

func (p *pool) tickBus(pos int) uint32 {
	return p.pages[pos/tckPerIPage].bus + iTickOffset + uint32(pos%tckPerIPage)*4
}

func (p *pool) onBus(pos int) uint32 {
	return p.pages[pos/onPerIPage].bus + iOnOffset + uint32(pos%onPerIPage)*4
}

func (p *pool) periphIBus(page int) uint32 {
	return p.pages[page].bus + iPeriphOffset
}

// Input ring slot accessors, mirroring the bus address math on the user
// space side.

func (p *pool) level(pos int) uint32 {
	return p.iPage(pos / lvsPerIPage).Level[pos%lvsPerIPage]
}

func (p *pool) tick(pos int) uint32 {
	return p.iPage(pos / tckPerIPage).Tick[pos%tckPerIPage]
}

func (p *pool) setGpioOn(gpio uint, pos int) {
	p.iPage(pos / onPerIPage).GpioOn[pos%onPerIPage] |= 1 << gpio
}

func (p *pool) clearGpioOn(gpio uint, pos int) {
	p.iPage(pos / onPerIPage).GpioOn[pos%onPerIPage] &^= 1 << gpio
}

func (p *pool) setGpioOff(gpio uint, pos int) {
	p.iPage(pos / offPerIPage).GpioOff[pos%offPerIPage] |= 1 << gpio
}

func (p *pool) clearGpioOff(gpio uint, pos int) {
	p.iPage(pos / offPerIPage).GpioOff[pos%offPerIPage] &^= 1 << gpio
}

// Bus addresses of output area slots.

func (p *pool) cbOBus(pos int) uint32 {
	return p.pages[p.nIn+pos/cbsPerOPage].bus + uint32(pos%cbsPerOPage)*32
}

func (p *pool) cbO(pos int) *bcm283x.ControlBlock {
	return &p.oPage(pos / cbsPerOPage).CB[pos%cbsPerOPage]
}

func (p *pool) onOffOBus(pos int) uint32 {
	return p.pages[p.nIn+pos/onOffPerOPage].bus + oOnOffOffset + uint32(pos%onOffPerOPage)*4
}

func (p *pool) setOnOff(pos int, mask uint32) {
	p.oPage(pos / onOffPerOPage).OnOff[pos%onOffPerOPage] = mask
}

func (p *pool) periphOBus() uint32 {
	return p.pages[p.nIn].bus + oPeriphOffset
}
