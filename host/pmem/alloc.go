// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pmem

import (
	"fmt"
	"io"
)

// Mem represents a section of memory that is usable by the DMA controller.
//
// Since this is physically allocated memory, that could potentially have been
// allocated in spite of OS consent, for example by asking the GPU directly,
// it is important to call Close() before process exit.
type Mem interface {
	io.Closer
	// Bytes returns the user space memory mapped buffer address as a slice of
	// bytes.
	Bytes() []byte
	// PhysAddr is the physical address. It can be either 32 bits or 64 bits,
	// depending on the bitness of the OS kernel, not on the user mode build.
	PhysAddr() uint64
}

// MemAlloc represents contiguous physically locked memory that was allocated.
//
// The memory is mapped in user space.
//
// MemAlloc implements Mem.
type MemAlloc struct {
	View
}

// Bytes implements Mem.
func (m *MemAlloc) Bytes() []byte {
	return m.Slice
}

// Close unmaps the physical memory allocation.
func (m *MemAlloc) Close() error {
	if err := munlock(m.orig); err != nil {
		return err
	}
	return munmap(m.orig)
}

// Alloc allocates a continuous chunk of physical memory.
//
// Size must be rounded to 4Kb. Allocations of 4Kb will normally succeed.
// Allocations larger than 64Kb will likely fail due to kernel memory
// fragmentation; rebooting the host or reducing the number of running
// programs may help.
//
// The allocated memory is locked so its physical address cannot change for
// the lifetime of the allocation.
func Alloc(size int) (*MemAlloc, error) {
	if size == 0 || size&(pageSize-1) != 0 {
		return nil, fmt.Errorf("pmem: allocated memory must be rounded to %d bytes", pageSize)
	}
	if !isLinux {
		return nil, fmt.Errorf("pmem: memory allocation is not supported on this platform")
	}
	return allocLinux(size)
}

//

// uallocMemLocked allocates user space memory and requests the OS to have
// the chunk to be locked into physical memory.
func uallocMemLocked(size int) ([]byte, error) {
	// It is important to write to the memory so it is forced to be present.
	b, err := uallocMem(size)
	if err == nil {
		for i := range b {
			b[i] = 0
		}
		if err := mlock(b); err != nil {
			// Ignore the unmap error.
			_ = munmap(b)
			return nil, fmt.Errorf("pmem: locking %d bytes failed: %v", size, err)
		}
	}
	return b, err
}

// allocLinux allocates physical memory and returns a user view to it.
func allocLinux(size int) (*MemAlloc, error) {
	// First allocate a chunk of user space memory.
	b, err := uallocMemLocked(size)
	if err != nil {
		return nil, err
	}
	pages := make([]uint64, (size+pageSize-1)/pageSize)
	// Figure out the physical memory addresses.
	for i := range pages {
		pages[i], err = VirtToPhys(toRaw(b[pageSize*i:]))
		if err != nil {
			_ = munmap(b)
			return nil, err
		}
	}
	for i := 1; i < len(pages); i++ {
		// Fail if the memory is not contiguous.
		if pages[i] != pages[i-1]+pageSize {
			_ = munmap(b)
			return nil, fmt.Errorf("pmem: failed to allocate %d bytes of contiguous physical memory; page %d=0x%x; page %d=0x%x", size, i, pages[i], i-1, pages[i-1])
		}
	}
	return &MemAlloc{View{Slice: b, orig: b, phys: pages[0]}}, nil
}

var _ Mem = &MemAlloc{}
