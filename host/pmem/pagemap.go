// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pmem

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// ReadPageMap reads a physical address mapping for a virtual page address
// from /proc/self/pagemap.
//
// It returns the 64 bit record that corresponds to the virtual page within
// which the virtual address virtAddr is located.
//
// The meaning of the return value is documented at
// https://www.kernel.org/doc/Documentation/vm/pagemap.txt
func ReadPageMap(virtAddr uintptr) (uint64, error) {
	if !isLinux {
		return 0, errors.New("pmem: pagemap is not supported on this platform")
	}
	return readPageMapLinux(virtAddr)
}

// VirtToPhys returns the physical memory address backing a virtual memory
// address.
//
// The page must be locked in memory beforehand, otherwise the kernel is free
// to move or evict it, invalidating the result.
//
// The kernel occasionally reports a zero frame for a page that was just
// faulted in; the read is retried a small bounded number of times before
// giving up.
func VirtToPhys(virt uintptr) (uint64, error) {
	var err error
	for try := 0; try < maxPageMapTries; try++ {
		var physPage uint64
		if physPage, err = ReadPageMap(virt); err != nil {
			return 0, err
		}
		if physPage&(1<<63) == 0 {
			// If high bit is not set, the page doesn't exist.
			err = fmt.Errorf("pmem: 0x%08x has no physical address", virt)
			time.Sleep(pageMapRetryDelay)
			continue
		}
		// Strip flags. See linux documentation on kernel.org for more details.
		physPage &^= 0x1FF << 55
		if physPage == 0 {
			err = fmt.Errorf("pmem: 0x%08x reported a zero frame", virt)
			time.Sleep(pageMapRetryDelay)
			continue
		}
		return physPage * pageSize, nil
	}
	return 0, err
}

//

const (
	maxPageMapTries   = 10
	pageMapRetryDelay = 50 * time.Millisecond
)

type fileIO interface {
	io.Closer
	io.Reader
	io.Seeker
}

// openFile is a hook that can be overridden in unit tests.
var openFile = func(path string, flag int) (fileIO, error) {
	f, err := os.OpenFile(path, flag, 0600)
	if err != nil {
		return nil, err
	}
	return f, nil
}

var (
	pageMap    fileIO
	pageMapErr error
)

func readPageMapLinux(virtAddr uintptr) (uint64, error) {
	var b [8]byte
	mu.Lock()
	defer mu.Unlock()
	if pageMap == nil && pageMapErr == nil {
		// Open /proc/self/pagemap.
		//
		// It is a uint64 array where the index represents the virtual 4Kb page
		// number and the value represents the physical page properties backing
		// this virtual page.
		pageMap, pageMapErr = openFile("/proc/self/pagemap", os.O_RDONLY|os.O_SYNC)
	}
	if pageMapErr != nil {
		return 0, pageMapErr
	}
	// Convert address to page number, then index in uint64 array.
	offset := int64(virtAddr / pageSize * 8)
	if _, err := pageMap.Seek(offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("pmem: failed to seek at 0x%x for 0x%x: %v", offset, virtAddr, err)
	}
	n, err := pageMap.Read(b[:])
	if err != nil {
		return 0, fmt.Errorf("pmem: failed to read at 0x%x for 0x%x: %v", offset, virtAddr, err)
	}
	if n != len(b) {
		return 0, fmt.Errorf("pmem: failed to read the amount of data %d", len(b))
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
