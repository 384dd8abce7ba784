// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pmem implements handling of physical memory for user space
// programs.
//
// To make use of physical memory from user space, a device driver via
// /dev/mem has to be used. Using physical memory makes it possible to
// communicate with the DMA controller, since the DMA engine addresses RAM by
// physical (bus) addresses, not by process virtual addresses.
//
// The package exposes three building blocks:
//
// - Map() returns a view of a physical register block, usually I/O
// peripheral registers.
//
// - ReadPageMap()/VirtToPhys() translate a user space virtual address into
// the physical address backing it via /proc/self/pagemap.
//
// - Alloc() returns a page of physically locked memory along with its
// physical address, suitable as the target or source of DMA transfers.
package pmem
