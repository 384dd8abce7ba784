// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"io/ioutil"
	"os"
	"path"
	"strconv"
	"strings"
)

// The DMA engine addresses memory through dedicated bus address spaces,
// distinct from the addresses the CPU uses.
//
// Page 7:
// " Software accessing RAM directly must use physical addresses (based at
// 0x00000000). Software accessing RAM using the DMA engines must use bus
// addresses (based at 0xC0000000) " ... to skip the L1 cache.
//
// Peripheral registers are visible to the DMA engine at the 0x7Exxxxxx bus
// alias; the top byte of a DMA source or destination address targeting a
// register is the bus-region tag, not the CPU physical tag.
const (
	BusRAM        uint32 = 0x40000000 // Uncached RAM alias used by the DMA engine
	BusPeripheral uint32 = 0x7E000000 // Peripheral registers as seen by the DMA engine
)

// Register block offsets from the peripheral base address.
//
// The peripheral base itself moved between SoC generations (0x20000000 on
// bcm2835, 0x3F000000 on bcm2836/7); the offsets did not.
const (
	SysTimerOffset uint32 = 0x003000
	DMAOffset      uint32 = 0x007000
	ClockOffset    uint32 = 0x101000
	GPIOOffset     uint32 = 0x200000
	PCMOffset      uint32 = 0x203000
	PWMOffset      uint32 = 0x20C000
	DMA15Offset    uint32 = 0xE05000
)

// BusRegister returns the bus alias address of the peripheral register at
// the specified offset from the peripheral base.
func BusRegister(offset uint32) uint32 {
	return BusPeripheral | offset
}

// Present returns true if running on a Broadcom bcm283x based CPU.
func Present() bool {
	c, err := ioutil.ReadFile("/proc/cpuinfo")
	if err != nil {
		return false
	}
	for _, l := range strings.Split(string(c), "\n") {
		if strings.HasPrefix(l, "Hardware") {
			if i := strings.Index(l, ":"); i != -1 {
				return strings.HasPrefix(strings.TrimSpace(l[i+1:]), "BCM")
			}
		}
	}
	return false
}

// PeriphBase queries the virtual file system to retrieve the physical base
// address of the peripheral registers.
//
// Defaults to 0x3F000000 as per datasheet if it could not query the file
// system.
func PeriphBase() uint64 {
	items, _ := ioutil.ReadDir("/sys/bus/platform/drivers/pinctrl-bcm2835/")
	for _, item := range items {
		if item.Mode()&os.ModeSymlink != 0 {
			parts := strings.SplitN(path.Base(item.Name()), ".", 2)
			if len(parts) != 2 {
				continue
			}
			base, err := strconv.ParseUint(parts[0], 16, 64)
			if err != nil {
				continue
			}
			return base - uint64(GPIOOffset)
		}
	}
	return 0x3F000000
}
