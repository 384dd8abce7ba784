// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bcm283x exposes the peripheral register blocks of the Broadcom
// bcm283x family (bcm2835, bcm2836, bcm2837) as found on Raspberry Pi
// boards: GPIO, the DMA controller, the clock manager, PWM, PCM and the
// free-running system timer.
//
// The register structs are meant to be overlaid on a memory mapped view of
// the corresponding physical register block (see host/pmem). Page numbers in
// the comments refer to the BCM2835 ARM Peripherals datasheet:
// https://www.raspberrypi.org/wp-content/uploads/2012/02/BCM2835-ARM-Peripherals.pdf
package bcm283x
