// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pigpio is a user-space GPIO, waveform and notification engine for
// Broadcom bcm283x based boards (Raspberry Pi).
//
// It provides deterministic sub-millisecond control and observation of the
// GPIO pins without a kernel driver, by mapping the SoC peripheral registers
// directly and programming the DMA controller:
//
// - a ring of DMA control blocks continuously samples the input levels at a
// fixed microsecond tick, paced by the PWM or PCM peripheral's DREQ line,
// and drives PWM and servo pulses through per-slot set and clear masks;
//
// - a second DMA channel emits precisely timed output waveforms (bit-banged
// serial, arbitrary pulse trains) compiled to control block chains;
//
// - a soft-realtime goroutine follows the sampling DMA, diffs successive
// level snapshots into edge events and fans them out to per-GPIO callbacks,
// watchdog timers, a batched sample hook and per-client notification pipes.
//
// The engine requires root (it maps /dev/mem) and exclusive ownership of the
// pacing peripheral and two DMA channels. At most one Engine may exist per
// machine; a lock file enforces this.
//
// Usage:
//
//	e, err := pigpio.New(pigpio.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer e.Close()
//	e.SetServo(4, 1500)
package pigpio
