// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/joan2937/pigpio-sub000/host/bcm283x"
	"github.com/joan2937/pigpio-sub000/host/pmem"
)

// lockPath is the process-wide advisory lock file. At most one engine may
// own the DMA channels and the pacing peripheral per machine.
const lockPath = "/var/run/pigpio.pid"

// Register block window sizes.
const (
	gpioLen = 0xB4
	dmaLen  = 0x1000 // all channels
	clkLen  = 0xA8
	systLen = 0x1C
	pcmLen  = 0x24
	pwmLen  = 0x28
)

// Engine is the DMA-backed GPIO sampling and waveform engine.
//
// All methods are safe for concurrent use; operations serialise on the
// engine's internal state. Construct with New, release with Close.
type Engine struct {
	cfg      Config
	permMask uint64
	started  time.Time

	mu          sync.Mutex
	initialised bool
	dmaStarted  bool

	// Register views.
	views   []*pmem.View
	gpioReg *bcm283x.GPIOMap
	dmaReg  *bcm283x.DMAMap
	dmaIn   *bcm283x.DMAChannel
	dmaOut  *bcm283x.DMAChannel
	clkReg  *bcm283x.ClockMap
	pwmReg  *bcm283x.PWMMap
	pcmReg  *bcm283x.PCMMap
	systReg *bcm283x.SysTimerMap

	// DMA page pool and input ring geometry.
	pool         *pool
	bufferBlocks int
	bufferCycles int
	lastCbPage   int

	lockFile *os.File

	// Registries observed by the alert loop.
	alerts      [maxUserGpio + 1]alertReg
	getSamples  samplesReg
	notify      [NotifySlots]notifyReg
	alertBits   uint32
	notifyBits  uint32
	monitorBits uint32

	// PWM/servo state.
	gpioInfo [maxUserGpio + 1]gpioInfo
	pwmFreq  [pwmFreqs]int

	// Waveform construction and compiled waves.
	wf             [3][]Pulse
	wfc            [3]int
	wfCur          int
	wfStats        WaveStats
	waves          []waveSeg
	cbHigh         int
	oolHigh        int
	secondaryClock bool

	// Bit-bang serial receivers.
	wfRx [maxUserGpio + 1]*serialRx

	// Repeating timers.
	timers [maxTimers]*timerInfo

	// Alert loop state.
	sample    [datums]Sample
	report    [datums]Report
	pending   []func()
	alertStop chan struct{}
	alertDone chan struct{}

	stats Stats
}

// New initialises the engine: it takes the machine lock, maps the peripheral
// registers, allocates and pins the DMA page pool, builds the input ring,
// programs the pacing clock and starts the sampling DMA and the alert loop.
//
// It fails with InitFailed when called while another engine holds the lock,
// NotPermitted when /dev/mem is not accessible, AllocFailed or PagemapFailed
// when the DMA page pool cannot be set up and InitFailed on any other
// hardware or OS failure, releasing every partially acquired resource.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: *cfg, started: time.Now()}

	if err := e.grabLockFile(); err != nil {
		return nil, err
	}

	e.permMask = e.cfg.PermissionMask
	if !e.cfg.permissionSet {
		e.permMask = defaultPermissions(HardwareRevision())
	}

	if err := e.setup(); err != nil {
		e.release()
		return nil, err
	}
	return e, nil
}

func (e *Engine) setup() error {
	if err := e.mapPeripherals(); err != nil {
		return err
	}

	// Size the pool. The number of blocks must be a multiple of the 20 ms
	// servo cycle.
	servoCycles := int(e.cfg.BufferMillis) / 20
	if e.cfg.BufferMillis%20 != 0 {
		servoCycles++
	}
	e.bufferCycles = superCycle * servoCycles / int(e.cfg.ClockMicros)
	superCycles := e.bufferCycles / superCycle
	if e.bufferCycles%superCycle != 0 {
		superCycles++
	}
	e.bufferCycles = superCycle * superCycles
	e.bufferBlocks = e.bufferCycles / cyclesPerBlock
	e.logf(1, "blocks=%d cycles=%d micros=%d", e.bufferBlocks, e.bufferCycles, e.cfg.ClockMicros)

	p, err := newPool(e.bufferBlocks*pagesPerBlock, waveBlocks*pagesPerBlock)
	if err != nil {
		return err
	}
	e.pool = p

	for i := range e.gpioInfo {
		e.gpioInfo[i] = gpioInfo{is: gpioUndefined, rng: defaultDutycycleRange, freqIdx: defaultPwmIdx}
	}
	e.initPwmFreqs()
	for i := range e.wf {
		e.wf[i] = make([]Pulse, WaveMaxPulses)
	}
	e.wfStats = WaveStats{
		MaxMicros: WaveMaxMicros,
		MaxPulses: WaveMaxPulses,
		MaxCbs:    pagesPerBlock * cbsPerOPage,
	}
	e.pending = make([]func(), 0, datums)

	e.initInputRing()
	e.initClock(true)

	e.alertStop = make(chan struct{})
	e.alertDone = make(chan struct{})
	e.initialised = true
	go e.runAlert()

	e.dmaIn.StartTransfer(e.pool.cbIBus(0))
	e.mu.Lock()
	e.dmaStarted = true
	e.mu.Unlock()
	return nil
}

// grabLockFile takes the machine-wide advisory lock.
func (e *Engine) grabLockFile() error {
	f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_TRUNC, 0644)
	if err != nil {
		return ErrInitFailed
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		return ErrInitFailed
	}
	_, _ = f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	e.lockFile = f
	return nil
}

// mapPeripherals acquires the register views.
func (e *Engine) mapPeripherals() error {
	base := bcm283x.PeriphBase()

	mapReg := func(offset uint32, size int, pp interface{}) error {
		v, err := pmem.Map(base+uint64(offset), size)
		if err != nil {
			if os.IsPermission(err) {
				return ErrNotPermitted
			}
			return ErrInitFailed
		}
		e.views = append(e.views, v)
		return v.Struct(pp)
	}

	if err := mapReg(bcm283x.GPIOOffset, gpioLen, &e.gpioReg); err != nil {
		return err
	}
	if err := mapReg(bcm283x.DMAOffset, dmaLen, &e.dmaReg); err != nil {
		return err
	}
	if err := mapReg(bcm283x.ClockOffset, clkLen, &e.clkReg); err != nil {
		return err
	}
	if err := mapReg(bcm283x.SysTimerOffset, systLen, &e.systReg); err != nil {
		return err
	}
	if err := mapReg(bcm283x.PWMOffset, pwmLen, &e.pwmReg); err != nil {
		return err
	}
	if err := mapReg(bcm283x.PCMOffset, pcmLen, &e.pcmReg); err != nil {
		return err
	}
	e.dmaIn = &e.dmaReg.Ch[e.cfg.PrimaryChannel]
	e.dmaOut = &e.dmaReg.Ch[e.cfg.SecondaryChannel]
	return nil
}

// Close stops the engine and releases every resource: the alert loop, the
// timers, both DMA channels, the pacing peripheral, the register views, the
// pool, the notification pipes and the lock file.
//
// Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	if !e.initialised {
		e.mu.Unlock()
		e.release()
		return nil
	}
	e.initialised = false
	e.mu.Unlock()

	close(e.alertStop)
	<-e.alertDone
	e.stopTimers()

	e.mu.Lock()
	if e.dmaIn != nil {
		e.dmaIn.Reset()
	}
	if e.dmaOut != nil {
		e.dmaOut.Reset()
	}
	if e.pwmReg != nil {
		e.pwmReg.Ctl = 0
	}
	if e.pcmReg != nil {
		e.pcmReg.CS = 0
	}
	e.dmaStarted = false
	for i := range e.notify {
		if e.notify[i].state != notifyClosed {
			e.finishClose(&e.notify[i], i)
		}
	}
	e.mu.Unlock()

	e.release()
	return nil
}

// release frees whatever was acquired, in reverse acquisition order. It is
// safe on a partially initialised engine.
func (e *Engine) release() {
	if e.pool != nil {
		_ = e.pool.Close()
		e.pool = nil
	}
	for _, v := range e.views {
		_ = v.Close()
	}
	e.views = nil
	e.gpioReg = nil
	e.dmaReg = nil
	e.dmaIn = nil
	e.dmaOut = nil
	e.clkReg = nil
	e.pwmReg = nil
	e.pcmReg = nil
	e.systReg = nil
	if e.lockFile != nil {
		_ = e.lockFile.Close()
		_ = os.Remove(lockPath)
		e.lockFile = nil
	}
}

func (e *Engine) logf(level int, format string, args ...interface{}) {
	if e.cfg.Debug >= level {
		log.Printf("pigpio: "+format, args...)
	}
}

// Default permission masks by board revision.
const (
	defaultMaskR0 uint64 = 0xFBE6CF9F
	defaultMaskR1 uint64 = 0x03E6CF93
	defaultMaskR2 uint64 = 0xFBC6CF9C
)

func defaultPermissions(revision int) uint64 {
	switch {
	case revision == 0:
		return defaultMaskR0
	case revision < 4:
		return defaultMaskR1
	default:
		return defaultMaskR2
	}
}
