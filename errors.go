// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

// Errno is the status of an engine operation.
//
// Engine operations report failures as negative integer statuses; the zero
// or positive values are reserved for successful results. Errno implements
// error so operations can return it directly.
type Errno int

const (
	ErrInitFailed         Errno = -1  // initialisation failed
	ErrBadUserGpio        Errno = -2  // gpio not 0-31
	ErrBadGpio            Errno = -3  // gpio not 0-53
	ErrBadMode            Errno = -4  // mode not 0-7
	ErrBadLevel           Errno = -5  // level not 0-1
	ErrBadPud             Errno = -6  // pull up/down not 0-2
	ErrBadPulsewidth      Errno = -7  // pulsewidth not 0 or 500-2500
	ErrBadDutycycle       Errno = -8  // dutycycle outside set range
	ErrBadTimer           Errno = -9  // timer not 0-9
	ErrBadMs              Errno = -10 // ms not 10-60000
	ErrBadTimetype        Errno = -11 // timetype not 0-1
	ErrBadSeconds         Errno = -12 // seconds < 0
	ErrBadMicros          Errno = -13 // micros not 0-999999
	ErrBadWatchdogTimeout Errno = -15 // timeout not 0-60000
	ErrBadClkPeripheral   Errno = -17 // clock peripheral not 0-1
	ErrBadClkSource       Errno = -18 // clock source not 0-1
	ErrBadClkMicros       Errno = -19 // clock micros not 1, 2, 4, 5, 8, or 10
	ErrBadBufferMs        Errno = -20 // buffer millis not 100-10000
	ErrBadDutyRange       Errno = -21 // dutycycle range not 25-40000
	ErrBadSignum          Errno = -22 // signum not 0-63
	ErrBadPathname        Errno = -23 // can't open pathname
	ErrNoHandle           Errno = -24 // no handle available
	ErrBadHandle          Errno = -25 // unknown handle
	ErrBadIfFlags         Errno = -26 // interface flags > 3
	ErrBadChannel         Errno = -27 // DMA channel not 0-14
	ErrBadSocketPort      Errno = -28 // socket port not 1024-32000
	ErrBadFifoCommand     Errno = -29 // unrecognized fifo command
	ErrBadSecoChannel     Errno = -30 // DMA secondary channel not 0-14
	ErrNotInitialised     Errno = -31 // function called before New
	ErrInitialised        Errno = -32 // function called after New
	ErrBadWaveMode        Errno = -33 // waveform mode not 0-1
	ErrBadWaveBaud        Errno = -35 // baud rate not 100-250000
	ErrTooManyPulses      Errno = -36 // waveform has too many pulses
	ErrTooManyChars       Errno = -37 // waveform has too many chars
	ErrNotSerialGpio      Errno = -38 // no serial read in progress on gpio
	ErrNotPermitted       Errno = -41 // gpio operation not permitted
	ErrSomePermitted      Errno = -42 // one or more gpios not permitted
	ErrBadPulselen        Errno = -46 // trigger pulse length > 50
	ErrBadScript          Errno = -47 // invalid script
	ErrBadScriptID        Errno = -48 // unknown script id
	ErrBadSerialOffset    Errno = -49 // add serial data offset > 30 minutes
	ErrGpioInUse          Errno = -50 // gpio already in use
	ErrBadSerialCount     Errno = -51 // must read at least a byte at a time
	ErrBadWaveID          Errno = -66 // non existent wave id
	ErrTooManyCbs         Errno = -67 // no more control blocks for waveform
	ErrTooManyOol         Errno = -68 // no more on/off slots for waveform
	ErrEmptyWaveform      Errno = -69 // attempt to create an empty waveform
	ErrNoWaveformID       Errno = -70 // no more waveform ids
	ErrPagemapFailed      Errno = -88 // pagemap translation failed
	ErrAllocFailed        Errno = -89 // DMA page allocation failed
)

var errnoText = map[Errno]string{
	ErrInitFailed:         "initialisation failed",
	ErrBadUserGpio:        "gpio not 0-31",
	ErrBadGpio:            "gpio not 0-53",
	ErrBadMode:            "mode not 0-7",
	ErrBadLevel:           "level not 0-1",
	ErrBadPud:             "pull up/down not 0-2",
	ErrBadPulsewidth:      "pulsewidth not 0 or 500-2500",
	ErrBadDutycycle:       "dutycycle outside set range",
	ErrBadTimer:           "timer not 0-9",
	ErrBadMs:              "ms not 10-60000",
	ErrBadTimetype:        "timetype not 0-1",
	ErrBadSeconds:         "seconds < 0",
	ErrBadMicros:          "micros not 0-999999",
	ErrBadWatchdogTimeout: "timeout not 0-60000",
	ErrBadClkPeripheral:   "clock peripheral not 0-1",
	ErrBadClkSource:       "clock source not 0-1",
	ErrBadClkMicros:       "clock micros not 1, 2, 4, 5, 8, or 10",
	ErrBadBufferMs:        "buffer millis not 100-10000",
	ErrBadDutyRange:       "dutycycle range not 25-40000",
	ErrBadSignum:          "signum not 0-63",
	ErrBadPathname:        "can't open pathname",
	ErrNoHandle:           "no handle available",
	ErrBadHandle:          "unknown handle",
	ErrBadIfFlags:         "interface flags > 3",
	ErrBadChannel:         "DMA channel not 0-14",
	ErrBadSocketPort:      "socket port not 1024-32000",
	ErrBadFifoCommand:     "unrecognized fifo command",
	ErrBadSecoChannel:     "DMA secondary channel not 0-14",
	ErrNotInitialised:     "not initialised",
	ErrInitialised:        "already initialised",
	ErrBadWaveMode:        "waveform mode not 0-1",
	ErrBadWaveBaud:        "baud rate not 100-250000",
	ErrTooManyPulses:      "waveform has too many pulses",
	ErrTooManyChars:       "waveform has too many chars",
	ErrNotSerialGpio:      "no serial read in progress on gpio",
	ErrNotPermitted:       "gpio operation not permitted",
	ErrSomePermitted:      "one or more gpios not permitted",
	ErrBadPulselen:        "trigger pulse length > 50",
	ErrBadScript:          "invalid script",
	ErrBadScriptID:        "unknown script id",
	ErrBadSerialOffset:    "serial data offset > 30 minutes",
	ErrGpioInUse:          "gpio already in use",
	ErrBadSerialCount:     "must read at least a byte at a time",
	ErrBadWaveID:          "non existent wave id",
	ErrTooManyCbs:         "no more control blocks for waveform",
	ErrTooManyOol:         "no more on/off slots for waveform",
	ErrEmptyWaveform:      "attempt to create an empty waveform",
	ErrNoWaveformID:       "no more waveform ids",
	ErrPagemapFailed:      "pagemap translation failed",
	ErrAllocFailed:        "DMA page allocation failed",
}

func (e Errno) Error() string {
	if s, ok := errnoText[e]; ok {
		return "pigpio: " + s
	}
	return "pigpio: unknown error"
}
