// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import (
	"io/ioutil"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Time types.
const (
	TimeRelative = 0
	TimeAbsolute = 1
)

// Tick returns the µs system tick, the free-running 32 bit timer the DMA
// samples are stamped with. It wraps around every ~72 minutes.
func (e *Engine) Tick() (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	return e.tickReg(), nil
}

// Time returns seconds and µs since the epoch (absolute) or since the
// engine was initialised (relative).
func (e *Engine) Time(timetype int) (int, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, 0, ErrNotInitialised
	}
	if timetype != TimeRelative && timetype != TimeAbsolute {
		return 0, 0, ErrBadTimetype
	}
	var d time.Duration
	if timetype == TimeAbsolute {
		d = time.Duration(time.Now().UnixNano())
	} else {
		d = time.Since(e.started)
	}
	return int(d / time.Second), int(d % time.Second / time.Microsecond), nil
}

// Sleep blocks for the duration (relative) or until the instant (absolute).
func (e *Engine) Sleep(timetype int, seconds, micros int) error {
	e.mu.Lock()
	if !e.initialised {
		e.mu.Unlock()
		return ErrNotInitialised
	}
	e.mu.Unlock()
	if timetype != TimeRelative && timetype != TimeAbsolute {
		return ErrBadTimetype
	}
	if seconds < 0 {
		return ErrBadSeconds
	}
	if micros < 0 || micros > 999999 {
		return ErrBadMicros
	}
	d := time.Duration(seconds)*time.Second + time.Duration(micros)*time.Microsecond
	if timetype == TimeRelative {
		time.Sleep(d)
		return nil
	}
	time.Sleep(time.Until(time.Unix(int64(seconds), int64(micros)*1000)))
	return nil
}

// Delay blocks for at least micros µs and returns the measured delay. Short
// delays busy-wait on the system timer.
func (e *Engine) Delay(micros uint32) (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	return e.delayMicros(micros), nil
}

//

var (
	revisionOnce  sync.Once
	revisionValue int
)

// HardwareRevision returns the board revision read from /proc/cpuinfo, or 0
// when it cannot be determined.
//
// The revision selects the default permission mask: early boards rewired
// several gpios between revisions.
func HardwareRevision() int {
	revisionOnce.Do(func() {
		c, err := ioutil.ReadFile("/proc/cpuinfo")
		if err != nil {
			return
		}
		for _, l := range strings.Split(string(c), "\n") {
			if !strings.HasPrefix(l, "Revision") {
				continue
			}
			i := strings.Index(l, ":")
			if i == -1 {
				continue
			}
			v := strings.TrimSpace(l[i+1:])
			// Overvolted boards prefix the revision with 1000.
			v = strings.TrimPrefix(v, "1000")
			if rev, err := strconv.ParseUint(v, 16, 32); err == nil {
				revisionValue = int(rev)
			}
			return
		}
	})
	return revisionValue
}
