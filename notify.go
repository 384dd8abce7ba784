// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

import (
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/joan2937/pigpio-sub000/host/fs"
)

// NotifySlots is the size of the notification handle table.
const NotifySlots = 32

// Notification handle lifecycle.
const (
	notifyClosed = iota
	notifyClosing
	notifyOpened
	notifyRunning
	notifyPaused
)

// Report is one notification record, written to the handle's pipe or socket
// as 12 bytes in the SoC's (little endian) byte order.
type Report struct {
	SeqNo uint16 // per-handle, monotonically increasing, wraps
	Flags uint16 // 0 for a level change, watchdog flag + gpio otherwise
	Tick  uint32 // µs system tick at sample time
	Level uint32 // bank 1 levels at sample time
}

const (
	// NotifyFlagsWatchdog marks a report caused by a watchdog timeout; the
	// low 5 bits of the flags then carry the gpio.
	NotifyFlagsWatchdog = 1 << 5

	reportSize = 12
	// A burst written to a pipe must stay within PIPE_BUF so reports are
	// never torn; larger bursts are fragmented.
	maxEmits = 4096 / reportSize
)

// notifyFlagsBit encodes the gpio of a watchdog report.
func notifyFlagsBit(gpio uint) uint16 {
	return uint16(gpio) & 31
}

func encodeReports(dst []byte, reports []Report) []byte {
	for i := range reports {
		o := i * reportSize
		binary.LittleEndian.PutUint16(dst[o:], reports[i].SeqNo)
		binary.LittleEndian.PutUint16(dst[o+2:], reports[i].Flags)
		binary.LittleEndian.PutUint32(dst[o+4:], reports[i].Tick)
		binary.LittleEndian.PutUint32(dst[o+8:], reports[i].Level)
	}
	return dst[:len(reports)*reportSize]
}

// notifyReg is one notification handle.
type notifyReg struct {
	seqno uint16
	state int
	bits  uint32
	fd    int
	file  *fs.File // nil for in-band handles; the engine owns pipe fds only
	pipe  bool
}

// notifyPath returns the fifo path of a handle.
func notifyPath(handle int) string {
	return fmt.Sprintf("/dev/pigpio%d", handle)
}

// NotifyOpen allocates a notification handle backed by a named pipe at
// /dev/pigpio<handle>, mode 0664, and returns the handle.
func (e *Engine) NotifyOpen() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	slot := e.freeNotifySlot()
	if slot < 0 {
		return 0, ErrNoHandle
	}
	name := notifyPath(slot)
	_ = unix.Unlink(name)
	if err := unix.Mkfifo(name, 0664); err != nil {
		return 0, ErrBadPathname
	}
	// The umask may have tightened the fifo; force the advertised mode.
	_ = os.Chmod(name, 0664)
	f, err := fs.Open(name, os.O_RDWR|unix.O_NONBLOCK)
	if err != nil {
		_ = unix.Unlink(name)
		return 0, ErrBadPathname
	}
	e.notify[slot] = notifyReg{state: notifyOpened, fd: int(f.Fd()), file: f, pipe: true}
	return slot, nil
}

// NotifyOpenInBand allocates a notification handle bound to an already
// connected socket. The socket is borrowed, not owned: it is never closed by
// the engine.
func (e *Engine) NotifyOpenInBand(fd int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return 0, ErrNotInitialised
	}
	slot := e.freeNotifySlot()
	if slot < 0 {
		return 0, ErrNoHandle
	}
	e.notify[slot] = notifyReg{state: notifyOpened, fd: fd}
	return slot, nil
}

func (e *Engine) freeNotifySlot() int {
	for i := range e.notify {
		if e.notify[i].state == notifyClosed {
			return i
		}
	}
	return -1
}

// NotifyBegin starts or resumes reporting level changes of the gpios in
// bits on the handle. Sequence numbers restart at 0 only when the handle is
// reopened.
func (e *Engine) NotifyBegin(handle int, bits uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	if err := e.checkNotifyHandle(handle); err != nil {
		return err
	}
	e.notify[handle].bits = bits
	e.notify[handle].state = notifyRunning
	e.updateMonitorBits()
	return nil
}

// NotifyPause stops reporting on the handle; NotifyBegin resumes it.
func (e *Engine) NotifyPause(handle int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	if err := e.checkNotifyHandle(handle); err != nil {
		return err
	}
	e.notify[handle].bits = 0
	e.notify[handle].state = notifyPaused
	e.updateMonitorBits()
	return nil
}

// NotifyClose releases the handle.
//
// The handle only transitions to closing here; the alert loop performs the
// actual close and unlink so the fd is never closed under an in-flight
// write.
func (e *Engine) NotifyClose(handle int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialised {
		return ErrNotInitialised
	}
	if err := e.checkNotifyHandle(handle); err != nil {
		return err
	}
	e.notify[handle].bits = 0
	e.notify[handle].state = notifyClosing
	e.updateMonitorBits()
	return nil
}

func (e *Engine) checkNotifyHandle(handle int) error {
	if handle < 0 || handle >= NotifySlots {
		return ErrBadHandle
	}
	if e.notify[handle].state <= notifyClosing {
		return ErrBadHandle
	}
	return nil
}

// finishClose closes and unlinks a closing handle. Callers hold e.mu.
func (e *Engine) finishClose(n *notifyReg, handle int) {
	if n.pipe {
		if n.file != nil {
			_ = n.file.Close()
			n.file = nil
		}
		_ = unix.Unlink(notifyPath(handle))
	}
	n.state = notifyClosed
}

// emitReports writes the reports to the handle's sink in bursts of at most
// maxEmits records so no report is ever torn.
//
// A sink that would block is treated as dead and the handle transitions to
// closing; any other write error is counted but leaves the handle running.
// Callers hold e.mu.
func (e *Engine) emitReports(n *notifyReg, reports []Report) {
	if len(reports) > int(e.stats.MaxEmit) {
		e.stats.MaxEmit = uint32(len(reports))
	}
	var buf [maxEmits * reportSize]byte
	for len(reports) > 0 {
		chunk := reports
		if len(chunk) > maxEmits {
			chunk = chunk[:maxEmits]
			e.stats.EmitFrags++
		}
		_, err := unix.Write(n.fd, encodeReports(buf[:], chunk))
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			// The reader is gone.
			n.bits = 0
			n.state = notifyClosing
			e.updateMonitorBits()
			return
		}
		if err != nil {
			e.stats.EmitErrors++
			return
		}
		reports = reports[len(chunk):]
	}
}
