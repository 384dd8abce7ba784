// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package fs

import "golang.org/x/sys/unix"

func ioctl(f uintptr, op uint, arg uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f, uintptr(op), arg); errno != 0 {
		return errno
	}
	return nil
}
