// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pmem

import (
	"errors"
	"io"
	"os"
	"testing"
)

func TestReadPageMap(t *testing.T) {
	defer reset()
	openFile = func(path string, flag int) (fileIO, error) {
		if path != "/proc/self/pagemap" {
			t.Fatal(path)
		}
		if flag != os.O_RDONLY|os.O_SYNC {
			t.Fatal(flag)
		}
		return &simpleFile{data: []byte{1, 2, 3, 4, 5, 6, 7, 8}}, nil
	}
	u, err := readPageMapLinux(8192)
	if err != nil {
		t.Fatal(err)
	}
	if u != 0x807060504030201 {
		t.Fatal(u)
	}
}

func TestReadPageMap_short(t *testing.T) {
	defer reset()
	openFile = func(path string, flag int) (fileIO, error) {
		return &simpleFile{data: []byte{1, 2}}, nil
	}
	if u, err := readPageMapLinux(8192); u != 0 || err == nil {
		t.Fatal("didn't read 8 bytes")
	}
}

func TestReadPageMap_seek_fail(t *testing.T) {
	defer reset()
	openFile = func(path string, flag int) (fileIO, error) {
		return &failFile{}, nil
	}
	if u, err := readPageMapLinux(8192); u != 0 || err == nil {
		t.Fatal("Seek() failed")
	}
}

func TestVirtToPhys_absent(t *testing.T) {
	defer reset()
	// High bit unset: the page doesn't exist. The retry loop must give up
	// with an error, not report address zero.
	openFile = func(path string, flag int) (fileIO, error) {
		return &simpleFile{data: []byte{1, 2, 3, 4, 5, 6, 7, 0}}, nil
	}
	if u, err := VirtToPhys(8192); u != 0 || err == nil {
		t.Fatal(u, err)
	}
}

func TestVirtToPhys(t *testing.T) {
	defer reset()
	openFile = func(path string, flag int) (fileIO, error) {
		// Frame 2 with the present bit (63) set.
		return &simpleFile{data: []byte{2, 0, 0, 0, 0, 0, 0, 0x80}}, nil
	}
	u, err := VirtToPhys(8192)
	if err != nil {
		t.Fatal(err)
	}
	if u != 2*pageSize {
		t.Fatal(u)
	}
}

//

func reset() {
	openFile = func(path string, flag int) (fileIO, error) {
		f, err := os.OpenFile(path, flag, 0600)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	pageMap = nil
	pageMapErr = nil
}

type simpleFile struct {
	data []byte
	pos  int
}

func (s *simpleFile) Close() error {
	return nil
}

func (s *simpleFile) Read(b []byte) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(b, s.data[s.pos:])
	s.pos += n
	return n, nil
}

func (s *simpleFile) Seek(offset int64, whence int) (int64, error) {
	// The pagemap offset scales with the virtual address; the fake file holds
	// a single record.
	s.pos = 0
	return offset, nil
}

type failFile struct {
}

func (f *failFile) Close() error {
	return errors.New("injected")
}

func (f *failFile) Read(b []byte) (int, error) {
	return 0, errors.New("injected")
}

func (f *failFile) Seek(offset int64, whence int) (int64, error) {
	return 0, errors.New("injected")
}
