// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package videocore

import "testing"

func TestAlloc_errors(t *testing.T) {
	if _, err := Alloc(0); err == nil {
		t.Fatal("can't allocate 0 bytes")
	}
	if _, err := Alloc(1); err == nil {
		t.Fatal("can't allocate non-page-aligned")
	}
}

func TestGenPacket(t *testing.T) {
	b := genPacket(mbAllocateMemory, 4, 4096, 4096, flagDirect)
	if b[0] != 6*4+12 {
		t.Fatal(b[0])
	}
	if b[2] != mbAllocateMemory {
		t.Fatal(b[2])
	}
	if b[3] != 12 {
		t.Fatal(b[3])
	}
	if b[5] != 4096 || b[6] != 4096 || b[7] != flagDirect {
		t.Fatal(b[5:8])
	}
}
