// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pmem

import "testing"

func TestSliceUint32(t *testing.T) {
	s := Slice([]byte{1, 0, 0, 0, 2, 0, 0, 0})
	v := s.Uint32()
	if len(v) != 2 || v[0] != 1 || v[1] != 2 {
		t.Fatal(v)
	}
}

func TestSliceStruct(t *testing.T) {
	type regs struct {
		A uint32
		B uint32
	}
	s := Slice(make([]byte, 8))
	var r *regs
	if err := s.Struct(&r); err != nil {
		t.Fatal(err)
	}
	r.B = 42
	if s[4] != 42 {
		t.Fatal(s)
	}
}

func TestSliceStruct_errors(t *testing.T) {
	type big struct {
		A [4096]uint32
	}
	s := Slice(make([]byte, 8))
	var b *big
	if err := s.Struct(&b); err == nil {
		t.Fatal("struct too large")
	}
	var r *int
	if err := s.Struct(&r); err == nil {
		t.Fatal("not a struct")
	}
	if err := s.Struct(nil); err == nil {
		t.Fatal("nil")
	}
}
