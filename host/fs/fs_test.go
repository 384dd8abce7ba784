// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package fs

import "testing"

func TestOpen(t *testing.T) {
	f, err := Open("fs.go", 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_missing(t *testing.T) {
	if _, err := Open("does_not_exist", 0); err == nil {
		t.Fatal("expected failure")
	}
}
