// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pigpio

// The script interpreter exists only as a protocol contract; the operations
// are unimplemented.

// StoreScript is unimplemented.
func (e *Engine) StoreScript(script string) (int, error) {
	return 0, ErrBadScript
}

// RunScript is unimplemented.
func (e *Engine) RunScript(scriptID int) error {
	return ErrBadScriptID
}

// StopScript is unimplemented.
func (e *Engine) StopScript(scriptID int) error {
	return ErrBadScriptID
}

// DeleteScript is unimplemented.
func (e *Engine) DeleteScript(scriptID int) error {
	return ErrBadScriptID
}
