package upload

import "sync/atomic"

// Fallback is the one-way switch from encrypted to clear-text uploads.
// The zero value is ready to use and starts in encrypted mode.
type Fallback struct {
	clearText atomic.Bool
}

// NewFallback creates a Fallback in encrypted mode.
func NewFallback() *Fallback {
	return &Fallback{}
}

// Enabled reports whether uploads must use clear text.
func (f *Fallback) Enabled() bool {
	return f.clearText.Load()
}

// Trip switches to clear text. It returns true only for the caller that
// performed the transition.
func (f *Fallback) Trip() bool {
	return f.clearText.CompareAndSwap(false, true)
}
