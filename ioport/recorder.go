package ioport

import (
	"fmt"
)

// CallKind identifies a Port method.
type CallKind int

const (
	CallWrite32 CallKind = iota
	CallMaskWrite32
	CallCopyToDevice
)

func (k CallKind) String() string {
	switch k {
	case CallWrite32:
		return "write32"
	case CallMaskWrite32:
		return "mask_write32"
	case CallCopyToDevice:
		return "copy_to_device"
	default:
		return fmt.Sprintf("call(%d)", int(k))
	}
}

// Call is one captured Port invocation.
type Call struct {
	Kind  CallKind
	Addr  uint64
	Mask  uint32
	Value uint32
	Data  []byte
}

func (c Call) String() string {
	switch c.Kind {
	case CallWrite32:
		return fmt.Sprintf("write32(0x%X, 0x%08X)", c.Addr, c.Value)
	case CallMaskWrite32:
		return fmt.Sprintf("mask_write32(0x%X, 0x%08X, 0x%08X)", c.Addr, c.Mask, c.Value)
	default:
		return fmt.Sprintf("copy_to_device(0x%X, %d bytes)", c.Addr, len(c.Data))
	}
}

// Recorder is a Port that records every call. Copied data is cloned, so the
// caller may reuse its buffers.
//
// A Recorder can forward calls to another Port and can be told to fail after a
// number of successful calls.
type Recorder struct {
	// Calls holds the captured calls in order
	Calls []Call

	next      Port
	failAfter int
	failErr   error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{failAfter: -1}
}

// Forward makes the Recorder pass every successful call on to next.
func (r *Recorder) Forward(next Port) {
	r.next = next
}

// FailAfter makes every call after the first n fail with err.
func (r *Recorder) FailAfter(n int, err error) {
	r.failAfter = n
	r.failErr = err
}

// Reset discards captured calls and failure injection.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.failAfter = -1
	r.failErr = nil
}

// Write32 implements Port.
func (r *Recorder) Write32(addr uint64, value uint32) error {
	if err := r.record(Call{Kind: CallWrite32, Addr: addr, Value: value}); err != nil {
		return err
	}
	if r.next != nil {
		return r.next.Write32(addr, value)
	}
	return nil
}

// MaskWrite32 implements Port.
func (r *Recorder) MaskWrite32(addr uint64, mask, value uint32) error {
	if err := r.record(Call{Kind: CallMaskWrite32, Addr: addr, Mask: mask, Value: value}); err != nil {
		return err
	}
	if r.next != nil {
		return r.next.MaskWrite32(addr, mask, value)
	}
	return nil
}

// CopyToDevice implements Port.
func (r *Recorder) CopyToDevice(dest uint64, data []byte) error {
	c := Call{Kind: CallCopyToDevice, Addr: dest, Data: append([]byte{}, data...)}
	if err := r.record(c); err != nil {
		return err
	}
	if r.next != nil {
		return r.next.CopyToDevice(dest, data)
	}
	return nil
}

func (r *Recorder) record(c Call) error {
	if r.failAfter >= 0 && len(r.Calls) >= r.failAfter {
		return r.failErr
	}
	r.Calls = append(r.Calls, c)
	return nil
}

// Count returns the number of captured calls of kind k.
func (r *Recorder) Count(k CallKind) int {
	n := 0
	for _, c := range r.Calls {
		if c.Kind == k {
			n++
		}
	}
	return n
}

// Replay issues the captured calls, in order, against port.
func (r *Recorder) Replay(port Port) error {
	for i, c := range r.Calls {
		var err error
		switch c.Kind {
		case CallWrite32:
			err = port.Write32(c.Addr, c.Value)
		case CallMaskWrite32:
			err = port.MaskWrite32(c.Addr, c.Mask, c.Value)
		case CallCopyToDevice:
			err = port.CopyToDevice(c.Addr, c.Data)
		}
		if err != nil {
			return fmt.Errorf("replay call %d (%s): %w", i, c, err)
		}
	}
	return nil
}
