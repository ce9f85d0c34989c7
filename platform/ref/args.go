package ref

import (
	"errors"

	"github.com/usbarmory/netkernel/kerr"
)

// TrapFrame is a fixed-arity syscall argument source: the trap handler
// fills Ints/Ptrs from the calling process's saved registers before
// dispatching to a syscall implementation.
type TrapFrame struct {
	Ints [6]int
	Ptrs [6][]byte
}

func (f *TrapFrame) ArgInt(i int) (int, error) {
	if i < 0 || i >= len(f.Ints) {
		return 0, kerr.New(kerr.BadSocket, "argint", errArgRange)
	}
	return f.Ints[i], nil
}

func (f *TrapFrame) ArgPtr(i int, size int) ([]byte, error) {
	if i < 0 || i >= len(f.Ptrs) {
		return nil, kerr.New(kerr.BadSocket, "argptr", errArgRange)
	}
	p := f.Ptrs[i]
	if len(p) < size {
		return nil, kerr.New(kerr.BadSocket, "argptr", errArgShort)
	}
	return p[:size], nil
}

var (
	errArgRange = errors.New("argument index out of range")
	errArgShort = errors.New("argument buffer shorter than requested size")
)
