package e1000

import (
	"unsafe"

	"github.com/usbarmory/netkernel/platform"
)

// rxDesc mirrors the 82540 legacy receive descriptor layout (16 bytes):
// buffer address, length, checksum, status, errors, special.
type rxDesc struct {
	Addr     uint64
	Length   uint16
	Checksum uint16
	Status   uint8
	Errors   uint8
	Special  uint16
}

// txDesc mirrors this kernel's simplified 16-byte legacy transmit
// descriptor: buffer address plus a single options word combining length,
// descriptor type and command bits (see registers.go's txDCMD* / txDTYP*
// constants).
type txDesc struct {
	Addr    uint64
	Options uint64
}

// ring is a fixed-size array of descriptors backed by one page, plus one
// permanently-assigned data page per descriptor.
type ring struct {
	descPage platform.Page
	data     [RingSize]platform.Page
}

func (r *ring) rx(i int) *rxDesc {
	return (*rxDesc)(unsafe.Pointer(&r.descPage.Virt[i*DescSize]))
}

func (r *ring) tx(i int) *txDesc {
	return (*txDesc)(unsafe.Pointer(&r.descPage.Virt[i*DescSize]))
}
